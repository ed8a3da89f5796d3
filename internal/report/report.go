// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package report persists finished reports, either as Markdown files with a
// YAML front matter header or as rows in a SQLite store. Only final reports
// are kept; facts and drafts never leave the pipeline.
package report

import (
	"crypto/sha256"
	"fmt"
	"strings"
	"time"
	"unicode"

	"github.com/google/uuid"

	"github.com/pdiddy/report-engine/pkg/types"
)

const maxSlugLen = 60

// New builds a Report with a fresh ID and the current time.
func New(topic, model, markdown string, factCount int, degradedStages []string) types.Report {
	return types.Report{
		ID:             uuid.NewString(),
		Topic:          topic,
		Model:          model,
		Markdown:       markdown,
		FactCount:      factCount,
		DegradedStages: degradedStages,
		CreatedAt:      time.Now().UTC(),
	}
}

// Slug returns a filesystem-safe filename stem for a topic. Topics with no
// letters or digits fall back to a short hash.
func Slug(topic string) string {
	var b strings.Builder
	dash := false
	for _, r := range strings.ToLower(topic) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			if r > unicode.MaxASCII {
				continue
			}
			b.WriteRune(r)
			dash = false
			continue
		}
		if !dash && b.Len() > 0 {
			b.WriteByte('-')
			dash = true
		}
	}
	slug := strings.TrimRight(b.String(), "-")
	if len(slug) > maxSlugLen {
		slug = strings.TrimRight(slug[:maxSlugLen], "-")
	}
	if slug == "" {
		h := sha256.Sum256([]byte(topic))
		return fmt.Sprintf("report-%x", h[:4])
	}
	return slug
}
