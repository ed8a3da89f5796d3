// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package report

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"strings"

	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/report-engine/pkg/types"
)

const frontMatterDelim = "---\n"

// ErrNoFrontMatter is returned by ParseMarkdown when the document does not
// start with a YAML header.
var ErrNoFrontMatter = errors.New("missing front matter")

// WriteMarkdown writes r to path as Markdown preceded by a YAML front matter
// block holding the run metadata.
func WriteMarkdown(path string, r types.Report) error {
	data, err := FormatMarkdown(r)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

// FormatMarkdown renders the front matter header followed by the report body.
func FormatMarkdown(r types.Report) ([]byte, error) {
	header, err := yaml.Marshal(&r)
	if err != nil {
		return nil, fmt.Errorf("marshaling front matter: %w", err)
	}
	var buf bytes.Buffer
	buf.WriteString(frontMatterDelim)
	buf.Write(header)
	buf.WriteString(frontMatterDelim)
	buf.WriteString("\n")
	buf.WriteString(r.Markdown)
	if !strings.HasSuffix(r.Markdown, "\n") {
		buf.WriteString("\n")
	}
	return buf.Bytes(), nil
}

// ReadMarkdown loads a report previously written by WriteMarkdown.
func ReadMarkdown(path string) (types.Report, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return types.Report{}, fmt.Errorf("reading report: %w", err)
	}
	r, err := ParseMarkdown(data)
	if err != nil {
		return types.Report{}, fmt.Errorf("parsing %s: %w", path, err)
	}
	return r, nil
}

// ParseMarkdown splits a document into front matter and body. The single
// blank line written after the closing delimiter and the trailing newline are
// not part of the body.
func ParseMarkdown(data []byte) (types.Report, error) {
	text := string(data)
	if !strings.HasPrefix(text, frontMatterDelim) {
		return types.Report{}, ErrNoFrontMatter
	}
	rest := text[len(frontMatterDelim):]
	end := strings.Index(rest, "\n"+frontMatterDelim)
	if end < 0 {
		return types.Report{}, ErrNoFrontMatter
	}

	var r types.Report
	if err := yaml.Unmarshal([]byte(rest[:end+1]), &r); err != nil {
		return types.Report{}, fmt.Errorf("parsing front matter: %w", err)
	}

	body := rest[end+1+len(frontMatterDelim):]
	body = strings.TrimPrefix(body, "\n")
	r.Markdown = strings.TrimSuffix(body, "\n")
	return r, nil
}
