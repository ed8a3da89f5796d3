// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package batch generates reports for many topics with a bounded number of
// concurrent pipeline runs.
package batch

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/pdiddy/report-engine/internal/pipeline"
	"github.com/pdiddy/report-engine/internal/report"
	"github.com/pdiddy/report-engine/pkg/types"
)

const defaultConcurrency = 2

// Saver persists finished reports. *report.Store satisfies it.
type Saver interface {
	Save(ctx context.Context, r types.Report) error
}

// Options configures a batch run.
type Options struct {
	// Concurrency bounds simultaneous pipeline runs (default 2).
	Concurrency int

	// OutDir receives <slug>.md per topic when non-empty.
	OutDir string

	// Store saves each report when non-nil.
	Store Saver
}

// Summary holds counts from a batch run. Degraded reports are also counted
// as generated.
type Summary struct {
	Generated int
	Degraded  int
	Failed    int
}

// Total returns the number of topics processed.
func (s Summary) Total() int {
	return s.Generated + s.Failed
}

// Run generates a report per topic. A pipeline run itself cannot fail; a
// topic counts as failed when its report cannot be written or saved, or when
// ctx is cancelled before it starts. Run returns ctx.Err() if the context was
// cancelled.
func Run(ctx context.Context, p *pipeline.Pipeline, topics []Topic, opts Options, w io.Writer) (Summary, error) {
	concurrency := opts.Concurrency
	if concurrency <= 0 {
		concurrency = defaultConcurrency
	}
	if opts.OutDir != "" {
		if err := os.MkdirAll(opts.OutDir, 0o755); err != nil {
			return Summary{}, fmt.Errorf("creating output directory: %w", err)
		}
	}

	var (
		mu      sync.Mutex
		summary Summary
	)
	record := func(format string, args ...any) {
		mu.Lock()
		defer mu.Unlock()
		fmt.Fprintf(w, format, args...)
	}

	names := fileNames(topics)

	var g errgroup.Group
	g.SetLimit(concurrency)
	for i, t := range topics {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				mu.Lock()
				summary.Failed++
				mu.Unlock()
				record("failed  %s: %v\n", t.Topic, err)
				return nil
			}

			res := p.Run(ctx, t.Topic, t.Model)
			r := report.New(res.Topic, res.Model, res.Report(), res.Facts.Value.Len(), res.DegradedStages())

			path, err := persist(ctx, r, names[i], opts)
			mu.Lock()
			switch {
			case err != nil:
				summary.Failed++
			case r.Degraded():
				summary.Generated++
				summary.Degraded++
			default:
				summary.Generated++
			}
			mu.Unlock()

			switch {
			case err != nil:
				record("failed  %s: %v\n", t.Topic, err)
			case r.Degraded():
				record("degraded %s (%s)%s\n", t.Topic, strings.Join(r.DegradedStages, ", "), arrow(path))
			default:
				record("generated %s%s\n", t.Topic, arrow(path))
			}
			return nil
		})
	}
	_ = g.Wait()

	fmt.Fprintf(w, "\nBatch summary: %d generated, %d degraded, %d failed (total: %d)\n",
		summary.Generated, summary.Degraded, summary.Failed, summary.Total())
	return summary, ctx.Err()
}

// persist writes the report file and saves it to the store as configured. It
// returns the written path, if any.
func persist(ctx context.Context, r types.Report, name string, opts Options) (string, error) {
	var path string
	if opts.OutDir != "" {
		path = filepath.Join(opts.OutDir, name)
		if err := report.WriteMarkdown(path, r); err != nil {
			return "", fmt.Errorf("writing %s: %w", path, err)
		}
	}
	if opts.Store != nil {
		if err := opts.Store.Save(ctx, r); err != nil {
			return path, err
		}
	}
	return path, nil
}

// fileNames assigns each topic a Markdown file name, suffixing repeated slugs
// so reports never overwrite each other.
func fileNames(topics []Topic) []string {
	names := make([]string, len(topics))
	seen := make(map[string]int)
	for i, t := range topics {
		slug := report.Slug(t.Topic)
		seen[slug]++
		if n := seen[slug]; n > 1 {
			slug = fmt.Sprintf("%s-%d", slug, n)
		}
		names[i] = slug + ".md"
	}
	return names
}

func arrow(path string) string {
	if path == "" {
		return ""
	}
	return " -> " + path
}
