// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "time"

// Report is the durable artifact of a pipeline run. Only the final Markdown
// and run metadata are kept; facts and drafts are never persisted.
type Report struct {
	// ID is a UUID assigned when the report is created.
	ID string `json:"id" yaml:"id"`

	// Topic is the free-text topic the report was generated for.
	Topic string `json:"topic" yaml:"topic"`

	// Model is the model identifier used for the run.
	Model string `json:"model" yaml:"model"`

	// Markdown is the final, edited report.
	Markdown string `json:"markdown" yaml:"-"`

	// FactCount is the number of facts the research stage produced.
	FactCount int `json:"fact_count" yaml:"fact_count"`

	// DegradedStages names the stages that fell back during the run
	// ("research", "synthesis", "editing"). Empty for a clean run.
	DegradedStages []string `json:"degraded_stages,omitempty" yaml:"degraded_stages,omitempty"`

	// CreatedAt is when the run finished.
	CreatedAt time.Time `json:"created_at" yaml:"created_at"`
}

// Degraded reports whether any stage fell back while producing the report.
func (r Report) Degraded() bool {
	return len(r.DegradedStages) > 0
}

// Source is a caller-supplied document the chat endpoint answers from.
type Source struct {
	Title   string `json:"title" yaml:"title"`
	Content string `json:"content" yaml:"content"`
}
