// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package types defines shared data structures for the report-engine pipeline:
// the fact set passed from research to synthesis, the tagged stage outcome,
// the persisted report record, and the configuration threaded into each stage.
package types

// Fact is a single research finding extracted for a topic.
type Fact struct {
	// ID numbers the fact within its set. IDs are not guaranteed to be
	// contiguous or unique.
	ID int `json:"id" yaml:"id"`

	// Detail is the fact text.
	Detail string `json:"detail" yaml:"detail"`
}

// FactSet is the structured output of the research stage. It is created
// fresh for every pipeline run and discarded after synthesis.
type FactSet struct {
	Facts []Fact `json:"facts" yaml:"facts"`
}

// Len returns the number of facts in the set.
func (fs FactSet) Len() int {
	return len(fs.Facts)
}

// SingleFact returns a one-element FactSet. Stages use it to build fallback
// values that keep the declared shape.
func SingleFact(detail string) FactSet {
	return FactSet{Facts: []Fact{{ID: 1, Detail: detail}}}
}
