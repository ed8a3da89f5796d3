// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package research runs the first pipeline stage: one completion call that
// extracts the key facts for a topic as structured data. The stage never
// fails outward. A malformed reply or a service failure yields a one-fact
// fallback set so synthesis always receives a well-formed FactSet.
package research

import (
	"context"
	"encoding/json"
	"fmt"

	"go.uber.org/zap"

	"github.com/pdiddy/report-engine/internal/completion"
	"github.com/pdiddy/report-engine/pkg/types"
)

// Fallback fact details.
const (
	ParseFailedDetail   = "Error parsing research data"
	ServiceFailedDetail = "Error running research agent"
)

// ParseError reports a reply that did not match the FactSet shape. Raw holds
// the model output for diagnosis.
type ParseError struct {
	Raw string
	Err error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parsing research data: %v", e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// Researcher extracts facts for a topic.
type Researcher struct {
	client completion.Completer
	cfg    types.StageConfig
	logger *zap.Logger
}

// New creates a Researcher. A nil logger discards log output.
func New(client completion.Completer, cfg types.StageConfig, logger *zap.Logger) *Researcher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Researcher{client: client, cfg: cfg, logger: logger.Named("research")}
}

// ExtractFacts asks the model for the key facts about topic. The outcome is
// degraded, never an error, when the call or the parse fails.
func (r *Researcher) ExtractFacts(ctx context.Context, topic, model string) types.Outcome[types.FactSet] {
	model = r.cfg.ModelOr(model)

	userPrompt, err := renderUserPrompt(topic)
	if err != nil {
		return r.serviceFailure(model, fmt.Errorf("rendering prompt: %w", err))
	}

	raw, err := r.client.Complete(ctx, completion.Request{
		SystemPrompt: systemPrompt,
		UserPrompt:   userPrompt,
		Model:        model,
		Temperature:  r.cfg.Temperature,
		MaxTokens:    r.cfg.MaxTokens,
	})
	if err != nil {
		return r.serviceFailure(model, err)
	}

	facts, err := ParseFacts(raw)
	if err != nil {
		r.logger.Warn("research reply did not parse",
			zap.String("stage", "research"),
			zap.String("model", model),
			zap.String("raw", raw),
			zap.Error(err))
		return types.Degraded(types.SingleFact(ParseFailedDetail), err)
	}
	return types.Succeeded(facts)
}

func (r *Researcher) serviceFailure(model string, err error) types.Outcome[types.FactSet] {
	r.logger.Warn("research call failed",
		zap.String("stage", "research"),
		zap.String("model", model),
		zap.Error(err))
	return types.Degraded(types.SingleFact(ServiceFailedDetail), err)
}

// ParseFacts extracts the JSON object from raw and decodes it as a FactSet.
// An object without a facts array is a structural failure; an empty array
// is a valid, empty set.
func ParseFacts(raw string) (types.FactSet, error) {
	doc, err := extractJSON(raw)
	if err != nil {
		return types.FactSet{}, &ParseError{Raw: raw, Err: err}
	}

	var envelope struct {
		Facts *[]types.Fact `json:"facts"`
	}
	if err := json.Unmarshal([]byte(doc), &envelope); err != nil {
		return types.FactSet{}, &ParseError{Raw: raw, Err: err}
	}
	if envelope.Facts == nil {
		return types.FactSet{}, &ParseError{Raw: raw, Err: fmt.Errorf("missing facts array")}
	}
	facts := *envelope.Facts
	if facts == nil {
		facts = []types.Fact{}
	}
	return types.FactSet{Facts: facts}, nil
}
