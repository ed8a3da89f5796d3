// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package synthesis runs the second pipeline stage: one completion call that
// turns a topic and its fact set into a Markdown draft grounded only in
// those facts.
package synthesis

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"text/template"

	"go.uber.org/zap"

	"github.com/pdiddy/report-engine/internal/completion"
	"github.com/pdiddy/report-engine/pkg/types"
)

const systemPrompt = `ROLE: You are an expert Content Architect and Synthesizer. Your task is to take a raw list of facts and transform them into a coherent, flowing, well-structured Markdown document. Do not invent any new information; strictly use the facts provided in the input.

CRITICAL: Return ONLY the Markdown content. No conversational text, no explanations, just the Markdown document.`

var userPromptTmpl = template.Must(template.New("synthesis").Parse(`Topic: {{.Topic}}

Facts to synthesize:
{{.Facts}}

Create a comprehensive, well-structured Markdown report using ONLY these facts.`))

// Synthesizer drafts a report from extracted facts.
type Synthesizer struct {
	client completion.Completer
	cfg    types.StageConfig
	logger *zap.Logger
}

// New creates a Synthesizer. A nil logger discards log output.
func New(client completion.Completer, cfg types.StageConfig, logger *zap.Logger) *Synthesizer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Synthesizer{client: client, cfg: cfg, logger: logger.Named("synthesis")}
}

// Synthesize drafts Markdown for topic from facts. On failure the draft is an
// error document so editing still has something to work on.
func (s *Synthesizer) Synthesize(ctx context.Context, topic string, facts types.FactSet, model string) types.Outcome[string] {
	model = s.cfg.ModelOr(model)

	userPrompt, err := renderUserPrompt(topic, facts)
	if err != nil {
		return s.failure(model, fmt.Errorf("rendering prompt: %w", err))
	}

	draft, err := s.client.Complete(ctx, completion.Request{
		SystemPrompt: systemPrompt,
		UserPrompt:   userPrompt,
		Model:        model,
		Temperature:  s.cfg.Temperature,
		MaxTokens:    s.cfg.MaxTokens,
	})
	if err != nil {
		return s.failure(model, err)
	}
	return types.Succeeded(draft)
}

func (s *Synthesizer) failure(model string, err error) types.Outcome[string] {
	s.logger.Warn("synthesis call failed",
		zap.String("stage", "synthesis"),
		zap.String("model", model),
		zap.Error(err))
	return types.Degraded(ErrorDocument(err), err)
}

// ErrorDocument is the fallback draft: a Markdown document with an Error
// heading and the failure cause.
func ErrorDocument(cause error) string {
	return fmt.Sprintf("# Error\n\nFailed to synthesize report: %v", cause)
}

// renderUserPrompt appends the indented JSON form of facts after the topic.
func renderUserPrompt(topic string, facts types.FactSet) (string, error) {
	if facts.Facts == nil {
		facts.Facts = []types.Fact{}
	}
	factsJSON, err := json.MarshalIndent(facts, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshaling facts: %w", err)
	}

	var buf bytes.Buffer
	if err := userPromptTmpl.Execute(&buf, struct {
		Topic string
		Facts string
	}{Topic: topic, Facts: string(factsJSON)}); err != nil {
		return "", err
	}
	return buf.String(), nil
}
