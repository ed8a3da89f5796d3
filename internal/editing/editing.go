// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package editing runs the last pipeline stage: one completion call that
// polishes a Markdown draft. Editing is best-effort; when the call fails the
// draft is returned unchanged.
package editing

import (
	"context"

	"go.uber.org/zap"

	"github.com/pdiddy/report-engine/internal/completion"
	"github.com/pdiddy/report-engine/pkg/types"
)

const systemPrompt = `ROLE: You are a professional Copy Editor and Quality Control Specialist. Your sole job is to take a Markdown draft and correct all grammatical errors, improve clarity, refine the professional tone, and ensure proper Markdown formatting.

CRITICAL: Return ONLY the final, polished Markdown string. Do not add any conversational text or explanation.`

const userPromptPrefix = "Edit and polish this Markdown document:\n\n"

// Editor polishes drafts.
type Editor struct {
	client completion.Completer
	cfg    types.StageConfig
	logger *zap.Logger
}

// New creates an Editor. A nil logger discards log output.
func New(client completion.Completer, cfg types.StageConfig, logger *zap.Logger) *Editor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Editor{client: client, cfg: cfg, logger: logger.Named("editing")}
}

// Edit returns the polished draft, or the draft itself when the call fails.
func (e *Editor) Edit(ctx context.Context, draft, model string) types.Outcome[string] {
	model = e.cfg.ModelOr(model)

	final, err := e.client.Complete(ctx, completion.Request{
		SystemPrompt: systemPrompt,
		UserPrompt:   userPromptPrefix + draft,
		Model:        model,
		Temperature:  e.cfg.Temperature,
		MaxTokens:    e.cfg.MaxTokens,
	})
	if err != nil {
		e.logger.Warn("editing call failed, keeping draft",
			zap.String("stage", "editing"),
			zap.String("model", model),
			zap.Int("draft_chars", len(draft)),
			zap.Error(err))
		return types.Degraded(draft, err)
	}
	return types.Succeeded(final)
}
