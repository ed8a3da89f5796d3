// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package chat answers a question directly from caller-supplied sources with a
// single completion call. Unlike the report pipeline, failures are returned
// to the caller.
package chat

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/pdiddy/report-engine/internal/completion"
	"github.com/pdiddy/report-engine/pkg/types"
)

const (
	temperature = 0.5
	maxTokens   = 2000
)

// ErrEmptyQuery is returned when the question is blank.
var ErrEmptyQuery = errors.New("query is required")

// Question is one chat turn.
type Question struct {
	Query   string
	Sources []types.Source
	Model   string
}

// Answer asks the model to answer q.Query using only q.Sources. An empty
// model uses types.DefaultModel.
func Answer(ctx context.Context, client completion.Completer, q Question) (string, error) {
	if strings.TrimSpace(q.Query) == "" {
		return "", ErrEmptyQuery
	}
	model := q.Model
	if model == "" {
		model = types.DefaultModel
	}

	answer, err := client.Complete(ctx, completion.Request{
		SystemPrompt: systemPrompt(q.Sources),
		UserPrompt:   q.Query,
		Model:        model,
		Temperature:  temperature,
		MaxTokens:    maxTokens,
	})
	if err != nil {
		return "", fmt.Errorf("answering question: %w", err)
	}
	return answer, nil
}

func systemPrompt(sources []types.Source) string {
	blocks := make([]string, len(sources))
	for i, s := range sources {
		title := s.Title
		if title == "" {
			title = "Untitled"
		}
		blocks[i] = fmt.Sprintf("Source %d (%s):\n%s", i+1, title, s.Content)
	}

	return "You are an AI assistant helping users understand their sources.\n" +
		"Answer questions based on the following sources:\n\n" +
		strings.Join(blocks, "\n\n") +
		"\n\nProvide accurate, helpful answers based on the information in the sources."
}
