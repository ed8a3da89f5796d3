// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package chat

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/report-engine/internal/completion"
	"github.com/pdiddy/report-engine/pkg/types"
)

func TestAnswer(t *testing.T) {
	var req completion.Request
	client := completion.CompleterFunc(func(_ context.Context, r completion.Request) (string, error) {
		req = r
		return "LPUs are deterministic.", nil
	})

	got, err := Answer(context.Background(), client, Question{
		Query: "What makes LPUs different?",
		Sources: []types.Source{
			{Title: "Groq whitepaper", Content: "The LPU is deterministic."},
			{Content: "GPUs use HBM."},
		},
	})

	require.NoError(t, err)
	assert.Equal(t, "LPUs are deterministic.", got)
	assert.Equal(t, "What makes LPUs different?", req.UserPrompt)
	assert.Equal(t, types.DefaultModel, req.Model)
	assert.Equal(t, 0.5, req.Temperature)
	assert.Equal(t, 2000, req.MaxTokens)
	assert.Contains(t, req.SystemPrompt,
		"Source 1 (Groq whitepaper):\nThe LPU is deterministic.\n\nSource 2 (Untitled):\nGPUs use HBM.")
}

func TestAnswer_EmptyQuery(t *testing.T) {
	called := false
	client := completion.CompleterFunc(func(context.Context, completion.Request) (string, error) {
		called = true
		return "", nil
	})

	_, err := Answer(context.Background(), client, Question{Query: "   "})
	assert.ErrorIs(t, err, ErrEmptyQuery)
	assert.False(t, called)
}

func TestAnswer_PropagatesServiceError(t *testing.T) {
	cause := &completion.ServiceError{Provider: types.ProviderGroq, StatusCode: 401, Err: errors.New("bad key")}
	client := completion.CompleterFunc(func(context.Context, completion.Request) (string, error) {
		return "", cause
	})

	_, err := Answer(context.Background(), client, Question{Query: "q", Model: "m"})

	var svcErr *completion.ServiceError
	require.ErrorAs(t, err, &svcErr)
	assert.Equal(t, 401, svcErr.StatusCode)
}

func TestSystemPrompt_NoSources(t *testing.T) {
	got := systemPrompt(nil)
	assert.Contains(t, got, "following sources:\n\n\n\nProvide accurate")
}
