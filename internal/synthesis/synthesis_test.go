// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package synthesis

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/pdiddy/report-engine/internal/completion"
	"github.com/pdiddy/report-engine/pkg/types"
)

func TestSynthesize_Success(t *testing.T) {
	var req completion.Request
	client := completion.CompleterFunc(func(_ context.Context, r completion.Request) (string, error) {
		req = r
		return "# LPU vs GPU\n\nDraft body.", nil
	})
	facts := types.FactSet{Facts: []types.Fact{{ID: 1, Detail: "LPUs are deterministic"}}}

	out := New(client, types.DefaultPipelineConfig().Synthesis, nil).
		Synthesize(context.Background(), "LPU vs GPU", facts, "m1")

	require.False(t, out.Degraded())
	assert.Equal(t, "# LPU vs GPU\n\nDraft body.", out.Value)

	assert.Equal(t, "m1", req.Model)
	assert.Equal(t, 0.5, req.Temperature)
	assert.Equal(t, 3000, req.MaxTokens)
	assert.Contains(t, req.SystemPrompt, "Do not invent any new information")
	assert.True(t, strings.HasPrefix(req.UserPrompt, "Topic: LPU vs GPU\n\nFacts to synthesize:\n{\n  \"facts\": ["))
	assert.Contains(t, req.UserPrompt, `"detail": "LPUs are deterministic"`)
	assert.True(t, strings.HasSuffix(req.UserPrompt, "using ONLY these facts."))
}

func TestSynthesize_FailureYieldsErrorDocument(t *testing.T) {
	cause := &completion.ServiceError{Provider: types.ProviderGroq, StatusCode: 503, Err: errors.New("unavailable")}
	client := completion.CompleterFunc(func(context.Context, completion.Request) (string, error) {
		return "", cause
	})

	core, logs := observer.New(zapcore.WarnLevel)

	out := New(client, types.DefaultPipelineConfig().Synthesis, zap.New(core)).
		Synthesize(context.Background(), "topic", types.SingleFact("x"), "m")

	require.True(t, out.Degraded())
	assert.ErrorIs(t, out.Cause, cause)
	assert.True(t, strings.HasPrefix(out.Value, "# Error\n\nFailed to synthesize report: "))
	assert.Contains(t, out.Value, "unavailable")

	require.Equal(t, 1, logs.Len())
	assert.Equal(t, "synthesis", logs.All()[0].ContextMap()["stage"])
}

func TestRenderUserPrompt_EmptyFactSet(t *testing.T) {
	got, err := renderUserPrompt("topic", types.FactSet{})
	require.NoError(t, err)
	assert.Contains(t, got, "\"facts\": []")
}
