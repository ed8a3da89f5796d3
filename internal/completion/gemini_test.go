// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package completion

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/report-engine/pkg/types"
)

const generatePath = "/v1beta/models/test-model:generateContent"

// geminiServer returns an httptest server answering generateContent with
// text, or with a JSON error body when status is not 200.
func geminiServer(t *testing.T, status int, text string, got *map[string]any) *httptest.Server {
	t.Helper()
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != generatePath {
			http.NotFound(w, r)
			return
		}
		if got != nil {
			require.NoError(t, json.NewDecoder(r.Body).Decode(got))
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		if status != http.StatusOK {
			json.NewEncoder(w).Encode(map[string]any{
				"error": map[string]any{"code": status, "message": "API key not valid", "status": "PERMISSION_DENIED"},
			})
			return
		}
		json.NewEncoder(w).Encode(map[string]any{
			"candidates": []map[string]any{{
				"content": map[string]any{
					"role":  "model",
					"parts": []map[string]any{{"text": text}},
				},
				"finishReason": "STOP",
			}},
		})
	}))
	t.Cleanup(ts.Close)
	return ts
}

func newGeminiTestClient(t *testing.T, baseURL string, timeout time.Duration) *GeminiClient {
	t.Helper()
	c, err := NewGeminiClient(context.Background(), types.AIConfig{
		Provider: types.ProviderGemini,
		APIKey:   "test-key",
		BaseURL:  baseURL,
		Timeout:  timeout,
	})
	require.NoError(t, err)
	return c
}

func TestNewGeminiClient_RequiresKey(t *testing.T) {
	_, err := NewGeminiClient(context.Background(), types.AIConfig{Provider: types.ProviderGemini})
	assert.Error(t, err)
}

func TestGeminiClient_Complete(t *testing.T) {
	var body map[string]any
	ts := geminiServer(t, http.StatusOK, "  \n# Hello\n  ", &body)
	c := newGeminiTestClient(t, ts.URL, 5*time.Second)

	text, err := c.Complete(context.Background(), validRequest())
	require.NoError(t, err)
	assert.Equal(t, "# Hello", text)

	gen, ok := body["generationConfig"].(map[string]any)
	require.True(t, ok)
	assert.InDelta(t, 0.3, gen["temperature"], 1e-6)
	assert.EqualValues(t, 100, gen["maxOutputTokens"])

	sys, ok := body["systemInstruction"].(map[string]any)
	require.True(t, ok)
	parts := sys["parts"].([]any)
	assert.Equal(t, "You are terse.", parts[0].(map[string]any)["text"])
}

func TestGeminiClient_APIErrorIsServiceError(t *testing.T) {
	ts := geminiServer(t, http.StatusForbidden, "", nil)
	c := newGeminiTestClient(t, ts.URL, 5*time.Second)

	_, err := c.Complete(context.Background(), validRequest())

	var svcErr *ServiceError
	require.ErrorAs(t, err, &svcErr)
	assert.Equal(t, types.ProviderGemini, svcErr.Provider)
	assert.Equal(t, http.StatusForbidden, svcErr.StatusCode)
}

func TestGeminiClient_EmptyText(t *testing.T) {
	ts := geminiServer(t, http.StatusOK, "   ", nil)
	c := newGeminiTestClient(t, ts.URL, 5*time.Second)

	_, err := c.Complete(context.Background(), validRequest())

	var svcErr *ServiceError
	require.ErrorAs(t, err, &svcErr)
	assert.ErrorIs(t, err, ErrEmptyCompletion)
}

func TestGeminiClient_Timeout(t *testing.T) {
	release := make(chan struct{})
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-release:
		}
	}))
	t.Cleanup(ts.Close)
	t.Cleanup(func() { close(release) })

	c := newGeminiTestClient(t, ts.URL, 50*time.Millisecond)

	start := time.Now()
	_, err := c.Complete(context.Background(), validRequest())

	var svcErr *ServiceError
	require.ErrorAs(t, err, &svcErr)
	assert.True(t, errors.Is(err, context.DeadlineExceeded), "got %v", err)
	assert.Less(t, time.Since(start), 5*time.Second)
}

func TestOpenAIClient_Timeout(t *testing.T) {
	release := make(chan struct{})
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-release:
		}
	}))
	t.Cleanup(ts.Close)
	t.Cleanup(func() { close(release) })

	c, err := NewOpenAIClient(types.AIConfig{
		Provider: types.ProviderGroq,
		APIKey:   "test-key",
		BaseURL:  ts.URL,
		Timeout:  50 * time.Millisecond,
	})
	require.NoError(t, err)

	_, err = c.Complete(context.Background(), validRequest())

	var svcErr *ServiceError
	require.ErrorAs(t, err, &svcErr)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestWithDeadline(t *testing.T) {
	ctx, cancel := withDeadline(context.Background(), 0)
	defer cancel()

	deadline, ok := ctx.Deadline()
	require.True(t, ok)
	assert.WithinDuration(t, time.Now().Add(DefaultTimeout), deadline, time.Second)
}
