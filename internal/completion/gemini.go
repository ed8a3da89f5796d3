// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package completion

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"google.golang.org/genai"

	"github.com/pdiddy/report-engine/pkg/types"
)

// GeminiClient calls the Gemini API through the genai SDK.
type GeminiClient struct {
	client  *genai.Client
	timeout time.Duration
}

// NewGeminiClient creates a Gemini-backed Completer.
func NewGeminiClient(ctx context.Context, cfg types.AIConfig) (*GeminiClient, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("gemini API key is required")
	}

	cc := &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	}
	if cfg.BaseURL != "" {
		cc.HTTPOptions = genai.HTTPOptions{BaseURL: cfg.BaseURL}
	}

	client, err := genai.NewClient(ctx, cc)
	if err != nil {
		return nil, fmt.Errorf("creating gemini client: %w", err)
	}
	return &GeminiClient{client: client, timeout: cfg.Timeout}, nil
}

// Complete sends the system prompt as a system instruction and the user
// prompt as the single content turn.
func (c *GeminiClient) Complete(ctx context.Context, req Request) (string, error) {
	if err := req.Validate(); err != nil {
		return "", err
	}

	ctx, cancel := withDeadline(ctx, c.timeout)
	defer cancel()

	resp, err := c.client.Models.GenerateContent(ctx, req.Model,
		genai.Text(req.UserPrompt),
		&genai.GenerateContentConfig{
			SystemInstruction: genai.NewContentFromText(req.SystemPrompt, genai.RoleUser),
			Temperature:       genai.Ptr(float32(req.Temperature)),
			MaxOutputTokens:   int32(req.MaxTokens),
			CandidateCount:    1,
		},
	)
	if err != nil {
		svcErr := &ServiceError{Provider: types.ProviderGemini, Err: err}
		var apiErr genai.APIError
		if errors.As(err, &apiErr) {
			svcErr.StatusCode = apiErr.Code
		}
		return "", svcErr
	}

	text := strings.TrimSpace(resp.Text())
	if text == "" {
		return "", &ServiceError{Provider: types.ProviderGemini, Err: ErrEmptyCompletion}
	}
	return text, nil
}
