// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package completion

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"

	"github.com/pdiddy/report-engine/pkg/types"
)

const (
	groqBaseURL   = "https://api.groq.com/openai/v1/"
	openAIBaseURL = "https://api.openai.com/v1/"
)

// OpenAIClient calls any OpenAI-compatible chat-completions endpoint. Groq is
// the default endpoint.
type OpenAIClient struct {
	client   openai.Client
	provider types.Provider
	timeout  time.Duration
}

// NewOpenAIClient configures a client for cfg.BaseURL, or the provider's
// public endpoint when BaseURL is empty. SDK retries are disabled.
func NewOpenAIClient(cfg types.AIConfig, opts ...option.RequestOption) (*OpenAIClient, error) {
	provider := cfg.Provider
	if provider == "" {
		provider = types.ProviderGroq
	}

	baseURL := cfg.BaseURL
	if baseURL == "" {
		switch provider {
		case types.ProviderOpenAI:
			baseURL = openAIBaseURL
		default:
			baseURL = groqBaseURL
		}
	}
	if !strings.HasSuffix(baseURL, "/") {
		baseURL += "/"
	}

	if cfg.APIKey == "" {
		return nil, fmt.Errorf("%s API key is required", provider)
	}

	base := []option.RequestOption{
		option.WithAPIKey(cfg.APIKey),
		option.WithBaseURL(baseURL),
		option.WithMaxRetries(0),
	}

	return &OpenAIClient{
		client:   openai.NewClient(append(base, opts...)...),
		provider: provider,
		timeout:  cfg.Timeout,
	}, nil
}

// Complete sends one system+user conversation and returns the trimmed text
// of the first choice.
func (c *OpenAIClient) Complete(ctx context.Context, req Request) (string, error) {
	if err := req.Validate(); err != nil {
		return "", err
	}

	ctx, cancel := withDeadline(ctx, c.timeout)
	defer cancel()

	resp, err := c.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(req.SystemPrompt),
			openai.UserMessage(req.UserPrompt),
		},
		Model:       openai.ChatModel(req.Model),
		Temperature: openai.Float(req.Temperature),
		MaxTokens:   openai.Int(int64(req.MaxTokens)),
	})
	if err != nil {
		svcErr := &ServiceError{Provider: c.provider, Err: err}
		var apiErr *openai.Error
		if errors.As(err, &apiErr) {
			svcErr.StatusCode = apiErr.StatusCode
		}
		return "", svcErr
	}

	if len(resp.Choices) == 0 {
		return "", &ServiceError{Provider: c.provider, Err: ErrEmptyCompletion}
	}
	text := strings.TrimSpace(resp.Choices[0].Message.Content)
	if text == "" {
		return "", &ServiceError{Provider: c.provider, Err: ErrEmptyCompletion}
	}
	return text, nil
}
