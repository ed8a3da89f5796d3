// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package completion wraps a remote chat-completion service behind a single
// call: a system prompt and a user prompt go in, the trimmed text of the
// model's single response choice comes out.
//
// Backends are stateless and safe for concurrent use. They never retry; a
// failed call surfaces as a *ServiceError and the caller decides what to do.
package completion

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/pdiddy/report-engine/pkg/types"
)

// DefaultTimeout bounds a single completion call when the config sets none.
const DefaultTimeout = 60 * time.Second

// ErrInvalidRequest reports a Request that violates the call contract.
var ErrInvalidRequest = errors.New("invalid completion request")

// ErrEmptyCompletion reports a response with no choices or only whitespace.
var ErrEmptyCompletion = errors.New("empty completion")

// Request is one two-message conversation: a system prompt and a user prompt.
type Request struct {
	SystemPrompt string
	UserPrompt   string
	Model        string
	Temperature  float64
	MaxTokens    int
}

// Validate checks the request against the call contract.
func (r Request) Validate() error {
	switch {
	case r.SystemPrompt == "":
		return fmt.Errorf("%w: system prompt is empty", ErrInvalidRequest)
	case r.UserPrompt == "":
		return fmt.Errorf("%w: user prompt is empty", ErrInvalidRequest)
	case r.Model == "":
		return fmt.Errorf("%w: model is empty", ErrInvalidRequest)
	case r.Temperature < 0 || r.Temperature > 1:
		return fmt.Errorf("%w: temperature %v out of range [0,1]", ErrInvalidRequest, r.Temperature)
	case r.MaxTokens <= 0:
		return fmt.Errorf("%w: max tokens must be positive, got %d", ErrInvalidRequest, r.MaxTokens)
	}
	return nil
}

// Completer abstracts the completion service so stages and tests can supply
// their own implementation.
type Completer interface {
	Complete(ctx context.Context, req Request) (string, error)
}

// CompleterFunc adapts a function to the Completer interface.
type CompleterFunc func(ctx context.Context, req Request) (string, error)

// Complete calls f.
func (f CompleterFunc) Complete(ctx context.Context, req Request) (string, error) {
	return f(ctx, req)
}

// ServiceError is returned for any transport, authentication, quota, or
// empty-response failure from the remote service.
type ServiceError struct {
	// Provider names the backend that failed.
	Provider types.Provider

	// StatusCode is the HTTP status when the service answered, 0 otherwise.
	StatusCode int

	// Err is the underlying cause.
	Err error
}

func (e *ServiceError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s completion failed (status %d): %v", e.Provider, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("%s completion failed: %v", e.Provider, e.Err)
}

func (e *ServiceError) Unwrap() error {
	return e.Err
}

// New builds the Completer selected by cfg.Provider.
func New(cfg types.AIConfig) (Completer, error) {
	switch cfg.Provider {
	case "", types.ProviderGroq, types.ProviderOpenAI:
		return NewOpenAIClient(cfg)
	case types.ProviderGemini:
		return NewGeminiClient(context.Background(), cfg)
	default:
		return nil, fmt.Errorf("unsupported provider %q", cfg.Provider)
	}
}

// withDeadline applies the per-call timeout on top of the caller's context.
func withDeadline(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return context.WithTimeout(ctx, timeout)
}
