// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import (
	"fmt"
	"time"
)

// DefaultModel is the model used when neither config nor caller names one.
const DefaultModel = "llama-3.1-70b-versatile"

// Provider selects the completion backend.
type Provider string

const (
	ProviderGroq   Provider = "groq"
	ProviderOpenAI Provider = "openai"
	ProviderGemini Provider = "gemini"
)

// AIConfig holds settings for the completion client.
type AIConfig struct {
	// Provider selects the backend: groq, openai, or gemini (default groq).
	Provider Provider `json:"provider" yaml:"provider"`

	// APIKey is the authentication key for the provider.
	APIKey string `json:"api_key,omitempty" yaml:"api_key,omitempty"`

	// BaseURL overrides the provider endpoint for OpenAI-compatible backends.
	BaseURL string `json:"base_url,omitempty" yaml:"base_url,omitempty"`

	// Timeout bounds a single completion call (default 60s).
	Timeout time.Duration `json:"timeout" yaml:"timeout"`
}

// StageConfig holds the sampling settings for one pipeline stage.
type StageConfig struct {
	// Model overrides the pipeline model for this stage when non-empty.
	Model string `json:"model,omitempty" yaml:"model,omitempty"`

	// Temperature is the sampling temperature in [0,1].
	Temperature float64 `json:"temperature" yaml:"temperature"`

	// MaxTokens bounds the response length.
	MaxTokens int `json:"max_tokens" yaml:"max_tokens"`
}

// ModelOr returns the stage override if set, otherwise model.
func (c StageConfig) ModelOr(model string) string {
	if c.Model != "" {
		return c.Model
	}
	return model
}

// Validate checks the sampling bounds.
func (c StageConfig) Validate() error {
	if c.Temperature < 0 || c.Temperature > 1 {
		return fmt.Errorf("temperature %v out of range [0,1]", c.Temperature)
	}
	if c.MaxTokens <= 0 {
		return fmt.Errorf("max_tokens must be positive, got %d", c.MaxTokens)
	}
	return nil
}

// PipelineConfig is threaded into the orchestrator at construction time.
type PipelineConfig struct {
	// Model is the default model identifier for every stage.
	Model string `json:"model" yaml:"model"`

	Research  StageConfig `json:"research" yaml:"research"`
	Synthesis StageConfig `json:"synthesis" yaml:"synthesis"`
	Editing   StageConfig `json:"editing" yaml:"editing"`
}

// DefaultPipelineConfig returns the stage settings the pipeline was tuned
// with: low temperature and a small budget for fact extraction, a moderate
// temperature and larger budget for prose.
func DefaultPipelineConfig() PipelineConfig {
	return PipelineConfig{
		Model:     DefaultModel,
		Research:  StageConfig{Temperature: 0.3, MaxTokens: 2000},
		Synthesis: StageConfig{Temperature: 0.5, MaxTokens: 3000},
		Editing:   StageConfig{Temperature: 0.3, MaxTokens: 3000},
	}
}

// Validate checks every stage and requires a model.
func (c PipelineConfig) Validate() error {
	if c.Model == "" {
		return fmt.Errorf("model is required")
	}
	for _, name := range StageNames {
		if err := c.Stage(name).Validate(); err != nil {
			return fmt.Errorf("%s: %w", name, err)
		}
	}
	return nil
}

// StageNames lists the pipeline stages in execution order.
var StageNames = []string{"research", "synthesis", "editing"}

// Stage returns the config of the named stage, or nil for an unknown name.
func (c *PipelineConfig) Stage(name string) *StageConfig {
	switch name {
	case "research":
		return &c.Research
	case "synthesis":
		return &c.Synthesis
	case "editing":
		return &c.Editing
	}
	return nil
}

// ServerConfig holds settings for the HTTP API.
type ServerConfig struct {
	// Address is the listen address (default ":5000").
	Address string `json:"address" yaml:"address"`
}

// BatchConfig holds settings for batch report generation.
type BatchConfig struct {
	// Concurrency bounds the number of pipelines running at once (default 2).
	Concurrency int `json:"concurrency" yaml:"concurrency"`

	// OutDir receives one Markdown file per topic when non-empty.
	OutDir string `json:"out_dir" yaml:"out_dir"`
}

// StoreConfig holds settings for the report store.
type StoreConfig struct {
	// ReportsDir holds reports.db (default "reports").
	ReportsDir string `json:"reports_dir" yaml:"reports_dir"`

	// MaxResults is the default list limit (default 20).
	MaxResults int `json:"max_results" yaml:"max_results"`
}
