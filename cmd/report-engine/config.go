// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/report-engine/internal/completion"
	"github.com/pdiddy/report-engine/internal/metrics"
	"github.com/pdiddy/report-engine/internal/pipeline"
	"github.com/pdiddy/report-engine/internal/report"
	"github.com/pdiddy/report-engine/internal/secrets"
	"github.com/pdiddy/report-engine/pkg/types"
)

// providerEnv names the conventional environment variable for each
// provider's API key.
var providerEnv = map[types.Provider]string{
	types.ProviderGroq:   "GROQ_API_KEY",
	types.ProviderOpenAI: "OPENAI_API_KEY",
	types.ProviderGemini: "GEMINI_API_KEY",
}

// aiConfig resolves provider settings. The API key comes from api_key in the
// config or environment, then the provider's conventional environment
// variable, then .secrets/.
func aiConfig() (types.AIConfig, error) {
	provider := types.Provider(strings.ToLower(viper.GetString("provider")))
	if provider == "" {
		provider = types.ProviderGroq
	}

	apiKey := viper.GetString("api_key")
	if apiKey == "" {
		if env, ok := providerEnv[provider]; ok {
			apiKey = os.Getenv(env)
		}
	}
	if apiKey == "" {
		apiKey = secrets.APIKey(loadedSecrets, provider)
	}

	timeout := viper.GetDuration("timeout")
	if timeout <= 0 {
		return types.AIConfig{}, fmt.Errorf("timeout must be positive, got %q", viper.GetString("timeout"))
	}

	return types.AIConfig{
		Provider: provider,
		APIKey:   apiKey,
		BaseURL:  viper.GetString("base_url"),
		Timeout:  timeout,
	}, nil
}

// newClient builds the completion client for the configured provider.
func newClient() (completion.Completer, error) {
	cfg, err := aiConfig()
	if err != nil {
		return nil, err
	}
	if cfg.APIKey == "" {
		name, _ := secrets.KeyFile(cfg.Provider)
		return nil, fmt.Errorf("no API key for provider %s: set %s, REPORT_ENGINE_API_KEY, or .secrets/%s",
			cfg.Provider, providerEnv[cfg.Provider], name)
	}
	return completion.New(cfg)
}

// pipelineConfig starts from the defaults and applies model plus any
// per-stage overrides such as research.temperature or editing.max_tokens.
func pipelineConfig() (types.PipelineConfig, error) {
	cfg := types.DefaultPipelineConfig()
	cfg.Model = viper.GetString("model")

	for _, name := range types.StageNames {
		sc := cfg.Stage(name)
		if viper.IsSet(name + ".model") {
			sc.Model = viper.GetString(name + ".model")
		}
		if viper.IsSet(name + ".temperature") {
			sc.Temperature = viper.GetFloat64(name + ".temperature")
		}
		if viper.IsSet(name + ".max_tokens") {
			sc.MaxTokens = viper.GetInt(name + ".max_tokens")
		}
	}

	if err := cfg.Validate(); err != nil {
		return types.PipelineConfig{}, fmt.Errorf("invalid pipeline config: %w", err)
	}
	return cfg, nil
}

// buildPipeline wires a client, the pipeline config, and logging into a
// Pipeline. reg may be nil when metrics are not exported.
func buildPipeline(client completion.Completer, reg prometheus.Registerer, opts ...pipeline.Option) (*pipeline.Pipeline, error) {
	cfg, err := pipelineConfig()
	if err != nil {
		return nil, err
	}
	opts = append(opts, pipeline.WithLogger(logger))
	if reg != nil {
		m, err := metrics.New(reg)
		if err != nil {
			return nil, fmt.Errorf("registering metrics: %w", err)
		}
		opts = append(opts, pipeline.WithMetrics(m))
	}
	return pipeline.New(client, cfg, opts...), nil
}

// openStore opens the report store under reports_dir.
func openStore() (*report.Store, error) {
	return report.NewStore(types.StoreConfig{
		ReportsDir: viper.GetString("reports_dir"),
	})
}

// modelFlag returns --model when set, or "" so the pipeline default applies.
func modelFlag(cmd *cobra.Command) string {
	m, _ := cmd.Flags().GetString("model")
	return m
}
