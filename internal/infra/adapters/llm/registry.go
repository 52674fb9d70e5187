// File: internal/infra/adapters/llm/registry.go
package llm

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"ghostwriter/internal/config"
	"ghostwriter/internal/domain/ports/adapter"
)

// Build turns the ordered provider configuration into the fallback chain.
// Disabled entries and entries without an API key are skipped with a log line;
// an unknown kind is a configuration error.
func Build(ctx context.Context, cfg config.LLMConfig, logger *zerolog.Logger) ([]adapter.ProviderAdapter, error) {
	out := make([]adapter.ProviderAdapter, 0, len(cfg.Providers))
	for _, p := range cfg.Providers {
		if !p.IsEnabled() {
			logger.Info().Str("provider", p.Name).Msg("provider disabled")
			continue
		}
		if p.Kind != "noop" && p.APIKey == "" {
			logger.Warn().Str("provider", p.Name).Msg("provider has no api key; skipping")
			continue
		}
		a, err := newProvider(ctx, p)
		if err != nil {
			return nil, fmt.Errorf("provider %s: %w", p.Name, err)
		}
		out = append(out, NewLimited(a, cfg.MaxConcurrent))
		logger.Info().Str("provider", p.Name).Str("kind", p.Kind).Str("model", p.Model).Msg("provider enabled")
	}
	return out, nil
}

func newProvider(ctx context.Context, p config.ProviderConfig) (adapter.ProviderAdapter, error) {
	switch p.Kind {
	case "gemini":
		return NewGeminiAdapter(ctx, p.Name, p.APIKey, p.BaseURL, p.Model, p.MaxTokens, p.SamplingTemperature())
	case "groq":
		return NewGroqAdapter(p.Name, p.APIKey, p.BaseURL, p.Model, p.MaxTokens, p.SamplingTemperature())
	case "openrouter":
		return NewOpenRouterAdapter(p.Name, p.APIKey, p.BaseURL, p.Model, p.Referer, p.MaxTokens, p.SamplingTemperature())
	case "qwen":
		return NewQwenAdapter(p.Name, p.APIKey, p.BaseURL, p.Model, p.MaxTokens, p.SamplingTemperature())
	case "noop":
		return NewNoopAdapter(p.Name), nil
	default:
		return nil, fmt.Errorf("unknown provider kind %q", p.Kind)
	}
}
