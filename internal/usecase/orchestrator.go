// File: internal/usecase/orchestrator.go
package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"ghostwriter/internal/domain"
	"ghostwriter/internal/domain/model"
	"ghostwriter/internal/domain/ports/adapter"
	"ghostwriter/internal/infra/metrics"
)

// Compile-time check
var _ SuggestionGenerator = (*FallbackOrchestrator)(nil)

// SuggestionGenerator produces exactly model.SuggestionCount live suggestions
// or fails with *domain.AllProvidersFailedError.
type SuggestionGenerator interface {
	Generate(ctx context.Context, message, tone string, recent []string) (*model.SuggestionResult, error)
}

// TokenCounter estimates the size of a prompt. Used for observability only.
type TokenCounter interface {
	Count(text string) int
}

// OrchestratorOptions bounds how long the chain may run.
// Zero values disable the corresponding deadline.
type OrchestratorOptions struct {
	AttemptTimeout    time.Duration
	GenerationTimeout time.Duration
	Tokens            TokenCounter
}

// FallbackOrchestrator probes providers strictly in order and returns the
// first response that parses into a full suggestion set.
type FallbackOrchestrator struct {
	providers []adapter.ProviderAdapter
	opts      OrchestratorOptions
	log       *zerolog.Logger
}

func NewFallbackOrchestrator(providers []adapter.ProviderAdapter, opts OrchestratorOptions, logger *zerolog.Logger) *FallbackOrchestrator {
	l := logger.With().Str("component", "orchestrator").Logger()
	ps := make([]adapter.ProviderAdapter, len(providers))
	copy(ps, providers)
	return &FallbackOrchestrator{providers: ps, opts: opts, log: &l}
}

// Providers returns the chain names in attempt order.
func (o *FallbackOrchestrator) Providers() []string {
	out := make([]string, 0, len(o.providers))
	for _, p := range o.providers {
		out = append(out, p.Name())
	}
	return out
}

func (o *FallbackOrchestrator) Generate(ctx context.Context, message, tone string, recent []string) (*model.SuggestionResult, error) {
	if len(o.providers) == 0 {
		return nil, domain.ErrNoProviders
	}
	prompt, err := BuildPrompt(message, tone, recent)
	if err != nil {
		return nil, err
	}
	if o.opts.GenerationTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, o.opts.GenerationTimeout)
		defer cancel()
	}
	if o.opts.Tokens != nil {
		// observability only: never on the request path
		counter := o.opts.Tokens
		go func() { metrics.ObservePromptTokens(counter.Count(prompt)) }()
	}

	failures := make([]domain.ProviderFailure, 0, len(o.providers))
	for _, p := range o.providers {
		if cerr := ctx.Err(); cerr != nil {
			// caller gave up or the overall deadline passed: stop spending quota
			failures = append(failures, domain.ProviderFailure{Provider: p.Name(), Err: cerr})
			o.log.Warn().Str("provider", p.Name()).Err(cerr).Msg("fallback chain stopped")
			break
		}
		res, err := o.attempt(ctx, p, prompt)
		if err == nil {
			return res, nil
		}
		failures = append(failures, domain.ProviderFailure{Provider: p.Name(), Err: err})
		o.log.Warn().Str("provider", p.Name()).Err(err).Msg("provider failed, advancing")
	}

	metrics.IncChainExhausted()
	return nil, &domain.AllProvidersFailedError{Failures: failures}
}

func (o *FallbackOrchestrator) attempt(ctx context.Context, p adapter.ProviderAdapter, prompt string) (*model.SuggestionResult, error) {
	actx := ctx
	if o.opts.AttemptTimeout > 0 {
		var cancel context.CancelFunc
		actx, cancel = context.WithTimeout(ctx, o.opts.AttemptTimeout)
		defer cancel()
	}

	start := time.Now()
	c, err := p.Invoke(actx, prompt)
	elapsed := time.Since(start).Milliseconds()
	if err != nil {
		result := "error"
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			result = "canceled"
		}
		metrics.ObserveProviderCall(p.Name(), result, elapsed)
		return nil, err
	}

	suggestions := ParseSuggestions(c.Text)
	if suggestions == nil {
		metrics.ObserveProviderCall(p.Name(), "unparseable", elapsed)
		return nil, fmt.Errorf("%s: %w", p.Name(), domain.ErrUnparseableResponse)
	}

	metrics.ObserveProviderCall(p.Name(), "ok", elapsed)
	metrics.AddTokens(p.Name(), c.TokensUsed, c.UsageReported)
	o.log.Debug().
		Str("provider", p.Name()).
		Int("tokens", c.TokensUsed).
		Bool("usage_reported", c.UsageReported).
		Int64("latency_ms", elapsed).
		Msg("suggestions generated")

	return &model.SuggestionResult{
		Suggestions: suggestions,
		Provider:    p.Name(),
		TokensUsed:  c.TokensUsed,
	}, nil
}
