// File: internal/usecase/suggestion_uc.go
package usecase

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"ghostwriter/internal/domain"
	"ghostwriter/internal/domain/model"
	"ghostwriter/internal/domain/ports/adapter"
	"ghostwriter/internal/domain/ports/repository"
	"ghostwriter/internal/infra/logging"
	"ghostwriter/internal/infra/metrics"
	"ghostwriter/internal/infra/worker"
)

// Compile-time check
var _ SuggestionUseCase = (*suggestionUC)(nil)

// CacheProvider is reported as the provider of a cache hit.
const CacheProvider = "cache"

type SuggestionUseCase interface {
	GenerateSuggestions(ctx context.Context, userID string, req model.SuggestionRequest) (*model.SuggestionResult, error)
	CacheStats(ctx context.Context) model.CacheStats
	ClearCache(ctx context.Context)
}

// TaskSubmitter queues background work; *worker.Pool satisfies it.
type TaskSubmitter interface {
	Submit(task worker.Task) error
}

type suggestionUC struct {
	cache repository.SuggestionCache
	gen   SuggestionGenerator
	usage adapter.UsageRecorder
	tasks TaskSubmitter
	ttl   time.Duration
	log   *zerolog.Logger
	dev   bool
}

// NewSuggestionUseCase wires the cache-then-orchestrate pipeline. usage and
// tasks may be nil (CLI use): recording is then skipped.
func NewSuggestionUseCase(
	cache repository.SuggestionCache,
	gen SuggestionGenerator,
	usage adapter.UsageRecorder,
	tasks TaskSubmitter,
	ttl time.Duration,
	logger *zerolog.Logger,
	dev bool,
) *suggestionUC {
	l := logger.With().Str("component", "suggestion_uc").Logger()
	return &suggestionUC{cache: cache, gen: gen, usage: usage, tasks: tasks, ttl: ttl, log: &l, dev: dev}
}

func (u *suggestionUC) GenerateSuggestions(ctx context.Context, userID string, req model.SuggestionRequest) (*model.SuggestionResult, error) {
	start := time.Now()
	log := logging.With(ctx, u.log)
	defer logging.TraceDuration(log, "SuggestionUC.GenerateSuggestions")()

	message := strings.TrimSpace(req.Message)
	if message == "" {
		return nil, domain.ErrInvalidArgument
	}
	tone := strings.ToLower(strings.TrimSpace(req.Tone))
	if tone == "" {
		tone = model.DefaultTone
	}
	if !model.IsKnownTone(tone) {
		metrics.IncUnknownTone()
		log.Warn().Str("tone", tone).Str("served_as", model.DefaultTone).Msg("unknown tone")
	}

	if cached, ok := u.cache.Get(ctx, message, tone); ok {
		metrics.IncSuggestion("cache")
		res := &model.SuggestionResult{Suggestions: cached, Provider: CacheProvider, Cached: true}
		u.record(ctx, userID, tone, res, start)
		return res, nil
	}

	res, err := u.gen.Generate(ctx, message, tone, req.RecentMessages)
	if err != nil {
		if !errors.Is(err, domain.ErrAllProvidersFailed) {
			return nil, err
		}
		if cerr := ctx.Err(); cerr != nil {
			// nobody is waiting for a canned answer
			return nil, err
		}
		log.Error().Err(err).Str("tone", tone).Msg("all providers failed; serving fallback suggestions")
		metrics.IncSuggestion("degraded")
		res = &model.SuggestionResult{
			Suggestions: model.FallbackSuggestions(tone),
			Provider:    model.FallbackProvider,
			Degraded:    true,
		}
		u.record(ctx, userID, tone, res, start)
		return res, nil
	}

	if len(res.Suggestions) == model.SuggestionCount {
		u.cache.Set(ctx, message, tone, res.Suggestions, u.ttl)
	}
	metrics.IncSuggestion("live")
	log.Info().
		Str("provider", res.Provider).
		Int("tokens", res.TokensUsed).
		Str("message", logging.Redact(message, u.dev)).
		Msg("suggestions served")
	u.record(ctx, userID, tone, res, start)
	return res, nil
}

// record hands the usage event to the worker pool. Failures are logged only.
func (u *suggestionUC) record(ctx context.Context, userID, tone string, res *model.SuggestionResult, start time.Time) {
	if u.usage == nil || u.tasks == nil || userID == "" {
		return
	}
	ev := model.UsageEvent{
		UserID:         userID,
		Tone:           tone,
		Provider:       res.Provider,
		TokensUsed:     res.TokensUsed,
		ResponseTimeMs: time.Since(start).Milliseconds(),
		Cached:         res.Cached,
		At:             time.Now().UTC(),
	}
	log := logging.With(ctx, u.log)
	err := u.tasks.Submit(func(taskCtx context.Context) error {
		if err := u.usage.Record(taskCtx, ev); err != nil {
			metrics.IncUsageRecordFailure()
			log.Warn().Err(err).Msg("usage recording failed")
		}
		return nil
	})
	if err != nil {
		metrics.IncUsageRecordFailure()
		log.Warn().Err(err).Msg("usage recording dropped")
	}
}

func (u *suggestionUC) CacheStats(ctx context.Context) model.CacheStats { return u.cache.Stats(ctx) }

func (u *suggestionUC) ClearCache(ctx context.Context) { u.cache.Clear(ctx) }
