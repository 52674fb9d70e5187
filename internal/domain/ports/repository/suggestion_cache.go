package repository

import (
	"context"
	"time"

	"ghostwriter/internal/domain/model"
)

// SuggestionCache memoizes (message, tone) -> suggestions for a TTL.
// Implementations never fail: backend errors behave as a miss.
type SuggestionCache interface {
	Get(ctx context.Context, message, tone string) ([]string, bool)
	Set(ctx context.Context, message, tone string, suggestions []string, ttl time.Duration)
	// Cleanup drops expired entries and returns how many were removed.
	Cleanup(ctx context.Context) int
	Clear(ctx context.Context)
	Stats(ctx context.Context) model.CacheStats
}
