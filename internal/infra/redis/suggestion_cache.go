// File: internal/infra/redis/suggestion_cache.go
package redis

import (
	"context"
	"encoding/json"
	"errors"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"

	"ghostwriter/internal/domain/model"
	"ghostwriter/internal/domain/ports/repository"
	"ghostwriter/internal/infra/cache"
	"ghostwriter/internal/infra/metrics"
)

var _ repository.SuggestionCache = (*SuggestionCache)(nil)

const suggestionPrefix = "suggestion:"

// SuggestionCache shares memoized suggestions between instances. Redis TTLs
// handle expiry; every backend failure degrades to a miss.
type SuggestionCache struct {
	client RedisClient
	hits   atomic.Int64
	misses atomic.Int64
	log    *zerolog.Logger
}

func NewSuggestionCache(client RedisClient, logger *zerolog.Logger) *SuggestionCache {
	l := logger.With().Str("component", "suggestion_cache").Str("backend", "redis").Logger()
	return &SuggestionCache{client: client, log: &l}
}

func (c *SuggestionCache) miss() ([]string, bool) {
	c.misses.Add(1)
	metrics.IncCacheRequest("suggestion", "miss")
	return nil, false
}

func (c *SuggestionCache) Get(ctx context.Context, message, tone string) ([]string, bool) {
	raw, err := c.client.Get(ctx, suggestionPrefix+cache.Key(message, tone))
	if err != nil {
		if !errors.Is(err, Nil) {
			c.log.Warn().Err(err).Msg("cache get failed; treating as miss")
		}
		return c.miss()
	}
	var out []string
	if err := json.Unmarshal([]byte(raw), &out); err != nil || len(out) != model.SuggestionCount {
		c.log.Warn().Err(err).Msg("corrupt cache entry; treating as miss")
		return c.miss()
	}
	c.hits.Add(1)
	metrics.IncCacheRequest("suggestion", "hit")
	return out, true
}

func (c *SuggestionCache) Set(ctx context.Context, message, tone string, suggestions []string, ttl time.Duration) {
	if ttl <= 0 {
		return
	}
	data, err := json.Marshal(suggestions)
	if err != nil {
		return
	}
	if err := c.client.Set(ctx, suggestionPrefix+cache.Key(message, tone), data, ttl); err != nil {
		c.log.Warn().Err(err).Msg("cache set failed")
	}
}

// Cleanup is a no-op: Redis expires keys itself.
func (c *SuggestionCache) Cleanup(context.Context) int { return 0 }

func (c *SuggestionCache) Clear(ctx context.Context) {
	keys, err := c.client.Keys(ctx, suggestionPrefix+"*")
	if err != nil {
		c.log.Warn().Err(err).Msg("cache scan failed")
		return
	}
	if err := c.client.Del(ctx, keys...); err != nil {
		c.log.Warn().Err(err).Msg("cache clear failed")
		return
	}
	c.log.Info().Int("removed", len(keys)).Msg("cache cleared")
}

func (c *SuggestionCache) Stats(ctx context.Context) model.CacheStats {
	st := model.CacheStats{Hits: c.hits.Load(), Misses: c.misses.Load()}
	if keys, err := c.client.Keys(ctx, suggestionPrefix+"*"); err == nil {
		st.Entries = int64(len(keys))
	}
	return st
}
