// File: internal/infra/cache/memory.go
package cache

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"

	"ghostwriter/internal/domain/model"
	"ghostwriter/internal/domain/ports/repository"
	"ghostwriter/internal/infra/metrics"
	"ghostwriter/internal/infra/scheduler"
)

var _ repository.SuggestionCache = (*MemoryCache)(nil)

const metricName = "suggestion"

type entry struct {
	suggestions []string
	expiresAt   time.Time
}

// MemoryCache is a process-local suggestion cache. Expired entries are
// dropped when read and by a periodic sweep owned by the cache.
type MemoryCache struct {
	mu      sync.RWMutex
	entries map[string]entry
	hits    atomic.Int64
	misses  atomic.Int64

	now   func() time.Time
	sweep *scheduler.Scheduler
	log   *zerolog.Logger
}

// NewMemoryCache builds a cache whose sweep runs every sweepInterval once Start is called.
func NewMemoryCache(sweepInterval time.Duration, logger *zerolog.Logger) *MemoryCache {
	l := logger.With().Str("component", "suggestion_cache").Logger()
	c := &MemoryCache{entries: make(map[string]entry), now: time.Now, log: &l}
	c.sweep = scheduler.NewScheduler("cache_sweep", sweepInterval, func(ctx context.Context) (int, error) {
		return c.Cleanup(ctx), nil
	}, logger)
	return c
}

// Start launches the background sweep. Stop ends it.
func (c *MemoryCache) Start(ctx context.Context) { c.sweep.Start(ctx) }

func (c *MemoryCache) Stop() { c.sweep.Stop() }

func (c *MemoryCache) Get(_ context.Context, message, tone string) ([]string, bool) {
	k := Key(message, tone)
	c.mu.RLock()
	e, ok := c.entries[k]
	c.mu.RUnlock()

	if ok && !c.now().Before(e.expiresAt) {
		c.mu.Lock()
		// re-check: a concurrent Set may have refreshed it
		if cur, still := c.entries[k]; still && !c.now().Before(cur.expiresAt) {
			delete(c.entries, k)
			metrics.AddCacheEvicted(metricName, "read", 1)
		}
		c.mu.Unlock()
		ok = false
	}
	if !ok {
		c.misses.Add(1)
		metrics.IncCacheRequest(metricName, "miss")
		return nil, false
	}
	c.hits.Add(1)
	metrics.IncCacheRequest(metricName, "hit")
	out := make([]string, len(e.suggestions))
	copy(out, e.suggestions)
	return out, true
}

func (c *MemoryCache) Set(_ context.Context, message, tone string, suggestions []string, ttl time.Duration) {
	if ttl <= 0 {
		return
	}
	v := make([]string, len(suggestions))
	copy(v, suggestions)
	c.mu.Lock()
	c.entries[Key(message, tone)] = entry{suggestions: v, expiresAt: c.now().Add(ttl)}
	n := len(c.entries)
	c.mu.Unlock()
	metrics.SetCacheEntries(metricName, n)
}

func (c *MemoryCache) Cleanup(_ context.Context) int {
	now := c.now()
	c.mu.Lock()
	removed := 0
	for k, e := range c.entries {
		if !now.Before(e.expiresAt) {
			delete(c.entries, k)
			removed++
		}
	}
	n := len(c.entries)
	c.mu.Unlock()

	if removed > 0 {
		metrics.AddCacheEvicted(metricName, "sweep", removed)
		c.log.Debug().Int("removed", removed).Int("remaining", n).Msg("expired entries swept")
	}
	metrics.SetCacheEntries(metricName, n)
	return removed
}

func (c *MemoryCache) Clear(_ context.Context) {
	c.mu.Lock()
	c.entries = make(map[string]entry)
	c.mu.Unlock()
	metrics.SetCacheEntries(metricName, 0)
	c.log.Info().Msg("cache cleared")
}

func (c *MemoryCache) Stats(_ context.Context) model.CacheStats {
	c.mu.RLock()
	n := len(c.entries)
	c.mu.RUnlock()
	return model.CacheStats{Entries: int64(n), Hits: c.hits.Load(), Misses: c.misses.Load()}
}
