package redis

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/rs/zerolog"

	"ghostwriter/internal/domain/model"
	"ghostwriter/internal/domain/ports/repository"
	"ghostwriter/internal/infra/metrics"
)

var _ repository.UserRepository = (*userRepoCache)(nil)

const userKeyPrefix = "user:id:"

// cachedUser keeps the password hash, which model.User hides from JSON.
type cachedUser struct {
	model.User
	Hash string `json:"h"`
}

// userRepoCache serves FindByID from Redis. Writes go to inner and drop the key.
type userRepoCache struct {
	inner repository.UserRepository
	cache RedisClient
	ttl   time.Duration
	log   *zerolog.Logger
}

func NewUserRepoCache(inner repository.UserRepository, cache RedisClient, ttl time.Duration, logger *zerolog.Logger) repository.UserRepository {
	if ttl <= 0 {
		ttl = time.Hour
	}
	l := logger.With().Str("component", "user_cache").Logger()
	return &userRepoCache{inner: inner, cache: cache, ttl: ttl, log: &l}
}

func (d *userRepoCache) Create(ctx context.Context, tx repository.Tx, u *model.User) error {
	return d.inner.Create(ctx, tx, u)
}

func (d *userRepoCache) FindByID(ctx context.Context, tx repository.Tx, id string) (*model.User, error) {
	key := userKeyPrefix + id
	val, err := d.cache.Get(ctx, key)
	if err == nil {
		var cu cachedUser
		if json.Unmarshal([]byte(val), &cu) == nil {
			metrics.IncCacheRequest("user", "hit")
			u := cu.User
			u.PasswordHash = cu.Hash
			return &u, nil
		}
	} else if !errors.Is(err, Nil) {
		d.log.Warn().Err(err).Msg("redis get failed")
	}

	metrics.IncCacheRequest("user", "miss")
	u, err := d.inner.FindByID(ctx, tx, id)
	if err != nil {
		return nil, err
	}
	if b, err := json.Marshal(cachedUser{User: *u, Hash: u.PasswordHash}); err == nil {
		_ = d.cache.Set(ctx, key, b, d.ttl)
	}
	return u, nil
}

func (d *userRepoCache) FindByEmail(ctx context.Context, tx repository.Tx, email string) (*model.User, error) {
	return d.inner.FindByEmail(ctx, tx, email)
}

// AddUsage drops the cached user once the write is visible: after commit
// when tx belongs to a TransactionManager, immediately otherwise.
func (d *userRepoCache) AddUsage(ctx context.Context, tx repository.Tx, id string, messages, tokens int) error {
	if err := d.inner.AddUsage(ctx, tx, id, messages, tokens); err != nil {
		return err
	}
	repository.OnCommit(ctx, func(ctx context.Context) {
		if err := d.cache.Del(ctx, userKeyPrefix+id); err != nil {
			d.log.Warn().Err(err).Str("user_id", id).Msg("redis invalidate failed")
		}
	})
	return nil
}
