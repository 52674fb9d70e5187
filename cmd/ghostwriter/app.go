package main

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/rs/zerolog"

	"ghostwriter/internal/config"
	"ghostwriter/internal/domain/ports/repository"
	pg "ghostwriter/internal/infra/db/postgres"
	"ghostwriter/internal/infra/db/sqlite"
	"ghostwriter/internal/infra/logging"
	"ghostwriter/internal/infra/scheduler"
)

const poolStatsInterval = 30 * time.Second

// stores groups the repositories of whichever database driver is configured.
type stores struct {
	users    repository.UserRepository
	messages repository.MessageRepository
	usage    repository.UsageRepository
	tm       repository.TransactionManager

	stats *scheduler.Scheduler
	close func()
}

// loadConfig reads the config and builds the logger writing to logs.
func loadConfig(opts *rootOptions, logs io.Writer) (*config.Config, *zerolog.Logger, error) {
	cfg, err := config.LoadConfig(opts.configPath, opts.dev)
	if err != nil {
		return nil, nil, err
	}
	return cfg, logging.NewWithWriter(cfg.Log, cfg.Runtime.Dev, logs), nil
}

// openStores connects and migrates the configured database.
func openStores(ctx context.Context, cfg *config.Config, logger *zerolog.Logger) (*stores, error) {
	switch cfg.Database.Driver {
	case "sqlite":
		st, err := sqlite.Open(cfg.Database.SQLitePath)
		if err != nil {
			return nil, fmt.Errorf("sqlite: %w", err)
		}
		if err := st.Migrate(ctx); err != nil {
			_ = st.Close()
			return nil, fmt.Errorf("sqlite migrate: %w", err)
		}
		logger.Info().Str("path", cfg.Database.SQLitePath).Msg("sqlite store ready")
		return &stores{
			users:    st.Users(),
			messages: st.Messages(),
			usage:    st.Usage(),
			tm:       st,
			close:    func() { _ = st.Close() },
		}, nil
	default:
		pool, err := pg.Connect(ctx, cfg.Database)
		if err != nil {
			return nil, fmt.Errorf("postgres: %w", err)
		}
		if err := pg.Migrate(ctx, pool); err != nil {
			pool.Close()
			return nil, fmt.Errorf("postgres migrate: %w", err)
		}
		logger.Info().Int32("max_conns", cfg.Database.MaxConns).Msg("postgres pool ready")
		return &stores{
			users:    pg.NewUserRepo(pool),
			messages: pg.NewMessageRepo(pool),
			usage:    pg.NewUsageRepo(pool),
			tm:       pg.NewTxManager(pool),
			stats:    scheduler.NewScheduler("pg_pool_stats", poolStatsInterval, pg.PoolStatsJob(pool, logger), logger),
			close:    pool.Close,
		}, nil
	}
}
