package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/rs/zerolog"

	"ghostwriter/internal/config"
	"ghostwriter/internal/infra/metrics"
)

const driverName = "postgres"

// Connect opens a pgx pool for cfg.URL and verifies it with a ping.
func Connect(ctx context.Context, cfg config.DatabaseConfig) (*pgxpool.Pool, error) {
	if cfg.URL == "" {
		return nil, errors.New("database.url is required for the postgres driver")
	}
	pc, err := pgxpool.ParseConfig(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("parse database url: %w", err)
	}
	if cfg.MaxConns > 0 {
		pc.MaxConns = cfg.MaxConns
	}

	cctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	pool, err := pgxpool.ConnectConfig(cctx, pc)
	if err != nil {
		return nil, fmt.Errorf("pgxpool.Connect: %w", err)
	}
	if err := pool.Ping(cctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	return pool, nil
}

// ReportPoolStats publishes pool gauges. Run it from a scheduler job.
func ReportPoolStats(pool *pgxpool.Pool) {
	st := pool.Stat()
	metrics.SetDBPoolStats(driverName, st.TotalConns(), st.IdleConns(), st.AcquiredConns())
}

// PoolStatsJob adapts ReportPoolStats to the scheduler's job signature.
func PoolStatsJob(pool *pgxpool.Pool, logger *zerolog.Logger) func(context.Context) (int, error) {
	return func(context.Context) (int, error) {
		ReportPoolStats(pool)
		logger.Trace().Int32("total", pool.Stat().TotalConns()).Msg("pool stats reported")
		return 1, nil
	}
}
