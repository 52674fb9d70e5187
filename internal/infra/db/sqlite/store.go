// Package sqlite is the single-file storage driver for local development and
// the CLI. It implements the same repositories as the postgres package.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"ghostwriter/internal/domain"
	"ghostwriter/internal/domain/ports/repository"
	"ghostwriter/internal/infra/metrics"
)

const driverName = "sqlite"

const schema = `
CREATE TABLE IF NOT EXISTS users (
	id                TEXT PRIMARY KEY,
	email             TEXT NOT NULL UNIQUE,
	display_name      TEXT NOT NULL,
	password_hash     TEXT NOT NULL,
	total_messages    INTEGER NOT NULL DEFAULT 0,
	total_tokens_used INTEGER NOT NULL DEFAULT 0,
	subscription_tier TEXT NOT NULL DEFAULT 'free',
	created_at        TEXT NOT NULL,
	updated_at        TEXT NOT NULL
);
CREATE TABLE IF NOT EXISTS messages (
	id                  TEXT PRIMARY KEY,
	user_id             TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
	original_message    TEXT NOT NULL,
	tone                TEXT NOT NULL,
	suggestions         TEXT NOT NULL DEFAULT '[]',
	selected_suggestion TEXT NOT NULL DEFAULT '',
	tokens_used         INTEGER NOT NULL DEFAULT 0,
	cached              INTEGER NOT NULL DEFAULT 0,
	created_at          TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_messages_user_created ON messages(user_id, created_at);
CREATE TABLE IF NOT EXISTS usage_daily (
	user_id           TEXT NOT NULL,
	day               TEXT NOT NULL,
	total_requests    INTEGER NOT NULL DEFAULT 0,
	total_tokens_used INTEGER NOT NULL DEFAULT 0,
	total_response_ms INTEGER NOT NULL DEFAULT 0,
	PRIMARY KEY (user_id, day)
);
CREATE TABLE IF NOT EXISTS usage_tones (
	user_id TEXT NOT NULL,
	day     TEXT NOT NULL,
	tone    TEXT NOT NULL,
	count   INTEGER NOT NULL DEFAULT 0,
	PRIMARY KEY (user_id, day, tone)
);
`

// Store owns the database handle and hands out repositories bound to it.
type Store struct {
	db *sql.DB
}

var _ repository.TransactionManager = (*Store)(nil)

// Open creates or opens the database at path and applies the schema.
// Use ":memory:" for a throwaway store.
func Open(path string) (*Store, error) {
	dsn := path + "?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	// one writer; also keeps ":memory:" on a single connection
	db.SetMaxOpenConns(1)
	s := &Store{db: db}
	if err := s.Migrate(context.Background()); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

func (s *Store) Migrate(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("migrate sqlite db: %w", err)
	}
	return nil
}

func (s *Store) Close() error { return s.db.Close() }

func (s *Store) Users() *UserRepo { return &UserRepo{db: s.db} }
func (s *Store) Messages() *MessageRepo { return &MessageRepo{db: s.db} }
func (s *Store) Usage() *UsageRepo { return &UsageRepo{db: s.db} }

// WithTx commits when fn returns nil and rolls back otherwise.
// Repositories receive the *sql.Tx as repository.Tx.
func (s *Store) WithTx(ctx context.Context, fn func(ctx context.Context, tx repository.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	hctx, runHooks := repository.WithCommitHooks(ctx)
	if err := fn(hctx, tx); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return err
	}
	runHooks(ctx)
	return nil
}

type executor interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func getExecutor(db *sql.DB, tx repository.Tx) (executor, error) {
	switch v := tx.(type) {
	case *sql.Tx:
		return v, nil
	case nil:
		return db, nil
	default:
		return nil, domain.ErrInvalidExecContext
	}
}

func mapErr(op string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, sql.ErrNoRows) {
		return domain.ErrNotFound
	}
	if strings.Contains(err.Error(), "UNIQUE constraint failed") {
		return domain.ErrAlreadyExists
	}
	metrics.IncDBError(driverName, op)
	return err
}

// timeLayout is fixed width so stored timestamps sort as text.
const timeLayout = "2006-01-02T15:04:05.000000000Z"

func formatTime(t time.Time) string { return t.UTC().Format(timeLayout) }

func parseTime(s string) time.Time {
	t, _ := time.Parse(time.RFC3339Nano, s)
	return t
}
