package sqlite

import (
	"context"
	"database/sql"

	"ghostwriter/internal/domain"
	"ghostwriter/internal/domain/model"
	"ghostwriter/internal/domain/ports/repository"
)

var _ repository.UsageRepository = (*UsageRepo)(nil)

type UsageRepo struct {
	db *sql.DB
}

// Increment touches two tables; without a caller tx it opens its own.
func (r *UsageRepo) Increment(ctx context.Context, tx repository.Tx, ev model.UsageEvent) error {
	if tx == nil {
		sqlTx, err := r.db.BeginTx(ctx, nil)
		if err != nil {
			return mapErr("usage_increment", err)
		}
		defer func() { _ = sqlTx.Rollback() }()
		if err := r.increment(ctx, sqlTx, ev); err != nil {
			return err
		}
		return mapErr("usage_increment", sqlTx.Commit())
	}
	ex, err := getExecutor(r.db, tx)
	if err != nil {
		return err
	}
	return r.increment(ctx, ex, ev)
}

func (r *UsageRepo) increment(ctx context.Context, ex executor, ev model.UsageEvent) error {
	day := ev.Day()
	_, err := ex.ExecContext(ctx, `
INSERT INTO usage_daily (user_id, day, total_requests, total_tokens_used, total_response_ms)
VALUES (?, ?, 1, ?, ?)
ON CONFLICT (user_id, day) DO UPDATE SET
	total_requests    = total_requests + 1,
	total_tokens_used = total_tokens_used + excluded.total_tokens_used,
	total_response_ms = total_response_ms + excluded.total_response_ms`,
		ev.UserID, day, ev.TokensUsed, ev.ResponseTimeMs)
	if err != nil {
		return mapErr("usage_increment", err)
	}
	_, err = ex.ExecContext(ctx, `
INSERT INTO usage_tones (user_id, day, tone, count) VALUES (?, ?, ?, 1)
ON CONFLICT (user_id, day, tone) DO UPDATE SET count = count + 1`,
		ev.UserID, day, ev.Tone)
	return mapErr("usage_increment", err)
}

func (r *UsageRepo) ListDaily(ctx context.Context, tx repository.Tx, userID, sinceDay string) ([]model.DailyUsage, error) {
	ex, err := getExecutor(r.db, tx)
	if err != nil {
		return nil, err
	}
	rows, err := ex.QueryContext(ctx, `
SELECT day, total_requests, total_tokens_used, total_response_ms
  FROM usage_daily
 WHERE user_id = ? AND day >= ?
 ORDER BY day`, userID, sinceDay)
	if err != nil {
		return nil, mapErr("usage_list", err)
	}
	var out []model.DailyUsage
	index := map[string]int{}
	for rows.Next() {
		d := model.DailyUsage{ToneBreakdown: map[string]int{}}
		if err := rows.Scan(&d.Day, &d.TotalRequests, &d.TotalTokensUsed, &d.TotalResponseTimeMs); err != nil {
			rows.Close()
			return nil, domain.ErrReadDatabaseRow
		}
		index[d.Day] = len(out)
		out = append(out, d)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, mapErr("usage_list", err)
	}

	tones, err := ex.QueryContext(ctx, `
SELECT day, tone, count FROM usage_tones WHERE user_id = ? AND day >= ?`, userID, sinceDay)
	if err != nil {
		return nil, mapErr("usage_list", err)
	}
	defer tones.Close()
	for tones.Next() {
		var (
			day, tone string
			n         int
		)
		if err := tones.Scan(&day, &tone, &n); err != nil {
			return nil, domain.ErrReadDatabaseRow
		}
		if i, ok := index[day]; ok {
			out[i].ToneBreakdown[tone] = n
		}
	}
	return out, mapErr("usage_list", tones.Err())
}
