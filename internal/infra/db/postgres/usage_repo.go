package postgres

import (
	"context"
	"encoding/json"

	"github.com/jackc/pgx/v4/pgxpool"

	"ghostwriter/internal/domain"
	"ghostwriter/internal/domain/model"
	"ghostwriter/internal/domain/ports/repository"
)

var _ repository.UsageRepository = (*UsageRepo)(nil)

type UsageRepo struct {
	pool *pgxpool.Pool
}

func NewUsageRepo(pool *pgxpool.Pool) *UsageRepo {
	return &UsageRepo{pool: pool}
}

// Increment upserts the day row; the tone counter is bumped inside the jsonb map.
func (r *UsageRepo) Increment(ctx context.Context, tx repository.Tx, ev model.UsageEvent) error {
	ex, err := getExecutor(r.pool, tx)
	if err != nil {
		return err
	}
	const q = `
INSERT INTO usage_daily (user_id, day, total_requests, total_tokens_used, total_response_ms, tone_breakdown)
VALUES ($1, $2::date, 1, $3, $4, jsonb_build_object($5::text, 1))
ON CONFLICT (user_id, day) DO UPDATE SET
  total_requests    = usage_daily.total_requests + 1,
  total_tokens_used = usage_daily.total_tokens_used + EXCLUDED.total_tokens_used,
  total_response_ms = usage_daily.total_response_ms + EXCLUDED.total_response_ms,
  tone_breakdown    = usage_daily.tone_breakdown || jsonb_build_object(
                        $5::text, COALESCE((usage_daily.tone_breakdown->>$5::text)::int, 0) + 1);`
	_, err = ex.Exec(ctx, q, ev.UserID, ev.Day(), ev.TokensUsed, ev.ResponseTimeMs, ev.Tone)
	return mapErr("usage_increment", err)
}

func (r *UsageRepo) ListDaily(ctx context.Context, tx repository.Tx, userID, sinceDay string) ([]model.DailyUsage, error) {
	ex, err := getExecutor(r.pool, tx)
	if err != nil {
		return nil, err
	}
	const q = `
SELECT to_char(day, 'YYYY-MM-DD'), total_requests, total_tokens_used, total_response_ms, tone_breakdown::text
  FROM usage_daily
 WHERE user_id::text = $1 AND day >= $2::date
 ORDER BY day;`
	rows, err := ex.Query(ctx, q, userID, sinceDay)
	if err != nil {
		return nil, mapErr("usage_list", err)
	}
	defer rows.Close()

	var out []model.DailyUsage
	for rows.Next() {
		var (
			d     model.DailyUsage
			tones string
		)
		if err := rows.Scan(&d.Day, &d.TotalRequests, &d.TotalTokensUsed, &d.TotalResponseTimeMs, &tones); err != nil {
			return nil, domain.ErrReadDatabaseRow
		}
		if err := json.Unmarshal([]byte(tones), &d.ToneBreakdown); err != nil {
			return nil, domain.ErrReadDatabaseRow
		}
		out = append(out, d)
	}
	return out, mapErr("usage_list", rows.Err())
}
