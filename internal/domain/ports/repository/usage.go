package repository

import (
	"context"

	"ghostwriter/internal/domain/model"
)

type UsageRepository interface {
	// Increment folds ev into the user's aggregate for ev.Day().
	Increment(ctx context.Context, tx Tx, ev model.UsageEvent) error
	// ListDaily returns aggregates for days >= sinceDay (YYYY-MM-DD), oldest first.
	ListDaily(ctx context.Context, tx Tx, userID, sinceDay string) ([]model.DailyUsage, error)
}
