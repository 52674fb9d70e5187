// File: internal/usecase/usage_uc.go
package usecase

import (
	"context"

	"ghostwriter/internal/domain"
	"ghostwriter/internal/domain/model"
	"ghostwriter/internal/domain/ports/adapter"
	"ghostwriter/internal/domain/ports/repository"
)

var _ adapter.UsageRecorder = (*usageRecorder)(nil)

// usageRecorder folds suggestion events into per-user daily aggregates.
type usageRecorder struct {
	repo repository.UsageRepository
}

func NewUsageRecorder(repo repository.UsageRepository) *usageRecorder {
	return &usageRecorder{repo: repo}
}

func (r *usageRecorder) Record(ctx context.Context, ev model.UsageEvent) error {
	if ev.UserID == "" || ev.Tone == "" || ev.TokensUsed < 0 {
		return domain.ErrInvalidArgument
	}
	return r.repo.Increment(ctx, repository.NoTX, ev)
}
