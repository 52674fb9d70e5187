package adapter

import (
	"context"

	"ghostwriter/internal/domain/model"
)

// Completion is the raw text of one provider call plus its token usage.
// UsageReported is false when TokensUsed is the adapter's fixed estimate.
type Completion struct {
	Text          string
	TokensUsed    int
	UsageReported bool
}

// ProviderAdapter is the port for a single external text-generation service.
// Implementations return *domain.ProviderError on failure.
type ProviderAdapter interface {
	Name() string
	Invoke(ctx context.Context, prompt string) (Completion, error)
}

// UsageRecorder receives analytics for every served suggestion request.
// Callers treat it as fire-and-forget.
type UsageRecorder interface {
	Record(ctx context.Context, ev model.UsageEvent) error
}
