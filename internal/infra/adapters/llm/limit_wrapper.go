package llm

import (
	"context"

	"ghostwriter/internal/domain/ports/adapter"
)

// Compile-time check
var _ adapter.ProviderAdapter = (*limitedProvider)(nil)

type limitedProvider struct {
	inner adapter.ProviderAdapter
	sem   chan struct{}
}

// NewLimited bounds in-flight calls to inner. Waiting for a slot respects ctx.
func NewLimited(inner adapter.ProviderAdapter, maxConcurrent int) adapter.ProviderAdapter {
	if maxConcurrent <= 0 {
		return inner
	}
	return &limitedProvider{
		inner: inner,
		sem:   make(chan struct{}, maxConcurrent),
	}
}

func (l *limitedProvider) Name() string { return l.inner.Name() }

func (l *limitedProvider) Invoke(ctx context.Context, prompt string) (adapter.Completion, error) {
	select {
	case l.sem <- struct{}{}:
	case <-ctx.Done():
		return adapter.Completion{}, transportErr(l.inner.Name(), ctx.Err())
	}
	defer func() { <-l.sem }()
	return l.inner.Invoke(ctx, prompt)
}
