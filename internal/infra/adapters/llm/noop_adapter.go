package llm

import (
	"context"
	"fmt"
	"strings"
	"time"

	"ghostwriter/internal/domain/ports/adapter"
)

var _ adapter.ProviderAdapter = (*NoopAdapter)(nil)

// NoopAdapter is a local/dev provider: no network, always well-formed output.
type NoopAdapter struct {
	name  string
	delay time.Duration
}

func NewNoopAdapter(name string) *NoopAdapter {
	if name == "" {
		name = "noop"
	}
	return &NoopAdapter{name: name, delay: 50 * time.Millisecond}
}

func (a *NoopAdapter) Name() string { return a.name }

func (a *NoopAdapter) Invoke(ctx context.Context, prompt string) (adapter.Completion, error) {
	select {
	case <-time.After(a.delay):
	case <-ctx.Done():
		return adapter.Completion{}, transportErr(a.name, ctx.Err())
	}
	tone := "friendly"
	for _, line := range strings.Split(prompt, "\n") {
		if v, ok := strings.CutPrefix(line, "Desired tone: "); ok {
			tone = strings.TrimSpace(v)
			break
		}
	}
	var b strings.Builder
	for i := 1; i <= 3; i++ {
		fmt.Fprintf(&b, "Suggestion %d: (%s draft #%d) Thanks for the message!\n", i, tone, i)
	}
	// nothing is metered here, so the count is an estimate
	return adapter.Completion{Text: b.String(), TokensUsed: len(prompt) / 4, UsageReported: false}, nil
}
