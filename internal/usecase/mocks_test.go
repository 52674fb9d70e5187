// File: internal/usecase/mocks_test.go
package usecase

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"ghostwriter/internal/domain"
	"ghostwriter/internal/domain/model"
	"ghostwriter/internal/domain/ports/adapter"
	"ghostwriter/internal/domain/ports/repository"
	"ghostwriter/internal/infra/worker"
)

func newTestLogger() *zerolog.Logger {
	l := zerolog.Nop()
	return &l
}

// ---- providers ----

type scriptedProvider struct {
	name  string
	text  string
	usage int
	err   error
	calls int
	block bool // wait for ctx cancellation
	mu    sync.Mutex
}

func (p *scriptedProvider) Name() string { return p.name }

func (p *scriptedProvider) Invoke(ctx context.Context, _ string) (adapter.Completion, error) {
	p.mu.Lock()
	p.calls++
	p.mu.Unlock()
	if p.block {
		<-ctx.Done()
		return adapter.Completion{}, &domain.ProviderError{Provider: p.name, Kind: domain.ProviderErrTransport, Err: ctx.Err()}
	}
	if p.err != nil {
		return adapter.Completion{}, p.err
	}
	return adapter.Completion{Text: p.text, TokensUsed: p.usage, UsageReported: true}, nil
}

func (p *scriptedProvider) Calls() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.calls
}

func netErr(name string) error {
	return &domain.ProviderError{Provider: name, Kind: domain.ProviderErrTransport, Err: context.DeadlineExceeded}
}

const goodText = "Here you go:\nSuggestion 1: Sure, what time works?\nSuggestion 2: Of course, let's find a new slot.\nSuggestion 3: No problem, when suits you?"

// ---- cache ----

type memCache struct {
	mu      sync.Mutex
	entries map[string][]string
	sets    int
}

func newMemCache() *memCache { return &memCache{entries: map[string][]string{}} }

func (c *memCache) key(m, t string) string { return m + "\x00" + t }

func (c *memCache) Get(_ context.Context, m, t string) ([]string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	v, ok := c.entries[c.key(m, t)]
	if !ok {
		return nil, false
	}
	out := append([]string(nil), v...)
	return out, true
}

func (c *memCache) Set(_ context.Context, m, t string, s []string, _ time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.sets++
	c.entries[c.key(m, t)] = append([]string(nil), s...)
}

func (c *memCache) Cleanup(context.Context) int { return 0 }

func (c *memCache) Clear(context.Context) {
	c.mu.Lock()
	c.entries = map[string][]string{}
	c.mu.Unlock()
}

func (c *memCache) Stats(context.Context) model.CacheStats {
	c.mu.Lock()
	defer c.mu.Unlock()
	return model.CacheStats{Entries: int64(len(c.entries))}
}

// ---- usage ----

type recordingUsage struct {
	mu     sync.Mutex
	events []model.UsageEvent
	err    error
}

func (r *recordingUsage) Record(_ context.Context, ev model.UsageEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, ev)
	return r.err
}

// inlineTasks runs submitted tasks synchronously.
type inlineTasks struct{ err error }

func (i inlineTasks) Submit(task worker.Task) error {
	if i.err != nil {
		return i.err
	}
	return task(context.Background())
}

// ---- repositories ----

type memUserRepo struct {
	mu     sync.RWMutex
	byID   map[string]*model.User
	addErr error
}

func newMemUserRepo() *memUserRepo { return &memUserRepo{byID: map[string]*model.User{}} }

func (m *memUserRepo) Create(_ context.Context, _ repository.Tx, u *model.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, e := range m.byID {
		if e.Email == u.Email {
			return domain.ErrAlreadyExists
		}
	}
	cp := *u
	m.byID[u.ID] = &cp
	return nil
}

func (m *memUserRepo) FindByID(_ context.Context, _ repository.Tx, id string) (*model.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	u, ok := m.byID[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (m *memUserRepo) FindByEmail(_ context.Context, _ repository.Tx, email string) (*model.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, u := range m.byID {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (m *memUserRepo) AddUsage(_ context.Context, _ repository.Tx, id string, messages, tokens int) error {
	if m.addErr != nil {
		return m.addErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.byID[id]
	if !ok {
		return domain.ErrNotFound
	}
	u.TotalMessages += messages
	u.TotalTokensUsed += tokens
	return nil
}

type memMessageRepo struct {
	mu   sync.Mutex
	rows []*model.Message
}

func (m *memMessageRepo) Save(_ context.Context, _ repository.Tx, msg *model.Message) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *msg
	m.rows = append(m.rows, &cp)
	return nil
}

func (m *memMessageRepo) ListByUser(_ context.Context, _ repository.Tx, userID string, offset, limit int) ([]*model.Message, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var mine []*model.Message
	for i := len(m.rows) - 1; i >= 0; i-- {
		if m.rows[i].UserID == userID {
			cp := *m.rows[i]
			mine = append(mine, &cp)
		}
	}
	if offset >= len(mine) {
		return nil, nil
	}
	mine = mine[offset:]
	if len(mine) > limit {
		mine = mine[:limit]
	}
	return mine, nil
}

func (m *memMessageRepo) Delete(_ context.Context, _ repository.Tx, userID, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, r := range m.rows {
		if r.ID == id && r.UserID == userID {
			m.rows = append(m.rows[:i], m.rows[i+1:]...)
			return nil
		}
	}
	return domain.ErrNotFound
}

// txManager runs fn directly; rollbacks counts failed transactions.
type txManager struct{ rollbacks int }

func (t *txManager) WithTx(ctx context.Context, fn func(ctx context.Context, tx repository.Tx) error) error {
	if err := fn(ctx, nil); err != nil {
		t.rollbacks++
		return err
	}
	return nil
}

type memUsageRepo struct {
	mu   sync.Mutex
	days map[string]map[string]*model.DailyUsage // user -> day -> agg
}

func newMemUsageRepo() *memUsageRepo {
	return &memUsageRepo{days: map[string]map[string]*model.DailyUsage{}}
}

func (m *memUsageRepo) Increment(_ context.Context, _ repository.Tx, ev model.UsageEvent) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	byDay := m.days[ev.UserID]
	if byDay == nil {
		byDay = map[string]*model.DailyUsage{}
		m.days[ev.UserID] = byDay
	}
	d := byDay[ev.Day()]
	if d == nil {
		d = &model.DailyUsage{Day: ev.Day(), ToneBreakdown: map[string]int{}}
		byDay[ev.Day()] = d
	}
	d.TotalRequests++
	d.TotalTokensUsed += ev.TokensUsed
	d.TotalResponseTimeMs += ev.ResponseTimeMs
	d.ToneBreakdown[ev.Tone]++
	return nil
}

func (m *memUsageRepo) ListDaily(_ context.Context, _ repository.Tx, userID, since string) ([]model.DailyUsage, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []model.DailyUsage
	for day, d := range m.days[userID] {
		if day >= since {
			out = append(out, *d)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Day < out[j].Day })
	return out, nil
}
