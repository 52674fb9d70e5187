package repository

import (
	"context"
	"sync"
)

type Tx interface{}

var NoTX interface{}

// TransactionManager runs fn inside a storage transaction and passes the
// backend's tx handle (pgx.Tx, *sql.Tx) through as Tx.
// Repositories MUST accept a nil Tx (non-transactional path).
// Implementations run the OnCommit callbacks registered by fn after a
// successful commit and drop them on rollback.
type TransactionManager interface {
	WithTx(ctx context.Context, fn func(ctx context.Context, tx Tx) error) error
}

type commitHooksKey struct{}

type commitHooks struct {
	mu  sync.Mutex
	fns []func(context.Context)
}

// WithCommitHooks returns a context that collects OnCommit callbacks and
// the function that runs them. TransactionManagers call run after Commit.
func WithCommitHooks(ctx context.Context) (context.Context, func(context.Context)) {
	h := &commitHooks{}
	run := func(ctx context.Context) {
		h.mu.Lock()
		fns := h.fns
		h.fns = nil
		h.mu.Unlock()
		for _, fn := range fns {
			fn(ctx)
		}
	}
	return context.WithValue(ctx, commitHooksKey{}, h), run
}

// OnCommit defers fn until the transaction carried by ctx commits. Outside
// WithTx there is nothing to wait for and fn runs at once.
func OnCommit(ctx context.Context, fn func(context.Context)) {
	h, ok := ctx.Value(commitHooksKey{}).(*commitHooks)
	if !ok {
		fn(ctx)
		return
	}
	h.mu.Lock()
	h.fns = append(h.fns, fn)
	h.mu.Unlock()
}
