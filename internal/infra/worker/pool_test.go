package worker

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

func newLogger() *zerolog.Logger {
	l := zerolog.Nop()
	return &l
}

func TestPoolRunsTasks(t *testing.T) {
	p := NewPool(2, newLogger())
	p.Start(context.Background())

	var n int32
	done := make(chan struct{}, 5)
	for i := 0; i < 5; i++ {
		if err := p.Submit(func(ctx context.Context) error {
			atomic.AddInt32(&n, 1)
			done <- struct{}{}
			return nil
		}); err != nil {
			t.Fatalf("submit: %v", err)
		}
	}
	for i := 0; i < 5; i++ {
		select {
		case <-done:
		case <-time.After(2 * time.Second):
			t.Fatal("timed out waiting for tasks")
		}
	}
	p.Stop()
	if got := atomic.LoadInt32(&n); got != 5 {
		t.Fatalf("ran %d tasks, want 5", got)
	}
}

func TestPoolFailingTaskDoesNotStopWorkers(t *testing.T) {
	p := NewPool(1, newLogger())
	p.Start(context.Background())
	defer p.Stop()

	_ = p.Submit(func(ctx context.Context) error { return errors.New("boom") })
	ok := make(chan struct{})
	_ = p.Submit(func(ctx context.Context) error { close(ok); return nil })
	select {
	case <-ok:
	case <-time.After(2 * time.Second):
		t.Fatal("second task never ran")
	}
}

func TestPoolSubmitAfterStop(t *testing.T) {
	p := NewPool(1, newLogger())
	p.Start(context.Background())
	p.Stop()
	p.Stop()
	if err := p.Submit(func(ctx context.Context) error { return nil }); !errors.Is(err, ErrStopped) {
		t.Fatalf("got %v, want ErrStopped", err)
	}
	if err := p.Submit(nil); err == nil {
		t.Fatal("nil task should be rejected")
	}
}

func TestPoolQueueFull(t *testing.T) {
	p := NewPool(1, newLogger()) // not started: nothing consumes the queue
	var err error
	for i := 0; i < 10 && err == nil; i++ {
		err = p.Submit(func(ctx context.Context) error { return nil })
	}
	if !errors.Is(err, ErrQueueFull) {
		t.Fatalf("got %v, want ErrQueueFull", err)
	}
}
