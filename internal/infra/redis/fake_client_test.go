package redis

import (
	"context"
	"errors"
	"fmt"
	"path"
	"sync"
	"time"
)

// memClient is an in-memory RedisClient for tests.
type memClient struct {
	mu   sync.Mutex
	vals map[string]string
	ttl  map[string]time.Duration
	err  error
}

func newMemClient() *memClient {
	return &memClient{vals: map[string]string{}, ttl: map[string]time.Duration{}}
}

func (m *memClient) Ping(context.Context) error { return m.err }

func (m *memClient) Set(_ context.Context, key string, value interface{}, exp time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	switch v := value.(type) {
	case []byte:
		m.vals[key] = string(v)
	default:
		m.vals[key] = fmt.Sprint(v)
	}
	m.ttl[key] = exp
	return nil
}

func (m *memClient) Get(_ context.Context, key string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return "", m.err
	}
	v, ok := m.vals[key]
	if !ok {
		return "", Nil
	}
	return v, nil
}

func (m *memClient) Incr(_ context.Context, key string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return 0, m.err
	}
	var n int64
	fmt.Sscan(m.vals[key], &n)
	n++
	m.vals[key] = fmt.Sprint(n)
	return n, nil
}

func (m *memClient) Expire(_ context.Context, key string, exp time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ttl[key] = exp
	return m.err
}

func (m *memClient) Del(_ context.Context, keys ...string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	for _, k := range keys {
		delete(m.vals, k)
		delete(m.ttl, k)
	}
	return nil
}

func (m *memClient) Keys(_ context.Context, pattern string) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	var out []string
	for k := range m.vals {
		if ok, _ := path.Match(pattern, k); ok {
			out = append(out, k)
		}
	}
	return out, nil
}

func (m *memClient) Close() error { return nil }

var errDown = errors.New("redis down")
