package storage

import (
	"context"
	"sync"
)

// Memory is an in-process store. A positive quota limits the total number
// of bytes held across keys and values.
type Memory struct {
	mu     sync.RWMutex
	items  map[string]string
	quota  int
	closed bool
}

// MemoryOption configures a Memory store.
type MemoryOption func(*Memory)

// WithQuota limits the total stored bytes.
func WithQuota(bytes int) MemoryOption {
	return func(m *Memory) {
		m.quota = bytes
	}
}

// NewMemory creates an empty in-memory store.
func NewMemory(opts ...MemoryOption) *Memory {
	m := &Memory{items: make(map[string]string)}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Get implements KV.
func (m *Memory) Get(_ context.Context, key string) (string, bool, error) {
	if err := checkKey("get", key); err != nil {
		return "", false, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.closed {
		return "", false, wrap("get", key, ErrClosed)
	}
	v, ok := m.items[key]
	return v, ok, nil
}

// Set implements KV.
func (m *Memory) Set(_ context.Context, key, value string) error {
	if err := checkKey("set", key); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return wrap("set", key, ErrClosed)
	}
	if m.quota > 0 {
		used := 0
		for k, v := range m.items {
			if k != key {
				used += len(k) + len(v)
			}
		}
		if used+len(key)+len(value) > m.quota {
			return wrap("set", key, ErrQuotaExceeded)
		}
	}
	m.items[key] = value
	return nil
}

// Remove implements KV.
func (m *Memory) Remove(_ context.Context, key string) error {
	if err := checkKey("remove", key); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return wrap("remove", key, ErrClosed)
	}
	delete(m.items, key)
	return nil
}

// Close implements KV.
func (m *Memory) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	return nil
}
