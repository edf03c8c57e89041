package store

import (
	"context"
	"sync"
	"time"

	"github.com/serroba/sentinel/internal/ratelimit"
)

// MemoryStore is an in-memory implementation of ratelimit.Store.
type MemoryStore struct {
	mu       sync.RWMutex
	counters map[string]ratelimit.Counter
}

// NewMemoryStore creates a new in-memory counter store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		counters: make(map[string]ratelimit.Counter),
	}
}

func (m *MemoryStore) Get(_ context.Context, key string) (ratelimit.Counter, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	c, ok := m.counters[key]

	return c, ok, nil
}

func (m *MemoryStore) Put(_ context.Context, key string, counter ratelimit.Counter) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.counters[key] = counter

	return nil
}

func (m *MemoryStore) TryAdd(_ context.Context, key string, counter ratelimit.Counter) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.counters[key]; ok {
		return false, nil
	}

	m.counters[key] = counter

	return true, nil
}

// DeleteExpired removes every counter whose window closed at or before before.
// It returns the number of counters removed.
func (m *MemoryStore) DeleteExpired(_ context.Context, before time.Time) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var removed int64

	for key, c := range m.counters {
		if !c.Active(before) {
			delete(m.counters, key)

			removed++
		}
	}

	return removed, nil
}

// Len returns the number of stored counters.
func (m *MemoryStore) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return len(m.counters)
}

// Compile-time check.
var _ ratelimit.Store = (*MemoryStore)(nil)
