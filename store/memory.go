package store

import (
	"context"
	"sync"
	"time"
)

var _ Store = &Memory{}

type memoryEntry struct {
	value     string
	expiresAt time.Time
}

// Memory is an in-process Store backed by a map. It is safe for concurrent
// use and intended for tests and single-instance deployments.
//
// Expired entries are evicted lazily on read; there is no background
// cleanup goroutine.
type Memory struct {
	mu      sync.Mutex
	now     func() time.Time
	entries map[string]memoryEntry
}

// NewMemory creates an empty in-memory store. Passing nil uses time.Now;
// tests inject a fixed clock instead.
func NewMemory(now func() time.Time) *Memory {
	if now == nil {
		now = time.Now
	}
	return &Memory{
		now:     now,
		entries: make(map[string]memoryEntry),
	}
}

// Get returns the stored value for key, treating expired entries as absent.
func (m *Memory) Get(ctx context.Context, key string) (string, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	e, ok := m.entries[key]
	if !ok {
		return "", false, nil
	}
	if m.now().After(e.expiresAt) {
		delete(m.entries, key)
		return "", false, nil
	}
	return e.value, true, nil
}

// SetWithTTL overwrites the value for key and refreshes its expiry.
func (m *Memory) SetWithTTL(ctx context.Context, key, value string, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.entries[key] = memoryEntry{
		value:     value,
		expiresAt: m.now().Add(ttl),
	}
	return nil
}
