package cache

import (
	"context"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"
)

type memoryEntry struct {
	value     []byte
	expiresAt time.Time
}

// MemoryStore is an in-process Store used in tests and in deployments
// without Redis.
type MemoryStore struct {
	ttls    TTLs
	mu      sync.RWMutex
	entries map[string]memoryEntry
	group   singleflight.Group
}

// NewMemoryStore creates an in-memory store with the given TTLs
func NewMemoryStore(ttls TTLs) *MemoryStore {
	return &MemoryStore{
		ttls:    ttls,
		entries: make(map[string]memoryEntry),
	}
}

// Get returns the value for key if present and unexpired
func (m *MemoryStore) Get(ctx context.Context, key string) ([]byte, bool, error) {
	m.mu.RLock()
	entry, ok := m.entries[key]
	m.mu.RUnlock()
	if !ok {
		return nil, false, nil
	}
	if time.Now().After(entry.expiresAt) {
		m.mu.Lock()
		delete(m.entries, key)
		m.mu.Unlock()
		return nil, false, nil
	}
	return entry.value, true, nil
}

// Set stores value under key with the class TTL. Writes are idempotent
// upserts, so late writers after a client disconnect are harmless.
func (m *MemoryStore) Set(ctx context.Context, key string, value []byte, class TTLClass) error {
	m.mu.Lock()
	m.entries[key] = memoryEntry{value: value, expiresAt: time.Now().Add(m.ttls.For(class))}
	m.mu.Unlock()
	return nil
}

// GetOrCompute returns the cached value or computes it, invoking compute
// at most once per key across concurrent callers.
func (m *MemoryStore) GetOrCompute(ctx context.Context, key string, class TTLClass, compute ComputeFunc) ([]byte, error) {
	if v, ok, _ := m.Get(ctx, key); ok {
		return v, nil
	}
	v, err, _ := m.group.Do(key, func() (interface{}, error) {
		if v, ok, _ := m.Get(ctx, key); ok {
			return v, nil
		}
		value, err := compute(ctx)
		if err != nil {
			return nil, err
		}
		if err := m.Set(ctx, key, value, class); err != nil {
			return nil, err
		}
		return value, nil
	})
	if err != nil {
		return nil, err
	}
	return v.([]byte), nil
}
