package pricecache

import (
	"context"
	"sync"

	"github.com/Amitava-Data-Science-lab/deposit-saver/internal/domain"
)

// MemoryStore is a map-backed Store for development and tests.
type MemoryStore struct {
	mu      sync.RWMutex
	entries map[string]Entry
}

// NewMemoryStore returns an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{entries: make(map[string]Entry)}
}

func copyOptions(options []domain.PriceOption) []domain.PriceOption {
	if options == nil {
		return nil
	}
	out := make([]domain.PriceOption, len(options))
	copy(out, options)
	return out
}

// Get returns the stored entry for key. The option slice is copied so callers
// cannot mutate the cached value.
func (m *MemoryStore) Get(ctx context.Context, key string) (Entry, bool, error) {
	if err := ctx.Err(); err != nil {
		return Entry{}, false, err
	}

	m.mu.RLock()
	defer m.mu.RUnlock()
	entry, ok := m.entries[key]
	if !ok {
		return Entry{}, false, nil
	}
	entry.Options = copyOptions(entry.Options)
	return entry, true, nil
}

// Put stores the entry for key, replacing any existing value.
func (m *MemoryStore) Put(ctx context.Context, key string, entry Entry) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	entry.Options = copyOptions(entry.Options)
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries[key] = entry
	return nil
}

// Ping always succeeds for the in-memory backend.
func (m *MemoryStore) Ping(ctx context.Context) error {
	return ctx.Err()
}

// Len reports the number of stored entries.
func (m *MemoryStore) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.entries)
}
