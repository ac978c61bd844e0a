package pricecache

import (
	"context"
	"log/slog"
	"time"

	"github.com/Amitava-Data-Science-lab/deposit-saver/internal/domain"
)

// Entry is one cached lookup result. Entries are immutable once written; a
// new write for the same key replaces the prior entry wholesale.
type Entry struct {
	Options   []domain.PriceOption `json:"options"`
	WrittenAt time.Time            `json:"written_at"`
}

// Store is the key-value backend contract. Implementations live in
// internal/store (SQLite, Redis) and in this package (in-memory).
type Store interface {
	// Get returns the entry for key and whether it exists.
	Get(ctx context.Context, key string) (Entry, bool, error)

	// Put writes the entry for key, replacing any prior value.
	Put(ctx context.Context, key string, entry Entry) error

	// Ping reports whether the backend is reachable.
	Ping(ctx context.Context) error
}

// Cache wraps a Store with a per-operation timeout and an optional entry TTL.
// A TTL of zero means entries never expire, which is the baseline behavior.
type Cache struct {
	store     Store
	opTimeout time.Duration
	ttl       time.Duration
}

// New builds a cache over the given store. opTimeout bounds every backend
// call; ttl of zero disables expiry.
func New(store Store, opTimeout, ttl time.Duration) *Cache {
	return &Cache{store: store, opTimeout: opTimeout, ttl: ttl}
}

// Get returns the cached entry for key. Backend errors and timeouts are
// logged and reported as a miss so a cache outage only costs a recompute.
func (c *Cache) Get(ctx context.Context, key string) (Entry, bool) {
	ctx, cancel := context.WithTimeout(ctx, c.opTimeout)
	defer cancel()

	entry, ok, err := c.store.Get(ctx, key)
	if err != nil {
		slog.Warn("Cache read failed, treating as miss", "key", key, "error", err)
		return Entry{}, false
	}
	if !ok {
		return Entry{}, false
	}
	if c.ttl > 0 && time.Since(entry.WrittenAt) > c.ttl {
		slog.Debug("Cache entry expired", "key", key, "written_at", entry.WrittenAt)
		return Entry{}, false
	}
	return entry, true
}

// Put writes an entry for key, stamping the write time if unset. The error is
// returned so the caller can log and swallow it; a failed cache write must
// never fail the operation that produced the data.
func (c *Cache) Put(ctx context.Context, key string, entry Entry) error {
	ctx, cancel := context.WithTimeout(ctx, c.opTimeout)
	defer cancel()

	if entry.WrittenAt.IsZero() {
		entry.WrittenAt = time.Now().UTC()
	}
	return c.store.Put(ctx, key, entry)
}

// Ping reports backend reachability for health checks.
func (c *Cache) Ping(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, c.opTimeout)
	defer cancel()
	return c.store.Ping(ctx)
}
