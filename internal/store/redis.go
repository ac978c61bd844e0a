package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/Amitava-Data-Science-lab/deposit-saver/internal/pricecache"
)

const redisKeyPrefix = "price:"

// RedisStore implements pricecache.Store using Redis. Entries are stored as
// JSON under a "price:" prefix; a non-zero ttl lets Redis evict stale entries
// on its own, while the cache layer remains the source of truth for freshness.
type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
}

var _ pricecache.Store = (*RedisStore)(nil)

// NewRedis connects to Redis at addr and verifies reachability.
// A ttl of zero stores entries without expiration.
func NewRedis(addr string, ttl time.Duration) (*RedisStore, error) {
	client := redis.NewClient(&redis.Options{
		Addr:        addr,
		DialTimeout: 5 * time.Second,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("ping redis: %w", err)
	}

	return &RedisStore{client: client, ttl: ttl}, nil
}

// Get implements pricecache.Store. Returns a miss for absent keys.
func (r *RedisStore) Get(ctx context.Context, key string) (pricecache.Entry, bool, error) {
	val, err := r.client.Get(ctx, redisKeyPrefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return pricecache.Entry{}, false, nil
	}
	if err != nil {
		return pricecache.Entry{}, false, fmt.Errorf("redis get: %w", err)
	}

	var entry pricecache.Entry
	if err := json.Unmarshal(val, &entry); err != nil {
		return pricecache.Entry{}, false, fmt.Errorf("decode cache entry %s: %w", key, err)
	}
	return entry, true, nil
}

// Put implements pricecache.Store.
func (r *RedisStore) Put(ctx context.Context, key string, entry pricecache.Entry) error {
	payload, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("encode cache entry %s: %w", key, err)
	}
	if err := r.client.Set(ctx, redisKeyPrefix+key, payload, r.ttl).Err(); err != nil {
		return fmt.Errorf("redis set: %w", err)
	}
	return nil
}

// Ping reports whether Redis is reachable.
func (r *RedisStore) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}

// Close closes the Redis connection.
func (r *RedisStore) Close() error {
	return r.client.Close()
}
