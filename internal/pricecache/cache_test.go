package pricecache

import (
	"context"
	"errors"
	"reflect"
	"testing"
	"time"

	"github.com/Amitava-Data-Science-lab/deposit-saver/internal/domain"
)

type failingStore struct{}

func (f *failingStore) Get(ctx context.Context, key string) (Entry, bool, error) {
	return Entry{}, false, errors.New("backend down")
}

func (f *failingStore) Put(ctx context.Context, key string, entry Entry) error {
	return errors.New("backend down")
}

func (f *failingStore) Ping(ctx context.Context) error {
	return errors.New("backend down")
}

type blockingStore struct{}

func (b *blockingStore) Get(ctx context.Context, key string) (Entry, bool, error) {
	<-ctx.Done()
	return Entry{}, false, ctx.Err()
}

func (b *blockingStore) Put(ctx context.Context, key string, entry Entry) error {
	<-ctx.Done()
	return ctx.Err()
}

func (b *blockingStore) Ping(ctx context.Context) error {
	<-ctx.Done()
	return ctx.Err()
}

func testOptions(propertyType string, minPrice int64) []domain.PriceOption {
	return []domain.PriceOption{{
		PropertyType: propertyType,
		MinPrice:     minPrice,
		MaxPrice:     minPrice + 50000,
		Source:       "test",
	}}
}

func TestCacheRoundTrip(t *testing.T) {
	cache := New(NewMemoryStore(), time.Second, 0)
	ctx := context.Background()
	key := Key("HP12", "2-bed house")

	want := testOptions("2-bed-house", 280000)
	if err := cache.Put(ctx, key, Entry{Options: want}); err != nil {
		t.Fatalf("Put failed: %v", err)
	}

	entry, ok := cache.Get(ctx, key)
	if !ok {
		t.Fatal("Expected a cache hit after put")
	}
	if !reflect.DeepEqual(entry.Options, want) {
		t.Errorf("Expected options %+v, got %+v", want, entry.Options)
	}
	if entry.WrittenAt.IsZero() {
		t.Error("Expected a write timestamp to be stamped")
	}
}

func TestCacheLastWriteWins(t *testing.T) {
	cache := New(NewMemoryStore(), time.Second, 0)
	ctx := context.Background()
	key := Key("HP12", "2-bed house")

	if err := cache.Put(ctx, key, Entry{Options: testOptions("2-bed-house", 280000)}); err != nil {
		t.Fatalf("Put failed: %v", err)
	}
	newer := testOptions("2-bed-house", 310000)
	if err := cache.Put(ctx, key, Entry{Options: newer}); err != nil {
		t.Fatalf("Second put failed: %v", err)
	}

	entry, ok := cache.Get(ctx, key)
	if !ok {
		t.Fatal("Expected a cache hit")
	}
	if !reflect.DeepEqual(entry.Options, newer) {
		t.Errorf("Expected only the newer content %+v, got %+v", newer, entry.Options)
	}
}

func TestCacheMissOnUnknownKey(t *testing.T) {
	cache := New(NewMemoryStore(), time.Second, 0)

	if _, ok := cache.Get(context.Background(), "nowhere_nothing"); ok {
		t.Error("Expected a miss for an unknown key")
	}
}

func TestCacheDegradesToMissOnStoreFailure(t *testing.T) {
	cache := New(&failingStore{}, time.Second, 0)
	ctx := context.Background()

	if _, ok := cache.Get(ctx, "any_key"); ok {
		t.Error("Expected a miss when the store errors")
	}
	if err := cache.Put(ctx, "any_key", Entry{Options: testOptions("flat", 100000)}); err == nil {
		t.Error("Expected the put error to surface to the caller")
	}
}

func TestCacheTimeoutIsAMiss(t *testing.T) {
	cache := New(&blockingStore{}, 20*time.Millisecond, 0)

	start := time.Now()
	if _, ok := cache.Get(context.Background(), "slow_key"); ok {
		t.Error("Expected a miss when the store blocks past the timeout")
	}
	if elapsed := time.Since(start); elapsed > time.Second {
		t.Errorf("Expected the timeout to bound the call, took %s", elapsed)
	}
}

func TestCacheTTLExpiry(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()
	key := Key("HP12", "2-bed house")
	stale := Entry{Options: testOptions("2-bed-house", 280000), WrittenAt: time.Now().Add(-2 * time.Hour)}

	expiring := New(store, time.Second, time.Hour)
	if err := expiring.Put(ctx, key, stale); err != nil {
		t.Fatalf("Put failed: %v", err)
	}
	if _, ok := expiring.Get(ctx, key); ok {
		t.Error("Expected a stale entry to read as a miss when TTL is set")
	}

	forever := New(store, time.Second, 0)
	if _, ok := forever.Get(ctx, key); !ok {
		t.Error("Expected the entry to persist with TTL disabled")
	}
}
