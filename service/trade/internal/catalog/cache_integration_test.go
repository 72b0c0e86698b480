package catalog

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
)

// Test d'integrazione: lo snapshot sopravvive al giro su Redis ed e' ancora parsabile.
func TestRedisCacheRoundTrip(t *testing.T) {
	addr := os.Getenv("TRADE_TEST_REDIS_ADDR")
	if addr == "" {
		t.Skip("TRADE_TEST_REDIS_ADDR not set")
	}
	client := redis.NewClient(&redis.Options{Addr: addr, DB: 15})
	t.Cleanup(func() { client.Close() })
	ctx := context.Background()
	client.Del(ctx, CacheKey)
	t.Cleanup(func() { client.Del(ctx, CacheKey) })

	cache := NewRedisCache(client, time.Minute)
	if _, ok, err := cache.Get(ctx); err != nil || ok {
		t.Fatalf("expected miss on empty cache, got ok=%v err=%v", ok, err)
	}
	if err := cache.Set(ctx, testSnapshot()); err != nil {
		t.Fatalf("set: %v", err)
	}
	snap, ok, err := cache.Get(ctx)
	if err != nil || !ok {
		t.Fatalf("expected hit, got ok=%v err=%v", ok, err)
	}
	cat, err := Parse(snap)
	if err != nil {
		t.Fatalf("parse cached snapshot: %v", err)
	}
	if cat.Len() != 4 {
		t.Fatalf("expected 4 cards, got %d", cat.Len())
	}
}
