// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package cache

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// testValkeyClient returns a Redis client for tests.
// Skips if Valkey is unavailable.
func testValkeyClient(t *testing.T) *redis.Client {
	t.Helper()

	host := envOr("VALKEY_HOST", "localhost")
	port := envOr("VALKEY_PORT", "6379")
	password := os.Getenv("VALKEY_PASSWORD")

	client := redis.NewClient(&redis.Options{
		Addr:     host + ":" + port,
		Password: password,
		DB:       15, // Use DB 15 for tests.
	})

	ctx := context.Background()
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		t.Skipf("skipping integration test: Valkey not reachable: %v", err)
	}

	t.Cleanup(func() {
		keys, _ := client.Keys(ctx, "scope:*").Result()
		if len(keys) > 0 {
			client.Del(ctx, keys...)
		}
		client.Close()
	})

	return client
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func TestScopeCacheRoundTrip(t *testing.T) {
	client := testValkeyClient(t)
	sc := NewScopeCache(client, time.Minute)
	ctx := context.Background()

	id := uuid.New()
	scope := []uuid.UUID{id, uuid.New(), uuid.New()}

	if _, ok := sc.Get(ctx, id); ok {
		t.Fatal("unexpected hit before set")
	}

	sc.Set(ctx, id, scope)

	got, ok := sc.Get(ctx, id)
	if !ok {
		t.Fatal("expected a hit after set")
	}
	if len(got) != len(scope) {
		t.Fatalf("got %d ids, want %d", len(got), len(scope))
	}
	for i := range scope {
		if got[i] != scope[i] {
			t.Errorf("ids[%d] = %s, want %s", i, got[i], scope[i])
		}
	}
}

func TestScopeCacheInvalidateAll(t *testing.T) {
	client := testValkeyClient(t)
	sc := NewScopeCache(client, time.Minute)
	ctx := context.Background()

	ids := []uuid.UUID{uuid.New(), uuid.New(), uuid.New()}
	for _, id := range ids {
		sc.Set(ctx, id, []uuid.UUID{id})
	}

	sc.InvalidateAll(ctx)

	for _, id := range ids {
		if _, ok := sc.Get(ctx, id); ok {
			t.Errorf("scope %s survived invalidation", id)
		}
	}
}

func TestScopeCacheTTL(t *testing.T) {
	client := testValkeyClient(t)
	sc := NewScopeCache(client, time.Second)
	ctx := context.Background()

	id := uuid.New()
	sc.Set(ctx, id, []uuid.UUID{id})

	ttl, err := client.TTL(ctx, "scope:"+id.String()).Result()
	if err != nil {
		t.Fatalf("TTL: %v", err)
	}
	if ttl <= 0 || ttl > time.Second {
		t.Errorf("ttl = %v, want at most 1s", ttl)
	}
}
