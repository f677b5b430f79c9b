// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// scope.go provides a Valkey-backed cache of resolved subtree scopes.
// Every category-scoped catalog query starts from the same resolved id set,
// so caching it skips the tree traversal on hot categories. Any tree
// mutation can change any subtree's membership, so mutations clear the
// whole prefix rather than trying to invalidate selectively.
package cache

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const (
	// scopeKeyPrefix is the Valkey key prefix for cached scopes.
	scopeKeyPrefix = "scope:"

	// DefaultScopeTTL is how long a resolved scope stays cached.
	DefaultScopeTTL = 5 * time.Minute
)

// ScopeCache caches subtree scope resolutions in Valkey. All methods are
// best-effort: cache errors are logged and treated as misses.
type ScopeCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewScopeCache creates a scope cache backed by the given Valkey client.
func NewScopeCache(client *redis.Client, ttl time.Duration) *ScopeCache {
	if ttl == 0 {
		ttl = DefaultScopeTTL
	}
	return &ScopeCache{client: client, ttl: ttl}
}

// Get retrieves a cached scope for a category. Returns false on miss.
func (sc *ScopeCache) Get(ctx context.Context, id uuid.UUID) ([]uuid.UUID, bool) {
	val, err := sc.client.Get(ctx, scopeKeyPrefix+id.String()).Bytes()
	if err == redis.Nil {
		return nil, false
	}
	if err != nil {
		slog.Warn("scope cache get error", "category_id", id, "error", err)
		return nil, false
	}
	var ids []uuid.UUID
	if err := json.Unmarshal(val, &ids); err != nil {
		slog.Warn("scope cache decode error", "category_id", id, "error", err)
		return nil, false
	}
	return ids, true
}

// Set stores a resolved scope with the configured TTL.
func (sc *ScopeCache) Set(ctx context.Context, id uuid.UUID, ids []uuid.UUID) {
	val, err := json.Marshal(ids)
	if err != nil {
		slog.Warn("scope cache encode error", "category_id", id, "error", err)
		return
	}
	if err := sc.client.Set(ctx, scopeKeyPrefix+id.String(), val, sc.ttl).Err(); err != nil {
		slog.Warn("scope cache set error", "category_id", id, "error", err)
	}
}

// InvalidateAll removes every cached scope by scanning for the prefix.
// Called after each tree mutation.
func (sc *ScopeCache) InvalidateAll(ctx context.Context) {
	var cursor uint64
	var deleted int
	for {
		keys, nextCursor, err := sc.client.Scan(ctx, cursor, scopeKeyPrefix+"*", 100).Result()
		if err != nil {
			slog.Warn("scope cache scan error", "error", err)
			return
		}
		if len(keys) > 0 {
			if err := sc.client.Del(ctx, keys...).Err(); err != nil {
				slog.Warn("scope cache bulk delete error", "error", err)
			}
			deleted += len(keys)
		}
		cursor = nextCursor
		if cursor == 0 {
			break
		}
	}
	if deleted > 0 {
		slog.Debug("scope cache cleared", "deleted", deleted)
	}
}
