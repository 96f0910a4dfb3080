// Why this file: ./internal/cache/redis.go
// RemoteL1 is an optional Redis-backed front door for the exact-match tier,
// shared across fabric process instances so a cache warm in one process is
// visible to all the others. Grounded on the teacher's use of
// github.com/go-redis/redis/v8 for its own distributed caching concerns
// (internal/mcp/predictive_cache.go's backing store); the fabric's L1 stays
// the authoritative in-process LRU, with RemoteL1 consulted first and
// populated on every write so a cold process still gets warm hits.
package cache

import (
	"context"
	"encoding/json"
	"time"

	"github.com/go-redis/redis/v8"

	"github.com/Rivega42/hybrid-rag-system/models"
)

// RemoteL1 wraps a Redis client as a shared exact-match cache tier.
type RemoteL1 struct {
	client *redis.Client
	ttl    time.Duration
}

type remoteEntry struct {
	Result   string          `json:"result"`
	Strategy models.Strategy `json:"strategy"`
}

// NewRemoteL1 builds a RemoteL1 against a Redis instance at addr. It never
// dials eagerly: go-redis lazily connects on first command, so a
// misconfigured or unreachable Redis only surfaces as a miss on Get and a
// swallowed error on Set, never a startup failure.
func NewRemoteL1(addr string, ttl time.Duration) *RemoteL1 {
	return &RemoteL1{
		client: redis.NewClient(&redis.Options{Addr: addr}),
		ttl:    ttl,
	}
}

// Ping verifies connectivity, used by callers that want to fail fast instead
// of degrading silently to local-only caching.
func (r *RemoteL1) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}

// Get returns the remotely cached entry for query, if present.
func (r *RemoteL1) Get(ctx context.Context, query string) (*models.CacheEntry, bool) {
	raw, err := r.client.Get(ctx, remoteKey(query)).Result()
	if err != nil {
		return nil, false
	}

	var re remoteEntry
	if err := json.Unmarshal([]byte(raw), &re); err != nil {
		return nil, false
	}

	now := time.Now()
	return &models.CacheEntry{
		Key:       query,
		Value:     re.Result,
		Strategy:  re.Strategy,
		CreatedAt: now,
		ExpiresAt: now.Add(r.ttl),
	}, true
}

// Set writes query's result to Redis with the configured TTL. Failures are
// swallowed: RemoteL1 is a best-effort accelerator, never load-bearing for
// correctness (the in-process L1 still holds the authoritative entry).
func (r *RemoteL1) Set(ctx context.Context, query, result string, strategy models.Strategy) {
	raw, err := json.Marshal(remoteEntry{Result: result, Strategy: strategy})
	if err != nil {
		return
	}
	r.client.Set(ctx, remoteKey(query), raw, r.ttl)
}

// Invalidate removes query's remote entry, if any.
func (r *RemoteL1) Invalidate(ctx context.Context, query string) {
	r.client.Del(ctx, remoteKey(query))
}

// Close releases the underlying Redis connection pool.
func (r *RemoteL1) Close() error {
	return r.client.Close()
}

func remoteKey(query string) string {
	return "hybridrag:l1:" + query
}
