// Why this file: ./internal/cache/manager.go
// Manager is the single cache façade the runtime talks to: it tries L1,
// then L2 for results (L3 paths are read separately through GetPath),
// records per-tier hit/miss counters, and exposes
// invalidation and warming. Grounded on the reference CacheManager
// (tests/unit/test_caching.py TestCacheManager: cache_result/check_l1/
// get_cached_result/invalidate_pattern/warm_cache/get_stats) and on the
// teacher's predictive_cache worker-queue idiom for warming
// (internal/mcp/predictive_cache.go's preCacheWorker/preCacheQueue).
package cache

import (
	"context"
	"regexp"
	"sync/atomic"
	"time"

	"github.com/Rivega42/hybrid-rag-system/models"
)

// MetricsSink is the narrow metrics interface the cache manager emits to.
type MetricsSink interface {
	Record(event string, labels map[string]string, value float64)
}

// Stats is a snapshot of cache-tier hit/miss counters.
type Stats struct {
	L1Hits   int64
	L2Hits   int64
	L3Hits   int64
	Misses   int64
	L1Size   int
	L2Size   int
	L3Size   int
}

// Config controls which tiers are active and their individual sizing.
type Config struct {
	EnableL1 bool
	EnableL2 bool
	EnableL3 bool

	L1MaxSize int
	L1TTL     time.Duration

	L2Threshold float64
	L2MaxSize   int
	L2TTL       time.Duration

	L3MaxSize int
	L3TTL     time.Duration

	// RedisAddr, when non-empty, fronts L1 with a shared Redis tier so a
	// cache warm in one fabric process is visible to every other instance.
	RedisAddr string
	RedisTTL  time.Duration
}

// Manager fans reads out across L1/L2/L3 and fans writes into whichever
// tiers are enabled and applicable to the value being cached.
type Manager struct {
	l1     *L1
	l2     *L2
	l3     *L3
	remote *RemoteL1

	metrics MetricsSink

	l1Hits, l2Hits, l3Hits, misses int64

	warmQueue chan string
	warmFn    func(ctx context.Context, query string)
}

// NewManager builds a Manager. Disabled tiers are left nil and skipped on
// every read/write path.
func NewManager(cfg Config, metrics MetricsSink) *Manager {
	m := &Manager{metrics: metrics}

	if cfg.EnableL1 {
		m.l1 = NewL1(cfg.L1MaxSize, cfg.L1TTL)
	}
	if cfg.EnableL2 {
		threshold := cfg.L2Threshold
		if threshold <= 0 {
			threshold = 0.95
		}
		m.l2 = NewL2(threshold, cfg.L2MaxSize, cfg.L2TTL)
	}
	if cfg.EnableL3 {
		m.l3 = NewL3(cfg.L3MaxSize, cfg.L3TTL)
	}
	if cfg.RedisAddr != "" {
		ttl := cfg.RedisTTL
		if ttl <= 0 {
			ttl = cfg.L1TTL
		}
		m.remote = NewRemoteL1(cfg.RedisAddr, ttl)
	}

	return m
}

// Close releases the Redis connection backing the remote tier, if any.
func (m *Manager) Close() error {
	if m.remote == nil {
		return nil
	}
	return m.remote.Close()
}

// CheckL1 reports an exact-match hit for query without touching L2/L3. The
// shared Redis tier, when configured, is consulted first so a cold process
// still benefits from another instance's warm cache; a remote hit is also
// written back into the local LRU.
func (m *Manager) CheckL1(query string) (*models.CacheEntry, bool) {
	if m.remote != nil {
		if entry, ok := m.remote.Get(context.Background(), query); ok {
			atomic.AddInt64(&m.l1Hits, 1)
			m.record("cache.l1_hit_remote")
			if m.l1 != nil {
				m.l1.Set(query, asString(entry.Value), entry.Strategy)
			}
			return entry, true
		}
	}

	if m.l1 == nil {
		return nil, false
	}
	entry, ok := m.l1.Get(query)
	if ok {
		atomic.AddInt64(&m.l1Hits, 1)
		m.record("cache.l1_hit")
	}
	return entry, ok
}

func asString(v interface{}) string {
	s, _ := v.(string)
	return s
}

// GetCachedResult reads L1, then L2 (if an embedding is available),
// returning the first hit. The L3 path cache is not consulted here; its
// paths are read only through GetPath.
func (m *Manager) GetCachedResult(ctx context.Context, query string, embedding *models.Vector) (value interface{}, strategy models.Strategy, hit bool) {
	if entry, ok := m.CheckL1(query); ok {
		return entry.Value, entry.Strategy, true
	}

	if m.l2 != nil && embedding != nil {
		if match, ok := m.l2.GetSimilar(*embedding); ok {
			atomic.AddInt64(&m.l2Hits, 1)
			m.record("cache.l2_hit")
			return match.Entry.Value, match.Entry.Strategy, true
		}
	}

	atomic.AddInt64(&m.misses, 1)
	m.record("cache.miss")
	return nil, "", false
}

// GetPath reads L3 for a previously recorded execution path.
func (m *Manager) GetPath(query string) ([]models.PathStep, bool) {
	if m.l3 == nil {
		return nil, false
	}
	path, ok := m.l3.GetPath(query)
	if ok {
		atomic.AddInt64(&m.l3Hits, 1)
		m.record("cache.l3_hit")
	}
	return path, ok
}

// CacheResult fans a result out to every enabled tier applicable to it: L1
// always, L2 when an embedding is supplied, L3 when a path is supplied.
func (m *Manager) CacheResult(query string, result string, strategy models.Strategy, embedding *models.Vector, path []models.PathStep, pathMillis int64) {
	if m.l1 != nil {
		m.l1.Set(query, result, strategy)
	}
	if m.remote != nil {
		m.remote.Set(context.Background(), query, result, strategy)
	}
	if m.l2 != nil && embedding != nil {
		m.l2.Set(query, result, *embedding, strategy)
	}
	if m.l3 != nil && len(path) > 0 {
		m.l3.SavePath(query, path, pathMillis)
	}
}

// InvalidatePattern removes every entry whose query matches the glob-ish
// pattern (Go regexp.MatchString applied to the translated pattern, '*'
// meaning "any sequence") from every tier: L1 by its literal key, L2 by its
// stored query text (plus a cascade to any remaining near-embedding
// entries), and L3 by the query its path was recorded against.
func (m *Manager) InvalidatePattern(pattern string) {
	re, err := regexp.Compile(globToRegexp(pattern))
	if err != nil {
		return
	}

	if m.l1 != nil {
		m.l1.mu.Lock()
		var toRemove []string
		for key := range m.l1.entries {
			if re.MatchString(key) {
				toRemove = append(toRemove, key)
			}
		}
		m.l1.mu.Unlock()

		for _, key := range toRemove {
			m.l1.Invalidate(key)
			if m.remote != nil {
				m.remote.Invalidate(context.Background(), key)
			}
		}
	}

	if m.l2 != nil {
		removed := m.l2.InvalidateMatching(re)
		m.l2.InvalidateNear(removed)
	}

	if m.l3 != nil {
		m.l3.InvalidateMatching(re)
	}
}

func globToRegexp(pattern string) string {
	out := "^"
	for _, r := range pattern {
		switch r {
		case '*':
			out += ".*"
		case '.', '(', ')', '[', ']', '+', '?', '^', '$', '|', '\\':
			out += "\\" + string(r)
		default:
			out += string(r)
		}
	}
	return out + "$"
}

// Clear empties every enabled tier.
func (m *Manager) Clear() {
	if m.l1 != nil {
		m.l1.Clear()
	}
	if m.l2 != nil {
		m.l2.Clear()
	}
	if m.l3 != nil {
		m.l3.Clear()
	}
}

// WarmCache pre-populates L1 for a set of known-popular queries by running
// fn against each and caching its result. Queries run sequentially; the
// caller controls concurrency by calling WarmCache from multiple goroutines
// if needed.
func (m *Manager) WarmCache(ctx context.Context, queries []string, fn func(ctx context.Context, query string) (string, models.Strategy)) {
	for _, q := range queries {
		if _, ok := m.CheckL1(q); ok {
			continue
		}
		result, strategy := fn(ctx, q)
		m.CacheResult(q, result, strategy, nil, nil, 0)
	}
}

// Stats returns a snapshot of hit/miss counters and per-tier sizes.
func (m *Manager) Stats() Stats {
	s := Stats{
		L1Hits: atomic.LoadInt64(&m.l1Hits),
		L2Hits: atomic.LoadInt64(&m.l2Hits),
		L3Hits: atomic.LoadInt64(&m.l3Hits),
		Misses: atomic.LoadInt64(&m.misses),
	}
	if m.l1 != nil {
		s.L1Size = m.l1.Size()
	}
	if m.l2 != nil {
		s.L2Size = m.l2.Size()
	}
	if m.l3 != nil {
		s.L3Size = m.l3.Size()
	}
	return s
}

func (m *Manager) record(event string) {
	if m.metrics != nil {
		m.metrics.Record(event, nil, 1)
	}
}
