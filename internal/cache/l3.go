// Why this file: ./internal/cache/l3.go
// L3 caches the agent execution path chosen for a query. The runtime writes
// paths here but does not read them back while dispatching a query; they
// are read only through Manager.GetPath. Grounded on the reference L3Cache's
// save_path/get_path/is_better semantics (tests/unit/test_caching.py
// TestL3Cache), where a shorter/faster path replaces a worse one for the
// same query rather than simply overwriting.
package cache

import (
	"regexp"
	"sync"
	"time"

	"github.com/Rivega42/hybrid-rag-system/models"
)

// PathRecord is a stored execution path plus the cost it took.
type PathRecord struct {
	Path      []models.PathStep
	Steps     int
	Millis    int64
	CreatedAt time.Time
	ExpiresAt time.Time
}

// L3 caches execution paths keyed by query text.
type L3 struct {
	mu      sync.Mutex
	maxSize int
	ttl     time.Duration
	paths   map[string]*PathRecord
	order   []string // insertion order, for FIFO eviction at capacity
}

// NewL3 builds an L3 cache.
func NewL3(maxSize int, ttl time.Duration) *L3 {
	if maxSize <= 0 {
		maxSize = 1000
	}
	return &L3{maxSize: maxSize, ttl: ttl, paths: make(map[string]*PathRecord)}
}

// GetPath returns the stored path for query, if present and unexpired.
func (c *L3) GetPath(query string) ([]models.PathStep, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	record, ok := c.paths[query]
	if !ok {
		return nil, false
	}
	if time.Now().After(record.ExpiresAt) {
		delete(c.paths, query)
		return nil, false
	}
	return record.Path, true
}

// SavePath stores path for query, taking cost into account: if a path is
// already stored for this query, the new one replaces it only when it is
// better (fewer steps, or equal steps and lower cost).
func (c *L3) SavePath(query string, path []models.PathStep, millis int64) {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := time.Now()
	candidate := &PathRecord{
		Path:      path,
		Steps:     len(path),
		Millis:    millis,
		CreatedAt: now,
		ExpiresAt: now.Add(c.ttl),
	}

	existing, ok := c.paths[query]
	if ok && !isBetter(candidate, existing) {
		return
	}

	if !ok {
		c.order = append(c.order, query)
		if len(c.order) > c.maxSize {
			evict := c.order[0]
			c.order = c.order[1:]
			delete(c.paths, evict)
		}
	}

	c.paths[query] = candidate
}

func isBetter(candidate, existing *PathRecord) bool {
	if candidate.Steps != existing.Steps {
		return candidate.Steps < existing.Steps
	}
	return candidate.Millis < existing.Millis
}

// InvalidateMatching removes every stored path whose query matches re.
func (c *L3) InvalidateMatching(re *regexp.Regexp) {
	c.mu.Lock()
	defer c.mu.Unlock()

	for query := range c.paths {
		if re.MatchString(query) {
			delete(c.paths, query)
		}
	}

	order := c.order[:0:0]
	for _, query := range c.order {
		if _, ok := c.paths[query]; ok {
			order = append(order, query)
		}
	}
	c.order = order
}

// Clear empties the cache.
func (c *L3) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.paths = make(map[string]*PathRecord)
	c.order = nil
}

// Size reports the current number of stored paths.
func (c *L3) Size() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.paths)
}
