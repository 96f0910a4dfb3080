// Why this file: ./internal/cache/l1.go
// L1 is an exact-match cache keyed on the literal query text, with LRU
// eviction at a fixed capacity and per-entry TTL. It is the fast path:
// the same question asked twice in a row never reaches the router.
// Grounded on the teacher's MCPContextCache (internal/mcp/context_cache.go)
// for the TTL-map shape, generalized to an actual LRU list (the teacher's
// cache never evicted on size, only on TTL) per the reference system's
// L1Cache.max_size + LRU eviction behavior (tests/unit/test_caching.py).
package cache

import (
	"container/list"
	"sync"
	"time"

	"github.com/Rivega42/hybrid-rag-system/models"
)

// L1 is an exact-match, size-bounded, TTL-bounded LRU cache.
type L1 struct {
	mu      sync.Mutex
	maxSize int
	ttl     time.Duration
	entries map[string]*list.Element
	order   *list.List // front = most recently used
}

type l1Node struct {
	key   string
	entry *models.CacheEntry
}

// NewL1 builds an L1 cache with the given capacity and TTL.
func NewL1(maxSize int, ttl time.Duration) *L1 {
	if maxSize <= 0 {
		maxSize = 1000
	}
	return &L1{
		maxSize: maxSize,
		ttl:     ttl,
		entries: make(map[string]*list.Element),
		order:   list.New(),
	}
}

// Get returns the cached entry for query, if present and unexpired. An
// expired entry is evicted lazily on read.
func (c *L1) Get(query string) (*models.CacheEntry, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	elem, ok := c.entries[query]
	if !ok {
		return nil, false
	}

	node := elem.Value.(*l1Node)
	if node.entry.Expired(time.Now()) {
		c.removeElement(elem)
		return nil, false
	}

	c.order.MoveToFront(elem)
	node.entry.Touch()
	return node.entry, true
}

// Set stores result under query, evicting the least-recently-used entry
// if the cache is at capacity.
func (c *L1) Set(query string, result string, strategy models.Strategy) {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := time.Now()
	entry := &models.CacheEntry{
		Key:       query,
		Value:     result,
		Strategy:  strategy,
		CreatedAt: now,
		ExpiresAt: now.Add(c.ttl),
	}

	if elem, ok := c.entries[query]; ok {
		elem.Value.(*l1Node).entry = entry
		c.order.MoveToFront(elem)
		return
	}

	elem := c.order.PushFront(&l1Node{key: query, entry: entry})
	c.entries[query] = elem

	if c.order.Len() > c.maxSize {
		oldest := c.order.Back()
		if oldest != nil {
			c.removeElement(oldest)
		}
	}
}

// Invalidate removes query's entry, if any.
func (c *L1) Invalidate(query string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if elem, ok := c.entries[query]; ok {
		c.removeElement(elem)
	}
}

// Clear empties the cache.
func (c *L1) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string]*list.Element)
	c.order.Init()
}

// Size reports the current number of entries.
func (c *L1) Size() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.order.Len()
}

func (c *L1) removeElement(elem *list.Element) {
	node := elem.Value.(*l1Node)
	delete(c.entries, node.key)
	c.order.Remove(elem)
}
