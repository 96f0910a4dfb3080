// Why this file: ./internal/cache/l2.go
// L2 is the semantic cache: queries that aren't textually identical but
// whose embeddings are cosine-close enough reuse a prior result. Grounded
// on the teacher's vectordb.CosineSimilarity (internal/vectordb/similarity.go)
// for the math and on the reference L2Cache's similarity_threshold/get_top_k
// semantics (tests/unit/test_caching.py TestL2Cache).
package cache

import (
	"math"
	"regexp"
	"sync"
	"time"

	"github.com/Rivega42/hybrid-rag-system/models"
)

// L2 is a similarity-threshold cache over embedded queries.
type L2 struct {
	mu        sync.Mutex
	threshold float64
	maxSize   int
	ttl       time.Duration
	entries   []l2Entry
}

type l2Entry struct {
	query     string
	embedding models.Vector
	entry     *models.CacheEntry
}

// NewL2 builds an L2 cache. threshold is the minimum cosine similarity for
// a hit (the reference system defaults to 0.95).
func NewL2(threshold float64, maxSize int, ttl time.Duration) *L2 {
	if maxSize <= 0 {
		maxSize = 5000
	}
	return &L2{threshold: threshold, maxSize: maxSize, ttl: ttl}
}

// Match is a single semantic hit, carrying the similarity score that
// produced it so callers can surface it in diagnostics or reasoning text.
type Match struct {
	Entry      *models.CacheEntry
	Similarity float64
}

// GetSimilar returns the closest cached entry to embedding above the
// configured threshold, or false if none qualifies.
func (c *L2) GetSimilar(embedding models.Vector) (Match, bool) {
	matches := c.topKSimilar(embedding, 1)
	if len(matches) == 0 {
		return Match{}, false
	}
	return matches[0], true
}

// TopKSimilar returns up to k cached entries above the threshold, ordered
// by descending similarity.
func (c *L2) TopKSimilar(embedding models.Vector, k int) []Match {
	return c.topKSimilar(embedding, k)
}

func (c *L2) topKSimilar(embedding models.Vector, k int) []Match {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := time.Now()
	var matches []Match

	live := c.entries[:0:0]
	for _, e := range c.entries {
		if e.entry.Expired(now) {
			continue
		}
		live = append(live, e)

		sim := cosineSimilarity(embedding, e.embedding)
		if sim >= c.threshold {
			e.entry.Touch()
			matches = append(matches, Match{Entry: e.entry, Similarity: sim})
		}
	}
	c.entries = live

	sortMatchesDesc(matches)
	if k > 0 && len(matches) > k {
		matches = matches[:k]
	}
	return matches
}

// Set stores result under query/embedding.
func (c *L2) Set(query string, result string, embedding models.Vector, strategy models.Strategy) {
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

	c.entries = append(c.entries, l2Entry{query: query, embedding: embedding, entry: entry})

	if len(c.entries) > c.maxSize {
		c.evictLowestHitCount()
	}
}

// evictLowestHitCount removes the single entry with the lowest HitCount,
// breaking ties in favour of the oldest CreatedAt, per the reference
// system's L2Cache eviction policy.
func (c *L2) evictLowestHitCount() {
	if len(c.entries) == 0 {
		return
	}

	victim := 0
	for i := 1; i < len(c.entries); i++ {
		candidate := c.entries[i].entry
		current := c.entries[victim].entry
		if candidate.HitCount() < current.HitCount() {
			victim = i
			continue
		}
		if candidate.HitCount() == current.HitCount() && candidate.CreatedAt.Before(current.CreatedAt) {
			victim = i
		}
	}

	c.entries = append(c.entries[:victim], c.entries[victim+1:]...)
}

// InvalidateMatching removes every entry whose query matches re, returning
// their embeddings so the caller can cascade the invalidation to any
// remaining near-embedding entries (a semantically similar query that never
// had matching text still served a now-stale answer).
func (c *L2) InvalidateMatching(re *regexp.Regexp) []models.Vector {
	c.mu.Lock()
	defer c.mu.Unlock()

	var removed []models.Vector
	kept := c.entries[:0:0]
	for _, e := range c.entries {
		if re.MatchString(e.query) {
			removed = append(removed, e.embedding)
			continue
		}
		kept = append(kept, e)
	}
	c.entries = kept
	return removed
}

// InvalidateNear removes every remaining entry whose embedding is at or
// above the cache's similarity threshold against any of targets, cascading
// an invalidation to semantically equivalent cached answers that weren't
// caught by the query-text pattern itself.
func (c *L2) InvalidateNear(targets []models.Vector) {
	if len(targets) == 0 {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	kept := c.entries[:0:0]
	for _, e := range c.entries {
		near := false
		for _, target := range targets {
			if cosineSimilarity(e.embedding, target) >= c.threshold {
				near = true
				break
			}
		}
		if !near {
			kept = append(kept, e)
		}
	}
	c.entries = kept
}

// Clear empties the cache.
func (c *L2) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = nil
}

// Size reports the current number of entries, including expired ones that
// have not yet been pruned by a similarity lookup.
func (c *L2) Size() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

func cosineSimilarity(a, b models.Vector) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}
	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}

func sortMatchesDesc(matches []Match) {
	for i := 1; i < len(matches); i++ {
		for j := i; j > 0 && matches[j].Similarity > matches[j-1].Similarity; j-- {
			matches[j], matches[j-1] = matches[j-1], matches[j]
		}
	}
}
