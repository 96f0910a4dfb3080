package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Rivega42/hybrid-rag-system/models"
)

func fullManager() *Manager {
	return NewManager(Config{
		EnableL1: true, L1MaxSize: 100, L1TTL: time.Hour,
		EnableL2: true, L2Threshold: 0.9, L2MaxSize: 100, L2TTL: time.Hour,
		EnableL3: true, L3MaxSize: 100, L3TTL: time.Hour,
	}, nil)
}

func TestManager_L1ExactHit(t *testing.T) {
	m := fullManager()
	m.CacheResult("What is Python?", "a language", models.StrategyClassic, nil, nil, 0)

	entry, ok := m.CheckL1("What is Python?")
	require.True(t, ok)
	assert.Equal(t, "a language", entry.Value)

	_, ok = m.CheckL1("What is python?")
	assert.False(t, ok)
}

func TestManager_GetCachedResultFallsThroughToL2(t *testing.T) {
	m := fullManager()
	embedding := models.Vector{0.1, 0.2, 0.3}
	m.CacheResult("What is Python?", "a language", models.StrategyClassic, &embedding, nil, 0)

	similar := models.Vector{0.101, 0.199, 0.301}
	value, strategy, hit := m.GetCachedResult(context.Background(), "What's Python?", &similar)
	require.True(t, hit)
	assert.Equal(t, "a language", value)
	assert.Equal(t, models.StrategyClassic, strategy)
}

func TestManager_Miss(t *testing.T) {
	m := fullManager()
	_, _, hit := m.GetCachedResult(context.Background(), "never seen", nil)
	assert.False(t, hit)

	stats := m.Stats()
	assert.Equal(t, int64(1), stats.Misses)
}

func TestManager_PathCacheRoundTrip(t *testing.T) {
	m := fullManager()
	path := []models.PathStep{{Agent: "research", Action: "search", Result: "data"}}
	m.CacheResult("complex query", "final answer", models.StrategyAgentic, nil, path, 500)

	got, ok := m.GetPath("complex query")
	require.True(t, ok)
	assert.Equal(t, path, got)
}

func TestManager_InvalidatePattern(t *testing.T) {
	m := fullManager()
	m.CacheResult("Test query one", "r1", models.StrategyClassic, nil, nil, 0)
	m.CacheResult("Test query two", "r2", models.StrategyClassic, nil, nil, 0)
	m.CacheResult("Other query", "r3", models.StrategyClassic, nil, nil, 0)

	m.InvalidatePattern("Test*")

	_, ok1 := m.CheckL1("Test query one")
	_, ok2 := m.CheckL1("Test query two")
	_, ok3 := m.CheckL1("Other query")
	assert.False(t, ok1)
	assert.False(t, ok2)
	assert.True(t, ok3)
}

func TestManager_InvalidatePatternClearsL2AndL3(t *testing.T) {
	m := fullManager()
	embedding := models.Vector{0.1, 0.2, 0.3}
	path := []models.PathStep{{Agent: "research", Action: "search", Result: "data"}}

	m.CacheResult("Test query one", "r1", models.StrategyClassic, &embedding, path, 100)

	m.InvalidatePattern("*")

	_, _, hit := m.GetCachedResult(context.Background(), "Test query one", &embedding)
	assert.False(t, hit)

	_, ok := m.GetPath("Test query one")
	assert.False(t, ok)
}

func TestManager_CloseWithoutRemoteTierIsNoop(t *testing.T) {
	m := fullManager()
	assert.NoError(t, m.Close())
}

func TestManager_WarmCachePopulatesL1(t *testing.T) {
	m := fullManager()
	queries := []string{"What is AI?", "Python tutorial"}

	m.WarmCache(context.Background(), queries, func(ctx context.Context, query string) (string, models.Strategy) {
		return "precomputed:" + query, models.StrategyCache
	})

	for _, q := range queries {
		entry, ok := m.CheckL1(q)
		require.True(t, ok)
		assert.Equal(t, "precomputed:"+q, entry.Value)
	}
}
