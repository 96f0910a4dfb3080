package cache

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Rivega42/hybrid-rag-system/models"
)

func TestL2_SemanticSimilarityHit(t *testing.T) {
	c := NewL2(0.95, 100, time.Hour)
	c.Set("What is Python?", "Result", models.Vector{0.1, 0.2, 0.3}, models.StrategyClassic)

	match, ok := c.GetSimilar(models.Vector{0.11, 0.21, 0.31})
	require.True(t, ok)
	assert.Equal(t, "Result", match.Entry.Value)
	assert.Greater(t, match.Similarity, 0.95)
}

func TestL2_SemanticSimilarityMiss(t *testing.T) {
	c := NewL2(0.95, 100, time.Hour)
	c.Set("What is Python?", "Result", models.Vector{0.1, 0.2, 0.3}, models.StrategyClassic)

	_, ok := c.GetSimilar(models.Vector{0.9, 0.8, 0.7})
	assert.False(t, ok)
}

func TestL2_TopKSimilarRespectsLimit(t *testing.T) {
	c := NewL2(0.5, 100, time.Hour)
	base := models.Vector{0.5, 0.5, 0.5}
	for i := 0; i < 5; i++ {
		c.Set("query", "result", base, models.StrategyClassic)
	}

	matches := c.TopKSimilar(base, 3)
	assert.LessOrEqual(t, len(matches), 3)
	for _, m := range matches {
		assert.GreaterOrEqual(t, m.Similarity, 0.5)
	}
}
