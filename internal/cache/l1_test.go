package cache

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Rivega42/hybrid-rag-system/models"
)

func TestL1_ExactMatchHit(t *testing.T) {
	c := NewL1(100, time.Hour)
	c.Set("What is Python?", "Python is a programming language", models.StrategyClassic)

	entry, ok := c.Get("What is Python?")
	require.True(t, ok)
	assert.Equal(t, "Python is a programming language", entry.Value)
}

func TestL1_ExactMatchMiss(t *testing.T) {
	c := NewL1(100, time.Hour)
	c.Set("What is Python?", "Result", models.StrategyClassic)

	_, ok := c.Get("What is python?")
	assert.False(t, ok)
}

func TestL1_TTLExpiration(t *testing.T) {
	c := NewL1(100, 50*time.Millisecond)
	c.Set("query", "result", models.StrategyClassic)

	_, ok := c.Get("query")
	require.True(t, ok)

	time.Sleep(80 * time.Millisecond)
	_, ok = c.Get("query")
	assert.False(t, ok)
}

func TestL1_MaxSizeEvictsLRU(t *testing.T) {
	c := NewL1(3, time.Hour)
	c.Set("query1", "result1", models.StrategyClassic)
	c.Set("query2", "result2", models.StrategyClassic)
	c.Set("query3", "result3", models.StrategyClassic)
	c.Set("query4", "result4", models.StrategyClassic)

	_, ok := c.Get("query1")
	assert.False(t, ok)

	entry, ok := c.Get("query4")
	require.True(t, ok)
	assert.Equal(t, "result4", entry.Value)
}

func TestL1_Clear(t *testing.T) {
	c := NewL1(100, time.Hour)
	c.Set("query1", "result1", models.StrategyClassic)
	c.Set("query2", "result2", models.StrategyClassic)

	c.Clear()

	_, ok := c.Get("query1")
	assert.False(t, ok)
	assert.Equal(t, 0, c.Size())
}
