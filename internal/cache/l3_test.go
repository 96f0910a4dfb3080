package cache

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Rivega42/hybrid-rag-system/models"
)

func TestL3_PathCaching(t *testing.T) {
	c := NewL3(100, time.Hour)
	path := []models.PathStep{
		{Agent: "research", Action: "search", Result: "data1"},
		{Agent: "analysis", Action: "process", Result: "data2"},
		{Agent: "synthesis", Action: "combine", Result: "final"},
	}

	c.SavePath("Complex analytical query", path, 1000)

	got, ok := c.GetPath("Complex analytical query")
	require.True(t, ok)
	assert.Equal(t, path, got)
}

func TestL3_PathOptimizationPrefersFewerSteps(t *testing.T) {
	c := NewL3(100, time.Hour)
	long := make([]models.PathStep, 5)
	short := make([]models.PathStep, 3)

	c.SavePath("query", long, 1000)
	c.SavePath("query", short, 500)

	got, ok := c.GetPath("query")
	require.True(t, ok)
	assert.Len(t, got, 3)
}

func TestL3_WorsePathDoesNotReplaceBetterOne(t *testing.T) {
	c := NewL3(100, time.Hour)
	short := make([]models.PathStep, 2)
	long := make([]models.PathStep, 6)

	c.SavePath("query", short, 200)
	c.SavePath("query", long, 5000)

	got, ok := c.GetPath("query")
	require.True(t, ok)
	assert.Len(t, got, 2)
}
