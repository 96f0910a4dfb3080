package embedder

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/Rivega42/hybrid-rag-system/models"
)

func TestPut_EvictsOldestAtCapacity(t *testing.T) {
	e := &OpenAIEmbedder{cache: make(map[string]models.Vector), capacity: 2}

	e.put("a", models.Vector{1})
	e.put("b", models.Vector{2})
	e.put("c", models.Vector{3})

	_, ok := e.cache["a"]
	assert.False(t, ok)
	_, ok = e.cache["c"]
	assert.True(t, ok)
	assert.Len(t, e.cache, 2)
}

func TestPut_OverwritingExistingKeyDoesNotGrowOrder(t *testing.T) {
	e := &OpenAIEmbedder{cache: make(map[string]models.Vector), capacity: 2}

	e.put("a", models.Vector{1})
	e.put("a", models.Vector{9})

	assert.Len(t, e.order, 1)
	assert.Equal(t, models.Vector{9}, e.cache["a"])
}

func TestNew_RequiresAPIKey(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "")
	os.Unsetenv("OPENAI_API_KEY")
	_, err := New(Config{})
	assert.Error(t, err)
}
