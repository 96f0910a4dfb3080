// Why this file: ./internal/embedder/embedder.go
// Embedder is the fabric's external embedding collaborator, consumed by
// the runtime's cache check (lazily) and by the Retriever. Adapted
// from the teacher's EmbeddingService (internal/vectordb/embeddings.go):
// same API-key-from-env fallback and same in-memory embedding cache
// (teacher hand-rolled the HTTP call; this uses go-openai's embeddings
// endpoint directly, consistent with the Completer's client choice).
package embedder

import (
	"context"
	"fmt"
	"os"
	"sync"

	openai "github.com/sashabaranov/go-openai"

	"github.com/Rivega42/hybrid-rag-system/models"
)

// Embedder turns text into a dense vector.
type Embedder interface {
	Embed(ctx context.Context, text string) (models.Vector, error)
	EmbedBatch(ctx context.Context, texts []string) ([]models.Vector, error)
}

// OpenAIEmbedder is the default Embedder, backed by OpenAI's embeddings
// endpoint with a bounded in-memory cache so identical text is not
// re-embedded while it stays cached; once the cache is full the oldest
// entry is evicted and that text is embedded again on its next request.
type OpenAIEmbedder struct {
	client *openai.Client
	model  openai.EmbeddingModel

	mu       sync.Mutex
	cache    map[string]models.Vector
	capacity int
	order    []string
}

// Config configures an OpenAIEmbedder.
type Config struct {
	APIKey    string
	Model     string // defaults to text-embedding-3-small
	CacheSize int    // defaults to 1000
}

// New builds an OpenAIEmbedder.
func New(cfg Config) (*OpenAIEmbedder, error) {
	apiKey := cfg.APIKey
	if apiKey == "" {
		apiKey = os.Getenv("OPENAI_API_KEY")
	}
	if apiKey == "" {
		return nil, fmt.Errorf("openai api key not provided")
	}

	model := openai.SmallEmbedding3
	if cfg.Model != "" {
		model = openai.EmbeddingModel(cfg.Model)
	}

	capacity := cfg.CacheSize
	if capacity <= 0 {
		capacity = 1000
	}

	return &OpenAIEmbedder{
		client:   openai.NewClient(apiKey),
		model:    model,
		cache:    make(map[string]models.Vector),
		capacity: capacity,
	}, nil
}

// Embed returns the embedding for a single text, using the cache when
// available.
func (e *OpenAIEmbedder) Embed(ctx context.Context, text string) (models.Vector, error) {
	results, err := e.EmbedBatch(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return results[0], nil
}

// EmbedBatch embeds multiple texts, fetching only the cache misses from
// the provider.
func (e *OpenAIEmbedder) EmbedBatch(ctx context.Context, texts []string) ([]models.Vector, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	results := make([]models.Vector, len(texts))
	var missTexts []string
	var missIndices []int

	e.mu.Lock()
	for i, text := range texts {
		if cached, ok := e.cache[text]; ok {
			results[i] = cached
		} else {
			missTexts = append(missTexts, text)
			missIndices = append(missIndices, i)
		}
	}
	e.mu.Unlock()

	if len(missTexts) == 0 {
		return results, nil
	}

	resp, err := e.client.CreateEmbeddings(ctx, openai.EmbeddingRequest{
		Input: missTexts,
		Model: e.model,
	})
	if err != nil {
		return nil, fmt.Errorf("openai embedding failed: %w", err)
	}
	if len(resp.Data) != len(missTexts) {
		return nil, fmt.Errorf("expected %d embeddings, got %d", len(missTexts), len(resp.Data))
	}

	e.mu.Lock()
	for j, data := range resp.Data {
		vec := models.Vector(data.Embedding)
		results[missIndices[j]] = vec
		e.put(missTexts[j], vec)
	}
	e.mu.Unlock()

	return results, nil
}

// put stores vec under text, evicting the oldest entry at capacity. Caller
// must hold e.mu.
func (e *OpenAIEmbedder) put(text string, vec models.Vector) {
	if _, exists := e.cache[text]; !exists {
		e.order = append(e.order, text)
		if len(e.order) > e.capacity {
			oldest := e.order[0]
			e.order = e.order[1:]
			delete(e.cache, oldest)
		}
	}
	e.cache[text] = vec
}
