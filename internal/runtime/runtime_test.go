package runtime

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Rivega42/hybrid-rag-system/internal/agents"
	"github.com/Rivega42/hybrid-rag-system/internal/analyzer"
	"github.com/Rivega42/hybrid-rag-system/internal/cache"
	"github.com/Rivega42/hybrid-rag-system/internal/classifier"
	"github.com/Rivega42/hybrid-rag-system/internal/hybrid"
	"github.com/Rivega42/hybrid-rag-system/internal/llm"
	"github.com/Rivega42/hybrid-rag-system/internal/pipeline"
	"github.com/Rivega42/hybrid-rag-system/internal/resource"
	"github.com/Rivega42/hybrid-rag-system/internal/router"
	"github.com/Rivega42/hybrid-rag-system/models"
)

type fakeRetriever struct{}

func (fakeRetriever) Retrieve(ctx context.Context, query string, limit int) ([]models.Document, error) {
	return []models.Document{{Content: "grounding fact"}}, nil
}

func (fakeRetriever) RetrieveByVector(ctx context.Context, vector models.Vector, limit int) ([]models.Document, error) {
	return nil, nil
}

type failingRetriever struct{}

func (failingRetriever) Retrieve(ctx context.Context, query string, limit int) ([]models.Document, error) {
	return nil, fmt.Errorf("retriever unavailable")
}

func (failingRetriever) RetrieveByVector(ctx context.Context, vector models.Vector, limit int) ([]models.Document, error) {
	return nil, nil
}

type fakeCompleter struct {
	content string
}

func (f fakeCompleter) Complete(ctx context.Context, req llm.CompletionRequest) (llm.CompletionResponse, error) {
	return llm.CompletionResponse{Content: f.content}, nil
}

type fakeWorker struct{ confidence float64 }

func (w fakeWorker) Execute(ctx context.Context, task models.Subtask, priorResults []models.AgentResult) (models.AgentResult, error) {
	return models.AgentResult{AgentType: task.Type, Result: "agentic result", Confidence: w.confidence}, nil
}

func newTestRuntime(agenticConfidence float64) *Runtime {
	c := classifier.New(classifier.Thresholds{Simple: 0.3, Complex: 0.7}, nil)
	a := analyzer.New(c, "en", nil)

	oracle := resource.New(resource.Config{})
	r := router.New(0.3, 0.7, oracle)

	cacheMgr := cache.NewManager(cache.Config{EnableL1: true, EnableL2: false, EnableL3: true}, nil)

	classic := pipeline.New(fakeRetriever{}, fakeCompleter{content: "classic answer"}, 5)

	workers := map[models.AgentRole]agents.Worker{
		models.AgentResearch:  fakeWorker{confidence: agenticConfidence},
		models.AgentAnalysis:  fakeWorker{confidence: agenticConfidence},
		models.AgentSynthesis: fakeWorker{confidence: agenticConfidence},
	}
	orchestrator := agents.New(workers, fakeCompleter{content: "agentic answer"}, agents.Config{Mode: agents.SchedulingSequential})

	hybridCoordinator := hybrid.New(classic, orchestrator)

	return New(a, r, cacheMgr, classic, orchestrator, hybridCoordinator, nil, nil, Config{Timeout: 5 * time.Second})
}

func TestRuntime_SimpleQueryForcesClassic(t *testing.T) {
	rt := newTestRuntime(0.9)
	result := rt.SimpleQuery(context.Background(), "what is Go?")
	require.Nil(t, result.Error)
	assert.Equal(t, models.StrategyClassic, result.StrategyUsed)
	assert.Equal(t, "classic answer", result.Answer)
}

func TestRuntime_ComplexQueryForcesAgentic(t *testing.T) {
	rt := newTestRuntime(0.9)
	result := rt.ComplexQuery(context.Background(), "explain the full architecture")
	require.Nil(t, result.Error)
	assert.Equal(t, models.StrategyAgentic, result.StrategyUsed)
	assert.Equal(t, "agentic answer", result.Answer)
}

func TestRuntime_EmptyQueryReturnsInvalidQueryError(t *testing.T) {
	rt := newTestRuntime(0.9)
	result := rt.Query(context.Background(), "", nil, nil, nil)
	require.NotNil(t, result.Error)
	assert.Equal(t, models.ErrInvalidQuery, *result.Error)
	assert.NotEmpty(t, result.Answer)
	assert.Equal(t, models.StrategyClassic, result.StrategyUsed)
}

func TestRuntime_HybridStrategyPromotesToSurvivingPipeline(t *testing.T) {
	c := classifier.New(classifier.Thresholds{Simple: 0.3, Complex: 0.7}, nil)
	a := analyzer.New(c, "en", nil)
	oracle := resource.New(resource.Config{})
	r := router.New(0.3, 0.7, oracle)
	cacheMgr := cache.NewManager(cache.Config{EnableL1: true, EnableL2: false, EnableL3: true}, nil)

	classic := pipeline.New(failingRetriever{}, fakeCompleter{content: "classic answer"}, 5)
	workers := map[models.AgentRole]agents.Worker{
		models.AgentResearch:  fakeWorker{confidence: 0.9},
		models.AgentAnalysis:  fakeWorker{confidence: 0.9},
		models.AgentSynthesis: fakeWorker{confidence: 0.9},
	}
	orchestrator := agents.New(workers, fakeCompleter{content: "agentic answer"}, agents.Config{Mode: agents.SchedulingSequential})
	hybridCoordinator := hybrid.New(classic, orchestrator)

	rt := New(a, r, cacheMgr, classic, orchestrator, hybridCoordinator, nil, nil, Config{Timeout: 5 * time.Second})

	strategy := models.StrategyHybrid
	result := rt.Query(context.Background(), "hybrid query", nil, nil, &strategy)
	require.Nil(t, result.Error)
	assert.Equal(t, models.StrategyAgentic, result.StrategyUsed)
	assert.True(t, result.FallbackUsed)
	assert.Equal(t, "agentic answer", result.Answer)
}

func TestRuntime_SecondIdenticalQueryHitsL1Cache(t *testing.T) {
	// Cache lookups are skipped for forced strategies (mirrors the
	// reference's "if cache_enabled and not force_strategy"), so this
	// exercises the routed path via plain Query, not SimpleQuery/ComplexQuery.
	rt := newTestRuntime(0.9)
	first := rt.Query(context.Background(), "cache me please", nil, nil, nil)
	require.Nil(t, first.Error)
	require.False(t, first.Cached)

	second := rt.Query(context.Background(), "cache me please", nil, nil, nil)
	require.Nil(t, second.Error)
	assert.True(t, second.Cached)
	assert.Equal(t, first.Answer, second.Answer)
}
