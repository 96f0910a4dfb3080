package router

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/Rivega42/hybrid-rag-system/internal/resource"
	"github.com/Rivega42/hybrid-rag-system/models"
)

func meta(complexity models.ComplexityClass, score float64, query string) models.QueryMetadata {
	return models.QueryMetadata{
		OriginalQuery:   query,
		Complexity:      complexity,
		ComplexityScore: score,
	}
}

func TestRoute_SimpleGoesClassic(t *testing.T) {
	r := New(0.3, 0.7, nil)
	decision := r.Route(context.Background(), meta(models.ComplexitySimple, 0.1, "short"))
	assert.Equal(t, models.StrategyClassic, decision.Strategy)
	assert.Equal(t, []models.Strategy{models.StrategyHybrid, models.StrategyAgentic}, decision.FallbackStrategies)
}

func TestRoute_ComplexAndMultiHopGoAgentic(t *testing.T) {
	r := New(0.3, 0.7, nil)

	d1 := r.Route(context.Background(), meta(models.ComplexityComplex, 0.75, "q"))
	assert.Equal(t, models.StrategyAgentic, d1.Strategy)

	d2 := r.Route(context.Background(), meta(models.ComplexityMultiHop, 0.9, "q"))
	assert.Equal(t, models.StrategyAgentic, d2.Strategy)
	assert.Equal(t, []models.Strategy{models.StrategyHybrid, models.StrategyClassic}, d2.FallbackStrategies)
}

func TestRoute_ModerateSplitsOnConfidence(t *testing.T) {
	r := New(0.3, 0.7, nil)

	highConfidence := r.Route(context.Background(), meta(models.ComplexityModerate, 0.8, "q"))
	assert.Equal(t, models.StrategyClassic, highConfidence.Strategy)

	lowConfidence := r.Route(context.Background(), meta(models.ComplexityModerate, 0.5, "q"))
	assert.Equal(t, models.StrategyHybrid, lowConfidence.Strategy)
}

func TestRoute_TimeAndCostScaleWithComplexity(t *testing.T) {
	r := New(0.3, 0.7, nil)

	simple := r.Route(context.Background(), meta(models.ComplexitySimple, 0.1, "short"))
	multiHop := r.Route(context.Background(), meta(models.ComplexityMultiHop, 0.9, "much longer query text here"))

	assert.Less(t, simple.EstimatedTimeMS, multiHop.EstimatedTimeMS)
	assert.Less(t, simple.EstimatedCostUSD, multiHop.EstimatedCostUSD)
}

func TestRoute_FallsBackWhenPrimaryUnavailable(t *testing.T) {
	oracle := resource.New(resource.Config{
		RequestsPerSecond: map[models.Strategy]float64{models.StrategyAgentic: 0.0001},
		Burst:             map[models.Strategy]int{models.StrategyAgentic: 1},
	})
	r := New(0.3, 0.7, oracle)

	// Exhaust the single token before routing so the primary strategy reads
	// as unavailable and the router must fall back.
	oracle.Available(context.Background(), models.StrategyAgentic)

	decision := r.Route(context.Background(), meta(models.ComplexityComplex, 0.75, "q"))
	assert.NotEqual(t, models.StrategyAgentic, decision.Strategy)
	assert.NotContains(t, decision.FallbackStrategies, decision.Strategy)
}

func TestRoute_ReasoningMentionsComplexity(t *testing.T) {
	r := New(0.3, 0.7, nil)
	decision := r.Route(context.Background(), meta(models.ComplexitySimple, 0.1, "q"))
	assert.Contains(t, decision.Reasoning, "simple")
}
