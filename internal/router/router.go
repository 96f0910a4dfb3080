// Why this file: ./internal/router/router.go
// Router picks a processing strategy for an already-classified
// query. It is a direct generalization of the reference router
// (routing/router.py): same decision table, same fixed fallback chains,
// same base time/cost tables, same reasoning templates — translated from
// Python string formatting into Go's text-template-free fmt.Sprintf idiom
// the teacher uses throughout its logger and display packages.
package router

import (
	"context"
	"fmt"

	"github.com/Rivega42/hybrid-rag-system/internal/resource"
	"github.com/Rivega42/hybrid-rag-system/models"
)

// Router turns QueryMetadata into a RoutingDecision.
type Router struct {
	simpleThreshold  float64
	complexThreshold float64
	oracle           *resource.Oracle
}

// New builds a Router. oracle may be nil, in which case resource
// availability checks always pass (every strategy is reported available).
func New(simpleThreshold, complexThreshold float64, oracle *resource.Oracle) *Router {
	return &Router{
		simpleThreshold:  simpleThreshold,
		complexThreshold: complexThreshold,
		oracle:           oracle,
	}
}

// Route determines the strategy for a query, consulting the resource
// oracle for final availability before returning the decision.
func (r *Router) Route(ctx context.Context, meta models.QueryMetadata) models.RoutingDecision {
	strategy, confidence := r.determineStrategy(meta.Complexity, meta.ComplexityScore)
	estimatedTime := estimateTimeMS(strategy, meta.Complexity)
	estimatedCost := estimateCostUSD(strategy, len(meta.OriginalQuery))

	strategy = r.checkResourceAvailability(ctx, strategy, fallbackStrategies(strategy))
	fallbacks := fallbackStrategies(strategy)

	return models.RoutingDecision{
		Strategy:           strategy,
		Confidence:         confidence,
		Reasoning:          reasoning(strategy, meta.Complexity),
		FallbackStrategies: fallbacks,
		EstimatedTimeMS:    estimatedTime,
		EstimatedCostUSD:   estimatedCost,
		CacheHit:           false,
	}
}

// determineStrategy mirrors _determine_strategy: simple always goes
// classic, complex/multi_hop always goes agentic, moderate splits on
// confidence, and anything unrecognized defaults to hybrid. The returned
// confidence is the classifier's score itself, clamped into [0,1] so the
// RoutingDecision always carries a usable figure.
func (r *Router) determineStrategy(complexity models.ComplexityClass, score float64) (models.Strategy, float64) {
	confidence := score
	if confidence < 0 {
		confidence = 0
	}
	if confidence > 1 {
		confidence = 1
	}

	switch complexity {
	case models.ComplexitySimple:
		return models.StrategyClassic, confidence
	case models.ComplexityComplex, models.ComplexityMultiHop:
		return models.StrategyAgentic, confidence
	case models.ComplexityModerate:
		if confidence > 0.7 {
			return models.StrategyClassic, confidence
		}
		return models.StrategyHybrid, confidence
	default:
		return models.StrategyHybrid, confidence
	}
}

// fallbackStrategies mirrors _get_fallback_strategies' fixed chains.
func fallbackStrategies(primary models.Strategy) []models.Strategy {
	switch primary {
	case models.StrategyAgentic:
		return []models.Strategy{models.StrategyHybrid, models.StrategyClassic}
	case models.StrategyHybrid:
		return []models.Strategy{models.StrategyClassic, models.StrategyAgentic}
	case models.StrategyClassic:
		return []models.Strategy{models.StrategyHybrid, models.StrategyAgentic}
	default:
		return []models.Strategy{models.StrategyClassic}
	}
}

var baseTimesMS = map[models.Strategy]int{
	models.StrategyClassic: 200,
	models.StrategyAgentic: 2000,
	models.StrategyHybrid:  1500,
	models.StrategyCache:   10,
}

var complexityTimeMultiplier = map[models.ComplexityClass]float64{
	models.ComplexitySimple:   0.5,
	models.ComplexityModerate: 1.0,
	models.ComplexityComplex:  2.0,
	models.ComplexityMultiHop: 3.0,
}

func estimateTimeMS(strategy models.Strategy, complexity models.ComplexityClass) int {
	base, ok := baseTimesMS[strategy]
	if !ok {
		base = 1000
	}
	multiplier, ok := complexityTimeMultiplier[complexity]
	if !ok {
		multiplier = 1.0
	}
	return int(float64(base) * multiplier)
}

var baseCostsUSD = map[models.Strategy]float64{
	models.StrategyClassic: 0.001,
	models.StrategyAgentic: 0.01,
	models.StrategyHybrid:  0.005,
	models.StrategyCache:   0.0,
}

func estimateCostUSD(strategy models.Strategy, queryLength int) float64 {
	base, ok := baseCostsUSD[strategy]
	if !ok {
		base = 0.003
	}
	lengthMultiplier := 1.0 + float64(queryLength)/1000.0
	return base * lengthMultiplier
}

// checkResourceAvailability walks the fixed fallback chain, returning the
// first strategy the oracle reports available. If none are available it
// returns the primary strategy unchanged; no ResourceUnavailable error is
// raised on this path, by the router or by the runtime.
func (r *Router) checkResourceAvailability(ctx context.Context, strategy models.Strategy, fallbacks []models.Strategy) models.Strategy {
	if r.oracle == nil {
		return strategy
	}

	if r.oracle.Available(ctx, strategy) {
		return strategy
	}

	for _, fallback := range fallbacks {
		if r.oracle.Available(ctx, fallback) {
			return fallback
		}
	}

	return strategy
}

func reasoning(strategy models.Strategy, complexity models.ComplexityClass) string {
	switch strategy {
	case models.StrategyClassic:
		return fmt.Sprintf(
			"Query classified as %s complexity. Using classic pipeline for fast retrieval.",
			complexity,
		)
	case models.StrategyAgentic:
		return "Query requires complex analysis and multi-step processing. Using agent orchestration for deep research."
	case models.StrategyHybrid:
		return "Query of moderate complexity needs a balanced approach. Using hybrid strategy for an optimal result."
	case models.StrategyCache:
		return "Similar query found in cache. Using cached result for an instant response."
	default:
		return fmt.Sprintf("Strategy %s selected from query analysis.", strategy)
	}
}
