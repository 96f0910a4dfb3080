// Why this file: ./internal/runtime/runtime.go
// Runtime is the fabric's composition root. It replaces the teacher's
// module-level singletons (internal/app/app.go wired globals) with a single
// struct constructed once and passed explicitly, exposing the Core API:
// Query, SimpleQuery, ComplexQuery, Close. Grounded on the original's
// HybridRAG.query() control flow (analyze -> check cache -> route ->
// execute -> save to cache -> collect metrics -> seal result).
package runtime

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/Rivega42/hybrid-rag-system/internal/agents"
	"github.com/Rivega42/hybrid-rag-system/internal/analyzer"
	"github.com/Rivega42/hybrid-rag-system/internal/cache"
	"github.com/Rivega42/hybrid-rag-system/internal/embedder"
	"github.com/Rivega42/hybrid-rag-system/internal/hybrid"
	"github.com/Rivega42/hybrid-rag-system/internal/pipeline"
	"github.com/Rivega42/hybrid-rag-system/internal/router"
	"github.com/Rivega42/hybrid-rag-system/models"
)

// MetricsSink is the narrow metrics interface the runtime emits to.
type MetricsSink interface {
	Record(event string, labels map[string]string, value float64)
}

// Config controls runtime-wide behaviour not owned by any one collaborator.
type Config struct {
	Timeout time.Duration // per-request deadline; 0 defaults to 30s
}

// Runtime wires every fabric component together and is the only thing a
// caller (the CLI, an HTTP handler, a test) needs to hold.
type Runtime struct {
	analyzer     *analyzer.Analyzer
	router       *router.Router
	cache        *cache.Manager
	classic      *pipeline.ClassicPipeline
	orchestrator *agents.Orchestrator
	hybrid       *hybrid.Coordinator
	embedder     embedder.Embedder // nil disables L2 semantic-cache lookups and writes
	metrics      MetricsSink
	timeout      time.Duration
	closers      []func() error

	inflight singleflight.Group
}

// New builds a Runtime from its fully-constructed collaborators. Any of
// cacheMgr, emb, metrics may be nil to disable that concern. closers are
// invoked in order by Close (e.g. the retriever's gRPC connection, which
// Runtime itself never touches directly since it only sees the Retriever
// through the classic pipeline and research worker).
func New(
	a *analyzer.Analyzer,
	r *router.Router,
	cacheMgr *cache.Manager,
	classic *pipeline.ClassicPipeline,
	orchestrator *agents.Orchestrator,
	hybridCoordinator *hybrid.Coordinator,
	emb embedder.Embedder,
	metrics MetricsSink,
	cfg Config,
	closers ...func() error,
) *Runtime {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Runtime{
		analyzer:     a,
		router:       r,
		cache:        cacheMgr,
		classic:      classic,
		orchestrator: orchestrator,
		hybrid:       hybridCoordinator,
		embedder:     emb,
		metrics:      metrics,
		timeout:      timeout,
		closers:      closers,
	}
}

// Query runs the full pipeline for text: analyze, check cache, route,
// execute, cache the result, and return a sealed QueryResult. It never
// returns a Go error; failures are carried inside QueryResult.Error, per the
// fabric's error handling design (every surfaced error rides inside a
// sealed result rather than propagating across the Core API boundary).
func (rt *Runtime) Query(ctx context.Context, text string, userID, sessionID *string, forceStrategy *models.Strategy) *models.QueryResult {
	start := time.Now()

	if text == "" {
		return rt.errorResult("", models.ErrInvalidQuery, "query text is empty", nil, models.StrategyClassic, false, start)
	}

	ctx, cancel := context.WithTimeout(ctx, rt.timeout)
	defer cancel()

	query := models.NewQuery(text, userID, sessionID)

	v, err, _ := rt.inflight.Do(fingerprint(text, forceStrategy), func() (interface{}, error) {
		return rt.run(ctx, query, forceStrategy)
	})

	result, ok := v.(*models.QueryResult)
	if !ok || result == nil {
		return rt.errorResult("", models.ErrInternal, "internal failure", err, models.StrategyClassic, false, start)
	}
	result.LatencyMS = time.Since(start).Milliseconds()
	return result
}

// SimpleQuery forces the classic strategy, bypassing the router.
func (rt *Runtime) SimpleQuery(ctx context.Context, text string) *models.QueryResult {
	s := models.StrategyClassic
	return rt.Query(ctx, text, nil, nil, &s)
}

// ComplexQuery forces the agentic strategy, bypassing the router.
func (rt *Runtime) ComplexQuery(ctx context.Context, text string) *models.QueryResult {
	s := models.StrategyAgentic
	return rt.Query(ctx, text, nil, nil, &s)
}

// Close releases downstream connections registered at construction time
// (e.g. the retriever's gRPC connection). Continues through all closers
// even if one fails, returning the first error encountered.
func (rt *Runtime) Close() error {
	var firstErr error
	for _, close := range rt.closers {
		if err := close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

func (rt *Runtime) run(ctx context.Context, query models.Query, forceStrategy *models.Strategy) (*models.QueryResult, error) {
	start := time.Now()
	meta := rt.analyzer.Analyze(ctx, query)

	if forceStrategy == nil && rt.cache != nil {
		if result := rt.checkCache(ctx, &meta); result != nil {
			return result, nil
		}
	}

	decision := rt.routingDecision(ctx, meta, forceStrategy)

	result, err := rt.execute(ctx, query.Text, decision.Strategy, &meta)
	if err != nil {
		return rt.errorResult(meta.QueryID.String(), errorCodeFor(decision.Strategy), err.Error(), err, decision.Strategy, false, start), nil
	}
	result.Metadata = &meta

	if rt.cache != nil {
		rt.cache.CacheResult(query.Text, result.Answer, result.StrategyUsed, meta.Embedding, pathStepsFrom(result.ExecutionPath), result.LatencyMS)
	}
	if rt.metrics != nil {
		rt.metrics.Record("runtime.query", map[string]string{
			"strategy":   string(result.StrategyUsed),
			"complexity": string(meta.Complexity),
		}, float64(time.Since(start).Milliseconds()))
	}

	return result, nil
}

func (rt *Runtime) checkCache(ctx context.Context, meta *models.QueryMetadata) *models.QueryResult {
	if value, strategy, hit := rt.cache.GetCachedResult(ctx, meta.OriginalQuery, meta.Embedding); hit {
		answer, _ := value.(string)
		return &models.QueryResult{
			QueryID:         meta.QueryID.String(),
			Answer:          answer,
			StrategyUsed:    strategy,
			ConfidenceScore: 1.0,
			RelevanceScore:  1.0,
			Cached:          true,
			Metadata:        meta,
		}
	}

	if rt.embedder == nil || meta.HasEmbedding() {
		return nil
	}
	vec, err := rt.embedder.Embed(ctx, meta.OriginalQuery)
	if err != nil {
		return nil
	}
	meta.Embedding = &vec

	if value, strategy, hit := rt.cache.GetCachedResult(ctx, meta.OriginalQuery, meta.Embedding); hit {
		answer, _ := value.(string)
		return &models.QueryResult{
			QueryID:         meta.QueryID.String(),
			Answer:          answer,
			StrategyUsed:    strategy,
			ConfidenceScore: 1.0,
			RelevanceScore:  1.0,
			Cached:          true,
			Metadata:        meta,
		}
	}
	return nil
}

func (rt *Runtime) routingDecision(ctx context.Context, meta models.QueryMetadata, forceStrategy *models.Strategy) models.RoutingDecision {
	if forceStrategy != nil {
		return models.RoutingDecision{
			Strategy:   *forceStrategy,
			Confidence: 1.0,
			Reasoning:  "caller forced strategy",
		}
	}
	return rt.router.Route(ctx, meta)
}

func (rt *Runtime) execute(ctx context.Context, text string, strategy models.Strategy, meta *models.QueryMetadata) (*models.QueryResult, error) {
	switch strategy {
	case models.StrategyClassic:
		out, err := rt.classic.Run(ctx, text)
		if err != nil {
			return nil, fmt.Errorf("classic pipeline: %w", err)
		}
		return &models.QueryResult{
			QueryID:            meta.QueryID.String(),
			Answer:             out.Answer,
			StrategyUsed:       models.StrategyClassic,
			ConfidenceScore:    0.8,
			RelevanceScore:     0.8,
			TokensUsed:         out.Usage.TotalTokens,
			CostUSD:            out.Cost.TotalCost,
			DocumentsRetrieved: out.Documents,
			ExecutionPath:      []string{"classic_rag"},
		}, nil

	case models.StrategyAgentic:
		out, err := rt.orchestrator.Run(ctx, text)
		if err != nil {
			return nil, fmt.Errorf("agent orchestrator: %w", err)
		}
		agentsUsed := make([]models.AgentRole, 0, len(out.Results))
		tokens := 0
		cost := 0.0
		for _, r := range out.Results {
			agentsUsed = append(agentsUsed, r.AgentType)
			tokens += r.TokensUsed
			cost += r.CostUSD
		}
		path := make([]string, 0, len(out.Path))
		reasoning := make([]string, 0, len(out.Results))
		for _, step := range out.Path {
			path = append(path, step.Agent+":"+step.Action)
		}
		for _, r := range out.Results {
			reasoning = append(reasoning, r.Result)
		}
		return &models.QueryResult{
			QueryID:         meta.QueryID.String(),
			Answer:          out.Answer,
			StrategyUsed:    models.StrategyAgentic,
			ConfidenceScore: out.Confidence,
			RelevanceScore:  0.9,
			TokensUsed:      tokens,
			CostUSD:         cost,
			AgentsUsed:      agentsUsed,
			AgentResults:    out.Results,
			ExecutionPath:   path,
			ReasoningChain:  reasoning,
		}, nil

	case models.StrategyHybrid:
		out, err := rt.hybrid.Run(ctx, text)
		if err != nil {
			return nil, fmt.Errorf("hybrid coordinator: %w", err)
		}
		return &models.QueryResult{
			QueryID:            meta.QueryID.String(),
			Answer:             out.Answer,
			StrategyUsed:       out.WinningStrategy,
			ConfidenceScore:    out.ConfidenceScore,
			RelevanceScore:     out.RelevanceScore,
			LatencyMS:          out.LatencyMS,
			TokensUsed:         out.TokensUsed,
			CostUSD:            out.CostUSD,
			DocumentsRetrieved: out.DocumentsRetrieved,
			AgentsUsed:         out.AgentsUsed,
			AgentResults:       out.AgentResults,
			ExecutionPath:      out.ExecutionPath,
			ReasoningChain:     out.ReasoningChain,
			FallbackUsed:       out.FallbackUsed,
		}, nil

	default:
		return nil, fmt.Errorf("unknown routing strategy: %s", strategy)
	}
}

// errorResult builds the QueryResult surfaced for a failed query. strategy is
// the last strategy actually attempted (or the default classic strategy when
// none was attempted, e.g. validation failures before routing), and
// fallbackUsed reports whether that strategy was itself already a fallback.
// Every field spec.md §8 invariant #2 requires of a result — including
// errors — is set here: a valid strategy_used, a truthful fallback_used, and
// a short apologetic answer.
func (rt *Runtime) errorResult(queryID string, code models.ErrorCode, message string, cause error, strategy models.Strategy, fallbackUsed bool, start time.Time) *models.QueryResult {
	if rt.metrics != nil {
		rt.metrics.Record("runtime.error", map[string]string{
			"code":    string(code),
			"message": message,
		}, 1)
	}
	errCode := code
	return &models.QueryResult{
		QueryID:      queryID,
		Answer:       "I'm sorry, I couldn't process that query. Please try again.",
		StrategyUsed: strategy,
		FallbackUsed: fallbackUsed,
		Error:        &errCode,
		LatencyMS:    time.Since(start).Milliseconds(),
	}
}

func errorCodeFor(strategy models.Strategy) models.ErrorCode {
	if strategy == "" {
		return models.ErrRoutingFailed
	}
	return models.ErrPipelineFailed
}

func pathStepsFrom(path []string) []models.PathStep {
	steps := make([]models.PathStep, 0, len(path))
	for _, p := range path {
		steps = append(steps, models.PathStep{Agent: p, Action: "execute"})
	}
	return steps
}

// fingerprint is the single-flight dedup key: same text + same forced
// strategy collapse into one in-flight execution.
func fingerprint(text string, forceStrategy *models.Strategy) string {
	if forceStrategy == nil {
		return text
	}
	return string(*forceStrategy) + "|" + text
}
