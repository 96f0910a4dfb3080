// Why this file: ./internal/hybrid/coordinator.go
// Coordinator implements the fabric's hybrid strategy: run the classic and
// agentic pipelines concurrently and keep the more confident answer.
// Grounded on the original's HybridRAG._execute_hybrid, which launches both
// pipelines as asyncio tasks and gathers them; golang.org/x/sync/errgroup is
// the idiomatic Go equivalent of asyncio.gather for this fan-out.
package hybrid

import (
	"context"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/Rivega42/hybrid-rag-system/internal/agents"
	"github.com/Rivega42/hybrid-rag-system/internal/pipeline"
	"github.com/Rivega42/hybrid-rag-system/models"
)

// Coordinator fans a query out to the classic pipeline and the agent
// orchestrator, then keeps whichever produced the more confident answer.
type Coordinator struct {
	classic      *pipeline.ClassicPipeline
	orchestrator *agents.Orchestrator
}

// New builds a Coordinator over an already-constructed classic pipeline and
// agent orchestrator.
func New(classic *pipeline.ClassicPipeline, orchestrator *agents.Orchestrator) *Coordinator {
	return &Coordinator{classic: classic, orchestrator: orchestrator}
}

// Outcome is the winning pipeline's contribution to a QueryResult, plus the
// bookkeeping the caller needs to tell which path won.
type Outcome struct {
	Answer          string
	ConfidenceScore float64
	RelevanceScore  float64
	LatencyMS       int64
	TokensUsed      int
	CostUSD         float64

	DocumentsRetrieved []models.Document
	AgentsUsed         []models.AgentRole
	AgentResults       []models.AgentResult
	ExecutionPath      []string
	ReasoningChain     []string

	FallbackUsed bool

	// WinningStrategy is the pipeline that actually produced Answer:
	// StrategyClassic or StrategyAgentic. The caller uses this to report the
	// true strategy used instead of always reporting StrategyHybrid, since a
	// one-sided failure means only one pipeline really ran.
	WinningStrategy models.Strategy
}

// Run executes both pipelines concurrently and returns the result with the
// higher confidence score. Classic wins ties, since it is the cheaper path.
// If exactly one pipeline fails, the other's result is returned with
// FallbackUsed set. If both fail, Run returns the agentic error, since the
// agentic path is the more informative failure to surface.
func (c *Coordinator) Run(ctx context.Context, query string) (Outcome, error) {
	var (
		classicOutcome pipeline.Outcome
		classicErr     error
		classicMillis  int64
		agenticOutcome agents.Outcome
		agenticErr     error
		agenticMillis  int64
	)

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		start := time.Now()
		out, err := c.classic.Run(gctx, query)
		classicMillis = time.Since(start).Milliseconds()
		classicOutcome, classicErr = out, err
		return nil
	})

	g.Go(func() error {
		start := time.Now()
		out, err := c.orchestrator.Run(gctx, query)
		agenticMillis = time.Since(start).Milliseconds()
		agenticOutcome, agenticErr = out, err
		return nil
	})

	// Both goroutines swallow their own errors into the captured variables
	// above, so g.Wait() itself never fails; errors are interpreted below so
	// that one pipeline failing doesn't cancel the other via gctx.
	_ = g.Wait()

	switch {
	case classicErr != nil && agenticErr != nil:
		return Outcome{}, agenticErr
	case classicErr != nil:
		return fromAgentic(agenticOutcome, agenticMillis, true), nil
	case agenticErr != nil:
		return fromClassic(classicOutcome, classicMillis, true), nil
	}

	classicConfidence := classicConfidenceScore(classicOutcome)
	agenticConfidence := agenticConfidenceScore(agenticOutcome)

	if agenticConfidence > classicConfidence {
		return fromAgentic(agenticOutcome, agenticMillis, false), nil
	}
	return fromClassic(classicOutcome, classicMillis, false), nil
}

// classicConfidenceScore mirrors the original's default confidence of 0.8
// for the classic path, since ClassicPipeline.Outcome carries no confidence
// field of its own (a single completion call has no ensemble signal).
func classicConfidenceScore(out pipeline.Outcome) float64 {
	if out.Answer == "" {
		return 0
	}
	return 0.8
}

func agenticConfidenceScore(out agents.Outcome) float64 {
	return out.Confidence
}

func fromClassic(out pipeline.Outcome, millis int64, fallback bool) Outcome {
	return Outcome{
		Answer:             out.Answer,
		ConfidenceScore:    classicConfidenceScore(out),
		RelevanceScore:     0.8,
		LatencyMS:          millis,
		TokensUsed:         out.Usage.TotalTokens,
		CostUSD:            out.Cost.TotalCost,
		DocumentsRetrieved: out.Documents,
		ExecutionPath:      []string{"classic_rag"},
		FallbackUsed:       fallback,
		WinningStrategy:    models.StrategyClassic,
	}
}

func fromAgentic(out agents.Outcome, millis int64, fallback bool) Outcome {
	agentsUsed := make([]models.AgentRole, 0, len(out.Results))
	tokens := 0
	cost := 0.0
	docs := make([]models.Document, 0)
	reasoning := make([]string, 0, len(out.Results))
	for _, r := range out.Results {
		agentsUsed = append(agentsUsed, r.AgentType)
		tokens += r.TokensUsed
		cost += r.CostUSD
		docs = append(docs, r.Sources...)
		reasoning = append(reasoning, r.Result)
	}

	path := make([]string, 0, len(out.Path))
	for _, step := range out.Path {
		path = append(path, step.Agent+":"+step.Action)
	}

	return Outcome{
		Answer:             out.Answer,
		ConfidenceScore:    out.Confidence,
		RelevanceScore:     0.9,
		LatencyMS:          millis,
		TokensUsed:         tokens,
		CostUSD:            cost,
		DocumentsRetrieved: docs,
		AgentsUsed:         agentsUsed,
		AgentResults:       out.Results,
		ExecutionPath:      path,
		ReasoningChain:     reasoning,
		FallbackUsed:       fallback,
		WinningStrategy:    models.StrategyAgentic,
	}
}
