// Why this file: ./internal/agents/orchestrator.go
// Orchestrator runs the Agentic RAG path: decompose a query into Subtasks,
// assign each to the matching Worker, execute under one of three
// scheduling modes, refine low-confidence results up to max_iterations,
// and synthesize a final answer. Grounded directly on the reference
// AgentOrchestrator/decompose/refine/synthesize flow
// (examples/advanced/01_agentic_rag.py), with sequential/parallel fan-out
// grounded on the teacher's errgroup-free goroutine+channel idiom
// generalized with golang.org/x/sync/errgroup, the pack's standard
// bounded-fan-out tool (Replicant-Partners-Chrysalis, Tangerg-lynx both
// depend on it for the same shape of work).
package agents

import (
	"context"
	"fmt"
	"sort"

	"golang.org/x/sync/errgroup"

	"github.com/Rivega42/hybrid-rag-system/internal/llm"
	"github.com/Rivega42/hybrid-rag-system/models"
)

// SchedulingMode controls how subtasks without unmet dependencies are run.
type SchedulingMode string

const (
	// SchedulingSequential runs subtasks one at a time, in priority order.
	SchedulingSequential SchedulingMode = "sequential"
	// SchedulingParallel runs every subtask concurrently, bounded by
	// MaxConcurrency; declared dependencies are ignored and no prior
	// results are passed to the workers.
	SchedulingParallel SchedulingMode = "parallel"
	// SchedulingAdaptive parallelizes independent subtasks but serializes
	// any subtask with unmet dependencies behind the results it needs.
	SchedulingAdaptive SchedulingMode = "adaptive"
)

// Config controls the Orchestrator's iteration and concurrency behavior.
type Config struct {
	Mode                SchedulingMode
	MaxIterations       int
	ConfidenceThreshold float64
	MaxConcurrency      int
}

// Orchestrator decomposes, assigns, executes, refines, and synthesizes.
type Orchestrator struct {
	workers   map[models.AgentRole]Worker
	completer llm.Completer
	cfg       Config
}

// New builds an Orchestrator. workers must have an entry for every
// AgentRole the decomposition step might assign; completer drives
// decomposition and final synthesis.
func New(workers map[models.AgentRole]Worker, completer llm.Completer, cfg Config) *Orchestrator {
	if cfg.MaxIterations <= 0 {
		cfg.MaxIterations = 3
	}
	if cfg.ConfidenceThreshold <= 0 {
		cfg.ConfidenceThreshold = 0.8
	}
	if cfg.MaxConcurrency <= 0 {
		cfg.MaxConcurrency = 4
	}
	if cfg.Mode == "" {
		cfg.Mode = SchedulingAdaptive
	}
	return &Orchestrator{workers: workers, completer: completer, cfg: cfg}
}

// Outcome is the Orchestrator's answer to one query.
type Outcome struct {
	Answer     string
	Confidence float64
	Results    []models.AgentResult
	Path       []models.PathStep
}

// Run decomposes query, executes every subtask, refines any low-confidence
// result up to MaxIterations times, and synthesizes the final answer.
func (o *Orchestrator) Run(ctx context.Context, query string) (Outcome, error) {
	subtasks, err := o.decompose(ctx, query)
	if err != nil {
		return Outcome{}, fmt.Errorf("decompose: %w", err)
	}

	results, path, err := o.executeAll(ctx, subtasks)
	if err != nil {
		return Outcome{}, fmt.Errorf("execute: %w", err)
	}

	results, path = o.refineLowConfidence(ctx, subtasks, results, path)

	answer, confidence, err := o.synthesize(ctx, query, results)
	if err != nil {
		return Outcome{}, fmt.Errorf("synthesize: %w", err)
	}

	return Outcome{Answer: answer, Confidence: confidence, Results: results, Path: path}, nil
}

// decompose asks the Completer to break query into subtasks. Parsing a
// free-form LLM response into a strict decomposition is unreliable, so the
// fabric always uses a fixed three-subtask shape (research, analysis,
// synthesis) and only consults the model for the task descriptions
// themselves: the model's lines replace the template descriptions only when
// it returns exactly three of them, otherwise the template is used as is.
func (o *Orchestrator) decompose(ctx context.Context, query string) ([]models.Subtask, error) {
	resp, err := o.completer.Complete(ctx, llm.CompletionRequest{
		Messages: []llm.Message{
			{Role: "system", Content: "Break the user's query into exactly three short subtask descriptions, one per line: research, then analysis, then synthesis."},
			{Role: "user", Content: query},
		},
	})

	descriptions := defaultDescriptions(query)
	if err == nil {
		if parsed := parseLines(resp.Content); len(parsed) == len(descriptions) {
			descriptions = parsed
		}
	}

	return buildSubtasks(descriptions), nil
}

func defaultDescriptions(query string) []string {
	return []string{
		"Gather information relevant to: " + query,
		"Analyze the gathered information for: " + query,
		"Synthesize a complete answer to: " + query,
	}
}

func parseLines(text string) []string {
	var lines []string
	start := 0
	for i := 0; i <= len(text); i++ {
		if i == len(text) || text[i] == '\n' {
			line := trimSpace(text[start:i])
			if line != "" {
				lines = append(lines, line)
			}
			start = i + 1
		}
	}
	return lines
}

func trimSpace(s string) string {
	start, end := 0, len(s)
	for start < end && (s[start] == ' ' || s[start] == '\t' || s[start] == '\r' || s[start] == '-') {
		start++
	}
	for end > start && (s[end-1] == ' ' || s[end-1] == '\t' || s[end-1] == '\r') {
		end--
	}
	return s[start:end]
}

// buildSubtasks assigns roles round-robin across research, analysis,
// synthesis, with each subtask depending on every prior one — a fixed,
// linear dependency chain, since the reference decomposition never
// produces branching subtask graphs either.
func buildSubtasks(descriptions []string) []models.Subtask {
	roles := []models.AgentRole{models.AgentResearch, models.AgentAnalysis, models.AgentSynthesis}
	subtasks := make([]models.Subtask, len(descriptions))
	for i, desc := range descriptions {
		role := roles[i%len(roles)]
		var dependsOn []int
		for j := 0; j < i; j++ {
			dependsOn = append(dependsOn, j)
		}
		subtasks[i] = models.Subtask{Description: desc, Type: role, Priority: len(descriptions) - i, DependsOn: dependsOn}
	}
	return subtasks
}

func (o *Orchestrator) executeAll(ctx context.Context, subtasks []models.Subtask) ([]models.AgentResult, []models.PathStep, error) {
	switch o.cfg.Mode {
	case SchedulingParallel:
		return o.executeParallel(ctx, subtasks)
	case SchedulingSequential:
		return o.executeSequential(ctx, subtasks)
	default:
		return o.executeAdaptive(ctx, subtasks)
	}
}

func (o *Orchestrator) executeSequential(ctx context.Context, subtasks []models.Subtask) ([]models.AgentResult, []models.PathStep, error) {
	results := make([]models.AgentResult, len(subtasks))
	path := make([]models.PathStep, 0, len(subtasks))

	order := priorityOrder(subtasks)
	for _, idx := range order {
		result := o.executeOne(ctx, subtasks[idx], gather(results, subtasks[idx].DependsOn))
		results[idx] = result
		path = append(path, models.PathStep{Agent: string(result.AgentType), Action: "execute", Result: result.Result})
	}
	return results, path, nil
}

func (o *Orchestrator) executeParallel(ctx context.Context, subtasks []models.Subtask) ([]models.AgentResult, []models.PathStep, error) {
	results := make([]models.AgentResult, len(subtasks))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(o.cfg.MaxConcurrency)

	for i, task := range subtasks {
		i, task := i, task
		g.Go(func() error {
			results[i] = o.executeOne(gctx, task, nil)
			return nil
		})
	}
	g.Wait()

	path := make([]models.PathStep, 0, len(results))
	for _, r := range results {
		path = append(path, models.PathStep{Agent: string(r.AgentType), Action: "execute", Result: r.Result})
	}
	return results, path, nil
}

// executeAdaptive runs subtasks in dependency waves: every subtask whose
// dependencies are already satisfied runs concurrently, then the next
// wave starts once its dependencies are all in.
func (o *Orchestrator) executeAdaptive(ctx context.Context, subtasks []models.Subtask) ([]models.AgentResult, []models.PathStep, error) {
	results := make([]models.AgentResult, len(subtasks))
	done := make([]bool, len(subtasks))
	path := make([]models.PathStep, 0, len(subtasks))

	for completed := 0; completed < len(subtasks); {
		var wave []int
		for i, task := range subtasks {
			if done[i] {
				continue
			}
			if dependenciesSatisfied(task.DependsOn, done) {
				wave = append(wave, i)
			}
		}
		if len(wave) == 0 {
			return nil, nil, fmt.Errorf("unresolvable subtask dependency cycle")
		}

		g, gctx := errgroup.WithContext(ctx)
		g.SetLimit(o.cfg.MaxConcurrency)
		for _, idx := range wave {
			idx := idx
			g.Go(func() error {
				results[idx] = o.executeOne(gctx, subtasks[idx], gather(results, subtasks[idx].DependsOn))
				return nil
			})
		}
		g.Wait()

		for _, idx := range wave {
			done[idx] = true
			completed++
			path = append(path, models.PathStep{Agent: string(results[idx].AgentType), Action: "execute", Result: results[idx].Result})
		}
	}

	return results, path, nil
}

func dependenciesSatisfied(dependsOn []int, done []bool) bool {
	for _, d := range dependsOn {
		if !done[d] {
			return false
		}
	}
	return true
}

// executeOne runs a single subtask's worker, degrading to a zero-confidence,
// empty-result contribution on any failure (no registered worker, or the
// worker itself erroring) rather than failing the whole query: per the
// fabric's error handling design, one subtask's failure must not sink
// results the other subtasks already produced. Only synthesize propagates a
// real error.
func (o *Orchestrator) executeOne(ctx context.Context, task models.Subtask, priorResults []models.AgentResult) models.AgentResult {
	worker, ok := o.workers[task.Type]
	if !ok {
		return models.AgentResult{AgentType: task.Type, Confidence: 0}
	}

	result, err := worker.Execute(ctx, task, priorResults)
	if err != nil {
		return models.AgentResult{AgentType: task.Type, Confidence: 0}
	}
	return result
}

func gather(results []models.AgentResult, indices []int) []models.AgentResult {
	out := make([]models.AgentResult, 0, len(indices))
	for _, i := range indices {
		out = append(out, results[i])
	}
	return out
}

func priorityOrder(subtasks []models.Subtask) []int {
	order := make([]int, len(subtasks))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		return subtasks[order[a]].Priority > subtasks[order[b]].Priority
	})
	return order
}

// refineLowConfidence re-executes any result below ConfidenceThreshold, up
// to MaxIterations additional attempts per subtask, mirroring the
// reference's needs_refinement check.
func (o *Orchestrator) refineLowConfidence(ctx context.Context, subtasks []models.Subtask, results []models.AgentResult, path []models.PathStep) ([]models.AgentResult, []models.PathStep) {
	for i := range results {
		attempts := 0
		for results[i].Confidence < o.cfg.ConfidenceThreshold && attempts < o.cfg.MaxIterations {
			refined := o.executeOne(ctx, subtasks[i], gather(results, subtasks[i].DependsOn))
			attempts++
			results[i] = refined
			path = append(path, models.PathStep{Agent: string(refined.AgentType), Action: "refine", Result: refined.Result})
		}
	}
	return results, path
}

// synthesize asks the Completer to combine every subtask result into one
// final answer, returning the average confidence of its inputs as the
// synthesized answer's own confidence.
func (o *Orchestrator) synthesize(ctx context.Context, query string, results []models.AgentResult) (string, float64, error) {
	prompt := "Original query: " + query + "\n\nResults:\n"
	for _, r := range results {
		prompt += "- [" + string(r.AgentType) + "] " + r.Result + "\n"
	}

	resp, err := o.completer.Complete(ctx, llm.CompletionRequest{
		Messages: []llm.Message{
			{Role: "system", Content: "Combine the given subtask results into one complete, structured answer with practical recommendations."},
			{Role: "user", Content: prompt},
		},
	})
	if err != nil {
		return "", 0, err
	}

	// Running mean: equal inputs average to exactly that value, so three
	// results at 0.8 tie the classic path's fixed 0.8 instead of drifting
	// above it through summation rounding.
	confidence := 0.0
	for i, r := range results {
		confidence += (r.Confidence - confidence) / float64(i+1)
	}

	return resp.Content, confidence, nil
}
