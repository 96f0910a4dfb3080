package agents

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Rivega42/hybrid-rag-system/internal/llm"
	"github.com/Rivega42/hybrid-rag-system/models"
)

type fakeCompleter struct {
	content string
}

func (f *fakeCompleter) Complete(ctx context.Context, req llm.CompletionRequest) (llm.CompletionResponse, error) {
	return llm.CompletionResponse{Content: f.content}, nil
}

type fakeWorker struct {
	role       models.AgentRole
	confidence float64
	calls      int
}

func (w *fakeWorker) Execute(ctx context.Context, task models.Subtask, priorResults []models.AgentResult) (models.AgentResult, error) {
	w.calls++
	return models.AgentResult{AgentType: w.role, Result: "result for " + task.Description, Confidence: w.confidence}, nil
}

type failingWorker struct {
	role models.AgentRole
}

func (w *failingWorker) Execute(ctx context.Context, task models.Subtask, priorResults []models.AgentResult) (models.AgentResult, error) {
	return models.AgentResult{}, fmt.Errorf("transient provider error")
}

func workers(confidence float64) map[models.AgentRole]Worker {
	return map[models.AgentRole]Worker{
		models.AgentResearch:  &fakeWorker{role: models.AgentResearch, confidence: confidence},
		models.AgentAnalysis:  &fakeWorker{role: models.AgentAnalysis, confidence: confidence},
		models.AgentSynthesis: &fakeWorker{role: models.AgentSynthesis, confidence: confidence},
	}
}

func TestOrchestrator_RunProducesAnswerAndResults(t *testing.T) {
	o := New(workers(0.9), &fakeCompleter{content: "final answer"}, Config{Mode: SchedulingSequential})

	outcome, err := o.Run(context.Background(), "Analyze the impact of AI on the economy")
	require.NoError(t, err)
	assert.Equal(t, "final answer", outcome.Answer)
	assert.Len(t, outcome.Results, 3)
	assert.NotEmpty(t, outcome.Path)
}

func TestOrchestrator_RefinesLowConfidenceResults(t *testing.T) {
	w := workers(0.5)
	o := New(w, &fakeCompleter{content: "final"}, Config{Mode: SchedulingSequential, ConfidenceThreshold: 0.8, MaxIterations: 2})

	_, err := o.Run(context.Background(), "query")
	require.NoError(t, err)

	researchWorker := w[models.AgentResearch].(*fakeWorker)
	assert.GreaterOrEqual(t, researchWorker.calls, 2)
}

func TestOrchestrator_ParallelModeRunsAllSubtasks(t *testing.T) {
	o := New(workers(0.9), &fakeCompleter{content: "final"}, Config{Mode: SchedulingParallel})

	outcome, err := o.Run(context.Background(), "query")
	require.NoError(t, err)
	assert.Len(t, outcome.Results, 3)
}

func TestOrchestrator_AdaptiveModeRespectsDependencies(t *testing.T) {
	o := New(workers(0.9), &fakeCompleter{content: "final"}, Config{Mode: SchedulingAdaptive})

	outcome, err := o.Run(context.Background(), "query")
	require.NoError(t, err)
	assert.Len(t, outcome.Results, 3)
}

func TestOrchestrator_DegradesSingleWorkerFailureInsteadOfFailingRun(t *testing.T) {
	w := workers(0.9)
	w[models.AgentResearch] = &failingWorker{role: models.AgentResearch}
	o := New(w, &fakeCompleter{content: "final answer"}, Config{Mode: SchedulingSequential, MaxIterations: 1})

	outcome, err := o.Run(context.Background(), "query")
	require.NoError(t, err)
	require.Len(t, outcome.Results, 3)

	var researchResult models.AgentResult
	for _, r := range outcome.Results {
		if r.AgentType == models.AgentResearch {
			researchResult = r
		}
	}
	assert.Equal(t, 0.0, researchResult.Confidence)
	assert.Empty(t, researchResult.Result)
	assert.Equal(t, "final answer", outcome.Answer)
}

func TestBuildSubtasks_AssignsLinearDependencyChain(t *testing.T) {
	subtasks := buildSubtasks([]string{"a", "b", "c"})
	require.Len(t, subtasks, 3)
	assert.Empty(t, subtasks[0].DependsOn)
	assert.Equal(t, []int{0}, subtasks[1].DependsOn)
	assert.Equal(t, []int{0, 1}, subtasks[2].DependsOn)
}

func TestParseLines_SkipsBlankLines(t *testing.T) {
	lines := parseLines("- first\n\n- second\n  \n- third")
	assert.Equal(t, []string{"first", "second", "third"}, lines)
}
