// Why this file: ./internal/agents/worker.go
// Worker is the interface each of the Orchestrator's four specialized
// roles implements. The default LLMWorker adapts the teacher's
// ManagerAgent idiom (internal/agents/manager_agent.go in the reference
// tree): a role-specific system prompt driving a shared Completer,
// generalized from the teacher's code-assistant roles (search/coding) to
// the fabric's research/analysis/synthesis/verification roles.
package agents

import (
	"context"
	"fmt"
	"time"

	"github.com/Rivega42/hybrid-rag-system/internal/llm"
	"github.com/Rivega42/hybrid-rag-system/internal/retriever"
	"github.com/Rivega42/hybrid-rag-system/models"
)

// Worker executes one Subtask, given the results of any subtasks it
// depends on, and returns its contribution.
type Worker interface {
	Execute(ctx context.Context, task models.Subtask, priorResults []models.AgentResult) (models.AgentResult, error)
}

// LLMWorker is a Completer-backed Worker for a single AgentRole. A research
// worker additionally consults a Retriever before completing; the other
// roles reason over priorResults alone.
type LLMWorker struct {
	role         models.AgentRole
	id           string
	completer    llm.Completer
	retriever    retriever.Retriever // nil for non-research roles
	systemPrompt string
}

// NewLLMWorker builds a Worker for role, identified by id in AgentResult.AgentID.
func NewLLMWorker(role models.AgentRole, id string, completer llm.Completer, ret retriever.Retriever) *LLMWorker {
	return &LLMWorker{
		role:         role,
		id:           id,
		completer:    completer,
		retriever:    ret,
		systemPrompt: systemPromptFor(role),
	}
}

func systemPromptFor(role models.AgentRole) string {
	switch role {
	case models.AgentResearch:
		return "You gather and summarize factual information relevant to the task. Cite sources when given any."
	case models.AgentAnalysis:
		return "You analyze the gathered information, identify patterns, and draw reasoned conclusions."
	case models.AgentSynthesis:
		return "You combine prior results into a single structured, complete answer with practical recommendations."
	case models.AgentVerification:
		return "You check the prior result for factual consistency and flag anything unsupported by the given sources."
	default:
		return "You complete the given task as accurately as possible."
	}
}

// Execute runs this worker's role against task, optionally retrieving
// supporting documents first (research role only).
func (w *LLMWorker) Execute(ctx context.Context, task models.Subtask, priorResults []models.AgentResult) (models.AgentResult, error) {
	start := time.Now()

	var sources []models.Document
	if w.role == models.AgentResearch && w.retriever != nil {
		docs, err := w.retriever.Retrieve(ctx, task.Description, 5)
		if err == nil {
			sources = docs
		}
	}

	prompt := buildPrompt(task, priorResults, sources)
	resp, err := w.completer.Complete(ctx, llm.CompletionRequest{
		Messages: []llm.Message{
			{Role: "system", Content: w.systemPrompt},
			{Role: "user", Content: prompt},
		},
	})
	if err != nil {
		return models.AgentResult{}, fmt.Errorf("%s worker: %w", w.role, err)
	}

	return models.AgentResult{
		AgentType:       w.role,
		AgentID:         w.id,
		Result:          resp.Content,
		Confidence:      estimateConfidence(resp),
		Sources:         sources,
		ExecutionTimeMS: time.Since(start).Milliseconds(),
		TokensUsed:      resp.Usage.TotalTokens,
		CostUSD:         resp.Cost.TotalCost,
	}, nil
}

func buildPrompt(task models.Subtask, priorResults []models.AgentResult, sources []models.Document) string {
	prompt := "Task: " + task.Description + "\n"
	if len(sources) > 0 {
		prompt += "\nRetrieved context:\n"
		for _, doc := range sources {
			prompt += "- " + doc.Content + "\n"
		}
	}
	if len(priorResults) > 0 {
		prompt += "\nPrior results:\n"
		for _, r := range priorResults {
			prompt += "- [" + string(r.AgentType) + "] " + r.Result + "\n"
		}
	}
	return prompt
}

// estimateConfidence derives a [0,1] confidence from the completion's
// length alone: an empty response scores 0, one shorter than 20 bytes
// scores 0.5, and anything longer scores 0.85, since the Completer
// interface does not surface the provider's own logprobs.
func estimateConfidence(resp llm.CompletionResponse) float64 {
	if resp.Content == "" {
		return 0
	}
	if len(resp.Content) < 20 {
		return 0.5
	}
	return 0.85
}
