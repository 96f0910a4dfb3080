package models

// AgentRole identifies one of the Orchestrator's four specialised workers.
type AgentRole string

const (
	AgentResearch     AgentRole = "research"
	AgentAnalysis     AgentRole = "analysis"
	AgentSynthesis    AgentRole = "synthesis"
	AgentVerification AgentRole = "verification"
)

// AgentResult is what one agent invocation contributes to the orchestrated
// answer.
type AgentResult struct {
	AgentType       AgentRole
	AgentID         string
	Result          string
	Confidence      float64
	Sources         []Document
	ExecutionTimeMS int64
	TokensUsed      int
	CostUSD         float64
}

// Subtask is one unit of the Orchestrator's decomposition of a query.
type Subtask struct {
	Description string
	Type        AgentRole
	Priority    int
	DependsOn   []int // indices of subtasks this one needs results from
}
