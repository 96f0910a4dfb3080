// Why this file: ./internal/llm/completer.go
// Completer is the fabric's external LLM collaborator interface. The
// OpenAI implementation is adapted directly from the teacher's
// OpenAIProvider (internal/llm/openai_provider.go): same client, same
// request/response shaping, same cost bookkeeping via models.TokenUsage/
// models.Cost — generalized from the teacher's multi-provider Provider
// interface (Gemini/Cohere/Claude/OpenAI) down to the single Completer
// method shape the fabric's Agent Orchestrator and Classic Pipeline need.
package llm

import (
	"context"
	"fmt"
	"os"
	"time"

	openai "github.com/sashabaranov/go-openai"

	"github.com/Rivega42/hybrid-rag-system/models"
)

// Message is a single chat turn.
type Message struct {
	Role    string // "system", "user", "assistant"
	Content string
}

// CompletionRequest is what a caller asks the Completer for.
type CompletionRequest struct {
	Messages    []Message
	Model       string
	MaxTokens   int
	Temperature float64
	Timeout     time.Duration
}

// CompletionResponse is the Completer's answer, with usage/cost attached
// so callers can roll it into a QueryResult without a second round trip.
type CompletionResponse struct {
	Content string
	Usage   models.TokenUsage
	Cost    models.Cost
	Latency time.Duration
}

// Completer is the fabric's external LLM interface. Classic pipeline,
// agent workers, and the agent orchestrator all depend on this, never on
// a concrete provider.
type Completer interface {
	Complete(ctx context.Context, req CompletionRequest) (CompletionResponse, error)
}

// OpenAICompleter is the default Completer, backed by the OpenAI chat API.
type OpenAICompleter struct {
	client      *openai.Client
	model       string
	maxTokens   int
	temperature float32
	inputCost   float64 // USD per 1K input tokens
	outputCost  float64 // USD per 1K output tokens
}

// Config configures an OpenAICompleter.
type Config struct {
	APIKey      string
	BaseURL     string
	Model       string
	MaxTokens   int
	Temperature float64
	InputCost   float64
	OutputCost  float64
}

// New builds an OpenAICompleter. An empty APIKey falls back to the
// OPENAI_API_KEY environment variable, matching the teacher's provider.
func New(cfg Config) (*OpenAICompleter, error) {
	apiKey := cfg.APIKey
	if apiKey == "" {
		apiKey = os.Getenv("OPENAI_API_KEY")
	}
	if apiKey == "" {
		return nil, fmt.Errorf("openai api key not provided")
	}

	if cfg.Model == "" {
		cfg.Model = "gpt-4-turbo-preview"
	}
	if cfg.MaxTokens == 0 {
		cfg.MaxTokens = 4000
	}

	clientConfig := openai.DefaultConfig(apiKey)
	if cfg.BaseURL != "" {
		clientConfig.BaseURL = cfg.BaseURL
	}

	return &OpenAICompleter{
		client:      openai.NewClientWithConfig(clientConfig),
		model:       cfg.Model,
		maxTokens:   cfg.MaxTokens,
		temperature: float32(cfg.Temperature),
		inputCost:   cfg.InputCost,
		outputCost:  cfg.OutputCost,
	}, nil
}

// Complete issues a chat completion request and shapes the response into
// the fabric's own CompletionResponse type.
func (c *OpenAICompleter) Complete(ctx context.Context, req CompletionRequest) (CompletionResponse, error) {
	start := time.Now()

	if req.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, req.Timeout)
		defer cancel()
	}

	model := req.Model
	if model == "" {
		model = c.model
	}
	maxTokens := req.MaxTokens
	if maxTokens == 0 {
		maxTokens = c.maxTokens
	}
	temperature := c.temperature
	if req.Temperature != 0 {
		temperature = float32(req.Temperature)
	}

	openaiReq := openai.ChatCompletionRequest{
		Model:       model,
		Messages:    convertMessages(req.Messages),
		MaxTokens:   maxTokens,
		Temperature: temperature,
	}

	resp, err := c.client.CreateChatCompletion(ctx, openaiReq)
	if err != nil {
		return CompletionResponse{}, fmt.Errorf("openai completion failed: %w", err)
	}
	if len(resp.Choices) == 0 {
		return CompletionResponse{}, fmt.Errorf("openai returned no choices")
	}

	usage := models.TokenUsage{
		InputTokens:  resp.Usage.PromptTokens,
		OutputTokens: resp.Usage.CompletionTokens,
		TotalTokens:  resp.Usage.TotalTokens,
		Provider:     "openai",
		Model:        resp.Model,
	}

	return CompletionResponse{
		Content: resp.Choices[0].Message.Content,
		Usage:   usage,
		Cost:    c.calculateCost(usage),
		Latency: time.Since(start),
	}, nil
}

func (c *OpenAICompleter) calculateCost(usage models.TokenUsage) models.Cost {
	input := float64(usage.InputTokens) / 1000.0 * c.inputCost
	output := float64(usage.OutputTokens) / 1000.0 * c.outputCost
	return models.Cost{TotalCost: input + output, Currency: "USD"}
}

func convertMessages(messages []Message) []openai.ChatCompletionMessage {
	out := make([]openai.ChatCompletionMessage, len(messages))
	for i, m := range messages {
		out[i] = openai.ChatCompletionMessage{Role: m.Role, Content: m.Content}
	}
	return out
}
