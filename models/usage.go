package models

import "time"

// TokenUsage represents token consumption for a single completer call.
type TokenUsage struct {
	InputTokens  int    `json:"input_tokens"`
	OutputTokens int    `json:"output_tokens"`
	TotalTokens  int    `json:"total_tokens"`
	Provider     string `json:"provider"`
	Model        string `json:"model"`
}

// Cost represents the estimated financial cost of a request.
type Cost struct {
	TotalCost float64 `json:"total_cost"`
	Currency  string  `json:"currency"`
}
