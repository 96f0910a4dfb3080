// Why this file: ./internal/pipeline/classic.go
// ClassicPipeline is the fast path: retrieve, then complete once. Grounded
// on the teacher's SearchService (internal/vectordb/search.go)'s
// retrieve-then-rank flow, generalized to retrieve-then-generate since the
// fabric always produces a natural-language answer rather than a ranked
// result list.
package pipeline

import (
	"context"
	"fmt"
	"strings"

	"github.com/Rivega42/hybrid-rag-system/internal/llm"
	"github.com/Rivega42/hybrid-rag-system/internal/retriever"
	"github.com/Rivega42/hybrid-rag-system/models"
)

// ClassicPipeline retrieves supporting documents and completes a single
// answer from them.
type ClassicPipeline struct {
	retriever retriever.Retriever
	completer llm.Completer
	topK      int
}

// New builds a ClassicPipeline. topK controls how many documents are
// retrieved per query; 0 defaults to 5.
func New(r retriever.Retriever, c llm.Completer, topK int) *ClassicPipeline {
	if topK <= 0 {
		topK = 5
	}
	return &ClassicPipeline{retriever: r, completer: c, topK: topK}
}

// Outcome is the pipeline's answer plus the documents it drew from.
type Outcome struct {
	Answer    string
	Documents []models.Document
	Usage     models.TokenUsage
	Cost      models.Cost
}

// Run retrieves documents for query and completes a single answer grounded
// in them.
func (p *ClassicPipeline) Run(ctx context.Context, query string) (Outcome, error) {
	docs, err := p.retriever.Retrieve(ctx, query, p.topK)
	if err != nil {
		return Outcome{}, fmt.Errorf("retrieve: %w", err)
	}

	resp, err := p.completer.Complete(ctx, llm.CompletionRequest{
		Messages: []llm.Message{
			{Role: "system", Content: "Answer the user's question using only the provided context. If the context is insufficient, say so."},
			{Role: "user", Content: buildPrompt(query, docs)},
		},
	})
	if err != nil {
		return Outcome{}, fmt.Errorf("complete: %w", err)
	}

	return Outcome{Answer: resp.Content, Documents: docs, Usage: resp.Usage, Cost: resp.Cost}, nil
}

func buildPrompt(query string, docs []models.Document) string {
	var b strings.Builder
	b.WriteString("Context:\n")
	for _, doc := range docs {
		b.WriteString("- " + doc.Content + "\n")
	}
	b.WriteString("\nQuestion: " + query)
	return b.String()
}
