package pipeline

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Rivega42/hybrid-rag-system/internal/llm"
	"github.com/Rivega42/hybrid-rag-system/models"
)

type fakeRetriever struct {
	docs []models.Document
}

func (f *fakeRetriever) Retrieve(ctx context.Context, query string, limit int) ([]models.Document, error) {
	return f.docs, nil
}

func (f *fakeRetriever) RetrieveByVector(ctx context.Context, vector models.Vector, limit int) ([]models.Document, error) {
	return f.docs, nil
}

type fakeCompleter struct {
	lastPrompt string
}

func (f *fakeCompleter) Complete(ctx context.Context, req llm.CompletionRequest) (llm.CompletionResponse, error) {
	f.lastPrompt = req.Messages[len(req.Messages)-1].Content
	return llm.CompletionResponse{Content: "answer"}, nil
}

func TestClassicPipeline_RunRetrievesThenCompletes(t *testing.T) {
	docs := []models.Document{{Content: "Python is a language"}}
	completer := &fakeCompleter{}
	p := New(&fakeRetriever{docs: docs}, completer, 5)

	outcome, err := p.Run(context.Background(), "What is Python?")
	require.NoError(t, err)
	assert.Equal(t, "answer", outcome.Answer)
	assert.Equal(t, docs, outcome.Documents)
	assert.Contains(t, completer.lastPrompt, "Python is a language")
	assert.Contains(t, completer.lastPrompt, "What is Python?")
}
