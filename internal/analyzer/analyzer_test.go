package analyzer

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/Rivega42/hybrid-rag-system/internal/classifier"
	"github.com/Rivega42/hybrid-rag-system/models"
)

func TestAnalyze_AssignsQueryIDAndComplexity(t *testing.T) {
	c := classifier.New(classifier.Thresholds{Simple: 0.3, Complex: 0.7}, nil)
	a := New(c, "", nil)

	q := models.NewQuery("Что такое Python?", nil, nil)
	meta := a.Analyze(context.Background(), q)

	assert.NotEqual(t, [16]byte{}, meta.QueryID)
	assert.Equal(t, models.ComplexitySimple, meta.Complexity)
	assert.Less(t, meta.ComplexityScore, 0.3)
	assert.Equal(t, "ru", meta.Language)
	assert.Nil(t, meta.Embedding)
}

func TestAnalyze_ComplexScoreMeetsThreshold(t *testing.T) {
	c := classifier.New(classifier.Thresholds{Simple: 0.3, Complex: 0.7}, nil)
	a := New(c, "", nil)

	q := models.NewQuery("Проанализируй влияние AI на экономику", nil, nil)
	meta := a.Analyze(context.Background(), q)

	assert.GreaterOrEqual(t, meta.ComplexityScore, 0.7)
}

func TestAnalyze_IsDeterministic(t *testing.T) {
	c := classifier.New(classifier.Thresholds{Simple: 0.3, Complex: 0.7}, nil)
	a := New(c, "en", nil)

	q := models.NewQuery("Compare Go and Rust concurrency models", nil, nil)
	m1 := a.Analyze(context.Background(), q)
	m2 := a.Analyze(context.Background(), q)

	assert.Equal(t, m1.Complexity, m2.Complexity)
	assert.Equal(t, m1.ComplexityScore, m2.ComplexityScore)
}
