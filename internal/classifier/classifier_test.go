package classifier

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/Rivega42/hybrid-rag-system/models"
)

func newTestClassifier() *Classifier {
	return New(Thresholds{Simple: 0.3, Complex: 0.7}, nil)
}

func TestClassify_SimplePattern(t *testing.T) {
	c := newTestClassifier()
	result := c.Classify(context.Background(), "Что такое Python?")
	assert.Equal(t, models.ComplexitySimple, result.Complexity)
	assert.Equal(t, 0.85, result.Confidence)
}

func TestClassify_ComplexPattern(t *testing.T) {
	c := newTestClassifier()
	result := c.Classify(context.Background(), "Проанализируй влияние AI на экономику")
	assert.Equal(t, models.ComplexityComplex, result.Complexity)
	assert.Equal(t, 0.75, result.Confidence)
}

func TestClassify_MultiHopFromConnectives(t *testing.T) {
	c := newTestClassifier()
	q := "Проанализируй влияние AI на экономику и предложи стратегию, учитывая текущие тренды и исходя из данных"
	result := c.Classify(context.Background(), q)
	assert.Equal(t, models.ComplexityMultiHop, result.Complexity)
}

func TestClassify_WordCountFallback(t *testing.T) {
	c := newTestClassifier()

	short := c.Classify(context.Background(), "короткий запрос тут")
	assert.Equal(t, models.ComplexitySimple, short.Complexity)

	long := c.Classify(context.Background(), wordsOf(60))
	assert.Equal(t, models.ComplexityMultiHop, long.Complexity)
}

func TestClassify_QuestionMarkPromotesMultiHop(t *testing.T) {
	c := newTestClassifier()
	result := c.Classify(context.Background(), "один вопрос? два вопроса? три слова тут совсем короткие")
	assert.Equal(t, models.ComplexityMultiHop, result.Complexity)
}

func TestClassify_EnumerationPromotesSimpleToModerate(t *testing.T) {
	c := newTestClassifier()
	result := c.Classify(context.Background(), "коротко 1. один 2. два")
	assert.Equal(t, models.ComplexityModerate, result.Complexity)
}

func TestClassify_EmptyQueryIsSimple(t *testing.T) {
	c := newTestClassifier()
	result := c.Classify(context.Background(), "")
	assert.Equal(t, models.ComplexitySimple, result.Complexity)
}

func TestClassify_ModelModeFallsBackOnError(t *testing.T) {
	c := New(Thresholds{Simple: 0.3, Complex: 0.7}, failingModel{})
	result := c.Classify(context.Background(), "Что такое Go?")
	assert.Equal(t, models.ComplexitySimple, result.Complexity)
}

type failingModel struct{}

func (failingModel) Classify(ctx context.Context, features []float64) (models.ComplexityClass, float64, error) {
	return "", 0, assertErr{}
}

type assertErr struct{}

func (assertErr) Error() string { return "model unavailable" }

func wordsOf(n int) string {
	s := ""
	for i := 0; i < n; i++ {
		s += "слово "
	}
	return s
}
