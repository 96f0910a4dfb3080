// Why this file: ./internal/analyzer/analyzer.go
// Turns raw query text into QueryMetadata. Deterministic given the same
// input and classifier model version; its only side effect is metric
// emission. Embedding is never computed here — it stays nil until the
// cache or router layer needs it, per the lazy-embedding design note.
package analyzer

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/Rivega42/hybrid-rag-system/internal/classifier"
	"github.com/Rivega42/hybrid-rag-system/models"
)

// MetricsSink is the narrow subset of the fabric's metrics interface the
// Analyzer emits to.
type MetricsSink interface {
	Record(event string, labels map[string]string, value float64)
}

// Analyzer produces QueryMetadata for a raw query.
type Analyzer struct {
	classifier *classifier.Classifier
	language   string
	metrics    MetricsSink
}

// New builds an Analyzer. defaultLanguage is the BCP-47 tag assumed when a
// query carries none (the reference system defaults to "ru").
func New(c *classifier.Classifier, defaultLanguage string, metrics MetricsSink) *Analyzer {
	if defaultLanguage == "" {
		defaultLanguage = "ru"
	}
	return &Analyzer{classifier: c, language: defaultLanguage, metrics: metrics}
}

// Analyze assigns a query_id and complexity class/score to q, without
// blocking on embedding computation.
func (a *Analyzer) Analyze(ctx context.Context, q models.Query) models.QueryMetadata {
	result := a.classifier.Classify(ctx, q.Text)

	meta := models.QueryMetadata{
		QueryID:         uuid.New(),
		OriginalQuery:   q.Text,
		Language:        a.language,
		Complexity:      result.Complexity,
		ComplexityScore: score(result),
		Entities:        extractEntities(q.Text),
		Intent:          inferIntent(q.Text),
		Keywords:        extractKeywords(q.Text),
		Embedding:       nil,
		Timestamp:       time.Now().UTC(),
		UserID:          q.UserID,
		SessionID:       q.SessionID,
	}

	if a.metrics != nil {
		a.metrics.Record("analyzer.classified", map[string]string{
			"complexity": string(meta.Complexity),
		}, meta.ComplexityScore)
	}

	return meta
}

// score derives a single complexity_score in [0,1] from the classifier's
// confidence and assigned class, consistent with the invariant that
// score < t_simple implies simple and score >= t_complex implies
// complex/multi_hop.
func score(r classifier.Result) float64 {
	switch r.Complexity {
	case models.ComplexitySimple:
		return clamp(0.15 * r.Confidence / 0.85)
	case models.ComplexityModerate:
		return clamp(0.3 + 0.2*r.Confidence)
	case models.ComplexityComplex:
		return clamp(0.7 + 0.15*r.Confidence)
	case models.ComplexityMultiHop:
		return clamp(0.85 + 0.15*r.Confidence)
	default:
		return 0.5
	}
}

func clamp(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// extractEntities is a lightweight capitalised-token extractor; a production
// system would delegate this to an NER model, which is out of this fabric's
// scope (the Retriever/Completer collaborators own semantic understanding).
func extractEntities(text string) []string {
	var entities []string
	for _, word := range strings.Fields(text) {
		trimmed := strings.Trim(word, ".,!?:;()\"'")
		if len(trimmed) > 1 && strings.ToUpper(trimmed[:1]) == trimmed[:1] && strings.ToLower(trimmed) != trimmed {
			entities = append(entities, trimmed)
		}
	}
	return entities
}

func extractKeywords(text string) []string {
	var keywords []string
	for _, word := range strings.Fields(strings.ToLower(text)) {
		trimmed := strings.Trim(word, ".,!?:;()\"'")
		if len(trimmed) > 3 && !stopWords[trimmed] {
			keywords = append(keywords, trimmed)
		}
	}
	return keywords
}

var stopWords = map[string]bool{
	"что": true, "как": true, "это": true, "для": true, "где": true,
	"what": true, "that": true, "this": true, "with": true, "from": true,
}

func inferIntent(text string) string {
	lower := strings.ToLower(text)
	switch {
	case strings.Contains(lower, "что такое") || strings.Contains(lower, "what is"):
		return "definition"
	case strings.Contains(lower, "сравни") || strings.Contains(lower, "compare"):
		return "comparison"
	case strings.Contains(lower, "проанализируй") || strings.Contains(lower, "analyze"):
		return "analysis"
	default:
		return "general"
	}
}
