// Why this file: ./internal/classifier/classifier.go
// Heuristic complexity classifier. Pattern tables and thresholds are a
// direct port of the Python reference classifier's simple_patterns,
// complex_patterns, and multi_hop_keywords, generalized from a 3-tier MCP
// routing scheme into the fabric's 4-way complexity classes.
package classifier

import (
	"context"
	"regexp"
	"strings"
	"time"

	"github.com/Rivega42/hybrid-rag-system/models"
)

// Result is the Classifier's best-effort answer for one query.
type Result struct {
	Complexity models.ComplexityClass
	Confidence float64
	Features   Features
}

// Features are the raw signals the heuristic classifier computed, kept
// around for model-mode feature extraction and for diagnostics.
type Features struct {
	WordCount      int
	QuestionMarks  int
	CommaCount     int
	HasEnumeration bool
	MatchedPattern string
}

// Thresholds hold t_simple and t_complex, read from configuration. The
// Classifier stores them but does not read them: classes come from the
// pattern tables and the word-count ladder, so changing the thresholds does
// not move any class boundary.
type Thresholds struct {
	Simple  float64
	Complex float64
}

// Classifier assigns a complexity class and confidence to a query, using a
// heuristic pattern/structure analysis with an optional pluggable model.
type Classifier struct {
	simplePatterns  []*regexp.Regexp
	complexPatterns []*regexp.Regexp
	multiHopWords   []string
	thresholds      Thresholds
	model           ModelClassifier
}

// ModelClassifier is the pluggable model-mode interface. A real
// implementation would load a pre-trained gradient-boosted classifier and
// return class probabilities from the feature vector; inference failures
// must degrade silently to heuristic mode.
type ModelClassifier interface {
	Classify(ctx context.Context, features []float64) (models.ComplexityClass, float64, error)
}

// New builds a Classifier with the reference pattern tables compiled.
// A nil model leaves the classifier permanently in heuristic mode.
func New(thresholds Thresholds, model ModelClassifier) *Classifier {
	return &Classifier{
		simplePatterns:  compile(simplePatternSources),
		complexPatterns: compile(complexPatternSources),
		multiHopWords:   multiHopKeywords,
		thresholds:      thresholds,
		model:           model,
	}
}

func compile(sources []string) []*regexp.Regexp {
	out := make([]*regexp.Regexp, 0, len(sources))
	for _, s := range sources {
		out = append(out, regexp.MustCompile(s))
	}
	return out
}

// Definitional queries: "что такое", "кто такой", "дай определение", ...
var simplePatternSources = []string{
	`что такое`,
	`кто такой`,
	`когда`,
	`где находится`,
	`какая столица`,
	`дай определение`,
	`назови`,
	`перечисли`,
}

// Analytical queries: "проанализируй", "сравни", "разработай стратегию", ...
var complexPatternSources = []string{
	`проанализируй`,
	`сравни`,
	`оцени влияние`,
	`найди все`,
	`исследуй`,
	`определи взаимосвязь`,
	`сделай прогноз`,
	`разработай стратегию`,
}

var multiHopKeywords = []string{
	"и", "а также", "кроме того", "учитывая",
	"на основе", "исходя из", "в контексте",
}

// Classify returns the fabric's best-effort complexity assignment. It never
// fails: a model-mode inference error falls back to heuristics silently.
func (c *Classifier) Classify(ctx context.Context, query string) Result {
	lower := strings.ToLower(query)

	if c.model != nil {
		features := c.extractFeatureVector(lower)
		if class, confidence, err := c.model.Classify(ctx, features); err == nil {
			return Result{Complexity: class, Confidence: confidence, Features: c.structuralFeatures(lower)}
		}
	}

	return c.heuristicClassify(lower)
}

func (c *Classifier) heuristicClassify(query string) Result {
	// First match wins, in declaration order.
	for _, pattern := range c.simplePatterns {
		if pattern.MatchString(query) {
			return Result{
				Complexity: models.ComplexitySimple,
				Confidence: 0.85,
				Features:   Features{MatchedPattern: pattern.String(), WordCount: wordCount(query)},
			}
		}
	}

	for _, pattern := range c.complexPatterns {
		if pattern.MatchString(query) {
			multiHopCount := 0
			for _, keyword := range c.multiHopWords {
				if strings.Contains(query, keyword) {
					multiHopCount++
				}
			}

			complexity := models.ComplexityComplex
			if multiHopCount >= 2 {
				complexity = models.ComplexityMultiHop
			}

			return Result{
				Complexity: complexity,
				Confidence: 0.75,
				Features:   Features{MatchedPattern: pattern.String(), WordCount: wordCount(query)},
			}
		}
	}

	return c.fallbackClassify(query)
}

// fallbackClassify buckets by word count, then adjusts for '?' density and
// enumeration, exactly as the reference classifier does.
func (c *Classifier) fallbackClassify(query string) Result {
	words := wordCount(query)
	questionMarks := strings.Count(query, "?")
	hasEnum := enumerationPattern.MatchString(query)

	var complexity models.ComplexityClass
	var confidence float64

	switch {
	case words < 10:
		complexity, confidence = models.ComplexitySimple, 0.7
	case words < 30:
		complexity, confidence = models.ComplexityModerate, 0.6
	case words < 50:
		complexity, confidence = models.ComplexityComplex, 0.6
	default:
		complexity, confidence = models.ComplexityMultiHop, 0.7
	}

	if questionMarks > 1 {
		complexity = models.ComplexityMultiHop
		confidence *= 0.9
	}

	if hasEnum {
		if complexity == models.ComplexitySimple {
			complexity = models.ComplexityModerate
		}
		confidence *= 0.95
	}

	return Result{
		Complexity: complexity,
		Confidence: confidence,
		Features: Features{
			WordCount:      words,
			QuestionMarks:  questionMarks,
			CommaCount:     strings.Count(query, ","),
			HasEnumeration: hasEnum,
		},
	}
}

var enumerationPattern = regexp.MustCompile(`\d+\.`)

func wordCount(s string) int {
	return len(strings.Fields(s))
}

func (c *Classifier) structuralFeatures(query string) Features {
	return Features{
		WordCount:      wordCount(query),
		QuestionMarks:  strings.Count(query, "?"),
		CommaCount:     strings.Count(query, ","),
		HasEnumeration: enumerationPattern.MatchString(query),
	}
}

// extractFeatureVector builds [len, word_count, ?-count, ,-count,
// onehot(simple), onehot(complex), onehot(multi_hop_keywords)] for the
// pluggable model, per the spec's model-mode feature definition.
func (c *Classifier) extractFeatureVector(query string) []float64 {
	features := make([]float64, 0, 4+len(c.simplePatterns)+len(c.complexPatterns)+len(c.multiHopWords))
	features = append(features,
		float64(len(query)),
		float64(wordCount(query)),
		float64(strings.Count(query, "?")),
		float64(strings.Count(query, ",")),
	)
	for _, pattern := range c.simplePatterns {
		features = append(features, oneHot(pattern.MatchString(query)))
	}
	for _, pattern := range c.complexPatterns {
		features = append(features, oneHot(pattern.MatchString(query)))
	}
	for _, keyword := range c.multiHopWords {
		features = append(features, oneHot(strings.Contains(query, keyword)))
	}
	return features
}

func oneHot(b bool) float64 {
	if b {
		return 1.0
	}
	return 0.0
}

// ClassifyWithTimestamp is a convenience that stamps the classification
// call's wall time alongside the result.
func (c *Classifier) ClassifyWithTimestamp(ctx context.Context, query string) (Result, time.Time) {
	return c.Classify(ctx, query), time.Now().UTC()
}
