// Why this file: ./models/query.go
// Defines the Query a caller submits and the QueryMetadata the Analyzer
// derives from it. QueryMetadata is produced once; afterwards only its lazy
// Embedding field is filled in (by the runtime's cache check), and every
// other field is only read.
package models

import (
	"time"

	"github.com/google/uuid"
)

// ComplexityClass is the discrete bucket the Classifier assigns to a query.
type ComplexityClass string

const (
	ComplexitySimple   ComplexityClass = "simple"
	ComplexityModerate ComplexityClass = "moderate"
	ComplexityComplex  ComplexityClass = "complex"
	ComplexityMultiHop ComplexityClass = "multi_hop"
)

// Strategy is the execution path chosen by the Router.
type Strategy string

const (
	StrategyClassic Strategy = "classic"
	StrategyAgentic Strategy = "agentic"
	StrategyHybrid  Strategy = "hybrid"
	StrategyCache   Strategy = "cache"
)

// Query is the opaque text a caller submits, plus optional identifiers.
// Immutable once constructed.
type Query struct {
	Text      string
	UserID    *string
	SessionID *string
	Metadata  map[string]string
}

// NewQuery builds an immutable Query. Empty text is allowed through to the
// Analyzer/Router; InvalidQuery is raised by the runtime boundary, not here.
func NewQuery(text string, userID, sessionID *string) Query {
	return Query{Text: text, UserID: userID, SessionID: sessionID}
}

// Vector is a dense embedding, compared by cosine similarity.
type Vector []float32

// QueryMetadata is produced by the Analyzer and read-only thereafter.
type QueryMetadata struct {
	QueryID         uuid.UUID
	OriginalQuery   string
	Language        string
	Complexity      ComplexityClass
	ComplexityScore float64
	Entities        []string
	Intent          string
	Keywords        []string
	Embedding       *Vector // lazy, populated on demand, never silently recomputed
	Timestamp       time.Time
	UserID          *string
	SessionID       *string
}

// HasEmbedding reports whether the embedding has already been computed.
func (m *QueryMetadata) HasEmbedding() bool {
	return m.Embedding != nil
}
