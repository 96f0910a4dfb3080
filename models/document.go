package models

// Document is a retrieved passage, returned by the Retriever and surfaced
// in QueryResult.DocumentsRetrieved.
type Document struct {
	DocID     string
	Content   string
	Metadata  map[string]string
	Embedding *Vector
	Score     *float64
	Source    string
	ChunkID   string
}
