// Why this file: ./internal/retriever/retriever.go
// Retriever is the fabric's external document-retrieval collaborator,
// consumed by the Classic Pipeline and by research-role agent workers.
// Adapted from the teacher's QdrantClient/SearchService pairing
// (internal/vectordb/qdrant_client.go, search.go): same gRPC-first Qdrant
// client, same query-embed-then-search flow, generalized from the
// teacher's code-chunk-specific payload shape to the fabric's generic
// models.Document, and trimmed of the teacher's HTTP-fallback path since
// the fabric's ResourceOracle already owns availability/fallback policy.
package retriever

import (
	"context"
	"fmt"

	"github.com/qdrant/go-client/qdrant"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"

	"github.com/Rivega42/hybrid-rag-system/internal/embedder"
	"github.com/Rivega42/hybrid-rag-system/models"
)

// Retriever is the fabric's external document retrieval interface.
type Retriever interface {
	Retrieve(ctx context.Context, query string, limit int) ([]models.Document, error)
	RetrieveByVector(ctx context.Context, vector models.Vector, limit int) ([]models.Document, error)
}

// QdrantRetriever retrieves documents from a Qdrant collection by
// embedding the query and running an approximate nearest-neighbor search.
type QdrantRetriever struct {
	conn       *grpc.ClientConn
	points     qdrant.PointsClient
	collection string
	embedder   embedder.Embedder
}

// Config configures a QdrantRetriever.
type Config struct {
	Address    string // host:port, gRPC
	Collection string
}

// New dials Qdrant over gRPC and builds a QdrantRetriever. e provides query
// embeddings; e may be shared with the rest of the fabric so the
// embedding cache is warm across components.
func New(cfg Config, e embedder.Embedder) (*QdrantRetriever, error) {
	conn, err := grpc.NewClient(cfg.Address, grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		return nil, fmt.Errorf("qdrant dial failed: %w", err)
	}

	collection := cfg.Collection
	if collection == "" {
		collection = "hybrid_rag_documents"
	}

	return &QdrantRetriever{
		conn:       conn,
		points:     qdrant.NewPointsClient(conn),
		collection: collection,
		embedder:   e,
	}, nil
}

// Close releases the underlying gRPC connection.
func (r *QdrantRetriever) Close() error {
	return r.conn.Close()
}

// Retrieve embeds query and searches for the nearest documents.
func (r *QdrantRetriever) Retrieve(ctx context.Context, query string, limit int) ([]models.Document, error) {
	vector, err := r.embedder.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("embedding query failed: %w", err)
	}
	return r.RetrieveByVector(ctx, vector, limit)
}

// RetrieveByVector searches directly with a pre-computed embedding,
// skipping the embed step; Retrieve calls it after embedding the query
// text.
func (r *QdrantRetriever) RetrieveByVector(ctx context.Context, vector models.Vector, limit int) ([]models.Document, error) {
	if limit <= 0 {
		limit = 10
	}

	searchVector := make([]float32, len(vector))
	copy(searchVector, vector)

	withPayload := true
	resp, err := r.points.Search(ctx, &qdrant.SearchPoints{
		CollectionName: r.collection,
		Vector:         searchVector,
		Limit:          uint64(limit),
		WithPayload:    &qdrant.WithPayloadSelector{SelectorOptions: &qdrant.WithPayloadSelector_Enable{Enable: withPayload}},
	})
	if err != nil {
		return nil, fmt.Errorf("qdrant search failed: %w", err)
	}

	documents := make([]models.Document, 0, len(resp.GetResult()))
	for _, point := range resp.GetResult() {
		documents = append(documents, toDocument(point))
	}
	return documents, nil
}

func toDocument(point *qdrant.ScoredPoint) models.Document {
	payload := point.GetPayload()
	score := float64(point.GetScore())

	doc := models.Document{
		DocID:    pointIDString(point.GetId()),
		Metadata: make(map[string]string),
		Score:    &score,
	}

	if content, ok := payload["content"]; ok {
		doc.Content = content.GetStringValue()
	}
	if source, ok := payload["source"]; ok {
		doc.Source = source.GetStringValue()
	}
	if chunkID, ok := payload["chunk_id"]; ok {
		doc.ChunkID = chunkID.GetStringValue()
	}
	for k, v := range payload {
		if k == "content" || k == "source" || k == "chunk_id" {
			continue
		}
		doc.Metadata[k] = v.GetStringValue()
	}

	return doc
}

func pointIDString(id *qdrant.PointId) string {
	if id == nil {
		return ""
	}
	if uuid := id.GetUuid(); uuid != "" {
		return uuid
	}
	return fmt.Sprintf("%d", id.GetNum())
}

// NullRetriever is a Retriever that always reports unavailable, used when
// the embedder or Qdrant connection could not be constructed so the
// classic pipeline and research worker fail cleanly instead of nil-
// dereferencing a missing collaborator.
type NullRetriever struct{}

func (NullRetriever) Retrieve(ctx context.Context, query string, limit int) ([]models.Document, error) {
	return nil, fmt.Errorf("retriever unavailable")
}

func (NullRetriever) RetrieveByVector(ctx context.Context, vector models.Vector, limit int) ([]models.Document, error) {
	return nil, fmt.Errorf("retriever unavailable")
}
