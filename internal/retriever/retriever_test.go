package retriever

import (
	"testing"

	"github.com/qdrant/go-client/qdrant"
	"github.com/stretchr/testify/assert"
)

func TestToDocument_ExtractsKnownPayloadFields(t *testing.T) {
	point := &qdrant.ScoredPoint{
		Id:    &qdrant.PointId{PointIdOptions: &qdrant.PointId_Uuid{Uuid: "doc-1"}},
		Score: 0.87,
		Payload: map[string]*qdrant.Value{
			"content":  {Kind: &qdrant.Value_StringValue{StringValue: "hello world"}},
			"source":   {Kind: &qdrant.Value_StringValue{StringValue: "docs/intro.md"}},
			"chunk_id": {Kind: &qdrant.Value_StringValue{StringValue: "chunk-3"}},
			"lang":     {Kind: &qdrant.Value_StringValue{StringValue: "en"}},
		},
	}

	doc := toDocument(point)

	assert.Equal(t, "doc-1", doc.DocID)
	assert.Equal(t, "hello world", doc.Content)
	assert.Equal(t, "docs/intro.md", doc.Source)
	assert.Equal(t, "chunk-3", doc.ChunkID)
	assert.Equal(t, "en", doc.Metadata["lang"])
	require := assert.New(t)
	require.NotNil(doc.Score)
	require.InDelta(0.87, *doc.Score, 0.0001)
}

func TestPointIDString_PrefersUUID(t *testing.T) {
	id := &qdrant.PointId{PointIdOptions: &qdrant.PointId_Uuid{Uuid: "abc"}}
	assert.Equal(t, "abc", pointIDString(id))
}

func TestPointIDString_FallsBackToNumeric(t *testing.T) {
	id := &qdrant.PointId{PointIdOptions: &qdrant.PointId_Num{Num: 42}}
	assert.Equal(t, "42", pointIDString(id))
}

func TestPointIDString_NilReturnsEmpty(t *testing.T) {
	assert.Equal(t, "", pointIDString(nil))
}
