package interfaces

import (
	"context"

	"github.com/AnjiB/graphkg-rag-demo/internal/models"
)

// Retriever is a bound handle over the vector index configured for top-k
// similarity queries. A retriever captured by an in-flight request remains
// valid even if a newer generation is swapped in behind it.
type Retriever interface {
	// Query returns up to k chunks ranked nearest-first for the question.
	Query(ctx context.Context, question string, k int) ([]models.RetrievedChunk, error)
}

// VectorIndexService embeds chunks and maintains the durable similarity
// index. The index accumulates entries across uploads; the persisted chunk
// list is replaced wholesale on each ingestion.
type VectorIndexService interface {
	// RebuildFrom embeds every chunk, persists the entries plus the new
	// chunk list, and returns a retriever bound to the updated index.
	RebuildFrom(ctx context.Context, chunks []models.Chunk) (Retriever, error)

	// LoadExisting opens the durable store at the fixed path. Returns
	// (nil, nil) when no usable index exists; open failures on an existing
	// store are logged and also yield (nil, nil).
	LoadExisting(ctx context.Context) (Retriever, []string, error)
}
