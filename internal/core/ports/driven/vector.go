package driven

import (
	"context"

	"github.com/ncdb-labs/ncdb-chat/internal/core/domain"
)

// VectorIndex provides read-only similarity search over a built index.
// Search never mutates the index, so concurrent reads are safe.
type VectorIndex interface {
	// Search returns up to k hits, best first. Equal scores keep
	// insertion order.
	Search(ctx context.Context, query []float32, k int) ([]domain.RetrievalHit, error)

	// Len returns the number of stored chunks.
	Len() int

	// Dimensions returns the vector size the index was built with.
	Dimensions() int
}

// IndexBuilder embeds chunks and persists them as an index bundle.
type IndexBuilder interface {
	// BuildIndex embeds every chunk and replaces the bundle at path as a
	// whole. An existing bundle is left untouched when building fails.
	BuildIndex(ctx context.Context, path string, chunks []domain.Chunk, embedder EmbeddingService) error
}
