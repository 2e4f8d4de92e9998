package flat

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/ncdb-labs/ncdb-chat/internal/core/domain"
	"github.com/ncdb-labs/ncdb-chat/internal/core/ports/driven"
)

// Ensure Index implements the interface.
var _ driven.VectorIndex = (*Index)(nil)

// Index is an in-memory flat vector index. It is built once and then
// only read, so Search is safe for concurrent use.
type Index struct {
	dimensions int
	model      string
	buildID    string
	createdAt  time.Time
	chunks     []domain.Chunk
	vectors    [][]float32
}

// New creates an empty index for vectors of the given size.
func New(dimensions int, model string) (*Index, error) {
	if dimensions <= 0 {
		return nil, fmt.Errorf("flat: dimensions must be positive: %w", domain.ErrInvalidInput)
	}
	return &Index{
		dimensions: dimensions,
		model:      model,
	}, nil
}

// Build embeds the chunks in one batch call and returns the filled index.
// Insertion order follows chunks.
func Build(ctx context.Context, chunks []domain.Chunk, embedder driven.EmbeddingService) (*Index, error) {
	if len(chunks) == 0 {
		return nil, domain.ErrNoChunks
	}

	texts := make([]string, len(chunks))
	for i := range chunks {
		texts[i] = chunks[i].Content
	}

	vectors, err := embedder.EmbedBatch(ctx, texts)
	if err != nil {
		return nil, fmt.Errorf("flat: embed chunks: %w", err)
	}
	if len(vectors) != len(chunks) {
		return nil, fmt.Errorf("flat: embedder returned %d vectors for %d chunks", len(vectors), len(chunks))
	}

	dimensions := embedder.Dimensions()
	if dimensions <= 0 {
		dimensions = len(vectors[0])
	}

	idx, err := New(dimensions, embedder.ModelName())
	if err != nil {
		return nil, err
	}
	for i := range chunks {
		if err := idx.Add(chunks[i], vectors[i]); err != nil {
			return nil, fmt.Errorf("flat: chunk %s: %w", chunks[i].ID, err)
		}
	}
	return idx, nil
}

// Add appends a chunk and its vector.
func (idx *Index) Add(chunk domain.Chunk, vector []float32) error {
	if len(vector) != idx.dimensions {
		return fmt.Errorf("flat: got %d values, want %d: %w", len(vector), idx.dimensions, domain.ErrDimensionMismatch)
	}
	v := make([]float32, len(vector))
	copy(v, vector)
	idx.chunks = append(idx.chunks, chunk)
	idx.vectors = append(idx.vectors, v)
	return nil
}

// Search returns the k chunks with the highest dot product, best first.
// Equal scores keep insertion order.
func (idx *Index) Search(_ context.Context, query []float32, k int) ([]domain.RetrievalHit, error) {
	if len(query) != idx.dimensions {
		return nil, fmt.Errorf("flat: query has %d values, want %d: %w",
			len(query), idx.dimensions, domain.ErrDimensionMismatch)
	}
	if k <= 0 || len(idx.chunks) == 0 {
		return nil, nil
	}

	order := make([]int, len(idx.vectors))
	scores := make([]float64, len(idx.vectors))
	for i, v := range idx.vectors {
		order[i] = i
		scores[i] = dot(query, v)
	}
	sort.SliceStable(order, func(a, b int) bool {
		return scores[order[a]] > scores[order[b]]
	})

	if k > len(order) {
		k = len(order)
	}
	hits := make([]domain.RetrievalHit, k)
	for i := 0; i < k; i++ {
		hits[i] = domain.RetrievalHit{
			Chunk: idx.chunks[order[i]],
			Score: scores[order[i]],
		}
	}
	return hits, nil
}

// Len returns the number of stored chunks.
func (idx *Index) Len() int {
	return len(idx.chunks)
}

// Dimensions returns the vector size.
func (idx *Index) Dimensions() int {
	return idx.dimensions
}

// Model returns the embedding model name the index was built with.
func (idx *Index) Model() string {
	return idx.model
}

// BuildID returns the identifier assigned when the index was first saved.
func (idx *Index) BuildID() string {
	return idx.buildID
}

func dot(a, b []float32) float64 {
	var sum float64
	for i := range a {
		sum += float64(a[i]) * float64(b[i])
	}
	return sum
}
