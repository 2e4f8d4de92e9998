package driven

import (
	"context"

	"github.com/ncdb-labs/ncdb-chat/internal/core/domain"
)

// PostProcessor is one stage of the chunking pipeline. The first stage is
// handed nil and creates the chunks; later stages may rewrite or filter
// what they receive.
type PostProcessor interface {
	Name() string
	Process(ctx context.Context, doc *domain.Document, chunks []domain.Chunk) ([]domain.Chunk, error)
}

// PostProcessorPipeline turns one document into its final chunks.
type PostProcessorPipeline interface {
	Process(ctx context.Context, doc *domain.Document) ([]domain.Chunk, error)
}
