// Package postprocessors turns normalised Documents into index Chunks.
package postprocessors

import (
	"context"
	"fmt"
	"strings"

	"github.com/ncdb-labs/ncdb-chat/internal/core/domain"
	"github.com/ncdb-labs/ncdb-chat/internal/core/ports/driven"
)

// Pipeline runs a fixed sequence of stages over one document at a time.
// The first stage starts from no chunks and must produce them.
type Pipeline struct {
	stages []driven.PostProcessor
}

// NewPipeline returns a pipeline running stages in the given order.
func NewPipeline(stages ...driven.PostProcessor) *Pipeline {
	return &Pipeline{stages: stages}
}

// Process chunks doc. A document with blank content yields no chunks and
// no error.
func (p *Pipeline) Process(ctx context.Context, doc *domain.Document) ([]domain.Chunk, error) {
	if doc == nil {
		return nil, fmt.Errorf("nil document: %w", domain.ErrInvalidInput)
	}
	if strings.TrimSpace(doc.Content) == "" {
		return nil, nil
	}

	var chunks []domain.Chunk
	for _, stage := range p.stages {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		out, err := stage.Process(ctx, doc, chunks)
		if err != nil {
			return nil, fmt.Errorf("%s on %s#%d: %w", stage.Name(), doc.SourceID, doc.Sequence, err)
		}
		chunks = out
	}
	return chunks, nil
}

// Stages lists stage names in execution order.
func (p *Pipeline) Stages() []string {
	names := make([]string, len(p.stages))
	for i, s := range p.stages {
		names[i] = s.Name()
	}
	return names
}
