package services

import (
	"context"

	"github.com/ncdb-labs/ncdb-chat/internal/core/domain"
	"github.com/ncdb-labs/ncdb-chat/internal/core/ports/driving"
	"github.com/ncdb-labs/ncdb-chat/internal/logger"
)

// Ensure AnswerService implements the interface.
var _ driving.AnswerService = (*AnswerService)(nil)

// AnswerService is the online query path: policy, then generation.
type AnswerService struct {
	retrieval driving.RetrievalService
	generator *Generator
}

// NewAnswerService creates an answer service.
func NewAnswerService(retrieval driving.RetrievalService, generator *Generator) *AnswerService {
	return &AnswerService{
		retrieval: retrieval,
		generator: generator,
	}
}

// Answer returns the reply for a question.
func (s *AnswerService) Answer(ctx context.Context, query string) string {
	decision, err := s.retrieval.Decide(ctx, query)
	if err != nil {
		logger.Error("Answer %q: %v", query, err)
		return domain.AnswerUnknown
	}
	if decision.Final {
		return decision.Reply
	}

	for _, h := range decision.Hits {
		logger.Debug("Context hit %s#%d score=%.4f", h.Chunk.SourceID, h.Chunk.Sequence, h.Score)
	}
	return s.generator.Generate(ctx, decision.Query, decision.Context)
}
