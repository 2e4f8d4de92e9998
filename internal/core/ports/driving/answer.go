package driving

import (
	"context"

	"github.com/ncdb-labs/ncdb-chat/internal/core/domain"
)

// AnswerService answers free-text questions from the indexed corpus.
type AnswerService interface {
	// Answer returns the reply for a question. It never fails: every
	// outcome, including infrastructure errors, is a string.
	Answer(ctx context.Context, query string) string
}

// RetrievalService runs the answer policy up to context assembly.
type RetrievalService interface {
	// Decide short-circuits with a fixed reply or returns the context
	// block to generate from.
	Decide(ctx context.Context, query string) (domain.Decision, error)
}
