package driving

import (
	"context"

	"github.com/ncdb-labs/ncdb-chat/internal/core/domain"
)

// Asker answers questions on behalf of an end user, applying the
// shortcut list and the unanswered-question policy.
type Asker interface {
	// Ask returns the reply to show the end user.
	Ask(ctx context.Context, question string) (string, error)
}

// QuestionAdmin manages questions waiting for a human answer.
type QuestionAdmin interface {
	// Pending lists unanswered questions, oldest first.
	Pending(ctx context.Context) ([]domain.PendingQuestion, error)

	// AnswerPending removes the question and publishes the answer as a
	// shortcut.
	AnswerPending(ctx context.Context, hash, answer string) error
}
