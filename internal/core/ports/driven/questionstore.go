package driven

import (
	"context"

	"github.com/ncdb-labs/ncdb-chat/internal/core/domain"
)

// QuestionStore persists questions that could not be answered.
// Recording the same question twice keeps a single entry.
type QuestionStore interface {
	// Record stores the question and returns the number pending afterwards.
	Record(ctx context.Context, question domain.PendingQuestion) (int, error)

	// Get retrieves a pending question by hash.
	Get(ctx context.Context, hash string) (*domain.PendingQuestion, error)

	// List returns pending questions, oldest first.
	List(ctx context.Context) ([]domain.PendingQuestion, error)

	// Delete removes a pending question.
	Delete(ctx context.Context, hash string) error

	// Count returns the number of pending questions.
	Count(ctx context.Context) (int, error)
}

// ShortcutStore holds the curated exact-match answers.
type ShortcutStore interface {
	// Lookup returns the answer whose question equals q, ignoring case.
	Lookup(q string) (string, bool)

	// Prepend adds a pair ahead of existing entries and persists it.
	Prepend(s domain.Shortcut) error

	// All returns the entries in lookup order.
	All() []domain.Shortcut
}
