package mcp

import (
	"context"

	"github.com/ncdb-labs/ncdb-chat/internal/core/domain"
)

// mockAsker is a mock implementation of driving.Asker.
type mockAsker struct {
	answer string
	err    error
	asked  []string
}

func (m *mockAsker) Ask(_ context.Context, question string) (string, error) {
	m.asked = append(m.asked, question)
	return m.answer, m.err
}

// mockQuestionAdmin is a mock implementation of driving.QuestionAdmin.
type mockQuestionAdmin struct {
	pending  []domain.PendingQuestion
	err      error
	answered map[string]string
}

func (m *mockQuestionAdmin) Pending(_ context.Context) ([]domain.PendingQuestion, error) {
	return m.pending, m.err
}

func (m *mockQuestionAdmin) AnswerPending(_ context.Context, hash, answer string) error {
	if m.err != nil {
		return m.err
	}
	if m.answered == nil {
		m.answered = map[string]string{}
	}
	m.answered[hash] = answer
	return nil
}
