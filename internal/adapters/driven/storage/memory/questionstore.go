// Package memory provides in-memory implementations of driven ports,
// used when the question database is unavailable and by tests.
package memory

import (
	"context"
	"sync"

	"github.com/ncdb-labs/ncdb-chat/internal/core/domain"
	"github.com/ncdb-labs/ncdb-chat/internal/core/ports/driven"
)

// Ensure QuestionStore implements the interface.
var _ driven.QuestionStore = (*QuestionStore)(nil)

// QuestionStore is an in-memory implementation of driven.QuestionStore.
type QuestionStore struct {
	mu        sync.RWMutex
	order     []string
	questions map[string]domain.PendingQuestion
}

// NewQuestionStore creates a new in-memory question store.
func NewQuestionStore() *QuestionStore {
	return &QuestionStore{
		questions: make(map[string]domain.PendingQuestion),
	}
}

// Record stores the question unless its hash is already pending.
func (s *QuestionStore) Record(_ context.Context, q domain.PendingQuestion) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.questions[q.Hash]; !ok {
		s.order = append(s.order, q.Hash)
	}
	s.questions[q.Hash] = q
	return len(s.questions), nil
}

// Get retrieves a pending question by hash.
func (s *QuestionStore) Get(_ context.Context, hash string) (*domain.PendingQuestion, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	q, ok := s.questions[hash]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &q, nil
}

// List returns pending questions in the order they were first recorded.
func (s *QuestionStore) List(_ context.Context) ([]domain.PendingQuestion, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	result := make([]domain.PendingQuestion, 0, len(s.order))
	for _, hash := range s.order {
		result = append(result, s.questions[hash])
	}
	return result, nil
}

// Delete removes a pending question.
func (s *QuestionStore) Delete(_ context.Context, hash string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.questions[hash]; !ok {
		return domain.ErrNotFound
	}
	delete(s.questions, hash)
	for i, h := range s.order {
		if h == hash {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	return nil
}

// Count returns the number of pending questions.
func (s *QuestionStore) Count(_ context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.questions), nil
}
