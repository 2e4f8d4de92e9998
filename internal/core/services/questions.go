package services

import (
	"context"
	"crypto/md5" //nolint:gosec // content key, not a security boundary
	"encoding/hex"
	"fmt"
	"strings"
	"time"

	"github.com/ncdb-labs/ncdb-chat/internal/core/domain"
	"github.com/ncdb-labs/ncdb-chat/internal/core/ports/driven"
	"github.com/ncdb-labs/ncdb-chat/internal/core/ports/driving"
	"github.com/ncdb-labs/ncdb-chat/internal/logger"
)

// Ensure QuestionService implements the interfaces.
var (
	_ driving.Asker         = (*QuestionService)(nil)
	_ driving.QuestionAdmin = (*QuestionService)(nil)
)

// DefaultAlertThreshold is the pending count above which an alert is raised.
const DefaultAlertThreshold = 50

// QuestionService answers end-user questions through the shortcut list
// and the query service, and keeps the questions neither could answer.
type QuestionService struct {
	shortcuts      driven.ShortcutStore
	questions      driven.QuestionStore
	client         driven.QueryClient
	alertThreshold int
	now            func() time.Time
}

// NewQuestionService creates a question service.
func NewQuestionService(
	shortcuts driven.ShortcutStore,
	questions driven.QuestionStore,
	client driven.QueryClient,
) *QuestionService {
	return &QuestionService{
		shortcuts:      shortcuts,
		questions:      questions,
		client:         client,
		alertThreshold: DefaultAlertThreshold,
		now:            time.Now,
	}
}

// SetAlertThreshold overrides the pending-question alert threshold.
func (s *QuestionService) SetAlertThreshold(n int) {
	if n > 0 {
		s.alertThreshold = n
	}
}

// Ask returns the reply for an end user. Shortcuts win; otherwise the
// query service answers, and an unknown or failed answer is recorded
// and replaced by the default response.
func (s *QuestionService) Ask(ctx context.Context, question string) (string, error) {
	if strings.TrimSpace(question) == "" {
		return "", domain.ErrEmptyQuery
	}

	if answer, ok := s.shortcuts.Lookup(question); ok {
		logger.Debug("Shortcut matched %q", question)
		return answer, nil
	}

	reply, err := s.client.Query(ctx, question)
	if err != nil {
		logger.Error("Query service error: %v", err)
		reply = ""
	}

	if reply == domain.AnswerUnknown || reply == "" {
		if err := s.record(ctx, question); err != nil {
			logger.Error("Record unanswered question: %v", err)
		}
		return domain.AnswerDefault, nil
	}
	return reply, nil
}

// Pending lists unanswered questions, oldest first.
func (s *QuestionService) Pending(ctx context.Context) ([]domain.PendingQuestion, error) {
	return s.questions.List(ctx)
}

// AnswerPending removes the question and publishes the answer as a
// shortcut ahead of the existing ones.
func (s *QuestionService) AnswerPending(ctx context.Context, hash, answer string) error {
	if strings.TrimSpace(answer) == "" {
		return fmt.Errorf("empty answer: %w", domain.ErrInvalidInput)
	}

	q, err := s.questions.Get(ctx, hash)
	if err != nil {
		return fmt.Errorf("get question %s: %w", hash, err)
	}

	if err := s.shortcuts.Prepend(domain.Shortcut{Question: q.Content, Answer: answer}); err != nil {
		return fmt.Errorf("save shortcut: %w", err)
	}
	if err := s.questions.Delete(ctx, hash); err != nil {
		return fmt.Errorf("delete question %s: %w", hash, err)
	}

	logger.Info("Answered question %s: %q", hash, q.Content)
	return nil
}

func (s *QuestionService) record(ctx context.Context, question string) error {
	pending, err := s.questions.Record(ctx, domain.PendingQuestion{
		Hash:      QuestionHash(question),
		Content:   question,
		CreatedAt: s.now(),
	})
	if err != nil {
		return err
	}

	logger.Info("Recorded unanswered question, %d pending", pending)
	if pending > s.alertThreshold {
		logger.Warn("Alert: there are more than %d questions waiting for an answer (%d pending)",
			s.alertThreshold, pending)
	}
	return nil
}

// QuestionHash returns the hex MD5 of the question text.
func QuestionHash(question string) string {
	sum := md5.Sum([]byte(question)) //nolint:gosec // content key
	return hex.EncodeToString(sum[:])
}
