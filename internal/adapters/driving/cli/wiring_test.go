package cli

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ncdb-labs/ncdb-chat/internal/config"
	"github.com/ncdb-labs/ncdb-chat/internal/core/domain"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	dir := t.TempDir()
	c := config.Default()
	c.Embedding.ModelDir = filepath.Join(dir, "no-model")
	c.Index.Path = filepath.Join(dir, "vector_index")
	c.LLM.PromptDir = filepath.Join(dir, "prompts")
	c.Gateway.QuestionsDB = filepath.Join(dir, "data", "questions.db")
	c.Gateway.ShortcutsFile = filepath.Join(dir, "data", "questions_with_answers.json")
	c.Gateway.Addr = "127.0.0.1:1"
	return c
}

func TestBuildAnswers_DegradedWithoutModels(t *testing.T) {
	stack, err := buildAnswers(context.Background(), testConfig(t))
	require.NoError(t, err)
	defer stack.close()

	assert.Nil(t, stack.handle)
	assert.Equal(t, domain.AnswerGreeting, stack.answers.Answer(context.Background(), "hello there"))
	assert.Equal(t, domain.AnswerIndexUnavailable,
		stack.answers.Answer(context.Background(), "Which coachbuilder bodied the Cadillac V16?"))
	assert.Equal(t, domain.AnswerOutOfDomain,
		stack.answers.Answer(context.Background(), "What is the capital of France?"))
}

func TestBuildIngester_RequiresEmbedder(t *testing.T) {
	_, _, err := buildIngester(testConfig(t))

	assert.ErrorIs(t, err, domain.ErrEmbeddingUnavailable)
}

func TestBuildQuestions_PersistsPending(t *testing.T) {
	c := testConfig(t)
	svc, closeFn, err := buildQuestions(c)
	require.NoError(t, err)
	defer closeFn()

	// Nothing listens on the gateway address, so the question is recorded.
	reply, err := svc.Ask(context.Background(), "What colour were the wheels?")
	require.NoError(t, err)
	assert.Equal(t, domain.AnswerDefault, reply)

	pending, err := svc.Pending(context.Background())
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.FileExists(t, c.Gateway.QuestionsDB)
}

func TestBuildQuestions_FallsBackToMemory(t *testing.T) {
	c := testConfig(t)
	blocker := filepath.Join(t.TempDir(), "file")
	require.NoError(t, os.WriteFile(blocker, []byte("x"), 0o600))
	c.Gateway.QuestionsDB = filepath.Join(blocker, "questions.db")

	svc, closeFn, err := buildQuestions(c)
	require.NoError(t, err)
	defer closeFn()

	_, err = svc.Ask(context.Background(), "Who made the radiator mascot?")
	require.NoError(t, err)
	pending, err := svc.Pending(context.Background())
	require.NoError(t, err)
	assert.Len(t, pending, 1)
}
