package services

import (
	"context"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/ncdb-labs/ncdb-chat/internal/core/domain"
	"github.com/ncdb-labs/ncdb-chat/internal/core/ports/driven"
	"github.com/ncdb-labs/ncdb-chat/internal/logger"
)

// minAnswerRunes is the shortest generation returned verbatim.
const minAnswerRunes = 4

// DefaultGenerateOptions returns deterministic beam-search settings.
func DefaultGenerateOptions() driven.GenerateOptions {
	return driven.GenerateOptions{
		MaxNewTokens:      150,
		NumBeams:          4,
		RepetitionPenalty: 2.5,
		DoSample:          false,
		Timeout:           60 * time.Second,
	}
}

// Generator renders the answer prompt, calls the LLM backend and
// filters degenerate outputs.
type Generator struct {
	llm     driven.LLMService
	prompts driven.PromptStore
	opts    driven.GenerateOptions
}

// NewGenerator creates a generator.
func NewGenerator(llm driven.LLMService, prompts driven.PromptStore, opts driven.GenerateOptions) *Generator {
	return &Generator{
		llm:     llm,
		prompts: prompts,
		opts:    opts,
	}
}

// Generate answers question from contextBlock. It never fails: backend
// errors and empty outputs become the "I do not know." reply.
func (g *Generator) Generate(ctx context.Context, question, contextBlock string) string {
	prompt, err := g.Prompt(question, contextBlock)
	if err != nil {
		logger.Error("Build prompt: %v", err)
		return domain.AnswerUnknown
	}

	if g.llm == nil {
		logger.Error("Generate: %v", domain.ErrGeneratorUnavailable)
		return domain.AnswerUnknown
	}

	if g.opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, g.opts.Timeout)
		defer cancel()
	}

	start := time.Now()
	text, err := g.llm.Generate(ctx, prompt, g.opts)
	if err != nil {
		logger.Error("Generate with %s: %v", g.llm.ModelName(), err)
		return domain.AnswerUnknown
	}
	logger.Debug("Generated %d runes in %s", utf8.RuneCountInString(text), time.Since(start))

	return Postprocess(question, text)
}

// Prompt renders the answer prompt template with context and question.
func (g *Generator) Prompt(question, contextBlock string) (string, error) {
	tmpl, err := g.prompts.Load(driven.PromptAnswer)
	if err != nil {
		return "", fmt.Errorf("load answer prompt: %w", err)
	}
	return fmt.Sprintf(tmpl, contextBlock, question), nil
}

// Postprocess replaces an echo of the question and near-empty outputs
// with fixed replies.
func Postprocess(question, generated string) string {
	text := strings.TrimSpace(generated)
	if normaliseEcho(text) == normaliseEcho(question) {
		return domain.AnswerNoDetails
	}
	if utf8.RuneCountInString(text) < minAnswerRunes {
		return domain.AnswerUnknown
	}
	return text
}

func normaliseEcho(s string) string {
	return strings.Trim(strings.ToLower(s), "?")
}
