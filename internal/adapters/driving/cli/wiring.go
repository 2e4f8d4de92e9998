package cli

import (
	"context"
	"errors"
	"io"

	"github.com/ncdb-labs/ncdb-chat/internal/adapters/driven/ai"
	"github.com/ncdb-labs/ncdb-chat/internal/adapters/driven/config/file"
	"github.com/ncdb-labs/ncdb-chat/internal/adapters/driven/gateway"
	"github.com/ncdb-labs/ncdb-chat/internal/adapters/driven/storage/memory"
	"github.com/ncdb-labs/ncdb-chat/internal/adapters/driven/storage/sqlite"
	"github.com/ncdb-labs/ncdb-chat/internal/adapters/driven/vector/flat"
	"github.com/ncdb-labs/ncdb-chat/internal/config"
	"github.com/ncdb-labs/ncdb-chat/internal/connectors/filesystem"
	"github.com/ncdb-labs/ncdb-chat/internal/core/ports/driven"
	"github.com/ncdb-labs/ncdb-chat/internal/core/ports/driving"
	"github.com/ncdb-labs/ncdb-chat/internal/core/services"
	"github.com/ncdb-labs/ncdb-chat/internal/logger"
	"github.com/ncdb-labs/ncdb-chat/internal/normalisers"
	"github.com/ncdb-labs/ncdb-chat/internal/normalisers/pdf"
	"github.com/ncdb-labs/ncdb-chat/internal/normalisers/plaintext"
	"github.com/ncdb-labs/ncdb-chat/internal/normalisers/qa"
	"github.com/ncdb-labs/ncdb-chat/internal/normalisers/tabular"
	"github.com/ncdb-labs/ncdb-chat/internal/postprocessors"
)

// ingester is the ingest service plus its progress hook.
type ingester interface {
	driving.IngestService
	SetProgress(p driving.IngestProgress)
}

// questioner is the end-user question service with its admin side.
type questioner interface {
	driving.Asker
	driving.QuestionAdmin
}

// answerStack is the online query path and the index it reads.
type answerStack struct {
	answers driving.AnswerService
	// handle is nil when no embedder could be loaded.
	handle *flat.Handle
	close  func()
}

// Builders are package variables so tests can substitute stubs.
var (
	newIngester  = buildIngester
	newAnswers   = buildAnswers
	newQuestions = buildQuestions
)

func newNormaliserRegistry() *normalisers.Registry {
	return normalisers.NewRegistry(
		plaintext.New(),
		tabular.New(),
		qa.New(),
		pdf.New(),
	)
}

func buildIngester(c *config.Config) (ingester, func(), error) {
	embedder, err := ai.CreateEmbeddingService(c.Embedding)
	if err != nil {
		return nil, nil, err
	}

	pipeline, err := postprocessors.NewDefaultPipeline(c.Ingest.ChunkSize, c.Ingest.ChunkOverlap)
	if err != nil {
		closeQuietly(embedder)
		return nil, nil, err
	}

	registry := newNormaliserRegistry()
	svc := services.NewIngestService(
		filesystem.Factory(registry.SupportedExtensions()...),
		registry,
		pipeline,
		embedder,
		flat.Builder{},
	)
	svc.SetRequiredFiles(c.Ingest.RequiredFiles)

	return svc, func() { closeQuietly(embedder) }, nil
}

// buildAnswers assembles the answer service. Missing models or a missing
// index are logged and leave the service in degraded mode.
func buildAnswers(ctx context.Context, c *config.Config) (*answerStack, error) {
	stack := &answerStack{close: func() {}}

	var index driven.VectorIndex
	embedder, err := ai.CreateEmbeddingService(c.Embedding)
	if err != nil {
		logger.Error("Embedding model not loaded: %v", err)
	} else {
		if err := ai.Validate(ctx, embedder); err != nil {
			logger.Warn("Embedding backend unreachable: %v", err)
		}
		stack.handle = flat.NewHandle(nil)
		if idx, err := flat.Load(c.Index.Path); err != nil {
			logger.Warn("Knowledge base not loaded from %s: %v", c.Index.Path, err)
		} else {
			stack.handle.Swap(idx)
			logger.Info("Loaded %d chunks from %s (build %s)", idx.Len(), c.Index.Path, idx.BuildID())
		}
		index = stack.handle
		stack.close = func() { closeQuietly(embedder) }
	}

	llm, err := ai.CreateLLMService(c.LLM)
	if err != nil {
		logger.Error("Generator not configured: %v", err)
	} else if err := ai.Validate(ctx, llm); err != nil {
		logger.Warn("Generator backend unreachable: %v", err)
	}

	prompts, err := file.NewPromptStore(c.LLM.PromptDir)
	if err != nil {
		stack.close()
		return nil, err
	}

	opts := services.DefaultGenerateOptions()
	opts.MaxNewTokens = c.LLM.MaxNewTokens
	opts.NumBeams = c.LLM.NumBeams
	opts.RepetitionPenalty = c.LLM.RepetitionPenalty
	opts.Timeout = c.LLMTimeout()

	retrieval := services.NewRetrievalService(retrievalPolicy(c.Retrieval), index, embedder)
	stack.answers = services.NewAnswerService(retrieval, services.NewGenerator(llm, prompts, opts))
	return stack, nil
}

func retrievalPolicy(r config.RetrievalConfig) services.RetrievalPolicy {
	p := services.DefaultRetrievalPolicy()
	if len(r.Greetings) > 0 {
		p.Greetings = r.Greetings
	}
	if len(r.DomainHints) > 0 {
		p.DomainHints = r.DomainHints
	}
	if len(r.FocusTerms) > 0 {
		p.FocusTerms = r.FocusTerms
	}
	if r.TopK > 0 {
		p.TopK = r.TopK
	}
	if r.Keep > 0 {
		p.Keep = r.Keep
	}
	if r.MaxContextChars > 0 {
		p.MaxContextChars = r.MaxContextChars
	}
	return p
}

// buildQuestions assembles the question service. When the question
// database cannot be opened, unanswered questions are kept in memory so
// that end users still get replies.
func buildQuestions(c *config.Config) (questioner, func(), error) {
	var (
		questions driven.QuestionStore
		closeFn   = func() {}
	)
	store, err := sqlite.NewStore(c.Gateway.QuestionsDB)
	if err != nil {
		logger.Error("Open question database %s: %v; pending questions will not persist", c.Gateway.QuestionsDB, err)
		questions = memory.NewQuestionStore()
	} else {
		questions = store.QuestionStore()
		closeFn = func() { closeQuietly(store) }
	}

	svc := services.NewQuestionService(
		file.NewShortcutStore(c.Gateway.ShortcutsFile),
		questions,
		gateway.New(c.GatewayAddr(), c.GatewayTimeout()),
	)
	svc.SetAlertThreshold(c.Gateway.AlertThreshold)

	return svc, closeFn, nil
}

func closeQuietly(v any) {
	c, ok := v.(io.Closer)
	if !ok {
		return
	}
	if err := c.Close(); err != nil && !errors.Is(err, context.Canceled) {
		logger.Warn("Close: %v", err)
	}
}
