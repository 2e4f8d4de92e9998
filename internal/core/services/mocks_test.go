package services

import (
	"context"
	"strings"
	"sync"

	"github.com/ncdb-labs/ncdb-chat/internal/core/domain"
	"github.com/ncdb-labs/ncdb-chat/internal/core/ports/driven"
)

// --- Mock implementations ---

// mockEmbeddingService implements driven.EmbeddingService for testing.
type mockEmbeddingService struct {
	mu       sync.Mutex
	calls    []string
	vector   []float32
	embedErr error
}

func (m *mockEmbeddingService) Embed(ctx context.Context, text string) ([]float32, error) {
	out, err := m.EmbedBatch(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return out[0], nil
}

func (m *mockEmbeddingService) EmbedBatch(_ context.Context, texts []string) ([][]float32, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, texts...)
	if m.embedErr != nil {
		return nil, m.embedErr
	}
	out := make([][]float32, len(texts))
	for i := range texts {
		v := m.vector
		if v == nil {
			v = []float32{1, 0, 0}
		}
		out[i] = v
	}
	return out, nil
}

func (m *mockEmbeddingService) Dimensions() int   { return 3 }
func (m *mockEmbeddingService) ModelName() string { return "mock-embedder" }
func (m *mockEmbeddingService) Close() error      { return nil }

// mockVectorIndex implements driven.VectorIndex for testing.
type mockVectorIndex struct {
	hits      []domain.RetrievalHit
	searchErr error
	searched  int
	lastK     int
}

func (m *mockVectorIndex) Search(_ context.Context, _ []float32, k int) ([]domain.RetrievalHit, error) {
	m.searched++
	m.lastK = k
	if m.searchErr != nil {
		return nil, m.searchErr
	}
	if k > len(m.hits) {
		return m.hits, nil
	}
	return m.hits[:k], nil
}

func (m *mockVectorIndex) Len() int        { return len(m.hits) }
func (m *mockVectorIndex) Dimensions() int { return 3 }

// mockLLMService implements driven.LLMService for testing.
type mockLLMService struct {
	prompts  []string
	opts     []driven.GenerateOptions
	reply    func(prompt string) string
	genErr   error
	deadline bool
}

func (m *mockLLMService) Generate(ctx context.Context, prompt string, opts driven.GenerateOptions) (string, error) {
	m.prompts = append(m.prompts, prompt)
	m.opts = append(m.opts, opts)
	_, m.deadline = ctx.Deadline()
	if m.genErr != nil {
		return "", m.genErr
	}
	if m.reply == nil {
		return "The V16 was introduced in 1930.", nil
	}
	return m.reply(prompt), nil
}

func (m *mockLLMService) ModelName() string { return "mock-llm" }
func (m *mockLLMService) Close() error      { return nil }

// mockPromptStore implements driven.PromptStore for testing.
type mockPromptStore struct {
	template string
	loadErr  error
}

func (m *mockPromptStore) Load(_ string) (string, error) {
	if m.loadErr != nil {
		return "", m.loadErr
	}
	if m.template == "" {
		return "Context: %s\nQuestion: %s\nAnswer:", nil
	}
	return m.template, nil
}

func (m *mockPromptStore) Reload() {}

// mockConnector implements driven.Connector for testing.
type mockConnector struct {
	files       []domain.RawFile
	readErrs    []error
	validateErr error
}

func (m *mockConnector) Type() string { return "mock" }

func (m *mockConnector) Validate(_ context.Context) error { return m.validateErr }

func (m *mockConnector) FullSync(_ context.Context) (<-chan domain.RawFile, <-chan error) {
	filesCh := make(chan domain.RawFile, len(m.files))
	errsCh := make(chan error, len(m.readErrs))
	for _, f := range m.files {
		filesCh <- f
	}
	for _, e := range m.readErrs {
		errsCh <- e
	}
	close(filesCh)
	close(errsCh)
	return filesCh, errsCh
}

// mockRegistry implements driven.NormaliserRegistry for testing.
// Files named in failures fail to normalise; others yield one document
// with the raw content.
type mockRegistry struct {
	failures map[string]error
}

func (m *mockRegistry) Normalise(_ context.Context, raw *domain.RawFile) ([]domain.Document, error) {
	if err, ok := m.failures[raw.SourceID]; ok {
		return nil, err
	}
	return []domain.Document{{
		ID:       raw.SourceID + "#0",
		SourceID: raw.SourceID,
		Content:  string(raw.Content),
	}}, nil
}

func (m *mockRegistry) Register(_ driven.Normaliser) {}

func (m *mockRegistry) SupportedExtensions() []string { return []string{".txt"} }

// mockPipeline implements driven.PostProcessorPipeline, one chunk per
// non-empty document.
type mockPipeline struct{}

func (mockPipeline) Process(_ context.Context, doc *domain.Document) ([]domain.Chunk, error) {
	if doc.Content == "" {
		return nil, nil
	}
	return []domain.Chunk{{
		ID:       doc.ID + "/0",
		SourceID: doc.SourceID,
		Sequence: doc.Sequence,
		Content:  doc.Content,
	}}, nil
}

// mockIndexBuilder implements driven.IndexBuilder for testing.
type mockIndexBuilder struct {
	path     string
	chunks   []domain.Chunk
	buildErr error
}

func (m *mockIndexBuilder) BuildIndex(
	_ context.Context, path string, chunks []domain.Chunk, _ driven.EmbeddingService,
) error {
	if m.buildErr != nil {
		return m.buildErr
	}
	m.path = path
	m.chunks = chunks
	return nil
}

// mockQueryClient implements driven.QueryClient for testing.
type mockQueryClient struct {
	reply    string
	queryErr error
	queries  []string
}

func (m *mockQueryClient) Query(_ context.Context, q string) (string, error) {
	m.queries = append(m.queries, q)
	return m.reply, m.queryErr
}

// mockShortcutStore implements driven.ShortcutStore for testing.
type mockShortcutStore struct {
	entries    []domain.Shortcut
	prependErr error
}

func (m *mockShortcutStore) Lookup(q string) (string, bool) {
	for _, e := range m.entries {
		if strings.EqualFold(e.Question, q) {
			return e.Answer, true
		}
	}
	return "", false
}

func (m *mockShortcutStore) Prepend(s domain.Shortcut) error {
	if m.prependErr != nil {
		return m.prependErr
	}
	m.entries = append([]domain.Shortcut{s}, m.entries...)
	return nil
}

func (m *mockShortcutStore) All() []domain.Shortcut { return m.entries }

func hit(source, content string, score float64) domain.RetrievalHit {
	return domain.RetrievalHit{
		Chunk: domain.Chunk{ID: source + "/" + content, SourceID: source, Content: content},
		Score: score,
	}
}
