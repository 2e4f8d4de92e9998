package cli

import (
	"bytes"
	"context"
	"errors"
	"net"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ncdb-labs/ncdb-chat/internal/config"
	"github.com/ncdb-labs/ncdb-chat/internal/core/domain"
	"github.com/ncdb-labs/ncdb-chat/internal/core/ports/driving"
)

type stubIngester struct {
	report    driving.IngestReport
	err       error
	progress  driving.IngestProgress
	sourceDir string
	indexPath string
}

func (s *stubIngester) Ingest(_ context.Context, sourceDir, indexPath string) (driving.IngestReport, error) {
	s.sourceDir, s.indexPath = sourceDir, indexPath
	if s.progress != nil {
		s.progress.FilesFound(s.report.FilesFound)
		s.progress.Chunked(s.report.Documents, s.report.Chunks)
	}
	s.report.IndexPath = indexPath
	return s.report, s.err
}

func (s *stubIngester) SetProgress(p driving.IngestProgress) {
	s.progress = p
}

type stubQuestions struct {
	answers  map[string]string
	pending  []domain.PendingQuestion
	answered map[string]string
	err      error
}

func (s *stubQuestions) Ask(_ context.Context, q string) (string, error) {
	if s.err != nil {
		return "", s.err
	}
	if a, ok := s.answers[q]; ok {
		return a, nil
	}
	return domain.AnswerDefault, nil
}

func (s *stubQuestions) Pending(_ context.Context) ([]domain.PendingQuestion, error) {
	return s.pending, s.err
}

func (s *stubQuestions) AnswerPending(_ context.Context, hash, answer string) error {
	if s.err != nil {
		return s.err
	}
	if s.answered == nil {
		s.answered = map[string]string{}
	}
	s.answered[hash] = answer
	return nil
}

type stubAnswers struct{}

func (stubAnswers) Answer(_ context.Context, q string) string { return "echo: " + q }

// useStubs swaps the service builders for the duration of the test.
func useStubs(t *testing.T, ing *stubIngester, qs *stubQuestions) {
	t.Helper()
	oldIngester, oldAnswers, oldQuestions := newIngester, newAnswers, newQuestions
	t.Cleanup(func() {
		newIngester, newAnswers, newQuestions = oldIngester, oldAnswers, oldQuestions
	})

	newIngester = func(*config.Config) (ingester, func(), error) {
		return ing, func() {}, nil
	}
	newQuestions = func(*config.Config) (questioner, func(), error) {
		return qs, func() {}, nil
	}
	newAnswers = func(context.Context, *config.Config) (*answerStack, error) {
		return &answerStack{answers: stubAnswers{}, close: func() {}}, nil
	}
}

func execute(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	t.Setenv("NCDB_CONFIG", t.TempDir()+"/absent.toml")

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetIn(strings.NewReader(stdin))
	rootCmd.SetArgs(args)
	t.Cleanup(func() {
		rootCmd.SetArgs(nil)
		rootCmd.SetIn(nil)
		ingestSource, ingestIndex, serveWatch, mcpHTTPAddr = "", "", false, ""
	})

	err := rootCmd.Execute()
	return buf.String(), err
}

func TestIngestCmd_PrintsReport(t *testing.T) {
	ing := &stubIngester{report: driving.IngestReport{
		FilesFound: 4, FilesSkipped: 1, Documents: 12, Chunks: 40,
	}}
	useStubs(t, ing, &stubQuestions{})

	out, err := execute(t, "", "ingest", "--source", "corpus", "--index", "out/index")

	require.NoError(t, err)
	assert.Equal(t, "corpus", ing.sourceDir)
	assert.Equal(t, "out/index", ing.indexPath)
	assert.Contains(t, out, "Found 4 files")
	assert.Contains(t, out, "Split 12 documents into 40 chunks")
	assert.Contains(t, out, "Files skipped: 1")
	assert.Contains(t, out, "Knowledge base saved to out/index")
}

func TestIngestCmd_DefaultsFromConfig(t *testing.T) {
	ing := &stubIngester{}
	useStubs(t, ing, &stubQuestions{})

	_, err := execute(t, "", "ingest")

	require.NoError(t, err)
	assert.Equal(t, "source_documents", ing.sourceDir)
	assert.Equal(t, "vector_index", ing.indexPath)
}

func TestIngestCmd_Failure(t *testing.T) {
	ing := &stubIngester{err: domain.ErrNoChunks}
	useStubs(t, ing, &stubQuestions{})

	_, err := execute(t, "", "ingest")

	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrNoChunks)
}

func TestAskCmd_OneShot(t *testing.T) {
	qs := &stubQuestions{answers: map[string]string{"Who built it?": "Fleetwood."}}
	useStubs(t, &stubIngester{}, qs)

	out, err := execute(t, "", "ask", "Who built it?")

	require.NoError(t, err)
	assert.Equal(t, "Fleetwood.\n", out)
}

func TestAskCmd_PipedLines(t *testing.T) {
	old := isTerminal
	isTerminal = func() bool { return false }
	defer func() { isTerminal = old }()

	qs := &stubQuestions{answers: map[string]string{"a": "1", "b": "2"}}
	useStubs(t, &stubIngester{}, qs)

	out, err := execute(t, "a\n\n b \n", "ask")

	require.NoError(t, err)
	assert.Equal(t, "1\n2\n", out)
}

func TestAskCmd_Error(t *testing.T) {
	useStubs(t, &stubIngester{}, &stubQuestions{err: domain.ErrEmptyQuery})

	_, err := execute(t, "", "ask", " ")

	assert.ErrorIs(t, err, domain.ErrEmptyQuery)
}

func TestQuestionsCmd_List(t *testing.T) {
	qs := &stubQuestions{pending: []domain.PendingQuestion{
		{Hash: "abc", Content: "What colour was it?", CreatedAt: time.Date(2024, 5, 1, 9, 30, 0, 0, time.UTC)},
	}}
	useStubs(t, &stubIngester{}, qs)

	out, err := execute(t, "", "questions", "list")

	require.NoError(t, err)
	assert.Contains(t, out, "1 pending questions")
	assert.Contains(t, out, "abc  2024-05-01 09:30")
	assert.Contains(t, out, "What colour was it?")
}

func TestQuestionsCmd_ListEmpty(t *testing.T) {
	useStubs(t, &stubIngester{}, &stubQuestions{})

	out, err := execute(t, "", "questions", "list")

	require.NoError(t, err)
	assert.Contains(t, out, "No pending questions.")
}

func TestQuestionsCmd_Answer(t *testing.T) {
	qs := &stubQuestions{}
	useStubs(t, &stubIngester{}, qs)

	out, err := execute(t, "", "questions", "answer", "abc", "Mostly", "black.")

	require.NoError(t, err)
	assert.Equal(t, "Mostly black.", qs.answered["abc"])
	assert.Contains(t, out, "Answered abc")
}

func TestQuestionsCmd_AnswerUnknownHash(t *testing.T) {
	useStubs(t, &stubIngester{}, &stubQuestions{err: domain.ErrNotFound})

	_, err := execute(t, "", "questions", "answer", "nope", "x")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "no pending question with hash nope")
}

func TestQuestionsCmd_AnswerNeedsTwoArgs(t *testing.T) {
	useStubs(t, &stubIngester{}, &stubQuestions{})

	_, err := execute(t, "", "questions", "answer", "abc")

	assert.Error(t, err)
}

func TestServeCmd_AddressInUse(t *testing.T) {
	held, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer held.Close()

	_, port, err := net.SplitHostPort(held.Addr().String())
	require.NoError(t, err)
	t.Setenv("NCDB_SERVER_HOST", "127.0.0.1")
	t.Setenv("NCDB_SERVER_PORT", port)
	useStubs(t, &stubIngester{}, &stubQuestions{})

	_, err = execute(t, "", "serve")

	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrAlreadyRunning)
}

func TestServeCmd_BuildFailure(t *testing.T) {
	useStubs(t, &stubIngester{}, &stubQuestions{})
	newAnswers = func(context.Context, *config.Config) (*answerStack, error) {
		return nil, errors.New("prompt dir unreadable")
	}

	_, err := execute(t, "", "serve")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "prompt dir unreadable")
}

func TestRetrievalPolicy_Overrides(t *testing.T) {
	p := retrievalPolicy(config.RetrievalConfig{TopK: 9, FocusTerms: []string{"sixteen"}})

	assert.Equal(t, 9, p.TopK)
	assert.Equal(t, []string{"sixteen"}, p.FocusTerms)
	assert.Equal(t, 2, p.Keep)
	assert.NotEmpty(t, p.Greetings)
}

func TestRootCmd_InvalidConfig(t *testing.T) {
	qs := &stubQuestions{}
	useStubs(t, nil, qs)
	t.Setenv("NCDB_SERVER_PORT", strconv.Itoa(70000))

	_, err := execute(t, "", "questions", "list")

	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}
