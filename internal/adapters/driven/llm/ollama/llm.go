// Package ollama generates answers with a model served by a local Ollama
// daemon.
package ollama

import (
	"context"
	"sync"
	"time"

	"github.com/ncdb-labs/ncdb-chat/internal/adapters/driven/ollamaapi"
	"github.com/ncdb-labs/ncdb-chat/internal/core/ports/driven"
	"github.com/ncdb-labs/ncdb-chat/internal/logger"
)

var _ driven.LLMService = (*LLMService)(nil)

const (
	DefaultLLMModel   = "llama3.2"
	DefaultLLMTimeout = 120 * time.Second

	// sampleTemperature applies when DoSample is set. Otherwise zero
	// temperature gives greedy decoding.
	sampleTemperature = 0.8
)

// LLMConfig configures the adapter. Zero values take the defaults.
type LLMConfig struct {
	BaseURL string
	Model   string
	Timeout time.Duration
}

// LLMService calls /api/generate without streaming.
type LLMService struct {
	api       *ollamaapi.Client
	model     string
	beamsOnce sync.Once
}

type generateRequest struct {
	Model   string  `json:"model"`
	Prompt  string  `json:"prompt"`
	Stream  bool    `json:"stream"`
	Options options `json:"options"`
}

type options struct {
	NumPredict    int     `json:"num_predict,omitempty"`
	Temperature   float64 `json:"temperature"`
	RepeatPenalty float64 `json:"repeat_penalty,omitempty"`
}

type generateResponse struct {
	Response string `json:"response"`
	Done     bool   `json:"done"`
}

func NewLLMService(cfg LLMConfig) *LLMService {
	if cfg.Model == "" {
		cfg.Model = DefaultLLMModel
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultLLMTimeout
	}
	return &LLMService{
		api:   ollamaapi.New(cfg.BaseURL, cfg.Timeout),
		model: cfg.Model,
	}
}

// Generate runs one completion. Ollama has no beam search, so NumBeams is
// reported once and otherwise ignored.
func (s *LLMService) Generate(ctx context.Context, prompt string, opts driven.GenerateOptions) (string, error) {
	if opts.NumBeams > 1 {
		s.beamsOnce.Do(func() {
			logger.Info("Ollama does not support beam search; num_beams=%d ignored", opts.NumBeams)
		})
	}

	req := generateRequest{
		Model:  s.model,
		Prompt: prompt,
		Options: options{
			NumPredict:    opts.MaxNewTokens,
			RepeatPenalty: opts.RepetitionPenalty,
		},
	}
	if opts.DoSample {
		req.Options.Temperature = sampleTemperature
	}

	var resp generateResponse
	if err := s.api.Post(ctx, "/api/generate", req, &resp); err != nil {
		return "", err
	}
	return resp.Response, nil
}

func (s *LLMService) ModelName() string { return s.model }

// Ping checks the daemon without running the model.
func (s *LLMService) Ping(ctx context.Context) error { return s.api.Ping(ctx) }

func (s *LLMService) Close() error { return nil }
