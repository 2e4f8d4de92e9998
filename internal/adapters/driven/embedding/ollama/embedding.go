// Package ollama embeds text with a model served by a local Ollama daemon.
package ollama

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/ncdb-labs/ncdb-chat/internal/adapters/driven/ollamaapi"
	"github.com/ncdb-labs/ncdb-chat/internal/core/domain"
	"github.com/ncdb-labs/ncdb-chat/internal/core/ports/driven"
)

var _ driven.EmbeddingService = (*EmbeddingService)(nil)

const (
	DefaultModel      = "all-minilm"
	DefaultTimeout    = 30 * time.Second
	DefaultDimensions = 384
	DefaultBatchSize  = 32
)

// Config configures the adapter. Zero values take the defaults.
type Config struct {
	BaseURL    string
	Model      string
	Timeout    time.Duration
	Dimensions int
	BatchSize  int
}

// EmbeddingService calls /api/embed and returns unit vectors.
type EmbeddingService struct {
	api        *ollamaapi.Client
	model      string
	dimensions int
	batchSize  int
}

type embedRequest struct {
	Model string   `json:"model"`
	Input []string `json:"input"`
}

type embedResponse struct {
	Embeddings [][]float64 `json:"embeddings"`
}

func NewEmbeddingService(cfg Config) *EmbeddingService {
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.Dimensions == 0 {
		cfg.Dimensions = DefaultDimensions
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = DefaultBatchSize
	}
	return &EmbeddingService{
		api:        ollamaapi.New(cfg.BaseURL, cfg.Timeout),
		model:      cfg.Model,
		dimensions: cfg.Dimensions,
		batchSize:  cfg.BatchSize,
	}
}

func (s *EmbeddingService) Embed(ctx context.Context, text string) ([]float32, error) {
	vectors, err := s.EmbedBatch(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return vectors[0], nil
}

// EmbedBatch sends at most batchSize texts per request.
func (s *EmbeddingService) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, 0, len(texts))
	for start := 0; start < len(texts); start += s.batchSize {
		end := min(start+s.batchSize, len(texts))

		var resp embedResponse
		if err := s.api.Post(ctx, "/api/embed", embedRequest{Model: s.model, Input: texts[start:end]}, &resp); err != nil {
			return nil, fmt.Errorf("embed texts %d-%d: %w", start, end-1, err)
		}
		if len(resp.Embeddings) != end-start {
			return nil, fmt.Errorf("ollama returned %d embeddings for %d texts: %w",
				len(resp.Embeddings), end-start, domain.ErrEmbeddingUnavailable)
		}
		for _, e := range resp.Embeddings {
			out = append(out, unit(e))
		}
	}
	return out, nil
}

// unit scales v to L2 norm one. A zero vector stays zero.
func unit(v []float64) []float32 {
	var sq float64
	for _, x := range v {
		sq += x * x
	}
	scale := 1.0
	if sq > 0 {
		scale = 1 / math.Sqrt(sq)
	}
	out := make([]float32, len(v))
	for i, x := range v {
		out[i] = float32(x * scale)
	}
	return out
}

func (s *EmbeddingService) Dimensions() int   { return s.dimensions }
func (s *EmbeddingService) ModelName() string { return s.model }

// Ping checks the daemon without loading the model.
func (s *EmbeddingService) Ping(ctx context.Context) error { return s.api.Ping(ctx) }

func (s *EmbeddingService) Close() error { return nil }
