// Package ai provides factory functions for creating the embedding and
// generation service adapters from configuration.
package ai

import (
	"context"
	"fmt"
	"time"

	"github.com/ncdb-labs/ncdb-chat/internal/adapters/driven/embedding/minilm"
	ollamaembed "github.com/ncdb-labs/ncdb-chat/internal/adapters/driven/embedding/ollama"
	"github.com/ncdb-labs/ncdb-chat/internal/adapters/driven/llm/huggingface"
	ollamallm "github.com/ncdb-labs/ncdb-chat/internal/adapters/driven/llm/ollama"
	"github.com/ncdb-labs/ncdb-chat/internal/config"
	"github.com/ncdb-labs/ncdb-chat/internal/core/domain"
	"github.com/ncdb-labs/ncdb-chat/internal/core/ports/driven"
)

// pingTimeout is the maximum time to wait for service connectivity validation.
const pingTimeout = 5 * time.Second

// Backend names accepted in configuration.
const (
	BackendMiniLM      = "minilm"
	BackendOllama      = "ollama"
	BackendHuggingFace = "huggingface"
)

// pinger is implemented by services that can check connectivity cheaply.
type pinger interface {
	Ping(ctx context.Context) error
}

// CreateEmbeddingService creates the embedding service named by cfg.Backend.
// Failures wrap domain.ErrEmbeddingUnavailable.
func CreateEmbeddingService(cfg config.EmbeddingConfig) (driven.EmbeddingService, error) {
	switch cfg.Backend {
	case BackendMiniLM, "":
		svc, err := minilm.NewEmbeddingService(minilm.Config{
			ModelDir:    cfg.ModelDir,
			ONNXLibPath: cfg.ONNXLibPath,
			MaxSeqLen:   cfg.MaxSeqLen,
			BatchSize:   cfg.BatchSize,
		})
		if err != nil {
			return nil, err
		}
		return svc, nil

	case BackendOllama:
		return ollamaembed.NewEmbeddingService(ollamaembed.Config{
			BaseURL:   cfg.OllamaURL,
			Model:     cfg.OllamaModel,
			BatchSize: cfg.BatchSize,
		}), nil

	default:
		return nil, fmt.Errorf("%w: unsupported embedding backend: %s", domain.ErrEmbeddingUnavailable, cfg.Backend)
	}
}

// CreateLLMService creates the generation service named by cfg.Backend.
// Failures wrap domain.ErrGeneratorUnavailable.
func CreateLLMService(cfg config.LLMConfig) (driven.LLMService, error) {
	timeout := time.Duration(cfg.TimeoutSecs) * time.Second

	switch cfg.Backend {
	case BackendHuggingFace, "":
		svc, err := huggingface.NewLLMService(huggingface.Config{
			BaseURL: cfg.BaseURL,
			APIKey:  cfg.APIKey,
			Model:   cfg.Model,
			Timeout: timeout,
		})
		if err != nil {
			return nil, err
		}
		return svc, nil

	case BackendOllama:
		return ollamallm.NewLLMService(ollamallm.LLMConfig{
			BaseURL: cfg.BaseURL,
			Model:   cfg.Model,
			Timeout: timeout,
		}), nil

	default:
		return nil, fmt.Errorf("%w: unsupported LLM backend: %s", domain.ErrGeneratorUnavailable, cfg.Backend)
	}
}

// Validate pings svc when it supports a connectivity check.
func Validate(ctx context.Context, svc any) error {
	p, ok := svc.(pinger)
	if !ok {
		return nil
	}
	ctx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()
	return p.Ping(ctx)
}
