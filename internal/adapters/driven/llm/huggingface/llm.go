// Package huggingface provides an LLM service adapter for Hugging Face
// text2text-generation inference endpoints.
package huggingface

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/ncdb-labs/ncdb-chat/internal/core/domain"
	"github.com/ncdb-labs/ncdb-chat/internal/core/ports/driven"
)

// Ensure LLMService implements the interface.
var _ driven.LLMService = (*LLMService)(nil)

// Default configuration values.
const (
	DefaultBaseURL = "https://router.huggingface.co/hf-inference"
	DefaultModel   = "google/flan-t5-base"
	DefaultTimeout = 15 * time.Second
)

// Config holds configuration for the Hugging Face LLM service.
type Config struct {
	// BaseURL is the inference API root; the model path is appended.
	BaseURL string

	// APIKey is the bearer token. Required by the hosted API.
	APIKey string

	// Model is the repository ID (default: google/flan-t5-base).
	Model string

	// Timeout is the HTTP client timeout (default: 15s).
	Timeout time.Duration
}

// LLMService generates text with a hosted sequence-to-sequence model.
type LLMService struct {
	client  *http.Client
	baseURL string
	apiKey  string
	model   string
}

// generateRequest is the inference API request format.
type generateRequest struct {
	Inputs     string     `json:"inputs"`
	Parameters parameters `json:"parameters"`
	Options    reqOptions `json:"options"`
}

type parameters struct {
	MaxNewTokens      int     `json:"max_new_tokens,omitempty"`
	NumBeams          int     `json:"num_beams,omitempty"`
	RepetitionPenalty float64 `json:"repetition_penalty,omitempty"`
	DoSample          bool    `json:"do_sample"`
}

type reqOptions struct {
	WaitForModel bool `json:"wait_for_model"`
	UseCache     bool `json:"use_cache"`
}

// generation is one element of the response array.
type generation struct {
	GeneratedText string `json:"generated_text"`
}

// apiError is the error body returned by the inference API.
type apiError struct {
	Error string `json:"error"`
}

// NewLLMService creates a new Hugging Face LLM service.
func NewLLMService(cfg Config) (*LLMService, error) {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultTimeout
	}
	if strings.HasPrefix(cfg.BaseURL, "https://") && cfg.APIKey == "" {
		return nil, fmt.Errorf("huggingface: API key is required: %w", domain.ErrGeneratorUnavailable)
	}

	return &LLMService{
		client: &http.Client{
			Timeout: cfg.Timeout,
		},
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:  cfg.APIKey,
		model:   cfg.Model,
	}, nil
}

// Generate produces text from a prompt.
func (s *LLMService) Generate(ctx context.Context, prompt string, opts driven.GenerateOptions) (string, error) {
	reqBody := generateRequest{
		Inputs: prompt,
		Parameters: parameters{
			MaxNewTokens:      opts.MaxNewTokens,
			NumBeams:          opts.NumBeams,
			RepetitionPenalty: opts.RepetitionPenalty,
			DoSample:          opts.DoSample,
		},
		Options: reqOptions{WaitForModel: true},
	}

	jsonBody, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(
		ctx,
		http.MethodPost,
		s.baseURL+"/models/"+s.model,
		bytes.NewReader(jsonBody),
	)
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if s.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+s.apiKey)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		var apiErr apiError
		if json.Unmarshal(body, &apiErr) == nil && apiErr.Error != "" {
			return "", fmt.Errorf("huggingface error (status %d): %s", resp.StatusCode, apiErr.Error)
		}
		return "", fmt.Errorf("huggingface error (status %d): %s", resp.StatusCode, string(body))
	}

	var gens []generation
	if err := json.Unmarshal(body, &gens); err != nil {
		return "", fmt.Errorf("decode response: %w", err)
	}
	if len(gens) == 0 {
		return "", fmt.Errorf("huggingface: empty response")
	}
	return strings.TrimSpace(gens[0].GeneratedText), nil
}

// ModelName returns the name of the model being used.
func (s *LLMService) ModelName() string {
	return s.model
}

// Close releases resources.
func (s *LLMService) Close() error {
	return nil
}
