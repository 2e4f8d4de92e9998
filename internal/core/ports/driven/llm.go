package driven

import (
	"context"
	"time"
)

// LLMService produces text from a prompt with a sequence generation model.
//
// Implementations may include:
//   - Hugging Face inference endpoints (google/flan-t5-base)
//   - Ollama (local models)
type LLMService interface {
	// Generate produces text completion from a prompt.
	Generate(ctx context.Context, prompt string, opts GenerateOptions) (string, error)

	// ModelName returns the name of the model being used.
	ModelName() string

	// Close releases resources.
	Close() error
}

// GenerateOptions configures text generation behaviour.
// Decoding is deterministic unless DoSample is set.
type GenerateOptions struct {
	// MaxNewTokens bounds the number of generated tokens.
	MaxNewTokens int

	// NumBeams is the beam search width.
	NumBeams int

	// RepetitionPenalty discourages repeated tokens (1.0 = none).
	RepetitionPenalty float64

	// DoSample enables sampling instead of beam search.
	DoSample bool

	// Timeout bounds wall time of a single generation.
	Timeout time.Duration
}
