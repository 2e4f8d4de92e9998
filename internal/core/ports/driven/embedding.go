package driven

import "context"

// EmbeddingService generates vector embeddings from text.
//
// Every returned vector has unit L2 norm, so cosine similarity reduces to a
// dot product. Embed must compute exactly what EmbedBatch computes for a
// one-element batch, so query and indexed vectors are comparable.
//
// Implementations may include:
//   - MiniLM via ONNX Runtime (all-MiniLM-L6-v2, in-process)
//   - Ollama (nomic-embed-text, all-minilm)
type EmbeddingService interface {
	// Embed generates a vector embedding for the given text.
	Embed(ctx context.Context, text string) ([]float32, error)

	// EmbedBatch generates embeddings for multiple texts.
	// Batch composition never changes the vector produced for a text.
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)

	// Dimensions returns the embedding vector size (e.g., 384).
	Dimensions() int

	// ModelName returns the name of the embedding model being used.
	ModelName() string

	// Close releases resources.
	Close() error
}
