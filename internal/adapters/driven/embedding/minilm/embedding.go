// Package minilm provides an in-process sentence embedder: a WordPiece
// tokenizer feeding all-MiniLM-L6-v2 through ONNX Runtime, followed by
// attention-masked mean pooling and L2 normalisation.
package minilm

import (
	"context"
	"fmt"
	"math"
	"path/filepath"

	"github.com/ncdb-labs/ncdb-chat/internal/core/domain"
	"github.com/ncdb-labs/ncdb-chat/internal/core/ports/driven"
)

// Ensure EmbeddingService implements the interface.
var _ driven.EmbeddingService = (*EmbeddingService)(nil)

// Default configuration values.
const (
	DefaultModelName  = "all-MiniLM-L6-v2"
	DefaultMaxSeqLen  = 256
	DefaultBatchSize  = 32
	DefaultDimensions = 384
)

// poolingEpsilon floors the mask sum in mean pooling.
const poolingEpsilon = 1e-9

// Config holds configuration for the MiniLM embedding service.
type Config struct {
	// ModelDir holds vocab.txt and model.onnx.
	ModelDir string

	// ONNXLibPath is the onnxruntime shared library; empty uses the default lookup.
	ONNXLibPath string

	// MaxSeqLen is the fixed token row length (default: 256, the model's trained limit).
	MaxSeqLen int

	// BatchSize is the number of texts per encoder call (default: 32).
	BatchSize int

	// Dimensions is the hidden size of the model (default: 384).
	Dimensions int

	// ModelName is reported by ModelName and stored in index manifests.
	ModelName string
}

func (c *Config) applyDefaults() {
	if c.MaxSeqLen <= 0 {
		c.MaxSeqLen = DefaultMaxSeqLen
	}
	if c.BatchSize <= 0 {
		c.BatchSize = DefaultBatchSize
	}
	if c.Dimensions <= 0 {
		c.Dimensions = DefaultDimensions
	}
	if c.ModelName == "" {
		c.ModelName = DefaultModelName
	}
}

// EmbeddingService generates embeddings with a local MiniLM model.
type EmbeddingService struct {
	tokenizer *Tokenizer
	encoder   Encoder
	batchSize int
	model     string
}

// NewEmbeddingService loads the tokenizer and ONNX model from cfg.ModelDir.
func NewEmbeddingService(cfg Config) (*EmbeddingService, error) {
	cfg.applyDefaults()

	tok, err := LoadTokenizer(filepath.Join(cfg.ModelDir, "vocab.txt"), cfg.MaxSeqLen)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrEmbeddingUnavailable, err)
	}

	enc, err := NewONNXEncoder(filepath.Join(cfg.ModelDir, "model.onnx"), cfg.ONNXLibPath,
		cfg.BatchSize, cfg.MaxSeqLen, cfg.Dimensions, tok.Encode(""))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrEmbeddingUnavailable, err)
	}

	return NewWithEncoder(tok, enc, cfg.BatchSize, cfg.ModelName), nil
}

// NewWithEncoder assembles a service from its parts.
func NewWithEncoder(tok *Tokenizer, enc Encoder, batchSize int, modelName string) *EmbeddingService {
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}
	return &EmbeddingService{
		tokenizer: tok,
		encoder:   enc,
		batchSize: batchSize,
		model:     modelName,
	}
}

// Embed generates a vector embedding for the given text.
func (s *EmbeddingService) Embed(ctx context.Context, text string) ([]float32, error) {
	vectors, err := s.EmbedBatch(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return vectors[0], nil
}

// EmbedBatch embeds texts in groups of the configured batch size. Rows are
// padded to a fixed length so a vector never depends on its batch mates.
func (s *EmbeddingService) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, 0, len(texts))
	seqLen := s.tokenizer.MaxLen()

	for start := 0; start < len(texts); start += s.batchSize {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		end := min(start+s.batchSize, len(texts))
		rows := end - start

		batch := Batch{
			Rows:          rows,
			SeqLen:        seqLen,
			IDs:           make([]int64, 0, rows*seqLen),
			AttentionMask: make([]int64, 0, rows*seqLen),
			TypeIDs:       make([]int64, 0, rows*seqLen),
		}
		for _, text := range texts[start:end] {
			enc := s.tokenizer.Encode(text)
			batch.IDs = append(batch.IDs, enc.IDs...)
			batch.AttentionMask = append(batch.AttentionMask, enc.AttentionMask...)
			batch.TypeIDs = append(batch.TypeIDs, enc.TypeIDs...)
		}

		states, err := s.encoder.Encode(batch)
		if err != nil {
			return nil, fmt.Errorf("encode batch at %d: %w", start, err)
		}
		hidden := s.encoder.Hidden()
		if len(states) != rows*seqLen*hidden {
			return nil, fmt.Errorf("encoder returned %d values, want %d", len(states), rows*seqLen*hidden)
		}

		for r := 0; r < rows; r++ {
			rowStates := states[r*seqLen*hidden : (r+1)*seqLen*hidden]
			rowMask := batch.AttentionMask[r*seqLen : (r+1)*seqLen]
			out = append(out, normalize(meanPool(rowStates, rowMask, hidden)))
		}
	}
	return out, nil
}

// Dimensions returns the embedding vector size.
func (s *EmbeddingService) Dimensions() int {
	return s.encoder.Hidden()
}

// ModelName returns the name of the embedding model being used.
func (s *EmbeddingService) ModelName() string {
	return s.model
}

// Close releases the encoder.
func (s *EmbeddingService) Close() error {
	return s.encoder.Close()
}

// meanPool averages token states weighted by the attention mask.
func meanPool(states []float32, mask []int64, hidden int) []float32 {
	sum := make([]float64, hidden)
	var count float64
	for t, m := range mask {
		if m == 0 {
			continue
		}
		w := float64(m)
		count += w
		row := states[t*hidden : (t+1)*hidden]
		for i, v := range row {
			sum[i] += float64(v) * w
		}
	}
	count = math.Max(count, poolingEpsilon)

	out := make([]float32, hidden)
	for i := range sum {
		out[i] = float32(sum[i] / count)
	}
	return out
}

// normalize scales v to unit L2 norm. A zero vector is returned unchanged.
func normalize(v []float32) []float32 {
	var sq float64
	for _, x := range v {
		sq += float64(x) * float64(x)
	}
	norm := math.Sqrt(sq)
	if norm < 1e-12 {
		return v
	}
	for i := range v {
		v[i] = float32(float64(v[i]) / norm)
	}
	return v
}
