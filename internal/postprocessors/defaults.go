package postprocessors

import (
	"github.com/ncdb-labs/ncdb-chat/internal/core/ports/driven"
	"github.com/ncdb-labs/ncdb-chat/internal/postprocessors/chunker"
)

// StageChunker is the name the chunker registers under.
const StageChunker = "chunker"

// RegisterDefaults binds the built-in stages.
func RegisterDefaults(r *Registry) error {
	return r.Register(StageChunker, buildChunker)
}

// NewDefaultPipeline returns the ingest pipeline: a single chunker with
// the given window and overlap in runes.
func NewDefaultPipeline(chunkSize, overlap int) (*Pipeline, error) {
	r := NewRegistry()
	if err := RegisterDefaults(r); err != nil {
		return nil, err
	}
	chunk, err := r.Build(StageChunker, map[string]any{
		"chunk_size": chunkSize,
		"overlap":    overlap,
	})
	if err != nil {
		return nil, err
	}
	return NewPipeline(chunk), nil
}

// buildChunker reads chunk_size and overlap. A missing overlap keeps the
// chunker default, an explicit zero disables overlap.
func buildChunker(settings map[string]any) (driven.PostProcessor, error) {
	var opts []chunker.Option
	if size, ok := intSetting(settings, "chunk_size"); ok && size > 0 {
		opts = append(opts, chunker.WithChunkSize(size))
	}
	if overlap, ok := intSetting(settings, "overlap"); ok {
		opts = append(opts, chunker.WithOverlap(overlap))
	}
	return chunker.New(opts...), nil
}

// intSetting accepts the integer shapes TOML and JSON decoders produce.
func intSetting(settings map[string]any, key string) (int, bool) {
	switch v := settings[key].(type) {
	case int:
		return v, true
	case int64:
		return int(v), true
	case float64:
		return int(v), true
	default:
		return 0, false
	}
}
