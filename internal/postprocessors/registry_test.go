package postprocessors

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ncdb-labs/ncdb-chat/internal/core/domain"
	"github.com/ncdb-labs/ncdb-chat/internal/core/ports/driven"
	"github.com/ncdb-labs/ncdb-chat/internal/postprocessors/chunker"
)

func named(name string) BuilderFunc {
	return func(map[string]any) (driven.PostProcessor, error) {
		return &stage{name: name}, nil
	}
}

func TestRegistryBuildsRegisteredStage(t *testing.T) {
	r := NewRegistry()
	require.NoError(t, r.Register("upper", named("upper")))

	proc, err := r.Build("upper", nil)
	require.NoError(t, err)
	assert.Equal(t, "upper", proc.Name())
}

func TestRegistryRegisterValidation(t *testing.T) {
	r := NewRegistry()
	require.NoError(t, r.Register("a", named("a")))

	assert.ErrorIs(t, r.Register("a", named("a")), domain.ErrInvalidInput)
	assert.ErrorIs(t, r.Register("", named("x")), domain.ErrInvalidInput)
	assert.ErrorIs(t, r.Register("b", nil), domain.ErrInvalidInput)
}

func TestRegistryUnknownStage(t *testing.T) {
	_, err := NewRegistry().Build("missing", nil)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestRegistryNamesSorted(t *testing.T) {
	r := NewRegistry()
	for _, n := range []string{"zeta", "alpha", "mid"} {
		require.NoError(t, r.Register(n, named(n)))
	}
	assert.Equal(t, []string{"alpha", "mid", "zeta"}, r.Names())
}

func TestRegisterDefaultsTwiceFails(t *testing.T) {
	r := NewRegistry()
	require.NoError(t, RegisterDefaults(r))
	assert.Equal(t, []string{StageChunker}, r.Names())
	assert.Error(t, RegisterDefaults(r))
}

func TestIntSetting(t *testing.T) {
	tests := []struct {
		name     string
		settings map[string]any
		want     int
		ok       bool
	}{
		{"int", map[string]any{"n": 7}, 7, true},
		{"int64 from toml", map[string]any{"n": int64(8)}, 8, true},
		{"float64 from json", map[string]any{"n": float64(9)}, 9, true},
		{"string ignored", map[string]any{"n": "10"}, 0, false},
		{"absent", map[string]any{}, 0, false},
		{"nil map", nil, 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := intSetting(tt.settings, "n")
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.ok, ok)
		})
	}
}

func chunkOffsets(t *testing.T, settings map[string]any) []int {
	t.Helper()
	proc, err := buildChunker(settings)
	require.NoError(t, err)
	chunks, err := proc.Process(context.Background(), &domain.Document{Content: strings.Repeat("a", 2000)}, nil)
	require.NoError(t, err)
	offsets := make([]int, len(chunks))
	for i, c := range chunks {
		offsets[i] = c.Offset
	}
	return offsets
}

func TestBuildChunkerOverlapSettings(t *testing.T) {
	withDefault := chunkOffsets(t, map[string]any{"chunk_size": 900})
	require.GreaterOrEqual(t, len(withDefault), 2)
	assert.Equal(t, 900-chunker.DefaultChunkOverlap, withDefault[1])

	noOverlap := chunkOffsets(t, map[string]any{"chunk_size": 900, "overlap": 0})
	require.GreaterOrEqual(t, len(noOverlap), 2)
	assert.Equal(t, 900, noOverlap[1])
}
