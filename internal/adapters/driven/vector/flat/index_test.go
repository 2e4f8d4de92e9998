package flat

import (
	"context"
	"errors"
	"fmt"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ncdb-labs/ncdb-chat/internal/core/domain"
	"github.com/ncdb-labs/ncdb-chat/internal/core/ports/driven"
)

// tableEmbedder returns preset vectors by text.
type tableEmbedder struct {
	vectors map[string][]float32
	err     error
}

func (e tableEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	out, err := e.EmbedBatch(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return out[0], nil
}

func (e tableEmbedder) EmbedBatch(_ context.Context, texts []string) ([][]float32, error) {
	if e.err != nil {
		return nil, e.err
	}
	out := make([][]float32, len(texts))
	for i, t := range texts {
		v, ok := e.vectors[t]
		if !ok {
			return nil, fmt.Errorf("no vector for %q", t)
		}
		out[i] = v
	}
	return out, nil
}

func (e tableEmbedder) Dimensions() int   { return 2 }
func (e tableEmbedder) ModelName() string { return "table" }
func (e tableEmbedder) Close() error      { return nil }

var _ driven.EmbeddingService = tableEmbedder{}

func unit(angle float64) []float32 {
	return []float32{float32(math.Cos(angle)), float32(math.Sin(angle))}
}

func sampleIndex(t *testing.T) *Index {
	t.Helper()
	idx, err := New(2, "table")
	require.NoError(t, err)
	chunks := []struct {
		id    string
		angle float64
	}{
		{"far", math.Pi / 2},
		{"near", 0.1},
		{"mid", 0.5},
		{"exact", 0},
		{"tie", 0.5},
	}
	for i, c := range chunks {
		require.NoError(t, idx.Add(domain.Chunk{
			ID: c.id, SourceID: c.id + ".txt", Sequence: i, Position: 0, Offset: i * 10, Content: "chunk " + c.id,
		}, unit(c.angle)))
	}
	return idx
}

func ids(hits []domain.RetrievalHit) []string {
	out := make([]string, len(hits))
	for i, h := range hits {
		out[i] = h.Chunk.ID
	}
	return out
}

func TestNew_InvalidDimensions(t *testing.T) {
	_, err := New(0, "m")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestIndex_SearchOrder(t *testing.T) {
	idx := sampleIndex(t)

	hits, err := idx.Search(context.Background(), unit(0), 5)

	require.NoError(t, err)
	assert.Equal(t, []string{"exact", "near", "mid", "tie", "far"}, ids(hits))
	assert.InDelta(t, 1.0, hits[0].Score, 1e-6)
	for i := 1; i < len(hits); i++ {
		assert.GreaterOrEqual(t, hits[i-1].Score, hits[i].Score)
	}
}

func TestIndex_SearchTiesKeepInsertionOrder(t *testing.T) {
	idx, err := New(2, "m")
	require.NoError(t, err)
	for _, id := range []string{"c", "a", "b"} {
		require.NoError(t, idx.Add(domain.Chunk{ID: id}, unit(0.3)))
	}

	hits, err := idx.Search(context.Background(), unit(0), 3)

	require.NoError(t, err)
	assert.Equal(t, []string{"c", "a", "b"}, ids(hits))
}

func TestIndex_SearchLimits(t *testing.T) {
	idx := sampleIndex(t)
	ctx := context.Background()

	hits, err := idx.Search(ctx, unit(0), 2)
	require.NoError(t, err)
	assert.Equal(t, []string{"exact", "near"}, ids(hits))

	hits, err = idx.Search(ctx, unit(0), 50)
	require.NoError(t, err)
	assert.Len(t, hits, 5)

	hits, err = idx.Search(ctx, unit(0), 0)
	require.NoError(t, err)
	assert.Empty(t, hits)
}

func TestIndex_DimensionMismatch(t *testing.T) {
	idx := sampleIndex(t)

	_, err := idx.Search(context.Background(), []float32{1, 0, 0}, 3)
	assert.ErrorIs(t, err, domain.ErrDimensionMismatch)

	err = idx.Add(domain.Chunk{ID: "x"}, []float32{1})
	assert.ErrorIs(t, err, domain.ErrDimensionMismatch)
	assert.Equal(t, 5, idx.Len())
}

func TestIndex_AddCopiesVector(t *testing.T) {
	idx, err := New(2, "m")
	require.NoError(t, err)
	v := []float32{1, 0}
	require.NoError(t, idx.Add(domain.Chunk{ID: "a"}, v))
	v[0] = -1

	hits, err := idx.Search(context.Background(), []float32{1, 0}, 1)
	require.NoError(t, err)
	assert.InDelta(t, 1.0, hits[0].Score, 1e-9)
}

func TestBuild(t *testing.T) {
	embedder := tableEmbedder{vectors: map[string][]float32{
		"alpha": unit(0),
		"beta":  unit(1),
	}}
	chunks := []domain.Chunk{{ID: "1", Content: "alpha"}, {ID: "2", Content: "beta"}}

	idx, err := Build(context.Background(), chunks, embedder)

	require.NoError(t, err)
	assert.Equal(t, 2, idx.Len())
	assert.Equal(t, 2, idx.Dimensions())
	assert.Equal(t, "table", idx.Model())

	hits, err := idx.Search(context.Background(), unit(1), 1)
	require.NoError(t, err)
	assert.Equal(t, "2", hits[0].Chunk.ID)
}

func TestBuild_Errors(t *testing.T) {
	_, err := Build(context.Background(), nil, tableEmbedder{})
	assert.ErrorIs(t, err, domain.ErrNoChunks)

	boom := errors.New("model missing")
	_, err = Build(context.Background(), []domain.Chunk{{Content: "a"}}, tableEmbedder{err: boom})
	assert.ErrorIs(t, err, boom)
}
