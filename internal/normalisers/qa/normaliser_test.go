package qa

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ncdb-labs/ncdb-chat/internal/core/domain"
)

func TestSupportedExtensions(t *testing.T) {
	assert.Equal(t, []string{".json"}, New().SupportedExtensions())
	assert.Equal(t, 80, New().Priority())
}

func TestNormalise_Records(t *testing.T) {
	raw := &domain.RawFile{
		SourceID: "qa/faq.json",
		Content: []byte(`[
			{"question": "When was the V16 introduced?", "answer": "January 1930."},
			{"question": "Who built the bodies?"},
			{"answer": "Fleetwood", "extra": 1}
		]`),
	}

	docs, err := New().Normalise(context.Background(), raw)

	require.NoError(t, err)
	require.Len(t, docs, 3)
	assert.Equal(t, "question: When was the V16 introduced?; answer: January 1930.", docs[0].Content)
	assert.Equal(t, "question: Who built the bodies?; answer: ", docs[1].Content)
	assert.Equal(t, "question: ; answer: Fleetwood", docs[2].Content)
	for i, d := range docs {
		assert.Equal(t, i, d.Sequence)
		assert.Equal(t, i, d.Metadata["num"])
		assert.Equal(t, "faq.json", d.Metadata["source"])
		assert.Equal(t, "qa/faq.json", d.SourceID)
	}
}

func TestNormalise_NotAnArray(t *testing.T) {
	_, err := New().Normalise(context.Background(), &domain.RawFile{SourceID: "x.json", Content: []byte(`{"question": "q"}`)})
	assert.Error(t, err)

	_, err = New().Normalise(context.Background(), &domain.RawFile{SourceID: "x.json", Content: []byte(`not json`)})
	assert.Error(t, err)
}

func TestNormalise_EmptyArray(t *testing.T) {
	docs, err := New().Normalise(context.Background(), &domain.RawFile{SourceID: "x.json", Content: []byte(`[]`)})

	require.NoError(t, err)
	assert.Empty(t, docs)
}

func TestNormalise_Nil(t *testing.T) {
	_, err := New().Normalise(context.Background(), nil)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}
