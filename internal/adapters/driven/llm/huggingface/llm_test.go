package huggingface

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ncdb-labs/ncdb-chat/internal/core/domain"
	"github.com/ncdb-labs/ncdb-chat/internal/core/ports/driven"
)

func TestNewLLMService_RequiresKeyForHostedAPI(t *testing.T) {
	_, err := NewLLMService(Config{})
	assert.ErrorIs(t, err, domain.ErrGeneratorUnavailable)

	svc, err := NewLLMService(Config{APIKey: "hf_x"})
	require.NoError(t, err)
	assert.Equal(t, DefaultModel, svc.ModelName())

	_, err = NewLLMService(Config{BaseURL: "http://localhost:8080"})
	assert.NoError(t, err)
}

func TestGenerate(t *testing.T) {
	var got generateRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/models/google/flan-t5-base", r.URL.Path)
		assert.Equal(t, "Bearer hf_secret", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		_, _ = w.Write([]byte(`[{"generated_text": "  The V16 had sixteen cylinders. "}]`))
	}))
	defer srv.Close()

	svc, err := NewLLMService(Config{BaseURL: srv.URL + "/", APIKey: "hf_secret"})
	require.NoError(t, err)

	out, err := svc.Generate(context.Background(), "Context: x\nQuestion: y", driven.GenerateOptions{
		MaxNewTokens:      150,
		NumBeams:          4,
		RepetitionPenalty: 2.5,
	})

	require.NoError(t, err)
	assert.Equal(t, "The V16 had sixteen cylinders.", out)
	assert.Equal(t, "Context: x\nQuestion: y", got.Inputs)
	assert.Equal(t, 150, got.Parameters.MaxNewTokens)
	assert.Equal(t, 4, got.Parameters.NumBeams)
	assert.Equal(t, 2.5, got.Parameters.RepetitionPenalty)
	assert.False(t, got.Parameters.DoSample)
	assert.True(t, got.Options.WaitForModel)
}

func TestGenerate_APIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
		_, _ = w.Write([]byte(`{"error": "Model is currently loading"}`))
	}))
	defer srv.Close()

	svc, err := NewLLMService(Config{BaseURL: srv.URL})
	require.NoError(t, err)

	_, err = svc.Generate(context.Background(), "p", driven.GenerateOptions{})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "Model is currently loading")
	assert.Contains(t, err.Error(), "503")
}

func TestGenerate_EmptyResponse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`[]`))
	}))
	defer srv.Close()

	svc, err := NewLLMService(Config{BaseURL: srv.URL})
	require.NoError(t, err)

	_, err = svc.Generate(context.Background(), "p", driven.GenerateOptions{})
	assert.Error(t, err)
}
