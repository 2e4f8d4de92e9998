package ollamaapi

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPostRoundTrip(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/echo", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		var in map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&in))
		require.NoError(t, json.NewEncoder(w).Encode(map[string]string{"echo": in["say"]}))
	}))
	defer srv.Close()

	var out map[string]string
	err := New(srv.URL+"/", 0).Post(context.Background(), "/api/echo", map[string]string{"say": "V16"}, &out)

	require.NoError(t, err)
	assert.Equal(t, "V16", out["echo"])
}

func TestErrorStatusQuotesBoundedBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "model missing"+strings.Repeat("!", 2000), http.StatusNotFound)
	}))
	defer srv.Close()

	err := New(srv.URL, 0).Post(context.Background(), "/api/generate", struct{}{}, nil)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 404: model missing")
	assert.Less(t, len(err.Error()), 600)
}

func TestPing(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/tags" {
			http.NotFound(w, r)
			return
		}
		_, _ = w.Write([]byte(`{"models":[]}`))
	}))
	defer srv.Close()

	assert.NoError(t, New(srv.URL, 0).Ping(context.Background()))
}

func TestDefaultBaseURL(t *testing.T) {
	assert.Equal(t, DefaultBaseURL, New("", 0).BaseURL())
}
