package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ncdb-labs/ncdb-chat/internal/core/domain"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "ncdb.toml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))
	return path
}

func TestDefault(t *testing.T) {
	cfg := Default()

	assert.Equal(t, "localhost:12345", cfg.ServerAddr())
	assert.Equal(t, cfg.ServerAddr(), cfg.GatewayAddr())
	assert.Equal(t, 1024, cfg.Server.MaxRequestBytes)
	assert.Equal(t, 4096, cfg.Server.MaxResponseBytes)
	assert.Equal(t, 600, cfg.Ingest.ChunkSize)
	assert.Equal(t, 200, cfg.Ingest.ChunkOverlap)
	assert.Equal(t, 256, cfg.Embedding.MaxSeqLen)
	assert.Equal(t, 32, cfg.Embedding.BatchSize)
	assert.Equal(t, 5, cfg.Retrieval.TopK)
	assert.Equal(t, 2, cfg.Retrieval.Keep)
	assert.Equal(t, 500, cfg.Retrieval.MaxContextChars)
	assert.Equal(t, 150, cfg.LLM.MaxNewTokens)
	assert.Equal(t, 4, cfg.LLM.NumBeams)
	assert.InDelta(t, 2.5, cfg.LLM.RepetitionPenalty, 1e-9)
	assert.Equal(t, 20*time.Second, cfg.GatewayTimeout())
	assert.Less(t, cfg.LLMTimeout(), cfg.GatewayTimeout(), "generation must finish before the caller gives up")
	assert.Equal(t, 50, cfg.Gateway.AlertThreshold)
	assert.Contains(t, cfg.Retrieval.Greetings, "thank you")
	assert.Contains(t, cfg.Retrieval.DomainHints, "landaulet")
	assert.Equal(t, []string{"v16", "v-16", "sixteen"}, cfg.Retrieval.FocusTerms)
	assert.NoError(t, cfg.Validate())
}

func TestLoad_MissingDefaultFileUsesDefaults(t *testing.T) {
	t.Setenv("NCDB_CONFIG", filepath.Join(t.TempDir(), "absent.toml"))

	cfg, err := Load("")

	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoad_MissingExplicitFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.toml"))

	assert.Error(t, err)
}

func TestLoad_FileOverridesDefaults(t *testing.T) {
	path := writeConfig(t, `
[server]
port = 23456

[ingest]
source_dir = "corpus"
required_files = ["car_model.csv"]

[retrieval]
focus_terms = ["v16"]
`)

	cfg, err := Load(path)

	require.NoError(t, err)
	assert.Equal(t, 23456, cfg.Server.Port)
	assert.Equal(t, "localhost", cfg.Server.Host)
	assert.Equal(t, "corpus", cfg.Ingest.SourceDir)
	assert.Equal(t, []string{"car_model.csv"}, cfg.Ingest.RequiredFiles)
	assert.Equal(t, 600, cfg.Ingest.ChunkSize)
	assert.Equal(t, []string{"v16"}, cfg.Retrieval.FocusTerms)
	assert.Equal(t, 5, cfg.Retrieval.TopK)
}

func TestLoad_MalformedFile(t *testing.T) {
	path := writeConfig(t, "[server\nport = ")

	_, err := Load(path)

	assert.Error(t, err)
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	path := writeConfig(t, "[server]\nport = 23456\n")
	t.Setenv("NCDB_SERVER_PORT", "34567")
	t.Setenv("NCDB_LLM_BACKEND", "ollama")
	t.Setenv("NCDB_REQUIRED_FILES", "a.csv, ,b.json")
	t.Setenv("NCDB_GATEWAY_ADDR", "chat.internal:9000")

	cfg, err := Load(path)

	require.NoError(t, err)
	assert.Equal(t, 34567, cfg.Server.Port)
	assert.Equal(t, "ollama", cfg.LLM.Backend)
	assert.Equal(t, []string{"a.csv", "b.json"}, cfg.Ingest.RequiredFiles)
	assert.Equal(t, "chat.internal:9000", cfg.GatewayAddr())
}

func TestLoad_InvalidIntEnvIgnored(t *testing.T) {
	t.Setenv("NCDB_CONFIG", filepath.Join(t.TempDir(), "absent.toml"))
	t.Setenv("NCDB_SERVER_PORT", "not-a-port")

	cfg, err := Load("")

	require.NoError(t, err)
	assert.Equal(t, 12345, cfg.Server.Port)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"port", func(c *Config) { c.Server.Port = 0 }},
		{"overlap not below size", func(c *Config) { c.Ingest.ChunkOverlap = 600 }},
		{"negative overlap", func(c *Config) { c.Ingest.ChunkOverlap = -1 }},
		{"top k", func(c *Config) { c.Retrieval.TopK = 0 }},
		{"context limit", func(c *Config) { c.Retrieval.MaxContextChars = 0 }},
		{"embedding backend", func(c *Config) { c.Embedding.Backend = "word2vec" }},
		{"llm backend", func(c *Config) { c.LLM.Backend = "gpt" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)

			err := cfg.Validate()

			assert.ErrorIs(t, err, domain.ErrInvalidInput)
		})
	}
}
