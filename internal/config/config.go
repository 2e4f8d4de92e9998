// Package config loads the ncdb configuration: built-in defaults, an
// optional TOML file, a .env file and NCDB_* environment variables, in
// increasing order of precedence.
package config

import (
	"errors"
	"fmt"
	"net"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/pelletier/go-toml/v2"

	"github.com/ncdb-labs/ncdb-chat/internal/core/domain"
)

// DefaultPath is the configuration file read when no path is given.
const DefaultPath = "ncdb.toml"

// Config is the root configuration.
type Config struct {
	Server    ServerConfig    `toml:"server"`
	Index     IndexConfig     `toml:"index"`
	Ingest    IngestConfig    `toml:"ingest"`
	Embedding EmbeddingConfig `toml:"embedding"`
	LLM       LLMConfig       `toml:"llm"`
	Retrieval RetrievalConfig `toml:"retrieval"`
	Gateway   GatewayConfig   `toml:"gateway"`
	Log       LogConfig       `toml:"log"`
}

// ServerConfig configures the TCP query service.
type ServerConfig struct {
	Host             string `toml:"host"`
	Port             int    `toml:"port"`
	MaxRequestBytes  int    `toml:"max_request_bytes"`
	MaxResponseBytes int    `toml:"max_response_bytes"`
}

// IndexConfig locates the vector index bundle.
type IndexConfig struct {
	Path string `toml:"path"`
}

// IngestConfig configures corpus loading and chunking.
type IngestConfig struct {
	SourceDir     string   `toml:"source_dir"`
	RequiredFiles []string `toml:"required_files"`
	ChunkSize     int      `toml:"chunk_size"`
	ChunkOverlap  int      `toml:"chunk_overlap"`
}

// EmbeddingConfig selects and configures the sentence embedder.
type EmbeddingConfig struct {
	// Backend is "minilm" or "ollama".
	Backend     string `toml:"backend"`
	ModelDir    string `toml:"model_dir"`
	ONNXLibPath string `toml:"onnx_lib_path"`
	MaxSeqLen   int    `toml:"max_seq_len"`
	BatchSize   int    `toml:"batch_size"`
	OllamaURL   string `toml:"ollama_url"`
	OllamaModel string `toml:"ollama_model"`
}

// LLMConfig selects and configures the answer generator backend.
type LLMConfig struct {
	// Backend is "huggingface" or "ollama".
	Backend           string  `toml:"backend"`
	BaseURL           string  `toml:"base_url"`
	APIKey            string  `toml:"api_key"`
	Model             string  `toml:"model"`
	PromptDir         string  `toml:"prompt_dir"`
	MaxNewTokens      int     `toml:"max_new_tokens"`
	NumBeams          int     `toml:"num_beams"`
	RepetitionPenalty float64 `toml:"repetition_penalty"`
	TimeoutSecs       int     `toml:"timeout_secs"`
}

// RetrievalConfig holds the answer policy lists and limits.
type RetrievalConfig struct {
	TopK            int      `toml:"top_k"`
	Keep            int      `toml:"keep"`
	MaxContextChars int      `toml:"max_context_chars"`
	Greetings       []string `toml:"greetings"`
	DomainHints     []string `toml:"domain_hints"`
	FocusTerms      []string `toml:"focus_terms"`
}

// GatewayConfig configures the end-user client of the query service.
type GatewayConfig struct {
	// Addr defaults to the server address.
	Addr           string `toml:"addr"`
	TimeoutSecs    int    `toml:"timeout_secs"`
	ShortcutsFile  string `toml:"shortcuts_file"`
	QuestionsDB    string `toml:"questions_db"`
	AlertThreshold int    `toml:"alert_threshold"`
}

// LogConfig configures the optional rotating log file.
type LogConfig struct {
	File       string `toml:"file"`
	MaxSizeMB  int    `toml:"max_size_mb"`
	MaxBackups int    `toml:"max_backups"`
	MaxAgeDays int    `toml:"max_age_days"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Host:             "localhost",
			Port:             12345,
			MaxRequestBytes:  1024,
			MaxResponseBytes: 4096,
		},
		Index: IndexConfig{
			Path: "vector_index",
		},
		Ingest: IngestConfig{
			SourceDir:    "source_documents",
			ChunkSize:    600,
			ChunkOverlap: 200,
		},
		Embedding: EmbeddingConfig{
			Backend:     "minilm",
			ModelDir:    "embedding_model",
			MaxSeqLen:   256,
			BatchSize:   32,
			OllamaURL:   "http://localhost:11434",
			OllamaModel: "all-minilm",
		},
		LLM: LLMConfig{
			Backend:           "huggingface",
			BaseURL:           "https://router.huggingface.co/hf-inference",
			Model:             "google/flan-t5-base",
			PromptDir:         "prompts",
			MaxNewTokens:      150,
			NumBeams:          4,
			RepetitionPenalty: 2.5,
			// Kept under the gateway timeout so the serial server is free
			// again by the time the caller gives up.
			TimeoutSecs:       15,
		},
		Retrieval: RetrievalConfig{
			TopK:            5,
			Keep:            2,
			MaxContextChars: 500,
			Greetings: []string{
				"hi", "hello", "hey",
				"how are you", "how r u",
				"what's up", "whats up",
				"thanks", "thank you",
			},
			DomainHints: []string{
				"cadillac", "v16", "v-16", "v 16", "fleetwood", "fisher",
				"coachbuilder", "body style", "body styles", "style", "chassis", "engine",
				"town car", "phaeton", "touring", "limousine", "sedan", "coupe", "landaulet",
			},
			FocusTerms: []string{"v16", "v-16", "sixteen"},
		},
		Gateway: GatewayConfig{
			TimeoutSecs:    20,
			ShortcutsFile:  "data/questions_with_answers.json",
			QuestionsDB:    "data/questions.db",
			AlertThreshold: 50,
		},
		Log: LogConfig{
			MaxSizeMB:  10,
			MaxBackups: 5,
			MaxAgeDays: 30,
		},
	}
}

// Load builds the configuration. An empty path reads NCDB_CONFIG or
// DefaultPath and tolerates the file being absent; an explicit path must
// exist. A .env file in the working directory is loaded first when present.
func Load(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	explicit := path != ""
	if !explicit {
		path = getEnv("NCDB_CONFIG", DefaultPath)
	}

	cfg := Default()
	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := toml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("decode config file %s: %w", path, err)
		}
	case errors.Is(err, os.ErrNotExist) && !explicit:
	default:
		return nil, fmt.Errorf("read config file: %w", err)
	}

	overrideByEnv(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the configuration for values the services cannot run with.
func (c *Config) Validate() error {
	var problems []string

	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		problems = append(problems, fmt.Sprintf("server.port %d out of range", c.Server.Port))
	}
	if c.Server.MaxRequestBytes <= 0 || c.Server.MaxResponseBytes <= 0 {
		problems = append(problems, "server byte limits must be positive")
	}
	if c.Ingest.ChunkSize <= 0 {
		problems = append(problems, "ingest.chunk_size must be positive")
	}
	if c.Ingest.ChunkOverlap < 0 || c.Ingest.ChunkOverlap >= c.Ingest.ChunkSize {
		problems = append(problems, "ingest.chunk_overlap must be in [0, chunk_size)")
	}
	if c.Retrieval.TopK <= 0 || c.Retrieval.Keep <= 0 {
		problems = append(problems, "retrieval.top_k and retrieval.keep must be positive")
	}
	if c.Retrieval.MaxContextChars <= 0 {
		problems = append(problems, "retrieval.max_context_chars must be positive")
	}
	switch c.Embedding.Backend {
	case "minilm", "ollama":
	default:
		problems = append(problems, fmt.Sprintf("unknown embedding.backend %q", c.Embedding.Backend))
	}
	switch c.LLM.Backend {
	case "huggingface", "ollama":
	default:
		problems = append(problems, fmt.Sprintf("unknown llm.backend %q", c.LLM.Backend))
	}

	if len(problems) > 0 {
		return fmt.Errorf("invalid configuration: %s: %w", strings.Join(problems, "; "), domain.ErrInvalidInput)
	}
	return nil
}

// ServerAddr returns the host:port the query service listens on.
func (c *Config) ServerAddr() string {
	return net.JoinHostPort(c.Server.Host, strconv.Itoa(c.Server.Port))
}

// GatewayAddr returns the address the gateway dials.
func (c *Config) GatewayAddr() string {
	if c.Gateway.Addr != "" {
		return c.Gateway.Addr
	}
	return c.ServerAddr()
}

// GatewayTimeout returns the gateway round-trip timeout.
func (c *Config) GatewayTimeout() time.Duration {
	return time.Duration(c.Gateway.TimeoutSecs) * time.Second
}

// LLMTimeout returns the generation wall-time limit.
func (c *Config) LLMTimeout() time.Duration {
	return time.Duration(c.LLM.TimeoutSecs) * time.Second
}

func overrideByEnv(cfg *Config) {
	cfg.Server.Host = getEnv("NCDB_SERVER_HOST", cfg.Server.Host)
	cfg.Server.Port = getEnvAsInt("NCDB_SERVER_PORT", cfg.Server.Port)

	cfg.Index.Path = getEnv("NCDB_INDEX_PATH", cfg.Index.Path)

	cfg.Ingest.SourceDir = getEnv("NCDB_SOURCE_DIR", cfg.Ingest.SourceDir)
	cfg.Ingest.RequiredFiles = getEnvAsList("NCDB_REQUIRED_FILES", cfg.Ingest.RequiredFiles)

	cfg.Embedding.Backend = getEnv("NCDB_EMBEDDING_BACKEND", cfg.Embedding.Backend)
	cfg.Embedding.ModelDir = getEnv("NCDB_EMBEDDING_MODEL_DIR", cfg.Embedding.ModelDir)
	cfg.Embedding.ONNXLibPath = getEnv("NCDB_ONNX_LIB", cfg.Embedding.ONNXLibPath)
	cfg.Embedding.OllamaURL = getEnv("NCDB_OLLAMA_URL", cfg.Embedding.OllamaURL)
	cfg.Embedding.OllamaModel = getEnv("NCDB_EMBEDDING_OLLAMA_MODEL", cfg.Embedding.OllamaModel)

	cfg.LLM.Backend = getEnv("NCDB_LLM_BACKEND", cfg.LLM.Backend)
	cfg.LLM.BaseURL = getEnv("NCDB_LLM_BASE_URL", cfg.LLM.BaseURL)
	cfg.LLM.APIKey = getEnv("NCDB_LLM_API_KEY", cfg.LLM.APIKey)
	cfg.LLM.Model = getEnv("NCDB_LLM_MODEL", cfg.LLM.Model)
	cfg.LLM.PromptDir = getEnv("NCDB_PROMPT_DIR", cfg.LLM.PromptDir)
	cfg.LLM.TimeoutSecs = getEnvAsInt("NCDB_LLM_TIMEOUT_SECS", cfg.LLM.TimeoutSecs)

	cfg.Gateway.Addr = getEnv("NCDB_GATEWAY_ADDR", cfg.Gateway.Addr)
	cfg.Gateway.TimeoutSecs = getEnvAsInt("NCDB_GATEWAY_TIMEOUT_SECS", cfg.Gateway.TimeoutSecs)
	cfg.Gateway.ShortcutsFile = getEnv("NCDB_SHORTCUTS_FILE", cfg.Gateway.ShortcutsFile)
	cfg.Gateway.QuestionsDB = getEnv("NCDB_QUESTIONS_DB", cfg.Gateway.QuestionsDB)

	cfg.Log.File = getEnv("NCDB_LOG_FILE", cfg.Log.File)
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	raw, ok := os.LookupEnv(key)
	if !ok || raw == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return parsed
}

// getEnvAsList splits a comma-separated variable, dropping empty items.
func getEnvAsList(key string, fallback []string) []string {
	raw, ok := os.LookupEnv(key)
	if !ok {
		return fallback
	}
	var out []string
	for _, item := range strings.Split(raw, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}
