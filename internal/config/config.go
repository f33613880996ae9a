// Package config provides configuration loading and structs for the Bunsho server.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config holds all configuration for the application.
type Config struct {
	Debug     bool            `yaml:"debug"`
	Server    ServerConfig    `yaml:"server"`
	Storage   StorageConfig   `yaml:"storage"`
	Embedding EmbeddingConfig `yaml:"embedding"`
	Chunking  ChunkingConfig  `yaml:"chunking"`
	Retrieval RetrievalConfig `yaml:"retrieval"`
	LLM       LLMConfig       `yaml:"llm"`
	Watch     WatchConfig     `yaml:"watch"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

// StorageConfig holds database and vector store settings.
type StorageConfig struct {
	DatabasePath    string `yaml:"database_path"`
	VectorBackend   string `yaml:"vector_backend"` // "memory" or "pgvector"
	VectorIndexPath string `yaml:"vector_index_path"`
	PostgresDSN     string `yaml:"postgres_dsn"`
}

// EmbeddingConfig holds embedder settings.
type EmbeddingConfig struct {
	Backend     string `yaml:"backend"` // "onnx", "ollama", or "mock"
	ModelPath   string `yaml:"model_path"`
	Dimensions  int    `yaml:"dimensions"`
	MaxTokens   int    `yaml:"max_tokens"`
	CacheSize   int    `yaml:"cache_size"`
	OllamaURL   string `yaml:"ollama_url"`
	OllamaModel string `yaml:"ollama_model"`
}

// ChunkingConfig holds chunking and validation settings.
type ChunkingConfig struct {
	ChunkSize        int     `yaml:"chunk_size"`    // target size in tokens
	ChunkOverlap     int     `yaml:"chunk_overlap"` // overlap in tokens
	RespectStructure *bool   `yaml:"respect_structure"`
	MinChunkSize     int     `yaml:"min_chunk_size"` // chars
	MaxChunkSize     int     `yaml:"max_chunk_size"` // chars
	MinQualityScore  float64 `yaml:"min_quality_score"`
}

// RespectStructureOrDefault returns whether dynamic chunking follows the
// section tree; defaults to true when unset.
func (c *ChunkingConfig) RespectStructureOrDefault() bool {
	if c.RespectStructure != nil {
		return *c.RespectStructure
	}
	return true
}

// RetrievalConfig holds query-side settings.
type RetrievalConfig struct {
	TopK             int  `yaml:"top_k"`
	MaxContextTokens int  `yaml:"max_context_tokens"`
	KeywordRerank    bool `yaml:"keyword_rerank"`
}

// LLMConfig holds the answer/interpretation model settings. An empty URL
// means no LLM is configured; LLM-dependent features degrade gracefully.
type LLMConfig struct {
	OllamaURL string `yaml:"ollama_url"`
	Model     string `yaml:"model"`
	Interpret bool   `yaml:"interpret_documents"`
}

// WatchConfig holds drop-directory ingestion settings.
type WatchConfig struct {
	Directories []string `yaml:"directories"`
	Extensions  []string `yaml:"extensions"`
	Recursive   *bool    `yaml:"recursive"`
}

// RecursiveOrDefault returns whether to watch recursively; defaults to true when unset.
func (w *WatchConfig) RecursiveOrDefault() bool {
	if w.Recursive != nil {
		return *w.Recursive
	}
	return true
}

// Load reads and parses the config file at path, applies .env and environment
// overrides for secrets, expands paths, applies defaults, and validates.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	// .env is optional; it supplies secrets not written into config.yaml.
	_ = godotenv.Load()
	applyEnvOverrides(&cfg)

	ApplyDefaults(&cfg)

	configDir := filepath.Dir(path)
	cfg.Storage.DatabasePath = expandPath(cfg.Storage.DatabasePath, configDir)
	cfg.Storage.VectorIndexPath = expandPath(cfg.Storage.VectorIndexPath, configDir)
	cfg.Embedding.ModelPath = expandPath(cfg.Embedding.ModelPath, configDir)
	for i := range cfg.Watch.Directories {
		cfg.Watch.Directories[i] = expandPath(cfg.Watch.Directories[i], configDir)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("BUNSHO_POSTGRES_DSN"); v != "" {
		cfg.Storage.PostgresDSN = v
	}
	if v := os.Getenv("OLLAMA_URL"); v != "" {
		if cfg.Embedding.OllamaURL == "" {
			cfg.Embedding.OllamaURL = v
		}
		if cfg.LLM.OllamaURL == "" {
			cfg.LLM.OllamaURL = v
		}
	}
}

// Validate rejects malformed configuration before anything runs.
func (c *Config) Validate() error {
	if c.Chunking.ChunkOverlap >= c.Chunking.ChunkSize {
		return fmt.Errorf("chunk_overlap (%d) must be smaller than chunk_size (%d)",
			c.Chunking.ChunkOverlap, c.Chunking.ChunkSize)
	}
	if c.Chunking.MinChunkSize >= c.Chunking.MaxChunkSize {
		return fmt.Errorf("min_chunk_size (%d) must be smaller than max_chunk_size (%d)",
			c.Chunking.MinChunkSize, c.Chunking.MaxChunkSize)
	}
	if c.Server.Port < 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}
	if c.Storage.VectorBackend == "pgvector" && c.Storage.PostgresDSN == "" {
		return fmt.Errorf("vector_backend pgvector requires postgres_dsn (or BUNSHO_POSTGRES_DSN)")
	}
	return nil
}

// expandPath converts a path to absolute. Paths starting with "./" are relative to configDir;
// other relative paths are relative to the home directory.
func expandPath(path string, configDir string) string {
	if path == "" || filepath.IsAbs(path) {
		return path
	}
	if strings.HasPrefix(path, "./") || path == "." {
		return filepath.Join(configDir, path)
	}
	if home, err := os.UserHomeDir(); err == nil {
		return filepath.Join(home, path)
	}
	return path
}
