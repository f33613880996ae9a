// Package embedding produces vector embeddings for chunks and queries, with
// ONNX, Ollama, and mock backends plus an LRU cache.
//
// Backends that serve E5-family models distinguish queries from passages:
// the Embed call carries an isQuery flag and the backend prepends the
// matching instruction prefix before inference. Queries and passages with
// identical text therefore embed differently, which is what E5 retrieval
// quality depends on.
package embedding

import (
	"context"
	"fmt"

	"github.com/hyperjump/bunsho/internal/config"
)

// Embedder produces vector embeddings for text.
type Embedder interface {
	// Embed embeds a single text. isQuery selects the query-side instruction
	// prefix for asymmetric models; pass false for document chunks.
	Embed(ctx context.Context, text string, isQuery bool) ([]float32, error)
	// EmbedBatch embeds texts in order; the result has one vector per input.
	EmbedBatch(ctx context.Context, texts []string, isQuery bool) ([][]float32, error)
	Dimensions() int
	Close() error
}

const (
	queryPrefix   = "query: "
	passagePrefix = "passage: "
)

// prefixed returns the text with the E5 instruction prefix for its role.
func prefixed(text string, isQuery bool) string {
	if isQuery {
		return queryPrefix + text
	}
	return passagePrefix + text
}

// New builds the embedder selected by cfg.Backend.
func New(cfg config.EmbeddingConfig) (Embedder, error) {
	switch cfg.Backend {
	case "onnx":
		return NewONNXEmbedder(cfg.ModelPath, cfg.Dimensions, cfg.MaxTokens, cfg.CacheSize)
	case "ollama":
		return NewOllamaEmbedder(cfg.OllamaURL, cfg.OllamaModel, cfg.Dimensions, cfg.CacheSize), nil
	case "mock":
		return NewMockEmbedder(cfg.Dimensions), nil
	default:
		return nil, fmt.Errorf("unknown embedding backend %q", cfg.Backend)
	}
}
