package vector

import (
	"context"
	"fmt"

	"github.com/hyperjump/bunsho/internal/config"
)

// Backend identifies a vector store implementation.
type Backend string

const (
	// BackendMemory uses in-memory brute-force search with optional file
	// persistence. Good for small corpora (<10k vectors).
	BackendMemory Backend = "memory"
	// BackendPgvector uses PostgreSQL with the pgvector extension.
	BackendPgvector Backend = "pgvector"
)

// New creates the vector store selected by cfg.VectorBackend. A memory store
// loads its persisted index file when one exists.
func New(ctx context.Context, cfg config.StorageConfig, dimensions int) (Store, error) {
	switch Backend(cfg.VectorBackend) {
	case BackendMemory, "":
		store, err := NewMemoryStore(dimensions)
		if err != nil {
			return nil, err
		}
		if err := store.Load(cfg.VectorIndexPath); err != nil {
			return nil, fmt.Errorf("load vector index: %w", err)
		}
		return store, nil
	case BackendPgvector:
		return NewPgvectorStore(ctx, cfg.PostgresDSN, dimensions)
	default:
		return nil, fmt.Errorf("unknown vector backend %q (supported: memory, pgvector)", cfg.VectorBackend)
	}
}
