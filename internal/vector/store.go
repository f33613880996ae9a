// Package vector provides embedding storage and similarity search, with an
// in-memory brute-force backend and a PostgreSQL pgvector backend.
package vector

import "context"

// Store holds chunk embeddings alongside their text and metadata, and serves
// nearest-neighbor queries over them. Distances are cosine distances in
// [0, 2]; for unit vectors similarity is 1 minus the distance.
type Store interface {
	// Upsert stores entries by ID, replacing any existing entry with the
	// same ID. ids, vectors, documents, and metadatas must have equal length.
	Upsert(ctx context.Context, ids []string, vectors [][]float32, documents []string, metadatas []map[string]interface{}) error
	// Query returns up to k nearest entries to the query vector, closest
	// first. A non-nil filter restricts results to entries whose metadata
	// matches every filter key exactly.
	Query(ctx context.Context, query []float32, k int, filter map[string]interface{}) ([]*Hit, error)
	// DeleteWhere removes all entries whose metadata matches the filter.
	// It returns the number of entries removed.
	DeleteWhere(ctx context.Context, filter map[string]interface{}) (int, error)
	// Count returns the number of stored entries.
	Count(ctx context.Context) (int, error)
	Close() error
}

// Hit is a single nearest-neighbor match.
type Hit struct {
	ID       string
	Document string
	Distance float64
	Metadata map[string]interface{}
}
