// Package storage defines the persistence interface for document and chunk
// metadata rows.
package storage

import (
	"context"

	"github.com/hyperjump/bunsho/internal/models"
)

// Storage defines document and chunk persistence operations. Embeddings are
// not stored here; the vector store owns those.
type Storage interface {
	// Document operations
	CreateDocument(ctx context.Context, doc *models.Document) error
	GetDocument(ctx context.Context, id string) (*models.Document, error)
	UpdateDocumentStatus(ctx context.Context, id, status string) error
	DeleteDocument(ctx context.Context, id string) error
	ListDocuments(ctx context.Context, offset, limit int) ([]*models.Document, error)

	// Chunk operations
	GetChunksByDocumentID(ctx context.Context, docID string) ([]*models.ChunkRecord, error)
	DeleteChunksByDocumentID(ctx context.Context, docID string) error
	BatchCreateChunks(ctx context.Context, chunks []*models.ChunkRecord) error

	// Stats
	CountDocuments(ctx context.Context) (int64, error)
	CountChunks(ctx context.Context) (int64, error)

	Close() error
}
