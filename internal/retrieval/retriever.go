// Package retrieval turns questions into ranked, context-budgeted evidence:
// vector search over stored chunks, reranking, and prompt context assembly.
package retrieval

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/hyperjump/bunsho/internal/embedding"
	"github.com/hyperjump/bunsho/internal/models"
	"github.com/hyperjump/bunsho/internal/vector"
)

// Retriever embeds queries and searches the vector store.
type Retriever struct {
	embedder embedding.Embedder
	store    vector.Store
	logger   *zap.Logger
}

// RetrieverOption configures a Retriever.
type RetrieverOption func(*Retriever)

// WithLogger sets the logger.
func WithLogger(logger *zap.Logger) RetrieverOption {
	return func(r *Retriever) {
		r.logger = logger
	}
}

// NewRetriever creates a retriever over the given embedder and store.
func NewRetriever(embedder embedding.Embedder, store vector.Store, opts ...RetrieverOption) *Retriever {
	r := &Retriever{embedder: embedder, store: store, logger: zap.NewNop()}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Retrieve embeds the query and returns up to k chunks scored by cosine
// similarity, best first. The store is over-fetched at twice k so a reranker
// has candidates beyond the final cut.
func (r *Retriever) Retrieve(ctx context.Context, query string, k int, filter map[string]interface{}) ([]*models.RetrievedChunk, error) {
	if k <= 0 {
		return nil, nil
	}

	queryVec, err := r.embedder.Embed(ctx, query, true)
	if err != nil {
		return nil, fmt.Errorf("failed to embed query: %w", err)
	}

	hits, err := r.store.Query(ctx, queryVec, k*2, filter)
	if err != nil {
		return nil, fmt.Errorf("vector query failed: %w", err)
	}

	chunks := make([]*models.RetrievedChunk, 0, len(hits))
	for _, hit := range hits {
		chunks = append(chunks, &models.RetrievedChunk{
			ID:       hit.ID,
			Content:  hit.Document,
			Score:    1 - hit.Distance,
			Metadata: hit.Metadata,
		})
	}

	r.logger.Debug("retrieved chunks",
		zap.String("query", query),
		zap.Int("requested", k),
		zap.Int("candidates", len(chunks)))
	return chunks, nil
}
