package vector

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pgvector/pgvector-go"
)

// PgvectorStore keeps embeddings in PostgreSQL with the pgvector extension.
// Nearest-neighbor queries use the cosine distance operator backed by an
// ivfflat index.
type PgvectorStore struct {
	pool       *pgxpool.Pool
	dimensions int
}

// NewPgvectorStore connects to PostgreSQL and ensures the embeddings table
// and indexes exist.
func NewPgvectorStore(ctx context.Context, dsn string, dimensions int) (*PgvectorStore, error) {
	if dimensions <= 0 {
		return nil, fmt.Errorf("dimensions must be positive")
	}
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("connect to postgres: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	s := &PgvectorStore{pool: pool, dimensions: dimensions}
	if err := s.ensureSchema(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	return s, nil
}

func (s *PgvectorStore) ensureSchema(ctx context.Context) error {
	query := fmt.Sprintf(`
	CREATE EXTENSION IF NOT EXISTS vector;

	CREATE TABLE IF NOT EXISTS embeddings (
		id TEXT PRIMARY KEY,
		document TEXT NOT NULL,
		metadata JSONB NOT NULL DEFAULT '{}',
		embedding vector(%d) NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_embeddings_embedding
		ON embeddings USING ivfflat (embedding vector_cosine_ops) WITH (lists = 100);
	CREATE INDEX IF NOT EXISTS idx_embeddings_metadata
		ON embeddings USING gin (metadata);
	`, s.dimensions)
	if _, err := s.pool.Exec(ctx, query); err != nil {
		return fmt.Errorf("create embeddings schema: %w", err)
	}
	return nil
}

// Upsert inserts or replaces entries by ID.
func (s *PgvectorStore) Upsert(ctx context.Context, ids []string, vectors [][]float32, documents []string, metadatas []map[string]interface{}) error {
	if len(ids) != len(vectors) || len(ids) != len(documents) || len(ids) != len(metadatas) {
		return fmt.Errorf("ids, vectors, documents, and metadatas length mismatch")
	}
	query := `
	INSERT INTO embeddings (id, document, metadata, embedding)
	VALUES ($1, $2, $3, $4)
	ON CONFLICT (id) DO UPDATE SET
		document = EXCLUDED.document,
		metadata = EXCLUDED.metadata,
		embedding = EXCLUDED.embedding
	`
	for i, id := range ids {
		if len(vectors[i]) != s.dimensions {
			return fmt.Errorf("vector dimension mismatch: got %d, expected %d", len(vectors[i]), s.dimensions)
		}
		meta, err := json.Marshal(metadatas[i])
		if err != nil {
			return fmt.Errorf("marshal metadata: %w", err)
		}
		if _, err := s.pool.Exec(ctx, query, id, documents[i], meta, pgvector.NewVector(vectors[i])); err != nil {
			return fmt.Errorf("upsert embedding %s: %w", id, err)
		}
	}
	return nil
}

// Query returns the k nearest entries by cosine distance, closest first.
func (s *PgvectorStore) Query(ctx context.Context, query []float32, k int, filter map[string]interface{}) ([]*Hit, error) {
	if len(query) != s.dimensions {
		return nil, fmt.Errorf("query dimension mismatch: got %d, expected %d", len(query), s.dimensions)
	}
	if k <= 0 {
		return nil, nil
	}

	where, args := filterClause(filter, 3)
	sql := fmt.Sprintf(`
	SELECT id, document, metadata, embedding <=> $1 AS distance
	FROM embeddings
	%s
	ORDER BY embedding <=> $1
	LIMIT $2
	`, where)

	queryArgs := append([]interface{}{pgvector.NewVector(query), k}, args...)
	rows, err := s.pool.Query(ctx, sql, queryArgs...)
	if err != nil {
		return nil, fmt.Errorf("query embeddings: %w", err)
	}
	defer rows.Close()

	var hits []*Hit
	for rows.Next() {
		hit := &Hit{}
		var meta []byte
		if err := rows.Scan(&hit.ID, &hit.Document, &meta, &hit.Distance); err != nil {
			return nil, fmt.Errorf("scan embedding row: %w", err)
		}
		if err := json.Unmarshal(meta, &hit.Metadata); err != nil {
			return nil, fmt.Errorf("unmarshal metadata: %w", err)
		}
		hits = append(hits, hit)
	}
	return hits, rows.Err()
}

// DeleteWhere removes all entries whose metadata matches the filter.
func (s *PgvectorStore) DeleteWhere(ctx context.Context, filter map[string]interface{}) (int, error) {
	where, args := filterClause(filter, 1)
	tag, err := s.pool.Exec(ctx, "DELETE FROM embeddings "+where, args...)
	if err != nil {
		return 0, fmt.Errorf("delete embeddings: %w", err)
	}
	return int(tag.RowsAffected()), nil
}

// Count returns the number of stored entries.
func (s *PgvectorStore) Count(ctx context.Context) (int, error) {
	var count int
	if err := s.pool.QueryRow(ctx, "SELECT COUNT(*) FROM embeddings").Scan(&count); err != nil {
		return 0, fmt.Errorf("count embeddings: %w", err)
	}
	return count, nil
}

// Close closes the connection pool.
func (s *PgvectorStore) Close() error {
	if s.pool != nil {
		s.pool.Close()
		s.pool = nil
	}
	return nil
}

// filterClause builds a WHERE clause matching each filter key against the
// metadata JSONB column as text. firstArg is the positional index of the
// first filter argument.
func filterClause(filter map[string]interface{}, firstArg int) (string, []interface{}) {
	if len(filter) == 0 {
		return "", nil
	}
	var conds []string
	var args []interface{}
	i := firstArg
	for key, value := range filter {
		conds = append(conds, fmt.Sprintf("metadata->>%s = $%d", quoteLiteral(key), i))
		args = append(args, fmt.Sprint(value))
		i++
	}
	return "WHERE " + strings.Join(conds, " AND "), args
}

func quoteLiteral(s string) string {
	return "'" + strings.ReplaceAll(s, "'", "''") + "'"
}
