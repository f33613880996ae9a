package retrieval

import (
	"context"
	"math"
	"testing"

	"github.com/hyperjump/bunsho/internal/embedding"
	"github.com/hyperjump/bunsho/internal/vector"
)

func TestRetriever_ScenarioRoundTrip(t *testing.T) {
	ctx := context.Background()
	embedder := embedding.NewMockEmbedder(64)
	store, err := vector.NewMemoryStore(64)
	if err != nil {
		t.Fatal(err)
	}

	docs := []string{
		"The capital of France is Paris.",
		"Go is a statically typed language.",
		"Vector search finds nearest neighbors.",
	}
	ids := []string{"c1", "c2", "c3"}
	vectors := make([][]float32, len(docs))
	metadatas := make([]map[string]interface{}, len(docs))
	for i, doc := range docs {
		vectors[i], err = embedder.Embed(ctx, doc, false)
		if err != nil {
			t.Fatal(err)
		}
		metadatas[i] = map[string]interface{}{"document_id": "d1"}
	}
	if err := store.Upsert(ctx, ids, vectors, docs, metadatas); err != nil {
		t.Fatal(err)
	}

	r := NewRetriever(embedder, store)
	chunks, err := r.Retrieve(ctx, "anything", 2, nil)
	if err != nil {
		t.Fatal(err)
	}
	// Over-fetch at 2x k means all three candidates come back.
	if len(chunks) != 3 {
		t.Fatalf("candidates: %d", len(chunks))
	}
	for i := 1; i < len(chunks); i++ {
		if chunks[i].Score > chunks[i-1].Score {
			t.Error("scores not descending")
		}
	}
	for _, c := range chunks {
		if c.Score < -1.0001 || c.Score > 1.0001 {
			t.Errorf("score out of range: %f", c.Score)
		}
		if c.Content == "" || c.ID == "" {
			t.Errorf("incomplete chunk: %+v", c)
		}
		if c.Metadata["document_id"] != "d1" {
			t.Errorf("metadata: %v", c.Metadata)
		}
	}
}

func TestRetriever_ScoreIsSimilarity(t *testing.T) {
	ctx := context.Background()
	embedder := embedding.NewMockEmbedder(64)
	store, _ := vector.NewMemoryStore(64)

	// Store a passage vector, then retrieve with the exact passage text as
	// the query. Query and passage prefixes differ, so similarity is high
	// but below 1; score must equal 1 - distance.
	text := "A passage about searching."
	vec, _ := embedder.Embed(ctx, text, false)
	if err := store.Upsert(ctx, []string{"p"}, [][]float32{vec}, []string{text},
		[]map[string]interface{}{{}}); err != nil {
		t.Fatal(err)
	}

	queryVec, _ := embedder.Embed(ctx, text, true)
	hits, err := store.Query(ctx, queryVec, 1, nil)
	if err != nil {
		t.Fatal(err)
	}

	r := NewRetriever(embedder, store)
	chunks, err := r.Retrieve(ctx, text, 1, nil)
	if err != nil {
		t.Fatal(err)
	}
	if len(chunks) != 1 {
		t.Fatalf("chunks: %d", len(chunks))
	}
	want := 1 - hits[0].Distance
	if math.Abs(chunks[0].Score-want) > 1e-9 {
		t.Errorf("score %f, want %f", chunks[0].Score, want)
	}
}

func TestRetriever_ZeroK(t *testing.T) {
	r := NewRetriever(embedding.NewMockEmbedder(8), mustStore(t, 8))
	chunks, err := r.Retrieve(context.Background(), "q", 0, nil)
	if err != nil {
		t.Fatal(err)
	}
	if chunks != nil {
		t.Errorf("k=0 chunks: %v", chunks)
	}
}

func TestRetriever_EmptyStore(t *testing.T) {
	r := NewRetriever(embedding.NewMockEmbedder(8), mustStore(t, 8))
	chunks, err := r.Retrieve(context.Background(), "q", 5, nil)
	if err != nil {
		t.Fatal(err)
	}
	if len(chunks) != 0 {
		t.Errorf("chunks from empty store: %d", len(chunks))
	}
}

func mustStore(t *testing.T, dims int) *vector.MemoryStore {
	t.Helper()
	s, err := vector.NewMemoryStore(dims)
	if err != nil {
		t.Fatal(err)
	}
	return s
}
