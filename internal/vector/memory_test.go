package vector

import (
	"context"
	"math"
	"path/filepath"
	"testing"
)

func unit(angle float64) []float32 {
	return []float32{float32(math.Cos(angle)), float32(math.Sin(angle))}
}

func seedStore(t *testing.T) *MemoryStore {
	t.Helper()
	m, err := NewMemoryStore(2)
	if err != nil {
		t.Fatal(err)
	}
	ids := []string{"a", "b", "c"}
	vectors := [][]float32{unit(0), unit(0.5), unit(1.5)}
	documents := []string{"doc a", "doc b", "doc c"}
	metadatas := []map[string]interface{}{
		{"document_id": "d1"},
		{"document_id": "d1"},
		{"document_id": "d2"},
	}
	if err := m.Upsert(context.Background(), ids, vectors, documents, metadatas); err != nil {
		t.Fatal(err)
	}
	return m
}

func TestMemoryStore_RejectsBadDimensions(t *testing.T) {
	if _, err := NewMemoryStore(0); err == nil {
		t.Error("expected error for zero dimensions")
	}
}

func TestMemoryStore_QueryOrdering(t *testing.T) {
	m := seedStore(t)
	hits, err := m.Query(context.Background(), unit(0), 3, nil)
	if err != nil {
		t.Fatal(err)
	}
	if len(hits) != 3 {
		t.Fatalf("hits: %d", len(hits))
	}
	// Nearest to angle 0 is "a", then "b", then "c".
	if hits[0].ID != "a" || hits[1].ID != "b" || hits[2].ID != "c" {
		t.Errorf("order: %s %s %s", hits[0].ID, hits[1].ID, hits[2].ID)
	}
	if hits[0].Distance > hits[1].Distance || hits[1].Distance > hits[2].Distance {
		t.Error("distances not ascending")
	}
	if math.Abs(hits[0].Distance) > 1e-6 {
		t.Errorf("identical vector distance: %f", hits[0].Distance)
	}
	if hits[0].Document != "doc a" {
		t.Errorf("document: %q", hits[0].Document)
	}
}

func TestMemoryStore_QueryK(t *testing.T) {
	m := seedStore(t)
	hits, _ := m.Query(context.Background(), unit(0), 1, nil)
	if len(hits) != 1 {
		t.Errorf("k=1 hits: %d", len(hits))
	}
	hits, _ = m.Query(context.Background(), unit(0), 10, nil)
	if len(hits) != 3 {
		t.Errorf("k beyond size hits: %d", len(hits))
	}
	hits, _ = m.Query(context.Background(), unit(0), 0, nil)
	if hits != nil {
		t.Errorf("k=0 hits: %v", hits)
	}
}

func TestMemoryStore_QueryFilter(t *testing.T) {
	m := seedStore(t)
	hits, err := m.Query(context.Background(), unit(0), 10, map[string]interface{}{"document_id": "d2"})
	if err != nil {
		t.Fatal(err)
	}
	if len(hits) != 1 || hits[0].ID != "c" {
		t.Errorf("filtered hits: %+v", hits)
	}
}

func TestMemoryStore_QueryDimensionMismatch(t *testing.T) {
	m := seedStore(t)
	if _, err := m.Query(context.Background(), []float32{1, 2, 3}, 1, nil); err == nil {
		t.Error("expected dimension mismatch error")
	}
}

func TestMemoryStore_UpsertReplaces(t *testing.T) {
	m := seedStore(t)
	err := m.Upsert(context.Background(),
		[]string{"a"},
		[][]float32{unit(3.0)},
		[]string{"doc a v2"},
		[]map[string]interface{}{{"document_id": "d1"}},
	)
	if err != nil {
		t.Fatal(err)
	}
	count, _ := m.Count(context.Background())
	if count != 3 {
		t.Errorf("count after replace: %d", count)
	}
	hits, _ := m.Query(context.Background(), unit(3.0), 1, nil)
	if hits[0].ID != "a" || hits[0].Document != "doc a v2" {
		t.Errorf("replaced entry: %+v", hits[0])
	}
}

func TestMemoryStore_UpsertLengthMismatch(t *testing.T) {
	m := seedStore(t)
	err := m.Upsert(context.Background(), []string{"x"}, nil, nil, nil)
	if err == nil {
		t.Error("expected length mismatch error")
	}
}

func TestMemoryStore_DeleteWhere(t *testing.T) {
	m := seedStore(t)
	removed, err := m.DeleteWhere(context.Background(), map[string]interface{}{"document_id": "d1"})
	if err != nil {
		t.Fatal(err)
	}
	if removed != 2 {
		t.Errorf("removed: %d", removed)
	}
	count, _ := m.Count(context.Background())
	if count != 1 {
		t.Errorf("count: %d", count)
	}
	// The surviving entry is still queryable and re-upserting a deleted ID works.
	hits, _ := m.Query(context.Background(), unit(1.5), 10, nil)
	if len(hits) != 1 || hits[0].ID != "c" {
		t.Errorf("survivor: %+v", hits)
	}
	err = m.Upsert(context.Background(), []string{"a"}, [][]float32{unit(0)},
		[]string{"doc a again"}, []map[string]interface{}{{"document_id": "d3"}})
	if err != nil {
		t.Fatal(err)
	}
	count, _ = m.Count(context.Background())
	if count != 2 {
		t.Errorf("count after re-add: %d", count)
	}
}

func TestMemoryStore_SaveLoadRoundTrip(t *testing.T) {
	m := seedStore(t)
	path := filepath.Join(t.TempDir(), "index", "vectors.bin")
	if err := m.Save(path); err != nil {
		t.Fatal(err)
	}

	loaded, _ := NewMemoryStore(2)
	if err := loaded.Load(path); err != nil {
		t.Fatal(err)
	}
	count, _ := loaded.Count(context.Background())
	if count != 3 {
		t.Fatalf("loaded count: %d", count)
	}
	hits, err := loaded.Query(context.Background(), unit(0.5), 1, nil)
	if err != nil {
		t.Fatal(err)
	}
	if hits[0].ID != "b" || hits[0].Document != "doc b" {
		t.Errorf("loaded hit: %+v", hits[0])
	}
	if hits[0].Metadata["document_id"] != "d1" {
		t.Errorf("loaded metadata: %v", hits[0].Metadata)
	}
}

func TestMemoryStore_LoadMissingFile(t *testing.T) {
	m, _ := NewMemoryStore(2)
	if err := m.Load(filepath.Join(t.TempDir(), "nope.bin")); err != nil {
		t.Errorf("missing file should not error: %v", err)
	}
}

func TestMemoryStore_LoadDimensionMismatch(t *testing.T) {
	m := seedStore(t)
	path := filepath.Join(t.TempDir(), "vectors.bin")
	if err := m.Save(path); err != nil {
		t.Fatal(err)
	}
	other, _ := NewMemoryStore(5)
	if err := other.Load(path); err == nil {
		t.Error("expected dimension mismatch error")
	}
}
