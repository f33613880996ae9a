package embedding

import (
	"context"
	"math"
	"testing"
)

func TestMockEmbedder_Deterministic(t *testing.T) {
	e := NewMockEmbedder(64)
	ctx := context.Background()
	first, err := e.Embed(ctx, "same text", false)
	if err != nil {
		t.Fatal(err)
	}
	second, _ := e.Embed(ctx, "same text", false)
	for i := range first {
		if first[i] != second[i] {
			t.Fatalf("embedding not deterministic at %d", i)
		}
	}
}

func TestMockEmbedder_QueryAndPassageDiffer(t *testing.T) {
	e := NewMockEmbedder(64)
	ctx := context.Background()
	query, _ := e.Embed(ctx, "same text", true)
	passage, _ := e.Embed(ctx, "same text", false)
	same := true
	for i := range query {
		if query[i] != passage[i] {
			same = false
			break
		}
	}
	if same {
		t.Error("query and passage embeddings of the same text should differ")
	}
}

func TestMockEmbedder_UnitLength(t *testing.T) {
	e := NewMockEmbedder(384)
	emb, err := e.Embed(context.Background(), "normalize me", false)
	if err != nil {
		t.Fatal(err)
	}
	if len(emb) != 384 {
		t.Fatalf("dimensions: %d", len(emb))
	}
	var norm float64
	for _, v := range emb {
		norm += float64(v) * float64(v)
	}
	if math.Abs(norm-1.0) > 1e-5 {
		t.Errorf("norm: %f", norm)
	}
}

func TestMockEmbedder_Batch(t *testing.T) {
	e := NewMockEmbedder(32)
	ctx := context.Background()
	batch, err := e.EmbedBatch(ctx, []string{"one", "two"}, false)
	if err != nil {
		t.Fatal(err)
	}
	if len(batch) != 2 {
		t.Fatalf("batch size: %d", len(batch))
	}
	single, _ := e.Embed(ctx, "one", false)
	for i := range single {
		if batch[0][i] != single[i] {
			t.Fatal("batch embedding differs from single embedding")
		}
	}
}

func TestMockEmbedder_DefaultDimensions(t *testing.T) {
	if d := NewMockEmbedder(0).Dimensions(); d != 384 {
		t.Errorf("default dimensions: %d", d)
	}
}

func TestPrefixed(t *testing.T) {
	if got := prefixed("hello", true); got != "query: hello" {
		t.Errorf("query prefix: %q", got)
	}
	if got := prefixed("hello", false); got != "passage: hello" {
		t.Errorf("passage prefix: %q", got)
	}
}
