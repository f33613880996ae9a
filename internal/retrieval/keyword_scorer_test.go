package retrieval

import (
	"testing"

	"github.com/hyperjump/bunsho/internal/models"
)

func TestKeywordScorer_BoostsMatchingChunk(t *testing.T) {
	chunks := []*models.RetrievedChunk{
		{ID: "match", Content: "The deployment pipeline runs nightly builds.", Score: 0.5},
		{ID: "miss", Content: "Cats sleep most of the day.", Score: 0.5},
	}
	scorer := NewKeywordScorer(0.5)
	if err := scorer.Score("deployment pipeline", chunks); err != nil {
		t.Fatal(err)
	}
	if chunks[0].Score <= chunks[1].Score {
		t.Errorf("match=%f should beat miss=%f", chunks[0].Score, chunks[1].Score)
	}
	// The best keyword match normalizes to 1, so its blend is
	// 0.5*embedding + 0.5*1.
	if chunks[0].Score != 0.75 {
		t.Errorf("blended score: %f", chunks[0].Score)
	}
}

func TestKeywordScorer_NoMatchesKeepsEmbeddingShare(t *testing.T) {
	chunks := []*models.RetrievedChunk{
		{ID: "a", Content: "Completely unrelated text.", Score: 0.8},
	}
	if err := NewKeywordScorer(0.5).Score("zzyzx quux", chunks); err != nil {
		t.Fatal(err)
	}
	// No keyword hit anywhere: the embedding score keeps its weight share.
	if chunks[0].Score != 0.4 {
		t.Errorf("score: %f", chunks[0].Score)
	}
}

func TestKeywordScorer_InvalidWeightDefaultsToHalf(t *testing.T) {
	for _, w := range []float64{0, -1, 1.5} {
		chunks := []*models.RetrievedChunk{
			{ID: "a", Content: "nothing matches here", Score: 1.0},
		}
		if err := NewKeywordScorer(w).Score("zzyzx", chunks); err != nil {
			t.Fatal(err)
		}
		if chunks[0].Score != 0.5 {
			t.Errorf("weight %f: score %f", w, chunks[0].Score)
		}
	}
}

func TestKeywordScorer_EmptyChunks(t *testing.T) {
	if err := NewKeywordScorer(0.5).Score("query", nil); err != nil {
		t.Errorf("empty candidate list: %v", err)
	}
}
