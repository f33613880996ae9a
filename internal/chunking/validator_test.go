package chunking

import (
	"strings"
	"testing"

	"github.com/hyperjump/bunsho/internal/models"
)

func chunkWith(content string) *models.Chunk {
	return &models.Chunk{Content: content, ChunkID: "chunk_0000"}
}

func TestValidateChunk_SizeBoundaries(t *testing.T) {
	v := NewValidator(50, 2000, 0.5)

	// Exactly the minimum is valid.
	atMin := chunkWith("Aa " + strings.Repeat("word ", 9) + "b.")
	if len(atMin.Content) != 50 {
		t.Fatalf("fixture length %d, want 50", len(atMin.Content))
	}
	if res := v.ValidateChunk(atMin); !res.IsValid {
		t.Errorf("chunk at min size invalid: %v", res.Issues)
	}

	// One below the minimum is invalid.
	belowMin := chunkWith(strings.Repeat("a", 49))
	if res := v.ValidateChunk(belowMin); res.IsValid {
		t.Error("chunk below min size should be invalid")
	}

	// Above the maximum is a warning, not an issue.
	aboveMax := chunkWith("A" + strings.Repeat("word ", 420) + "end.")
	res := v.ValidateChunk(aboveMax)
	if !res.IsValid {
		t.Errorf("oversized chunk should stay valid: %v", res.Issues)
	}
	if len(res.Warnings) == 0 {
		t.Error("oversized chunk should warn")
	}
}

func TestValidateChunk_EmptyContent(t *testing.T) {
	v := NewValidator(50, 2000, 0.5)
	res := v.ValidateChunk(chunkWith("   \t  "))
	if res.IsValid {
		t.Error("whitespace-only chunk should be invalid")
	}
	if len(res.Issues) < 2 {
		t.Errorf("expected size and empty issues, got %v", res.Issues)
	}
}

func TestValidateChunk_MidSentenceWarning(t *testing.T) {
	v := NewValidator(10, 2000, 0.0)

	complete := v.ValidateChunk(chunkWith("A complete sentence ends with punctuation."))
	for _, w := range complete.Warnings {
		if strings.Contains(w, "mid-sentence") {
			t.Errorf("unexpected mid-sentence warning: %v", complete.Warnings)
		}
	}

	cut := v.ValidateChunk(chunkWith("This chunk was cut in the middle of a"))
	found := false
	for _, w := range cut.Warnings {
		if strings.Contains(w, "mid-sentence") {
			found = true
		}
	}
	if !found {
		t.Errorf("expected mid-sentence warning, got %v", cut.Warnings)
	}

	// A closing quote counts as a complete ending.
	quoted := v.ValidateChunk(chunkWith(`He said "the work is done."`))
	for _, w := range quoted.Warnings {
		if strings.Contains(w, "mid-sentence") {
			t.Errorf("quote ending flagged mid-sentence: %v", quoted.Warnings)
		}
	}
}

func TestValidateChunk_Deterministic(t *testing.T) {
	v := NewValidator(50, 2000, 0.5)
	chunk := chunkWith("Determinism matters for validation scoring over chunks of text like this one.")
	first := v.ValidateChunk(chunk)
	for i := 0; i < 5; i++ {
		again := v.ValidateChunk(chunk)
		if again.QualityScore != first.QualityScore || again.IsValid != first.IsValid {
			t.Fatalf("validation not deterministic: %v vs %v", again, first)
		}
	}
}

func TestQualityScore_PrefersWellFormedChunks(t *testing.T) {
	v := NewValidator(50, 250, 0.5)
	good := chunkWith("Quality scoring favors chunks near the ideal size that read like sentences. They start uppercase and end with punctuation marks.")
	bad := chunkWith("frag")
	goodRes := v.ValidateChunk(good)
	badRes := v.ValidateChunk(bad)
	if goodRes.QualityScore <= badRes.QualityScore {
		t.Errorf("good=%f should beat bad=%f", goodRes.QualityScore, badRes.QualityScore)
	}
	if goodRes.QualityScore < 0 || goodRes.QualityScore > 1 {
		t.Errorf("quality out of range: %f", goodRes.QualityScore)
	}
}

func TestValidateChunks_Aggregates(t *testing.T) {
	v := NewValidator(50, 2000, 0.5)
	chunks := []models.Chunk{
		{Content: "A chunk of perfectly reasonable length that ends with proper punctuation marks."},
		{Content: "short"},
		{Content: ""},
	}
	report := v.ValidateChunks(chunks)
	if report.TotalChunks != 3 {
		t.Errorf("total: %d", report.TotalChunks)
	}
	if report.ValidChunks != 1 {
		t.Errorf("valid: %d", report.ValidChunks)
	}
	if report.InvalidChunks != 2 {
		t.Errorf("invalid: %d", report.InvalidChunks)
	}
	if len(report.Results) != 3 {
		t.Errorf("results: %d", len(report.Results))
	}
	if report.AvgQuality < 0 || report.AvgQuality > 1 {
		t.Errorf("avg quality out of range: %f", report.AvgQuality)
	}
}

func TestValidateChunks_Empty(t *testing.T) {
	v := NewValidator(50, 2000, 0.5)
	report := v.ValidateChunks(nil)
	if report.TotalChunks != 0 || report.AvgQuality != 0 {
		t.Errorf("empty report: %+v", report)
	}
}
