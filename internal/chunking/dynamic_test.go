package chunking

import (
	"strings"
	"testing"

	"github.com/hyperjump/bunsho/internal/models"
)

func TestNewDynamicChunker_RejectsBadConfig(t *testing.T) {
	if _, err := NewDynamicChunker(0, 0, true); err == nil {
		t.Error("expected error for zero chunk size")
	}
	if _, err := NewDynamicChunker(100, 100, true); err == nil {
		t.Error("expected error for overlap equal to size")
	}
}

func TestDynamicChunker_ParagraphPacking(t *testing.T) {
	d, err := NewDynamicChunker(20, 4, true) // 80-char budget
	if err != nil {
		t.Fatal(err)
	}
	paras := []string{
		"First paragraph with a reasonable amount of text in it.",
		"Second paragraph, also containing enough text to matter.",
		"Third paragraph rounds out the document nicely here.",
	}
	text := strings.Join(paras, "\n\n")
	chunks := d.ChunkText(text, nil)
	if len(chunks) < 2 {
		t.Fatalf("expected multiple chunks, got %d", len(chunks))
	}
	for i, chunk := range chunks {
		if chunk.Index != i {
			t.Errorf("chunk %d has index %d", i, chunk.Index)
		}
		if strings.TrimSpace(chunk.Content) == "" {
			t.Errorf("chunk %d is empty", i)
		}
	}
	// The first paragraph lands in the first chunk.
	if !strings.Contains(chunks[0].Content, "First paragraph") {
		t.Errorf("first chunk: %q", chunks[0].Content)
	}
}

func TestDynamicChunker_SingleParagraphUnderBudget(t *testing.T) {
	d, _ := NewDynamicChunker(100, 10, true)
	chunks := d.ChunkText("Just one small paragraph.", nil)
	if len(chunks) != 1 {
		t.Fatalf("expected 1 chunk, got %d", len(chunks))
	}
	if chunks[0].Content != "Just one small paragraph." {
		t.Errorf("content: %q", chunks[0].Content)
	}
}

func TestDynamicChunker_SectionsBecomeChunks(t *testing.T) {
	text := "Intro content for the opening section. More detail follows in later sections."
	sections := []*models.Section{
		{Level: 1, Title: "Introduction", StartPos: 0, EndPos: 38},
		{Level: 1, Title: "Details", StartPos: 38, EndPos: len(text)},
	}
	d, _ := NewDynamicChunker(100, 10, true)
	meta := map[string]interface{}{"sections": sections, "document_id": "d1"}
	chunks := d.ChunkText(text, meta)
	if len(chunks) != 2 {
		t.Fatalf("expected 2 chunks, got %d", len(chunks))
	}
	if chunks[0].Metadata["section_title"] != "Introduction" {
		t.Errorf("section title: %v", chunks[0].Metadata["section_title"])
	}
	if chunks[1].Metadata["section_title"] != "Details" {
		t.Errorf("section title: %v", chunks[1].Metadata["section_title"])
	}
	// The sections tree itself never leaks into chunk metadata.
	if _, ok := chunks[0].Metadata["sections"]; ok {
		t.Error("sections metadata leaked into chunk")
	}
	if chunks[0].Metadata["document_id"] != "d1" {
		t.Error("caller metadata not carried")
	}
}

func TestDynamicChunker_NestedSectionIndicesMonotonic(t *testing.T) {
	text := strings.Repeat("Parent section text. ", 5) + strings.Repeat("Child section text. ", 5)
	parentEnd := len("Parent section text. ") * 5
	sections := []*models.Section{
		{
			Level: 1, Title: "Parent", StartPos: 0, EndPos: parentEnd,
			Subsections: []*models.Section{
				{Level: 2, Title: "Child", StartPos: parentEnd, EndPos: len(text)},
			},
		},
	}
	d, _ := NewDynamicChunker(100, 10, true)
	chunks := d.ChunkText(text, map[string]interface{}{"sections": sections})
	if len(chunks) != 2 {
		t.Fatalf("expected 2 chunks, got %d", len(chunks))
	}
	for i, chunk := range chunks {
		if chunk.Index != i {
			t.Errorf("chunk %d has index %d", i, chunk.Index)
		}
		if chunk.ChunkID != models.ChunkIDFor(i) {
			t.Errorf("chunk %d id %q", i, chunk.ChunkID)
		}
	}
}

func TestDynamicChunker_RespectStructureOff(t *testing.T) {
	text := "Some text in a single paragraph."
	sections := []*models.Section{{Level: 1, Title: "S", StartPos: 0, EndPos: len(text)}}
	d, _ := NewDynamicChunker(100, 10, false)
	chunks := d.ChunkText(text, map[string]interface{}{"sections": sections})
	if len(chunks) != 1 {
		t.Fatalf("expected 1 chunk, got %d", len(chunks))
	}
	if _, ok := chunks[0].Metadata["section_title"]; ok {
		t.Error("structure mode off should not produce section metadata")
	}
}

func TestDynamicChunker_OversizedSectionSplitsOnSentences(t *testing.T) {
	sentence := "This sentence has exactly enough words to be useful. "
	text := strings.Repeat(sentence, 20)
	sections := []*models.Section{{Level: 1, Title: "Big", StartPos: 0, EndPos: len(text)}}
	d, _ := NewDynamicChunker(30, 5, true) // 120-char budget, well under section size
	chunks := d.ChunkText(text, map[string]interface{}{"sections": sections})
	if len(chunks) < 2 {
		t.Fatalf("expected the oversized section to split, got %d chunks", len(chunks))
	}
	for i, chunk := range chunks {
		if chunk.Metadata["section_title"] != "Big" {
			t.Errorf("chunk %d lost its section title", i)
		}
		// No sentence here exceeds the budget, so no chunk may either.
		if chunk.Tokens > 30 {
			t.Errorf("chunk %d has %d tokens, budget is 30", i, chunk.Tokens)
		}
		if chunk.Tokens != models.EstimateTokens(chunk.Content) {
			t.Errorf("chunk %d token count does not match its content", i)
		}
	}
}

func TestDynamicChunker_AtomicSentenceExceedsBudget(t *testing.T) {
	// A single sentence over the budget becomes a chunk of its own rather
	// than being dropped or cut mid-word.
	long := strings.Repeat("word ", 30) + "ends."
	text := "Short lead. " + long
	sections := []*models.Section{{Level: 1, Title: "S", StartPos: 0, EndPos: len(text)}}
	d, _ := NewDynamicChunker(20, 2, true)
	chunks := d.ChunkText(text, map[string]interface{}{"sections": sections})
	if len(chunks) != 2 {
		t.Fatalf("expected 2 chunks, got %d", len(chunks))
	}
	if chunks[0].Content != "Short lead." {
		t.Errorf("first chunk: %q", chunks[0].Content)
	}
	if !strings.Contains(chunks[1].Content, "ends.") {
		t.Errorf("second chunk lost the long sentence: %q", chunks[1].Content)
	}
	if chunks[1].Tokens <= 20 {
		t.Errorf("oversized sentence should exceed the budget, got %d tokens", chunks[1].Tokens)
	}
}

func TestDynamicChunker_ParagraphOverlapCarriesForward(t *testing.T) {
	d, err := NewDynamicChunker(20, 4, true)
	if err != nil {
		t.Fatal(err)
	}
	paras := []string{
		"First paragraph with a reasonable amount of text in it.",
		"Second paragraph, also containing enough text to matter.",
		"Third paragraph rounds out the document nicely here.",
	}
	chunks := d.ChunkText(strings.Join(paras, "\n\n"), nil)
	if len(chunks) < 2 {
		t.Fatalf("expected multiple chunks, got %d", len(chunks))
	}
	for i := 0; i < len(chunks)-1; i++ {
		tail := strings.TrimSpace(d.overlapTail(chunks[i].Content))
		if tail == "" {
			continue
		}
		if !strings.HasPrefix(chunks[i+1].Content, tail) {
			t.Errorf("chunk %d does not open with the overlap tail of chunk %d: tail=%q next=%q",
				i+1, i, tail, chunks[i+1].Content)
		}
	}
	// All paragraphs fit the budget individually, so every chunk must too.
	for i, chunk := range chunks {
		if chunk.Tokens > 20 {
			t.Errorf("chunk %d has %d tokens, budget is 20", i, chunk.Tokens)
		}
	}
}

func TestOverlapTail(t *testing.T) {
	d, _ := NewDynamicChunker(100, 5, true) // 20-char overlap window
	// Delimiter inside the window: the tail starts after it.
	text := "Some long text here. Trailing words"
	tail := d.overlapTail(text)
	if tail != "Trailing words" {
		t.Errorf("overlapTail: got %q", tail)
	}
	// Short text comes back whole.
	if got := d.overlapTail("tiny"); got != "tiny" {
		t.Errorf("overlapTail short: got %q", got)
	}
}
