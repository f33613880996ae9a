package chunking

import (
	"fmt"
	"strings"

	"github.com/hyperjump/bunsho/internal/models"
)

// sectionsMetaKey is the metadata key under which callers pass a section tree.
const sectionsMetaKey = "sections"

// DynamicChunker splits text along semantic boundaries. When the caller
// supplies a section tree (and structure mode is on), sections under the
// token budget become single chunks and oversized sections fall back to
// sentence packing; otherwise paragraphs are packed with an overlap tail
// carried between consecutive chunks.
type DynamicChunker struct {
	chunkSize        int // tokens
	chunkOverlap     int // tokens
	respectStructure bool
}

// NewDynamicChunker creates a dynamic chunker. As with the fixed strategy,
// overlap must be smaller than the chunk size.
func NewDynamicChunker(chunkSize, chunkOverlap int, respectStructure bool) (*DynamicChunker, error) {
	if chunkSize <= 0 {
		return nil, fmt.Errorf("chunk size must be positive, got %d", chunkSize)
	}
	if chunkOverlap < 0 {
		return nil, fmt.Errorf("chunk overlap must not be negative, got %d", chunkOverlap)
	}
	if chunkOverlap >= chunkSize {
		return nil, fmt.Errorf("chunk overlap (%d) must be smaller than chunk size (%d)", chunkOverlap, chunkSize)
	}
	return &DynamicChunker{
		chunkSize:        chunkSize,
		chunkOverlap:     chunkOverlap,
		respectStructure: respectStructure,
	}, nil
}

// ChunkText chunks text by structure when a section tree is available in
// metadata, by paragraph packing otherwise. Chunk indices are assigned
// left-to-right in one pass, so the sequence is monotonic across the whole
// document including nested subsections.
func (d *DynamicChunker) ChunkText(text string, metadata map[string]interface{}) []models.Chunk {
	sections := sectionsFromMetadata(metadata)
	if len(sections) > 0 && d.respectStructure {
		var chunks []models.Chunk
		d.walkSections(text, sections, metadata, &chunks)
		return chunks
	}
	return d.packParagraphs(text, metadata)
}

func sectionsFromMetadata(metadata map[string]interface{}) []*models.Section {
	if metadata == nil {
		return nil
	}
	sections, _ := metadata[sectionsMetaKey].([]*models.Section)
	return sections
}

// walkSections emits each section's own content before recursing into its
// subsections, appending to out so indices stay monotonic.
func (d *DynamicChunker) walkSections(text string, sections []*models.Section, metadata map[string]interface{}, out *[]models.Chunk) {
	for _, section := range sections {
		start, end := clampSpan(section.StartPos, section.EndPos, len(text))
		content := strings.TrimSpace(text[start:end])
		if content != "" {
			secMeta := withSectionMeta(metadata, section)
			if models.EstimateTokens(content) <= d.chunkSize {
				*out = append(*out, newChunk(content, len(*out), section.StartPos, section.EndPos, models.ChunkTypeText, secMeta))
			} else {
				d.packSentences(content, section.StartPos, secMeta, out)
			}
		}
		if len(section.Subsections) > 0 {
			d.walkSections(text, section.Subsections, metadata, out)
		}
	}
}

// packSentences splits an oversized section into sentence-packed chunks.
// Each new chunk is seeded with the overlap tail of the one just closed. A
// single sentence over the budget is atomic: it becomes a chunk on its own
// rather than being dropped.
func (d *DynamicChunker) packSentences(content string, startPos int, metadata map[string]interface{}, out *[]models.Chunk) {
	current := ""
	currentStart := startPos
	for _, sentence := range splitSentences(content) {
		if current != "" && models.EstimateTokens(current)+models.EstimateTokens(sentence) > d.chunkSize {
			trimmed := strings.TrimSpace(current)
			*out = append(*out, newChunk(trimmed, len(*out), currentStart, currentStart+len(trimmed), models.ChunkTypeText, metadata))
			tail := d.overlapTail(trimmed)
			currentStart += len(trimmed) - len(tail)
			if tail != "" {
				current = tail + " " + sentence + " "
			} else {
				current = sentence + " "
			}
			continue
		}
		current += sentence + " "
	}
	if trimmed := strings.TrimSpace(current); trimmed != "" {
		*out = append(*out, newChunk(trimmed, len(*out), currentStart, currentStart+len(trimmed), models.ChunkTypeText, metadata))
	}
}

// packParagraphs accumulates paragraphs up to the token budget. When a chunk
// closes, the next one starts with the closed chunk's overlap tail so context
// carries across the boundary.
func (d *DynamicChunker) packParagraphs(text string, metadata map[string]interface{}) []models.Chunk {
	var chunks []models.Chunk
	current := ""
	currentStart := 0
	for _, para := range splitParagraphs(text) {
		if current != "" && models.EstimateTokens(current)+models.EstimateTokens(para) > d.chunkSize {
			trimmed := strings.TrimSpace(current)
			chunks = append(chunks, newChunk(trimmed, len(chunks), currentStart, currentStart+len(trimmed), models.ChunkTypeText, metadata))
			tail := d.overlapTail(trimmed)
			currentStart += len(trimmed) - len(tail)
			current = tail + "\n\n" + para
			continue
		}
		if current == "" {
			current = para
		} else {
			current += "\n\n" + para
		}
	}
	if trimmed := strings.TrimSpace(current); trimmed != "" {
		chunks = append(chunks, newChunk(trimmed, len(chunks), currentStart, currentStart+len(trimmed), models.ChunkTypeText, metadata))
	}
	return chunks
}

// overlapTail returns the trailing overlap window of a closed chunk: the last
// chunkOverlap*4 characters, cut forward to just past the last sentence
// delimiter inside the window when one exists, the raw tail otherwise.
func (d *DynamicChunker) overlapTail(text string) string {
	overlapSize := d.chunkOverlap * charsPerToken
	if len(text) <= overlapSize {
		return text
	}
	tail := text[len(text)-overlapSize:]
	for _, delim := range []string{". ", "! ", "? ", "\n"} {
		if idx := strings.LastIndex(tail, delim); idx > 0 {
			return tail[idx+len(delim):]
		}
	}
	return tail
}

func withSectionMeta(metadata map[string]interface{}, section *models.Section) map[string]interface{} {
	meta := make(map[string]interface{}, len(metadata)+2)
	for k, v := range metadata {
		if k == sectionsMetaKey {
			continue
		}
		meta[k] = v
	}
	meta["section_title"] = section.Title
	meta["section_level"] = section.Level
	return meta
}

func clampSpan(start, end, max int) (int, int) {
	if start < 0 {
		start = 0
	}
	if start > max {
		start = max
	}
	if end > max {
		end = max
	}
	if end < start {
		end = start
	}
	return start, end
}
