package chunking

import (
	"fmt"
	"strings"

	"github.com/hyperjump/bunsho/internal/models"
)

// FixedChunker slides a deterministic character window over the text.
// Window and overlap are configured in tokens and converted to characters.
type FixedChunker struct {
	chunkSize    int // tokens
	chunkOverlap int // tokens
}

// NewFixedChunker creates a fixed-size chunker. The overlap must be smaller
// than the chunk size; equal or larger overlap would make the window step
// non-positive and the chunker loop forever.
func NewFixedChunker(chunkSize, chunkOverlap int) (*FixedChunker, error) {
	if chunkSize <= 0 {
		return nil, fmt.Errorf("chunk size must be positive, got %d", chunkSize)
	}
	if chunkOverlap < 0 {
		return nil, fmt.Errorf("chunk overlap must not be negative, got %d", chunkOverlap)
	}
	if chunkOverlap >= chunkSize {
		return nil, fmt.Errorf("chunk overlap (%d) must be smaller than chunk size (%d)", chunkOverlap, chunkSize)
	}
	return &FixedChunker{chunkSize: chunkSize, chunkOverlap: chunkOverlap}, nil
}

// ChunkText splits text into fixed windows of chunkSize*4 characters,
// stepping by (chunkSize-chunkOverlap)*4 so consecutive windows share the
// configured overlap. The trailing partial window is emitted when non-empty
// after trimming.
func (f *FixedChunker) ChunkText(text string, metadata map[string]interface{}) []models.Chunk {
	windowSize := f.chunkSize * charsPerToken
	stepSize := (f.chunkSize - f.chunkOverlap) * charsPerToken

	var chunks []models.Chunk
	start := 0
	index := 0
	for start < len(text) {
		end := start + windowSize
		if end > len(text) {
			end = len(text)
		}
		content := strings.TrimSpace(text[start:end])
		if content == "" {
			break
		}
		chunks = append(chunks, newChunk(content, index, start, end, models.ChunkTypeText, metadata))
		index++
		if end >= len(text) {
			break
		}
		start += stepSize
	}
	return chunks
}
