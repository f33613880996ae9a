// Package chunking splits cleaned document text into bounded, overlapping,
// retrieval-ready chunks, and validates chunk quality.
//
// Two strategies implement the Strategy contract: FixedChunker slides a
// deterministic character window; DynamicChunker packs semantic units
// (sections, paragraphs, sentences) up to the token budget. Sizes are
// expressed in estimated tokens, one token being roughly four characters.
package chunking

import (
	"strings"

	"github.com/hyperjump/bunsho/internal/models"
)

// charsPerToken converts between the token budget and character counts.
const charsPerToken = 4

// Strategy splits text into chunks. Implementations never fail on
// well-formed (possibly empty) input; empty text yields no chunks.
// Caller metadata is shallow-copied onto every produced chunk.
type Strategy interface {
	ChunkText(text string, metadata map[string]interface{}) []models.Chunk
}

// newChunk builds a chunk at the given index with copied, augmented metadata.
func newChunk(content string, index, startPos, endPos int, chunkType models.ChunkType, metadata map[string]interface{}) models.Chunk {
	tokens := models.EstimateTokens(content)
	meta := make(map[string]interface{}, len(metadata)+3)
	for k, v := range metadata {
		meta[k] = v
	}
	meta["chunk_size"] = len(content)
	meta["tokens"] = tokens
	meta["type"] = string(chunkType)
	return models.Chunk{
		Content:  content,
		ChunkID:  models.ChunkIDFor(index),
		Index:    index,
		Type:     chunkType,
		Metadata: meta,
		StartPos: startPos,
		EndPos:   endPos,
		Tokens:   tokens,
	}
}

// splitSentences splits text on sentence-terminal punctuation followed by
// whitespace. The terminator stays with its sentence.
func splitSentences(text string) []string {
	var sentences []string
	start := 0
	for i := 0; i < len(text)-1; i++ {
		c := text[i]
		if (c == '.' || c == '!' || c == '?') && isSpaceByte(text[i+1]) {
			s := strings.TrimSpace(text[start : i+1])
			if s != "" {
				sentences = append(sentences, s)
			}
			start = i + 1
		}
	}
	if s := strings.TrimSpace(text[start:]); s != "" {
		sentences = append(sentences, s)
	}
	return sentences
}

// splitParagraphs splits text on blank-line boundaries.
func splitParagraphs(text string) []string {
	var paragraphs []string
	for _, p := range strings.Split(text, "\n\n") {
		if p = strings.TrimSpace(p); p != "" {
			paragraphs = append(paragraphs, p)
		}
	}
	return paragraphs
}

func isSpaceByte(b byte) bool {
	return b == ' ' || b == '\t' || b == '\n' || b == '\r'
}
