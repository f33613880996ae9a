package models

import "fmt"

// ChunkType tags what kind of content a chunk holds.
type ChunkType string

const (
	ChunkTypeText    ChunkType = "text"
	ChunkTypeTable   ChunkType = "table"
	ChunkTypeCode    ChunkType = "code"
	ChunkTypeHeading ChunkType = "heading"
)

// Chunk is the unit of retrieval: a bounded, offset-addressable span of
// document text. Tokens is always populated; when a strategy does not supply
// it, it is derived from content length (one token is roughly four characters).
type Chunk struct {
	Content  string                 `json:"content"`
	ChunkID  string                 `json:"chunk_id"`
	Index    int                    `json:"chunk_index"`
	Type     ChunkType              `json:"chunk_type"`
	Metadata map[string]interface{} `json:"metadata,omitempty"`
	StartPos int                    `json:"start_pos"`
	EndPos   int                    `json:"end_pos"`
	Tokens   int                    `json:"tokens"`
}

// ChunkIDFor returns the zero-padded per-document chunk identifier for index i.
func ChunkIDFor(i int) string {
	return fmt.Sprintf("chunk_%04d", i)
}

// EstimateTokens estimates the token count of text as len/4, the standard
// approximation when no real tokenizer is in play.
func EstimateTokens(text string) int {
	return len(text) / 4
}

// ValidationResult is the per-chunk validation verdict. A chunk is valid iff
// Issues is empty; QualityScore never gates validity by itself.
type ValidationResult struct {
	IsValid      bool     `json:"is_valid"`
	QualityScore float64  `json:"quality_score"`
	Issues       []string `json:"issues,omitempty"`
	Warnings     []string `json:"warnings,omitempty"`
}

// ValidationReport aggregates per-chunk validation results for reporting.
// It never gates storage.
type ValidationReport struct {
	TotalChunks   int                `json:"total_chunks"`
	ValidChunks   int                `json:"valid_chunks"`
	InvalidChunks int                `json:"invalid_chunks"`
	TotalWarnings int                `json:"total_warnings"`
	AvgQuality    float64            `json:"average_quality_score"`
	Results       []ValidationResult `json:"results"`
}
