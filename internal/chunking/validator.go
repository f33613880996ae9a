package chunking

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/hyperjump/bunsho/internal/models"
	"github.com/hyperjump/bunsho/pkg/utils"
)

// Validator scores chunk quality and flags defects. Size bounds are in
// characters. Validation is a pure function of chunk content and thresholds:
// the same chunk always yields the same result.
type Validator struct {
	minChunkSize    int
	maxChunkSize    int
	minQualityScore float64
}

// NewValidator creates a validator with the given character bounds and
// quality threshold.
func NewValidator(minChunkSize, maxChunkSize int, minQualityScore float64) *Validator {
	return &Validator{
		minChunkSize:    minChunkSize,
		maxChunkSize:    maxChunkSize,
		minQualityScore: minQualityScore,
	}
}

// ValidateChunk checks a single chunk. Undersized or empty chunks get issues
// (invalid); oversized chunks, mid-sentence endings, and low quality scores
// only get warnings. A chunk is valid iff it has no issues.
func (v *Validator) ValidateChunk(chunk *models.Chunk) models.ValidationResult {
	var issues, warnings []string

	size := len(chunk.Content)
	if size < v.minChunkSize {
		issues = append(issues, fmt.Sprintf("chunk too small: %d < %d", size, v.minChunkSize))
	} else if size > v.maxChunkSize {
		warnings = append(warnings, fmt.Sprintf("chunk large: %d > %d", size, v.maxChunkSize))
	}

	if strings.TrimSpace(chunk.Content) == "" {
		issues = append(issues, "chunk is empty or whitespace only")
	}

	if !endsComplete(chunk.Content) {
		warnings = append(warnings, "chunk may end mid-sentence")
	}

	quality := v.qualityScore(chunk)
	if quality < v.minQualityScore {
		warnings = append(warnings, fmt.Sprintf("low quality score: %.2f", quality))
	}

	return models.ValidationResult{
		IsValid:      len(issues) == 0,
		QualityScore: quality,
		Issues:       issues,
		Warnings:     warnings,
	}
}

// ValidateChunks validates every chunk and aggregates counts and the mean
// quality score. The report is informational only; it never gates storage.
func (v *Validator) ValidateChunks(chunks []models.Chunk) *models.ValidationReport {
	report := &models.ValidationReport{
		TotalChunks: len(chunks),
		Results:     make([]models.ValidationResult, 0, len(chunks)),
	}
	var scores []float64
	for i := range chunks {
		result := v.ValidateChunk(&chunks[i])
		report.Results = append(report.Results, result)
		if result.IsValid {
			report.ValidChunks++
		}
		report.TotalWarnings += len(result.Warnings)
		scores = append(scores, result.QualityScore)
	}
	report.InvalidChunks = report.TotalChunks - report.ValidChunks
	report.AvgQuality = utils.Mean(scores)
	return report
}

// qualityScore is the unweighted average of three sub-scores: size fit
// against the midpoint of the configured bounds, sentence completeness, and
// text density.
func (v *Validator) qualityScore(chunk *models.Chunk) float64 {
	var scores []float64

	idealSize := float64(v.minChunkSize+v.maxChunkSize) / 2
	sizeDiff := float64(len(chunk.Content)) - idealSize
	if sizeDiff < 0 {
		sizeDiff = -sizeDiff
	}
	scores = append(scores, utils.Clamp01(1.0-sizeDiff/idealSize))

	scores = append(scores, completenessScore(chunk.Content))

	words := strings.Fields(chunk.Content)
	if len(words) > 0 {
		total := 0
		for _, w := range words {
			total += len(w)
		}
		avgWordLen := float64(total) / float64(len(words))
		scores = append(scores, utils.Clamp01(avgWordLen/5.0))
	} else {
		scores = append(scores, 0.0)
	}

	return utils.Mean(scores)
}

// completenessScore averages two booleans: starts with an uppercase letter,
// ends with sentence-terminal punctuation or a newline.
func completenessScore(content string) float64 {
	score := 0.0
	trimmed := strings.TrimSpace(content)
	if trimmed != "" {
		if r := []rune(trimmed)[0]; unicode.IsUpper(r) {
			score += 0.5
		}
	}
	if hasTerminalPunctuation(content, false) {
		score += 0.5
	}
	return score
}

// endsComplete reports whether content ends in sentence-terminal
// punctuation, a newline, or a closing quote.
func endsComplete(content string) bool {
	return hasTerminalPunctuation(content, true)
}

func hasTerminalPunctuation(content string, allowQuotes bool) bool {
	trimmed := strings.TrimRight(content, " \t")
	if trimmed == "" {
		return false
	}
	switch trimmed[len(trimmed)-1] {
	case '.', '!', '?', '\n':
		return true
	case '"', '\'':
		return allowQuotes
	}
	return false
}
