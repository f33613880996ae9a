package extract

import (
	"strings"
	"unicode/utf8"

	"github.com/hyperjump/bunsho/internal/models"
)

// extractPlain returns file content as text, validating it is valid UTF-8.
// Invalid sequences are replaced with the replacement character and noted
// as a warning.
func extractPlain(path string, data []byte) *models.ExtractedContent {
	var warnings []string
	if !utf8.Valid(data) {
		data = []byte(strings.ToValidUTF8(string(data), "�"))
		warnings = append(warnings, "invalid UTF-8 sequences replaced")
	}
	content := newContent(string(data))
	content.PageCount = 1
	content.Warnings = warnings
	content.Confidence = 0.95
	if len(warnings) > 0 {
		content.Confidence = 0.8
	}
	if len(content.CleanedText) == 0 {
		content.Confidence = 0.5
	}
	return content
}
