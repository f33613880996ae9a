package extract

import (
	"bytes"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"

	"github.com/hyperjump/bunsho/internal/models"
)

// extractImage handles standalone image files. No OCR backend is wired, so
// the result carries dimensions and a warning instead of text; downstream
// stages already handle empty content.
func extractImage(path string, data []byte) *models.ExtractedContent {
	cfg, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return degraded(fmt.Errorf("decode image: %w", err))
	}
	content := newContent("")
	content.PageCount = 1
	content.ImageCount = 1
	content.Confidence = 0.2
	content.Warnings = append(content.Warnings, "image contains no extractable text (OCR not available)")
	content.Metadata["image_format"] = format
	content.Metadata["image_width"] = cfg.Width
	content.Metadata["image_height"] = cfg.Height
	return content
}
