// Package extract converts document files into normalized ExtractedContent.
//
// Each supported format has its own extractor; the registry selects one by
// file extension. Extraction never fails past this boundary: internal errors
// degrade to an empty-content result with populated Errors. Only input errors
// (missing file, unsupported extension) are returned to the caller.
package extract

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/hyperjump/bunsho/internal/models"
	"github.com/hyperjump/bunsho/pkg/utils"
)

// ErrUnsupportedFormat is returned for file extensions with no registered extractor.
var ErrUnsupportedFormat = errors.New("unsupported file format")

// formatExtractor extracts content from raw file bytes. Implementations
// degrade instead of failing: they always return a usable ExtractedContent.
type formatExtractor func(path string, data []byte) *models.ExtractedContent

// Registry maps file extensions to format extractors.
type Registry struct {
	extractors map[string]formatExtractor
}

// NewRegistry returns a registry with all built-in format extractors.
func NewRegistry() *Registry {
	r := &Registry{extractors: make(map[string]formatExtractor)}
	r.extractors[".pdf"] = extractPDF
	r.extractors[".docx"] = extractDOCX
	r.extractors[".txt"] = extractPlain
	r.extractors[".md"] = extractPlain
	r.extractors[".xlsx"] = extractExcel
	r.extractors[".png"] = extractImage
	r.extractors[".jpg"] = extractImage
	r.extractors[".jpeg"] = extractImage
	return r
}

// SupportedExtensions returns the registered extensions, dot-prefixed.
func (r *Registry) SupportedExtensions() []string {
	exts := make([]string, 0, len(r.extractors))
	for ext := range r.extractors {
		exts = append(exts, ext)
	}
	return exts
}

// Supports reports whether the extension (with or without leading dot) is registered.
func (r *Registry) Supports(ext string) bool {
	ext = strings.ToLower(ext)
	if !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}
	_, ok := r.extractors[ext]
	return ok
}

// Extract reads the file at path and extracts its content. A missing file or
// unregistered extension is an input error; anything that goes wrong inside
// an extractor is reported through the returned content's Errors instead.
func (r *Registry) Extract(path string) (*models.ExtractedContent, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("stat file: %w", err)
	}
	if info.IsDir() {
		return nil, fmt.Errorf("path is a directory: %s", path)
	}
	ext := strings.ToLower(filepath.Ext(path))
	extractor, ok := r.extractors[ext]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, ext)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read file: %w", err)
	}
	content := extractor(path, data)
	if content.Metadata == nil {
		content.Metadata = make(map[string]interface{})
	}
	content.Metadata["file_size"] = info.Size()
	content.Metadata["format"] = strings.TrimPrefix(ext, ".")
	return content, nil
}

// newContent returns an ExtractedContent with raw text and its cleaned
// derivative populated, language unknown until detection runs.
func newContent(raw string) *models.ExtractedContent {
	return &models.ExtractedContent{
		RawText:     raw,
		CleanedText: utils.CleanText(raw),
		Language:    models.LangUnknown,
		Metadata:    make(map[string]interface{}),
	}
}

// degraded returns an empty-content result carrying the failure as a diagnostic.
func degraded(err error) *models.ExtractedContent {
	c := newContent("")
	c.Errors = append(c.Errors, err.Error())
	return c
}
