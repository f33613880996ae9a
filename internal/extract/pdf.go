package extract

import (
	"bytes"
	"fmt"

	"github.com/ledongthuc/pdf"
	"github.com/pdfcpu/pdfcpu/pkg/api"
	pdfcpulib "github.com/pdfcpu/pdfcpu/pkg/pdfcpu"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"

	"github.com/hyperjump/bunsho/internal/models"
)

// extractPDF pulls text page by page and counts pages and embedded images.
// Pages that fail to decode are skipped with a warning; the result degrades
// to empty content only when the file cannot be opened at all.
func extractPDF(path string, data []byte) *models.ExtractedContent {
	r, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return degraded(fmt.Errorf("open PDF: %w", err))
	}

	var buf bytes.Buffer
	numPages := r.NumPage()
	pagesWithText := 0
	var warnings []string
	for i := 1; i <= numPages; i++ {
		page := r.Page(i)
		if page.V.IsNull() {
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			warnings = append(warnings, fmt.Sprintf("page %d: %v", i, err))
			continue
		}
		if text != "" {
			pagesWithText++
		}
		buf.WriteString(text)
		if i < numPages {
			buf.WriteByte('\n')
		}
	}

	content := newContent(buf.String())
	content.PageCount = numPages
	content.Warnings = warnings
	content.ImageCount = countPDFImages(data)
	content.Confidence = pdfConfidence(numPages, pagesWithText, len(content.CleanedText))
	content.Metadata["pages_with_text"] = pagesWithText
	return content
}

// countPDFImages counts image XObjects across all pages via pdfcpu.
// Returns 0 when the document cannot be parsed; text extraction already
// surfaced any real failure.
func countPDFImages(data []byte) int {
	conf := model.NewDefaultConfiguration()
	ctx, err := api.ReadValidateAndOptimize(bytes.NewReader(data), conf)
	if err != nil {
		return 0
	}
	n := 0
	for pageNr := 1; pageNr <= ctx.PageCount; pageNr++ {
		n += len(pdfcpulib.ImageObjNrs(ctx, pageNr))
	}
	return n
}

func pdfConfidence(pages, pagesWithText, cleanedLen int) float64 {
	if pages == 0 || cleanedLen == 0 {
		return 0.1
	}
	ratio := float64(pagesWithText) / float64(pages)
	// Scanned PDFs yield few text pages; cap so empty-ish extractions rank low.
	return 0.3 + 0.65*ratio
}
