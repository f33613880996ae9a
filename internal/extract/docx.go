package extract

import (
	"archive/zip"
	"bytes"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/hyperjump/bunsho/internal/models"
	"github.com/hyperjump/bunsho/pkg/utils"
)

// docxDocumentXMLPath is the path to the main document body inside a .docx zip.
const docxDocumentXMLPath = "word/document.xml"

// wpTag matches a whole <w:p>...</w:p> paragraph including attributes on the open tag.
var wpTag = regexp.MustCompile(`(?s)<w:p[ >].*?</w:p>`)

// wtTag matches <w:t>text</w:t> with any attributes (e.g. xml:space="preserve").
var wtTag = regexp.MustCompile(`<w:t[^>]*>([^<]*)</w:t>`)

// pStyleTag captures the paragraph style name, e.g. <w:pStyle w:val="Heading1"/>.
var pStyleTag = regexp.MustCompile(`<w:pStyle[^>]+w:val="([^"]+)"`)

// headingStyle matches Heading1..Heading6 (also "heading 1" variants some
// producers emit).
var headingStyle = regexp.MustCompile(`(?i)^heading\s?([1-6])$`)

// extractDOCX extracts paragraph text from word/document.xml and records
// styled headings as structure hints. DOCX paragraph markup varies too much
// across producers for a full XML parse to pay off; matching w:t runs keeps
// all visible text regardless of run attributes.
func extractDOCX(path string, data []byte) *models.ExtractedContent {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return degraded(fmt.Errorf("extract DOCX: not a zip: %w", err))
	}

	var docXML []byte
	for _, f := range zr.File {
		if f.Name != docxDocumentXMLPath {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			return degraded(fmt.Errorf("extract DOCX: open %s: %w", f.Name, err))
		}
		var buf bytes.Buffer
		if _, err := buf.ReadFrom(rc); err != nil {
			_ = rc.Close()
			return degraded(fmt.Errorf("extract DOCX: read %s: %w", f.Name, err))
		}
		_ = rc.Close()
		docXML = buf.Bytes()
		break
	}
	if docXML == nil {
		return degraded(fmt.Errorf("extract DOCX: %s not found", docxDocumentXMLPath))
	}

	var b strings.Builder
	var headings []models.Heading
	for _, para := range wpTag.FindAllString(string(docXML), -1) {
		runs := wtTag.FindAllStringSubmatch(para, -1)
		if len(runs) == 0 {
			continue
		}
		var pb strings.Builder
		for _, r := range runs {
			pb.WriteString(r[1])
		}
		// Clean per paragraph so heading offsets index the final cleaned text.
		text := utils.CleanText(pb.String())
		if text == "" {
			continue
		}
		if level := headingLevel(para); level > 0 {
			headings = append(headings, models.Heading{
				Level:    level,
				Text:     text,
				StartPos: b.Len(),
			})
		}
		b.WriteString(text)
		b.WriteString("\n\n")
	}

	content := newContent(b.String())
	content.PageCount = 1 // DOCX has no fixed pagination before layout
	content.ImageCount = countDocxImages(zr)
	if len(headings) > 0 {
		content.StructuredData = map[string]interface{}{"headings": headings}
	}
	content.Confidence = 0.85
	if len(content.CleanedText) == 0 {
		content.Confidence = 0.1
		content.Warnings = append(content.Warnings, "document body contains no text")
	}
	content.Metadata["heading_count"] = len(headings)
	return content
}

func headingLevel(para string) int {
	m := pStyleTag.FindStringSubmatch(para)
	if m == nil {
		return 0
	}
	h := headingStyle.FindStringSubmatch(m[1])
	if h == nil {
		return 0
	}
	level, err := strconv.Atoi(h[1])
	if err != nil {
		return 0
	}
	return level
}

// countDocxImages counts media entries in the archive (word/media/*).
func countDocxImages(zr *zip.Reader) int {
	n := 0
	for _, f := range zr.File {
		if strings.HasPrefix(f.Name, "word/media/") && !f.FileInfo().IsDir() {
			n++
		}
	}
	return n
}
