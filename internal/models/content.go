// Package models defines core data structures for extracted content, chunks,
// document records, and retrieval results.
package models

// Language codes assigned by extraction and language detection.
const (
	LangEnglish = "en"
	LangArabic  = "ar"
	LangMixed   = "mixed"
	LangUnknown = "unknown"
)

// Table is an extracted table as an ordered grid of rows.
type Table struct {
	Name string     `json:"name,omitempty"`
	Rows [][]string `json:"rows"`
}

// ExtractedContent holds everything pulled out of one source file.
// RawText and CleanedText are always present (possibly empty): extraction
// never fails past its boundary, it degrades to an empty result with
// populated Errors instead.
type ExtractedContent struct {
	RawText     string                 `json:"raw_text"`
	CleanedText string                 `json:"cleaned_text"`
	// StructuredData carries extractor-supplied structure hints such as
	// "headings" ([]Heading) and "sections".
	StructuredData  map[string]interface{} `json:"structured_data,omitempty"`
	Language        string                 `json:"language"`
	PageCount       int                    `json:"page_count"`
	ExtractedTables []Table                `json:"extracted_tables,omitempty"`
	ImageCount      int                    `json:"image_count"`
	Confidence      float64                `json:"confidence"`
	Metadata        map[string]interface{} `json:"metadata,omitempty"`
	Errors          []string               `json:"errors,omitempty"`
	Warnings        []string               `json:"warnings,omitempty"`
}

// Heading is a structure hint produced by extractors that see explicit
// heading markup (e.g. DOCX paragraph styles).
type Heading struct {
	Level    int    `json:"level"`
	Text     string `json:"text"`
	StartPos int    `json:"start_pos"`
}

// Section is a node in a recovered document outline. Subsections form a
// strict tree owned by their parent; every child's level is greater than
// its parent's.
type Section struct {
	Level       int        `json:"level"`
	Title       string     `json:"title"`
	Content     string     `json:"content"`
	StartPos    int        `json:"start_pos"`
	EndPos      int        `json:"end_pos"`
	Subsections []*Section `json:"subsections,omitempty"`
}

// DocumentStructure is the result of structural extraction.
type DocumentStructure struct {
	Sections     []*Section `json:"sections"`
	HasHierarchy bool       `json:"has_hierarchy"`
	MaxDepth     int        `json:"max_depth"`
	Outline      []string   `json:"outline"`
}
