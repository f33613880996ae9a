package models

import "time"

// Document is a stored document's metadata row.
type Document struct {
	ID         string                 `json:"id" db:"id"`
	Filename   string                 `json:"filename" db:"filename"`
	FileType   string                 `json:"file_type" db:"file_type"`
	FileSize   int64                  `json:"file_size" db:"file_size"`
	PageCount  int                    `json:"page_count" db:"page_count"`
	Language   string                 `json:"language" db:"language"`
	Status     string                 `json:"status" db:"status"`
	Metadata   map[string]interface{} `json:"metadata,omitempty" db:"metadata"`
	UploadedAt time.Time              `json:"uploaded_at" db:"uploaded_at"`
}

// ChunkRecord is a chunk's persisted metadata row.
type ChunkRecord struct {
	ID         string                 `json:"id" db:"id"`
	DocumentID string                 `json:"document_id" db:"document_id"`
	Index      int                    `json:"chunk_index" db:"chunk_index"`
	Content    string                 `json:"content" db:"content"`
	Type       string                 `json:"chunk_type" db:"chunk_type"`
	Tokens     int                    `json:"tokens" db:"tokens"`
	StartPos   int                    `json:"start_pos" db:"start_pos"`
	EndPos     int                    `json:"end_pos" db:"end_pos"`
	Metadata   map[string]interface{} `json:"metadata,omitempty" db:"metadata"`
	CreatedAt  time.Time              `json:"created_at" db:"created_at"`
}

// RetrievedChunk is a query-side result: constructed fresh per query, never
// persisted. Metadata carries a back-reference to the owning document ID.
type RetrievedChunk struct {
	ID       string                 `json:"id"`
	Content  string                 `json:"content"`
	Score    float64                `json:"score"`
	Metadata map[string]interface{} `json:"metadata,omitempty"`
}

// DocumentID returns the owning document's ID from metadata, or "".
func (r *RetrievedChunk) DocumentID() string {
	if r.Metadata == nil {
		return ""
	}
	if id, ok := r.Metadata["document_id"].(string); ok {
		return id
	}
	return ""
}

// Answer is the result of a grounded question over the corpus.
type Answer struct {
	Question string            `json:"question"`
	Text     string            `json:"answer"`
	Sources  []*RetrievedChunk `json:"sources"`
}

// Interpretation is an LLM's free-text reading of a document.
type Interpretation struct {
	Summary    string   `json:"summary"`
	MainTopics []string `json:"main_topics"`
	Purpose    string   `json:"document_purpose"`
	Insights   []string `json:"key_insights"`
	Tags       []string `json:"suggested_tags"`
}
