package retrieval

import (
	"fmt"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/analysis/analyzer/standard"

	"github.com/hyperjump/bunsho/internal/models"
)

// KeywordScorer blends embedding similarity with BM25 keyword relevance.
// Each Score call builds a throwaway in-memory Bleve index over the
// candidate set; candidate lists are small (2x top-k) so this stays cheap.
type KeywordScorer struct {
	// Weight of the keyword score in the blend; the embedding score gets the
	// remainder. Zero value means an even split.
	KeywordWeight float64
}

// NewKeywordScorer creates a scorer with the given keyword weight in [0, 1].
func NewKeywordScorer(keywordWeight float64) *KeywordScorer {
	return &KeywordScorer{KeywordWeight: keywordWeight}
}

// Score overwrites each chunk's score with a weighted blend of its embedding
// similarity and its normalized BM25 score against the query. Chunks with no
// keyword match keep a keyword score of zero.
func (s *KeywordScorer) Score(query string, chunks []*models.RetrievedChunk) error {
	if len(chunks) == 0 {
		return nil
	}

	weight := s.KeywordWeight
	if weight <= 0 || weight > 1 {
		weight = 0.5
	}

	im := bleve.NewIndexMapping()
	docMapping := bleve.NewDocumentMapping()
	textFieldMapping := bleve.NewTextFieldMapping()
	// Standard analyzer: lowercase + tokenize without stemming, so query
	// terms match the indexed words exactly.
	textFieldMapping.Analyzer = standard.Name
	docMapping.AddFieldMappingsAt("content", textFieldMapping)
	im.DefaultMapping = docMapping

	index, err := bleve.NewMemOnly(im)
	if err != nil {
		return fmt.Errorf("failed to create keyword index: %w", err)
	}
	defer index.Close()

	for _, chunk := range chunks {
		if err := index.Index(chunk.ID, map[string]interface{}{"content": chunk.Content}); err != nil {
			return fmt.Errorf("failed to index chunk %s: %w", chunk.ID, err)
		}
	}

	search := bleve.NewSearchRequest(bleve.NewMatchQuery(query))
	search.Size = len(chunks)
	results, err := index.Search(search)
	if err != nil {
		return fmt.Errorf("keyword search failed: %w", err)
	}

	keywordScores := make(map[string]float64, len(results.Hits))
	maxScore := 0.0
	for _, hit := range results.Hits {
		keywordScores[hit.ID] = hit.Score
		if hit.Score > maxScore {
			maxScore = hit.Score
		}
	}

	for _, chunk := range chunks {
		keyword := 0.0
		if maxScore > 0 {
			keyword = keywordScores[chunk.ID] / maxScore
		}
		chunk.Score = (1-weight)*chunk.Score + weight*keyword
	}
	return nil
}
