package retrieval

import (
	"sort"

	"github.com/hyperjump/bunsho/internal/models"
)

// Scorer re-scores retrieved chunks against the query. Implementations may
// return the input scores unchanged.
type Scorer interface {
	Score(query string, chunks []*models.RetrievedChunk) error
}

// Reranker orders candidates by score and cuts the list to the requested
// size. With no Scorer configured the embedding similarity stands; a Scorer
// can overwrite chunk scores before the sort.
type Reranker struct {
	scorer Scorer
}

// NewReranker creates a reranker with an optional scorer; nil means sort by
// the scores the chunks already carry.
func NewReranker(scorer Scorer) *Reranker {
	return &Reranker{scorer: scorer}
}

// Rerank sorts chunks by descending score and truncates to k. The sort is
// stable: equal scores keep their retrieval order.
func (r *Reranker) Rerank(query string, chunks []*models.RetrievedChunk, k int) ([]*models.RetrievedChunk, error) {
	if r.scorer != nil {
		if err := r.scorer.Score(query, chunks); err != nil {
			return nil, err
		}
	}

	ranked := make([]*models.RetrievedChunk, len(chunks))
	copy(ranked, chunks)
	sort.SliceStable(ranked, func(i, j int) bool { return ranked[i].Score > ranked[j].Score })

	if k >= 0 && k < len(ranked) {
		ranked = ranked[:k]
	}
	return ranked, nil
}
