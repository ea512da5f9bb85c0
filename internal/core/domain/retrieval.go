package domain

// RetrievalResult is a chunk scored against a query embedding.
// Results are recomputed per query and never stored.
type RetrievalResult struct {
	// Chunk is the matched chunk.
	Chunk Chunk

	// Score is the cosine similarity in [-1, 1].
	Score float64
}

// RetrievedPassage is the wire shape of a retrieval result.
type RetrievedPassage struct {
	PageNum int     `json:"pageNum"`
	Text    string  `json:"text"`
	Score   float64 `json:"score"`
}

// Passage converts the result to its wire shape.
func (r RetrievalResult) Passage() RetrievedPassage {
	return RetrievedPassage{
		PageNum: r.Chunk.PageLabel,
		Text:    r.Chunk.Text,
		Score:   r.Score,
	}
}
