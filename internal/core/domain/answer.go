package domain

// NotFoundText is the answer given when no passage supports an answer.
const NotFoundText = "Not found in document."

// Citation is a short supporting quote with the page it came from.
type Citation struct {
	Page    int    `json:"page"`
	Snippet string `json:"snippet"`
}

// Answer is a cited answer composed from retrieved passages.
type Answer struct {
	Answer    string     `json:"answer"`
	PageHits  []int      `json:"page_hits"`
	Citations []Citation `json:"citations"`
	Reasoning string     `json:"reasoning"`
}

// IsNotFound reports whether the answer is the canonical not-found answer.
func (a Answer) IsNotFound() bool {
	return a.Answer == NotFoundText
}

// NotFoundAnswer returns the answer given when nothing relevant was retrieved.
func NotFoundAnswer() Answer {
	return Answer{
		Answer:    NotFoundText,
		PageHits:  []int{},
		Citations: []Citation{},
		Reasoning: "Searched top-ranked passages; nothing matched exactly.",
	}
}

// MalformedAnswer returns the answer given when the model reply cannot be parsed.
func MalformedAnswer() Answer {
	return Answer{
		Answer:    "I couldn't parse a valid JSON answer from the model.",
		PageHits:  []int{},
		Citations: []Citation{},
		Reasoning: "Model returned malformed JSON.",
	}
}

// AskResult is an answer together with the passages it was composed from.
type AskResult struct {
	Answer    Answer            `json:"answer"`
	Retrieved []RetrievalResult `json:"-"`
}

// Passages returns the retrieved passages in their wire shape.
func (r AskResult) Passages() []RetrievedPassage {
	out := make([]RetrievedPassage, len(r.Retrieved))
	for i, res := range r.Retrieved {
		out[i] = res.Passage()
	}
	return out
}
