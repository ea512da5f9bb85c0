package domain

import (
	"fmt"
	"time"
)

// Document represents one ingested upload within a session.
type Document struct {
	// ID is the opaque unique identifier for the document.
	ID string `json:"docId"`

	// Name is the uploaded file name.
	Name string `json:"name"`

	// PageCount is the number of pages that carried text.
	PageCount int `json:"pages"`

	// CreatedAt is when the document was ingested.
	CreatedAt time.Time `json:"createdAt"`
}

// Validate checks the document is well formed before it enters a store.
func (d Document) Validate() error {
	switch {
	case d.ID == "":
		return fmt.Errorf("%w: document id is required", ErrInvalidInput)
	case d.Name == "":
		return fmt.Errorf("%w: document name is required", ErrInvalidInput)
	case d.PageCount < 0:
		return fmt.Errorf("%w: negative page count %d", ErrInvalidInput, d.PageCount)
	}
	return nil
}

// Chunk is a fixed-size window of a single page's text, the unit of retrieval.
type Chunk struct {
	// ID is unique per document, page label and offset.
	ID string `json:"id"`

	// DocumentID links to the parent Document.
	DocumentID string `json:"docId"`

	// PageLabel is the label of the page the window was cut from.
	PageLabel int `json:"pageNum"`

	// Offset is the window start within the normalised page text, in characters.
	Offset int `json:"offset"`

	// Text is the window content.
	Text string `json:"text"`

	// Embedding is the vector representation used for similarity search.
	Embedding []float32 `json:"-"`
}

// Validate checks the chunk can be stored and searched.
func (c Chunk) Validate() error {
	switch {
	case c.ID == "":
		return fmt.Errorf("%w: chunk id is required", ErrInvalidInput)
	case c.DocumentID == "":
		return fmt.Errorf("%w: chunk %s has no document id", ErrInvalidInput, c.ID)
	case c.PageLabel < 1:
		return fmt.Errorf("%w: chunk %s has page label %d", ErrInvalidInput, c.ID, c.PageLabel)
	case len(c.Embedding) == 0:
		return fmt.Errorf("%w: chunk %s has no embedding", ErrInvalidInput, c.ID)
	}
	return nil
}

// Dimensions returns the embedding width.
func (c Chunk) Dimensions() int {
	return len(c.Embedding)
}

// ValidateChunkBatch checks every chunk of a batch and that all embeddings share
// one width. want is the width already held by the destination, or 0 if none.
// It returns the batch width.
func ValidateChunkBatch(chunks []Chunk, want int) (int, error) {
	dims := want
	for _, c := range chunks {
		if err := c.Validate(); err != nil {
			return 0, err
		}
		if dims == 0 {
			dims = c.Dimensions()
			continue
		}
		if c.Dimensions() != dims {
			return 0, fmt.Errorf("%w: chunk %s has %d dimensions, expected %d",
				ErrDimensionMismatch, c.ID, c.Dimensions(), dims)
		}
	}
	return dims, nil
}
