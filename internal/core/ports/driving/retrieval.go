package driving

import (
	"context"

	"github.com/custodia-labs/lexbrief/internal/core/domain"
)

// RetrievalService ranks a session's chunks against a query.
type RetrievalService interface {
	// Retrieve embeds the question and returns the k most similar chunks.
	Retrieve(ctx context.Context, sessionID, question string, k int) ([]domain.RetrievalResult, error)

	// RetrieveByVector returns the k chunks most similar to the query embedding.
	// An empty session yields an empty result, not an error.
	RetrieveByVector(ctx context.Context, sessionID string, query []float32, k int) ([]domain.RetrievalResult, error)

	// RetrieveAtLeastOne is RetrieveByVector, but fails with domain.ErrEmptyStore
	// when there is nothing to return.
	RetrieveAtLeastOne(ctx context.Context, sessionID string, query []float32, k int) ([]domain.RetrievalResult, error)
}
