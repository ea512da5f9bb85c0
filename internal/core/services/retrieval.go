package services

import (
	"context"
	"errors"
	"fmt"
	"math"
	"slices"
	"strings"

	"github.com/custodia-labs/lexbrief/internal/core/domain"
	"github.com/custodia-labs/lexbrief/internal/core/ports/driven"
	"github.com/custodia-labs/lexbrief/internal/core/ports/driving"
	"github.com/custodia-labs/lexbrief/internal/logger"
)

// Ensure RetrievalService implements the interface.
var _ driving.RetrievalService = (*RetrievalService)(nil)

// cosineEpsilon keeps the similarity defined when either vector is all zeros.
const cosineEpsilon = 1e-10

// cancelCheckInterval is how many chunks are scored between context checks.
const cancelCheckInterval = 1024

// CosineSimilarity returns dot(a, b) / (|a|*|b| + 1e-10).
// It returns ErrDimensionMismatch if the vectors differ in length.
func CosineSimilarity(a, b []float32) (float64, error) {
	if len(a) != len(b) {
		return 0, fmt.Errorf("%w: %d vs %d", domain.ErrDimensionMismatch, len(a), len(b))
	}

	var dot, na, nb float64
	for i := range a {
		x, y := float64(a[i]), float64(b[i])
		dot += x * y
		na += x * x
		nb += y * y
	}

	score := dot / (math.Sqrt(na)*math.Sqrt(nb) + cosineEpsilon)
	return max(-1, min(1, score)), nil
}

// RetrievalService ranks session chunks by cosine similarity to a query.
type RetrievalService struct {
	store    driven.SessionStore
	embedder driven.EmbeddingService
}

// NewRetrievalService creates a new retrieval service.
// The embedder is only needed by Retrieve and may be nil for vector-only use.
func NewRetrievalService(store driven.SessionStore, embedder driven.EmbeddingService) *RetrievalService {
	return &RetrievalService{
		store:    store,
		embedder: embedder,
	}
}

// Retrieve embeds the question and returns the k most similar chunks.
// A session without chunks returns an empty result without calling the embedder.
func (s *RetrievalService) Retrieve(
	ctx context.Context, sessionID, question string, k int,
) ([]domain.RetrievalResult, error) {
	logger.Section("Retrieval")
	defer logger.Timed("retrieve")()

	question = strings.TrimSpace(question)
	if question == "" {
		return nil, fmt.Errorf("retrieve: %w: question is required", domain.ErrInvalidInput)
	}
	if k < 1 {
		return nil, fmt.Errorf("retrieve: %w: k must be at least 1, got %d", domain.ErrInvalidInput, k)
	}

	chunks, err := s.store.Chunks(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("retrieve: %w", err)
	}
	if len(chunks) == 0 {
		logger.Debug("Session %s holds no chunks", sessionID)
		return []domain.RetrievalResult{}, nil
	}

	if s.embedder == nil {
		return nil, fmt.Errorf("retrieve: %w: no embedder configured", domain.ErrEmbeddingUnavailable)
	}

	query, err := s.embedder.Embed(ctx, question)
	if err != nil {
		logger.Warn("Question embedding failed: %v", err)
		return nil, fmt.Errorf("retrieve: %w", embeddingError(err))
	}
	logger.Debug("Question embedded with %s (%d dims)", s.embedder.ModelName(), len(query))

	return s.rank(ctx, chunks, query, k)
}

// RetrieveByVector returns the k chunks most similar to query, best first.
// Ties keep insertion order.
func (s *RetrievalService) RetrieveByVector(
	ctx context.Context, sessionID string, query []float32, k int,
) ([]domain.RetrievalResult, error) {
	if k < 1 {
		return nil, fmt.Errorf("retrieve: %w: k must be at least 1, got %d", domain.ErrInvalidInput, k)
	}
	if len(query) == 0 {
		return nil, fmt.Errorf("retrieve: %w: empty query embedding", domain.ErrInvalidInput)
	}

	chunks, err := s.store.Chunks(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("retrieve: %w", err)
	}
	return s.rank(ctx, chunks, query, k)
}

// RetrieveAtLeastOne is RetrieveByVector, but returns ErrEmptyStore when no chunk exists.
func (s *RetrievalService) RetrieveAtLeastOne(
	ctx context.Context, sessionID string, query []float32, k int,
) ([]domain.RetrievalResult, error) {
	results, err := s.RetrieveByVector(ctx, sessionID, query, k)
	if err != nil {
		return nil, err
	}
	if len(results) == 0 {
		return nil, fmt.Errorf("retrieve: session %q: %w", sessionID, domain.ErrEmptyStore)
	}
	return results, nil
}

// rank scores every chunk and keeps the top k.
func (s *RetrievalService) rank(
	ctx context.Context, chunks []domain.Chunk, query []float32, k int,
) ([]domain.RetrievalResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	results := make([]domain.RetrievalResult, len(chunks))
	for i, c := range chunks {
		if i > 0 && i%cancelCheckInterval == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}
		score, err := CosineSimilarity(query, c.Embedding)
		if err != nil {
			return nil, fmt.Errorf("retrieve: chunk %s: %w", c.ID, err)
		}
		results[i] = domain.RetrievalResult{Chunk: c, Score: score}
	}

	slices.SortStableFunc(results, func(a, b domain.RetrievalResult) int {
		switch {
		case a.Score > b.Score:
			return -1
		case a.Score < b.Score:
			return 1
		default:
			return 0
		}
	})

	results = results[:min(k, len(results))]
	logger.Debug("Ranked %d chunks, returning %d", len(chunks), len(results))
	return results, nil
}

// embeddingError makes sure provider failures carry ErrEmbeddingUnavailable.
func embeddingError(err error) error {
	if errors.Is(err, domain.ErrEmbeddingUnavailable) || errors.Is(err, context.Canceled) ||
		errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	return fmt.Errorf("%w: %w", domain.ErrEmbeddingUnavailable, err)
}
