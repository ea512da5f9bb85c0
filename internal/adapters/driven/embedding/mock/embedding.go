// Package mock provides a deterministic offline embedding service.
//
// Vectors are hashed bags of words: every token is hashed with HighwayHash into
// one of D buckets. Identical text always yields the identical vector, and
// texts sharing words score higher under cosine similarity, so retrieval still
// behaves sensibly without a provider.
package mock

import (
	"context"
	"fmt"
	"strings"
	"unicode"

	"github.com/minio/highwayhash"

	"github.com/custodia-labs/lexbrief/internal/core/domain"
	"github.com/custodia-labs/lexbrief/internal/core/ports/driven"
)

// Ensure EmbeddingService implements the interface.
var _ driven.EmbeddingService = (*EmbeddingService)(nil)

// ModelName is reported for the mock model.
const ModelName = "mock-hash"

// hashKey is the fixed 32-byte HighwayHash key.
var hashKey = []byte("lexbrief-mock-embedding-key-0001")

// EmbeddingService produces hashed bag-of-words vectors.
type EmbeddingService struct {
	dimensions int
}

// NewEmbeddingService creates a mock embedder with the given width.
// A width below 1 selects domain.DefaultMockDimensions.
func NewEmbeddingService(dimensions int) *EmbeddingService {
	if dimensions < 1 {
		dimensions = domain.DefaultMockDimensions
	}
	return &EmbeddingService{dimensions: dimensions}
}

// Embed returns the vector for text. Text without tokens maps to the zero vector.
func (s *EmbeddingService) Embed(ctx context.Context, text string) ([]float32, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return s.vector(text), nil
}

// EmbedBatch embeds each text in order.
func (s *EmbeddingService) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i, text := range texts {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		out[i] = s.vector(text)
	}
	return out, nil
}

// Dimensions returns the embedding vector size.
func (s *EmbeddingService) Dimensions() int {
	return s.dimensions
}

// ModelName returns the name of the embedding model being used.
func (s *EmbeddingService) ModelName() string {
	return fmt.Sprintf("%s-%d", ModelName, s.dimensions)
}

// Ping always succeeds.
func (s *EmbeddingService) Ping(_ context.Context) error {
	return nil
}

// Close releases resources.
func (s *EmbeddingService) Close() error {
	return nil
}

func (s *EmbeddingService) vector(text string) []float32 {
	v := make([]float32, s.dimensions)
	for _, token := range Tokenize(text) {
		h := highwayhash.Sum64([]byte(token), hashKey)
		v[h%uint64(s.dimensions)]++
	}
	return v
}

// Tokenize lowercases text and splits it into runs of letters and digits.
func Tokenize(text string) []string {
	return strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}
