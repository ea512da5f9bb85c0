package driven

import (
	"context"

	"github.com/custodia-labs/lexbrief/internal/core/domain"
)

// Segmenter labels the raw pages of one upload and cuts them into chunks.
// Segmentation never fails on malformed text: the worst case is fallback
// page labels or no chunks at all. Returned chunks carry no embeddings.
type Segmenter interface {
	// Segment returns the labelled pages and their chunks for documentID.
	Segment(ctx context.Context, documentID string, raw []domain.RawPage) ([]domain.Page, []domain.Chunk, error)
}
