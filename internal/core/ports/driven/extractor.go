package driven

import (
	"context"

	"github.com/custodia-labs/lexbrief/internal/core/domain"
)

// PageExtractor turns an uploaded file into per-page text.
// Pages are returned in physical order with 1-based PhysicalIndex values.
type PageExtractor interface {
	// Name returns the extractor name for logging.
	Name() string

	// MIMETypes returns the content types this extractor handles.
	MIMETypes() []string

	// Extensions returns the file extensions this extractor handles, with leading dot.
	Extensions() []string

	// Extract returns the text of every page that carries text.
	Extract(ctx context.Context, data []byte) ([]domain.RawPage, error)
}

// ExtractorRegistry selects the extractor for an upload.
type ExtractorRegistry interface {
	// Register adds an extractor.
	Register(e PageExtractor)

	// Get returns the extractor for a file name or content type.
	// Returns domain.ErrUnsupportedFormat if none matches.
	Get(filename, mimeType string) (PageExtractor, error)
}
