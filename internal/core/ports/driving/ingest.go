package driving

import (
	"context"

	"github.com/custodia-labs/lexbrief/internal/core/domain"
)

// IngestService turns uploads into embedded chunks within a session.
type IngestService interface {
	// Ingest labels, chunks and embeds the raw pages of one upload and stores
	// the resulting document and chunks under the session.
	Ingest(ctx context.Context, sessionID, name string, raw []domain.RawPage) (*domain.Document, error)

	// IngestFile extracts pages from file content and ingests them.
	// The extractor is chosen from the file name, falling back to the MIME type.
	IngestFile(ctx context.Context, sessionID, name, mimeType string, data []byte) (*domain.Document, error)
}
