package driving

import (
	"context"

	"github.com/custodia-labs/lexbrief/internal/core/domain"
)

// SessionService exposes the documents of a session and its lifecycle.
type SessionService interface {
	// ListDocuments returns the session's documents, most recent first.
	ListDocuments(ctx context.Context, sessionID string) ([]domain.Document, error)

	// RemoveDocument deletes one document and its chunks from the session.
	RemoveDocument(ctx context.Context, sessionID, documentID string) error

	// Clear discards all documents and chunks of the session.
	Clear(ctx context.Context, sessionID string) error

	// Sessions returns the IDs of sessions holding data.
	Sessions(ctx context.Context) ([]string, error)
}
