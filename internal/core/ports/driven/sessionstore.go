package driven

import (
	"context"

	"github.com/custodia-labs/lexbrief/internal/core/domain"
)

// SessionStore holds the documents and embedded chunks of caller-identified sessions.
//
// Sessions are created lazily on first write and never share data. Reads of a
// session that was never written, or was cleared, return empty results rather
// than an error. Contents live in process memory only.
//
// Implementations must make each AppendChunks atomic: a concurrent reader sees
// either none or all of a batch. Writers to the same session are serialised.
type SessionStore interface {
	// SaveDocument registers a document under the session. An existing
	// document with the same ID is replaced.
	SaveDocument(ctx context.Context, sessionID string, doc domain.Document) error

	// AppendChunks appends embedded chunks to the session in order.
	// Returns domain.ErrInvalidInput if any chunk is malformed or lacks an embedding,
	// and domain.ErrDimensionMismatch if widths differ within the batch or from
	// chunks already in the session. A rejected batch leaves the session unchanged.
	AppendChunks(ctx context.Context, sessionID string, chunks []domain.Chunk) error

	// ListDocuments returns the session's documents, most recent first.
	ListDocuments(ctx context.Context, sessionID string) ([]domain.Document, error)

	// Chunks returns a consistent snapshot of the session's chunks in insertion order.
	// Callers must not modify the returned chunks.
	Chunks(ctx context.Context, sessionID string) ([]domain.Chunk, error)

	// RemoveDocument deletes a document and any chunks carrying its ID.
	// Returns domain.ErrNotFound if the session holds neither.
	RemoveDocument(ctx context.Context, sessionID, documentID string) error

	// Clear discards every document and chunk of the session.
	Clear(ctx context.Context, sessionID string) error

	// Sessions returns the IDs of sessions currently holding data.
	Sessions(ctx context.Context) ([]string, error)

	// Close releases resources.
	Close() error
}
