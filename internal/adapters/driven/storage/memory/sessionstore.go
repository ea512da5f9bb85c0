package memory

import (
	"cmp"
	"context"
	"fmt"
	"slices"
	"sync"

	"github.com/custodia-labs/lexbrief/internal/core/domain"
	"github.com/custodia-labs/lexbrief/internal/core/ports/driven"
)

// Ensure SessionRegistry implements the interface.
var _ driven.SessionStore = (*SessionRegistry)(nil)

// SessionRegistry is an in-memory implementation of driven.SessionStore.
//
// The registry lock guards only the session map. Each session carries its own
// lock, so work on one session never blocks readers of another.
type SessionRegistry struct {
	mu       sync.RWMutex
	sessions map[string]*session
}

type session struct {
	mu        sync.RWMutex
	documents map[string]storedDocument
	chunks    []domain.Chunk
	dims      int
	seq       int
	// cleared marks a session removed from the registry. Writers holding a
	// stale pointer re-fetch instead of writing into a detached session.
	cleared bool
}

type storedDocument struct {
	doc domain.Document
	seq int
}

// NewSessionRegistry creates an empty registry.
func NewSessionRegistry() *SessionRegistry {
	return &SessionRegistry{
		sessions: make(map[string]*session),
	}
}

// SaveDocument registers a document under the session, replacing any document with the same ID.
func (r *SessionRegistry) SaveDocument(ctx context.Context, sessionID string, doc domain.Document) error {
	if err := checkSessionID(sessionID); err != nil {
		return err
	}
	if err := doc.Validate(); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	r.write(sessionID, func(s *session) {
		s.seq++
		s.documents[doc.ID] = storedDocument{doc: doc, seq: s.seq}
	})
	return nil
}

// AppendChunks appends the batch atomically after validating it against the session.
func (r *SessionRegistry) AppendChunks(ctx context.Context, sessionID string, chunks []domain.Chunk) error {
	if err := checkSessionID(sessionID); err != nil {
		return err
	}
	if len(chunks) == 0 {
		return nil
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	// Validate before touching the registry so a bad batch never creates a session.
	dims, err := domain.ValidateChunkBatch(chunks, 0)
	if err != nil {
		return fmt.Errorf("append chunks: %w", err)
	}

	batch := make([]domain.Chunk, len(chunks))
	for i, c := range chunks {
		c.Embedding = slices.Clone(c.Embedding)
		batch[i] = c
	}

	r.write(sessionID, func(s *session) {
		if s.dims != 0 && s.dims != dims {
			err = fmt.Errorf("%w: batch has %d dimensions, session holds %d",
				domain.ErrDimensionMismatch, dims, s.dims)
			return
		}
		s.dims = dims
		s.chunks = append(s.chunks, batch...)
	})
	if err != nil {
		return fmt.Errorf("append chunks: %w", err)
	}
	return nil
}

// ListDocuments returns the session's documents, most recent first.
// Documents with equal timestamps are ordered by most recent write.
func (r *SessionRegistry) ListDocuments(_ context.Context, sessionID string) ([]domain.Document, error) {
	s := r.lookup(sessionID)
	if s == nil {
		return []domain.Document{}, nil
	}

	s.mu.RLock()
	stored := make([]storedDocument, 0, len(s.documents))
	for _, d := range s.documents {
		stored = append(stored, d)
	}
	s.mu.RUnlock()

	slices.SortFunc(stored, func(a, b storedDocument) int {
		if c := b.doc.CreatedAt.Compare(a.doc.CreatedAt); c != 0 {
			return c
		}
		return cmp.Compare(b.seq, a.seq)
	})

	docs := make([]domain.Document, len(stored))
	for i, d := range stored {
		docs[i] = d.doc
	}
	return docs, nil
}

// Chunks returns the session's chunks in insertion order.
// The slice is capped, so appends by the caller never reach the store.
func (r *SessionRegistry) Chunks(_ context.Context, sessionID string) ([]domain.Chunk, error) {
	s := r.lookup(sessionID)
	if s == nil {
		return nil, nil
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.chunks[:len(s.chunks):len(s.chunks)], nil
}

// RemoveDocument drops the document and any chunks carrying its ID. The chunk
// slice is rebuilt, so snapshots taken earlier keep their contents. A session
// left with nothing is discarded.
func (r *SessionRegistry) RemoveDocument(ctx context.Context, sessionID, documentID string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s := r.lookup(sessionID)
	if s == nil {
		return fmt.Errorf("remove document %s: %w", documentID, domain.ErrNotFound)
	}

	s.mu.Lock()
	if s.cleared {
		s.mu.Unlock()
		return fmt.Errorf("remove document %s: %w", documentID, domain.ErrNotFound)
	}

	_, found := s.documents[documentID]
	delete(s.documents, documentID)

	kept := make([]domain.Chunk, 0, len(s.chunks))
	for _, c := range s.chunks {
		if c.DocumentID != documentID {
			kept = append(kept, c)
		}
	}
	found = found || len(kept) < len(s.chunks)
	s.chunks = kept
	if len(s.chunks) == 0 {
		s.dims = 0
	}
	empty := len(s.documents) == 0 && len(s.chunks) == 0
	s.mu.Unlock()

	if !found {
		return fmt.Errorf("remove document %s: %w", documentID, domain.ErrNotFound)
	}
	if empty {
		r.discardIfEmpty(sessionID, s)
	}
	return nil
}

// discardIfEmpty removes s from the registry unless it was replaced or
// written to after it emptied.
func (r *SessionRegistry) discardIfEmpty(sessionID string, s *session) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.sessions[sessionID] != s {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cleared || len(s.documents) != 0 || len(s.chunks) != 0 {
		return
	}
	s.cleared = true
	delete(r.sessions, sessionID)
}

// Clear discards the session.
func (r *SessionRegistry) Clear(_ context.Context, sessionID string) error {
	r.mu.Lock()
	s, ok := r.sessions[sessionID]
	delete(r.sessions, sessionID)
	r.mu.Unlock()

	if ok {
		s.mu.Lock()
		s.cleared = true
		s.mu.Unlock()
	}
	return nil
}

// Sessions returns the IDs of all live sessions, sorted.
func (r *SessionRegistry) Sessions(_ context.Context) ([]string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	ids := make([]string, 0, len(r.sessions))
	for id := range r.sessions {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids, nil
}

// Close discards every session.
func (r *SessionRegistry) Close() error {
	r.mu.Lock()
	sessions := r.sessions
	r.sessions = make(map[string]*session)
	r.mu.Unlock()

	for _, s := range sessions {
		s.mu.Lock()
		s.cleared = true
		s.mu.Unlock()
	}
	return nil
}

// write runs fn under the session's write lock, creating the session if needed.
func (r *SessionRegistry) write(sessionID string, fn func(s *session)) {
	for {
		s := r.getOrCreate(sessionID)
		s.mu.Lock()
		if s.cleared {
			s.mu.Unlock()
			continue
		}
		fn(s)
		s.mu.Unlock()
		return
	}
}

func (r *SessionRegistry) lookup(sessionID string) *session {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.sessions[sessionID]
}

func (r *SessionRegistry) getOrCreate(sessionID string) *session {
	if s := r.lookup(sessionID); s != nil {
		return s
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if s, ok := r.sessions[sessionID]; ok {
		return s
	}
	s := &session{documents: make(map[string]storedDocument)}
	r.sessions[sessionID] = s
	return s
}

func checkSessionID(sessionID string) error {
	if sessionID == "" {
		return fmt.Errorf("%w: session id is required", domain.ErrInvalidInput)
	}
	return nil
}
