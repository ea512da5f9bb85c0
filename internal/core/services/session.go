package services

import (
	"context"
	"fmt"

	"github.com/custodia-labs/lexbrief/internal/core/domain"
	"github.com/custodia-labs/lexbrief/internal/core/ports/driven"
	"github.com/custodia-labs/lexbrief/internal/core/ports/driving"
	"github.com/custodia-labs/lexbrief/internal/logger"
)

// Ensure SessionService implements the interface.
var _ driving.SessionService = (*SessionService)(nil)

// SessionService exposes session contents and lifecycle.
type SessionService struct {
	store driven.SessionStore
}

// NewSessionService creates a new session service.
func NewSessionService(store driven.SessionStore) *SessionService {
	return &SessionService{store: store}
}

// ListDocuments returns the session's documents, most recent first.
func (s *SessionService) ListDocuments(ctx context.Context, sessionID string) ([]domain.Document, error) {
	docs, err := s.store.ListDocuments(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("list documents: %w", err)
	}
	logger.Debug("Session %s holds %d documents", sessionID, len(docs))
	return docs, nil
}

// RemoveDocument deletes one document and its chunks from the session.
func (s *SessionService) RemoveDocument(ctx context.Context, sessionID, documentID string) error {
	if err := s.store.RemoveDocument(ctx, sessionID, documentID); err != nil {
		return fmt.Errorf("remove document: %w", err)
	}
	logger.Info("Removed document %s from session %s", documentID, sessionID)
	return nil
}

// Clear discards all documents and chunks of the session.
func (s *SessionService) Clear(ctx context.Context, sessionID string) error {
	if err := s.store.Clear(ctx, sessionID); err != nil {
		return fmt.Errorf("clear session: %w", err)
	}
	logger.Info("Cleared session %s", sessionID)
	return nil
}

// Sessions returns the IDs of sessions holding data.
func (s *SessionService) Sessions(ctx context.Context) ([]string, error) {
	ids, err := s.store.Sessions(ctx)
	if err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}
	return ids, nil
}
