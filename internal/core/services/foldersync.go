package services

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/minio/highwayhash"

	"github.com/custodia-labs/lexbrief/internal/core/domain"
	"github.com/custodia-labs/lexbrief/internal/core/ports/driven"
	"github.com/custodia-labs/lexbrief/internal/core/ports/driving"
	"github.com/custodia-labs/lexbrief/internal/logger"
)

// contentKey is the fixed 32-byte HighwayHash key for file fingerprints.
var contentKey = []byte("lexbrief-folder-sync-hashkey-001")

// SyncEvent reports the outcome of applying one folder change.
type SyncEvent struct {
	Change   domain.FileChange
	Document *domain.Document // Set when the file was ingested.
	Err      error
}

// SyncStats summarises a full folder sync.
type SyncStats struct {
	Ingested  int
	Unchanged int
	Removed   int
	Failed    int
}

// FolderSyncOption configures a FolderSyncService.
type FolderSyncOption func(*FolderSyncService)

// WithSyncReporter registers a callback invoked after every applied change.
func WithSyncReporter(fn func(SyncEvent)) FolderSyncOption {
	return func(s *FolderSyncService) {
		s.report = fn
	}
}

// trackedFile is the session document built from a file.
type trackedFile struct {
	documentID string
	sum        uint64
}

// FolderSyncService keeps one session in step with a watched folder.
// New and changed files are ingested. A changed file replaces its previous
// document once the new one is searchable, and a removed file takes its
// document with it.
type FolderSyncService struct {
	watcher   driven.FolderWatcher
	ingest    driving.IngestService
	sessions  driving.SessionService
	sessionID string
	report    func(SyncEvent)
	readFile  func(string) ([]byte, error)

	mu      sync.Mutex
	tracked map[string]trackedFile
}

// NewFolderSyncService creates a folder sync for sessionID.
func NewFolderSyncService(
	watcher driven.FolderWatcher,
	ingest driving.IngestService,
	sessions driving.SessionService,
	sessionID string,
	opts ...FolderSyncOption,
) *FolderSyncService {
	s := &FolderSyncService{
		watcher:   watcher,
		ingest:    ingest,
		sessions:  sessions,
		sessionID: sessionID,
		readFile:  os.ReadFile,
		tracked:   make(map[string]trackedFile),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Sync ingests every file in the folder that is new or changed since it was
// last seen, and removes documents whose files are gone.
func (s *FolderSyncService) Sync(ctx context.Context) (SyncStats, error) {
	logger.Section("Folder sync")
	defer logger.Timed("folder sync")()

	var stats SyncStats
	paths, err := s.watcher.Scan(ctx)
	if err != nil {
		return stats, fmt.Errorf("folder sync: %w", err)
	}

	present := make(map[string]bool, len(paths))
	for _, path := range paths {
		present[path] = true
		changed, err := s.apply(ctx, domain.FileChange{Type: domain.ChangeCreated, Path: path})
		switch {
		case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
			return stats, err
		case err != nil:
			stats.Failed++
		case changed:
			stats.Ingested++
		default:
			stats.Unchanged++
		}
	}

	for _, path := range s.trackedPaths() {
		if present[path] {
			continue
		}
		if _, err := s.apply(ctx, domain.FileChange{Type: domain.ChangeDeleted, Path: path}); err != nil {
			stats.Failed++
			continue
		}
		stats.Removed++
	}

	logger.Info("Folder %s: %d ingested, %d unchanged, %d removed, %d failed",
		s.watcher.Root(), stats.Ingested, stats.Unchanged, stats.Removed, stats.Failed)
	return stats, nil
}

// Run syncs the folder, then applies changes until ctx is cancelled or the
// watcher stops. Failures on single files are reported and do not stop the run.
func (s *FolderSyncService) Run(ctx context.Context) error {
	changes, err := s.watcher.Watch(ctx)
	if err != nil {
		return fmt.Errorf("folder sync: %w", err)
	}
	if _, err := s.Sync(ctx); err != nil {
		return err
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case change, ok := <-changes:
			if !ok {
				return nil
			}
			if _, err := s.apply(ctx, change); err != nil && ctx.Err() != nil {
				return nil
			}
		}
	}
}

// Tracked returns the document ID built from each tracked file.
func (s *FolderSyncService) Tracked() map[string]string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[string]string, len(s.tracked))
	for path, f := range s.tracked {
		out[path] = f.documentID
	}
	return out
}

// apply brings the session in line with one change. It reports whether the
// session was modified.
func (s *FolderSyncService) apply(ctx context.Context, change domain.FileChange) (bool, error) {
	doc, changed, err := s.applyChange(ctx, change)
	if err != nil {
		logger.Warn("Folder sync %s %s: %v", change.Type, change.Path, err)
	}
	if s.report != nil && (changed || err != nil) {
		s.report(SyncEvent{Change: change, Document: doc, Err: err})
	}
	return changed, err
}

func (s *FolderSyncService) applyChange(ctx context.Context, change domain.FileChange) (*domain.Document, bool, error) {
	if change.Type == domain.ChangeDeleted {
		changed, err := s.forget(ctx, change.Path)
		return nil, changed, err
	}

	data, err := s.readFile(change.Path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			changed, err := s.forget(ctx, change.Path)
			return nil, changed, err
		}
		return nil, false, fmt.Errorf("reading %s: %w", change.Path, err)
	}
	// Editors often truncate before writing; the next write carries the content.
	if len(data) == 0 {
		return nil, false, nil
	}

	sum := highwayhash.Sum64(data, contentKey)
	s.mu.Lock()
	prev, seen := s.tracked[change.Path]
	s.mu.Unlock()
	if seen && prev.sum == sum {
		return nil, false, nil
	}

	doc, err := s.ingest.IngestFile(ctx, s.sessionID, filepath.Base(change.Path), "", data)
	if err != nil {
		return nil, false, err
	}

	s.mu.Lock()
	s.tracked[change.Path] = trackedFile{documentID: doc.ID, sum: sum}
	s.mu.Unlock()

	if seen {
		if err := s.removeDocument(ctx, prev.documentID); err != nil {
			return doc, true, err
		}
		logger.Debug("Replaced %s with %s for %s", prev.documentID, doc.ID, change.Path)
	}
	return doc, true, nil
}

// forget removes the document built from path, if any.
func (s *FolderSyncService) forget(ctx context.Context, path string) (bool, error) {
	s.mu.Lock()
	prev, seen := s.tracked[path]
	delete(s.tracked, path)
	s.mu.Unlock()

	if !seen {
		return false, nil
	}
	return true, s.removeDocument(ctx, prev.documentID)
}

// removeDocument deletes a document, treating one already gone as removed.
func (s *FolderSyncService) removeDocument(ctx context.Context, documentID string) error {
	err := s.sessions.RemoveDocument(ctx, s.sessionID, documentID)
	if err != nil && !errors.Is(err, domain.ErrNotFound) {
		return err
	}
	return nil
}

func (s *FolderSyncService) trackedPaths() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	paths := make([]string, 0, len(s.tracked))
	for path := range s.tracked {
		paths = append(paths, path)
	}
	return paths
}
