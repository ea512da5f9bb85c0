package services

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/lexbrief/internal/core/domain"
)

// fakeWatcher serves a fixed scan and a test-driven change channel.
type fakeWatcher struct {
	paths    []string
	scanErr  error
	watchErr error
	changes  chan domain.FileChange
}

func (f *fakeWatcher) Root() string { return "/cases" }

func (f *fakeWatcher) Scan(_ context.Context) ([]string, error) {
	return f.paths, f.scanErr
}

func (f *fakeWatcher) Watch(_ context.Context) (<-chan domain.FileChange, error) {
	if f.watchErr != nil {
		return nil, f.watchErr
	}
	return f.changes, nil
}

func (f *fakeWatcher) Close() error { return nil }

// fakeIngest numbers the documents it creates.
type fakeIngest struct {
	mu    sync.Mutex
	names []string
	err   error
}

func (f *fakeIngest) Ingest(_ context.Context, _, _ string, _ []domain.RawPage) (*domain.Document, error) {
	return nil, errors.New("not used")
}

func (f *fakeIngest) IngestFile(_ context.Context, _, name, _ string, _ []byte) (*domain.Document, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	f.names = append(f.names, name)
	return &domain.Document{ID: fmt.Sprintf("doc-%d", len(f.names)), Name: name, PageCount: 1}, nil
}

// fakeSessions records removals.
type fakeSessions struct {
	mu      sync.Mutex
	removed []string
	err     error
}

func (f *fakeSessions) ListDocuments(_ context.Context, _ string) ([]domain.Document, error) {
	return nil, nil
}

func (f *fakeSessions) RemoveDocument(_ context.Context, _, documentID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.removed = append(f.removed, documentID)
	return f.err
}

func (f *fakeSessions) Clear(_ context.Context, _ string) error { return nil }

func (f *fakeSessions) Sessions(_ context.Context) ([]string, error) { return nil, nil }

// fakeFiles serves file contents from a map.
type fakeFiles map[string]string

func (f fakeFiles) read(path string) ([]byte, error) {
	content, ok := f[path]
	if !ok {
		return nil, fmt.Errorf("open %s: %w", path, os.ErrNotExist)
	}
	return []byte(content), nil
}

func newTestFolderSync(
	t *testing.T, watcher *fakeWatcher, files fakeFiles, opts ...FolderSyncOption,
) (*FolderSyncService, *fakeIngest, *fakeSessions) {
	t.Helper()
	ingest := &fakeIngest{}
	sessions := &fakeSessions{}
	s := NewFolderSyncService(watcher, ingest, sessions, "folder", opts...)
	s.readFile = files.read
	return s, ingest, sessions
}

func TestFolderSyncService_Sync(t *testing.T) {
	files := fakeFiles{
		"/cases/a.txt": "alpha",
		"/cases/b.txt": "beta",
		"/cases/c.txt": "",
	}
	watcher := &fakeWatcher{paths: []string{"/cases/a.txt", "/cases/b.txt", "/cases/c.txt"}}
	s, ingest, _ := newTestFolderSync(t, watcher, files)

	stats, err := s.Sync(context.Background())

	require.NoError(t, err)
	assert.Equal(t, SyncStats{Ingested: 2, Unchanged: 1}, stats)
	assert.Equal(t, []string{"a.txt", "b.txt"}, ingest.names)
	assert.Equal(t, map[string]string{"/cases/a.txt": "doc-1", "/cases/b.txt": "doc-2"}, s.Tracked())
}

func TestFolderSyncService_Sync_Resync(t *testing.T) {
	files := fakeFiles{"/cases/a.txt": "alpha", "/cases/b.txt": "beta"}
	watcher := &fakeWatcher{paths: []string{"/cases/a.txt", "/cases/b.txt"}}
	s, ingest, sessions := newTestFolderSync(t, watcher, files)
	ctx := context.Background()

	_, err := s.Sync(ctx)
	require.NoError(t, err)

	files["/cases/a.txt"] = "alpha v2"
	delete(files, "/cases/b.txt")
	watcher.paths = []string{"/cases/a.txt"}

	stats, err := s.Sync(ctx)

	require.NoError(t, err)
	assert.Equal(t, SyncStats{Ingested: 1, Removed: 1}, stats)
	assert.Equal(t, []string{"a.txt", "b.txt", "a.txt"}, ingest.names)
	assert.ElementsMatch(t, []string{"doc-1", "doc-2"}, sessions.removed)
	assert.Equal(t, map[string]string{"/cases/a.txt": "doc-3"}, s.Tracked())
}

func TestFolderSyncService_Sync_Errors(t *testing.T) {
	t.Run("scan failure", func(t *testing.T) {
		s, _, _ := newTestFolderSync(t, &fakeWatcher{scanErr: errors.New("root path error")}, fakeFiles{})

		_, err := s.Sync(context.Background())

		assert.ErrorContains(t, err, "root path error")
	})

	t.Run("ingest failures are counted", func(t *testing.T) {
		var events []SyncEvent
		watcher := &fakeWatcher{paths: []string{"/cases/scan.pdf"}}
		s, ingest, _ := newTestFolderSync(t, watcher, fakeFiles{"/cases/scan.pdf": "%PDF"},
			WithSyncReporter(func(e SyncEvent) { events = append(events, e) }))
		ingest.err = fmt.Errorf("ingest: %w", domain.ErrNoExtractableText)

		stats, err := s.Sync(context.Background())

		require.NoError(t, err)
		assert.Equal(t, SyncStats{Failed: 1}, stats)
		assert.Empty(t, s.Tracked())
		require.Len(t, events, 1)
		assert.ErrorIs(t, events[0].Err, domain.ErrNoExtractableText)
	})
}

func TestFolderSyncService_Apply(t *testing.T) {
	files := fakeFiles{"/cases/a.txt": "alpha"}
	var events []SyncEvent
	s, ingest, sessions := newTestFolderSync(t, &fakeWatcher{}, files,
		WithSyncReporter(func(e SyncEvent) { events = append(events, e) }))
	ctx := context.Background()

	changed, err := s.apply(ctx, domain.FileChange{Type: domain.ChangeCreated, Path: "/cases/a.txt"})
	require.NoError(t, err)
	assert.True(t, changed)

	// A write that leaves the content unchanged is ignored.
	changed, err = s.apply(ctx, domain.FileChange{Type: domain.ChangeUpdated, Path: "/cases/a.txt"})
	require.NoError(t, err)
	assert.False(t, changed)
	assert.Len(t, ingest.names, 1)

	files["/cases/a.txt"] = "alpha v2"
	changed, err = s.apply(ctx, domain.FileChange{Type: domain.ChangeUpdated, Path: "/cases/a.txt"})
	require.NoError(t, err)
	assert.True(t, changed)
	assert.Equal(t, []string{"doc-1"}, sessions.removed)

	changed, err = s.apply(ctx, domain.FileChange{Type: domain.ChangeDeleted, Path: "/cases/a.txt"})
	require.NoError(t, err)
	assert.True(t, changed)
	assert.Equal(t, []string{"doc-1", "doc-2"}, sessions.removed)
	assert.Empty(t, s.Tracked())

	// Deleting an untracked file touches nothing.
	changed, err = s.apply(ctx, domain.FileChange{Type: domain.ChangeDeleted, Path: "/cases/other.txt"})
	require.NoError(t, err)
	assert.False(t, changed)

	require.Len(t, events, 3)
	assert.Equal(t, "doc-1", events[0].Document.ID)
	assert.Equal(t, "doc-2", events[1].Document.ID)
	assert.Nil(t, events[2].Document)
	assert.Equal(t, domain.ChangeDeleted, events[2].Change.Type)
}

func TestFolderSyncService_Apply_VanishedFile(t *testing.T) {
	files := fakeFiles{"/cases/a.txt": "alpha"}
	s, _, sessions := newTestFolderSync(t, &fakeWatcher{}, files)
	ctx := context.Background()

	_, err := s.apply(ctx, domain.FileChange{Type: domain.ChangeCreated, Path: "/cases/a.txt"})
	require.NoError(t, err)

	delete(files, "/cases/a.txt")
	changed, err := s.apply(ctx, domain.FileChange{Type: domain.ChangeUpdated, Path: "/cases/a.txt"})

	require.NoError(t, err)
	assert.True(t, changed)
	assert.Equal(t, []string{"doc-1"}, sessions.removed)
}

func TestFolderSyncService_Apply_DocumentAlreadyGone(t *testing.T) {
	files := fakeFiles{"/cases/a.txt": "alpha"}
	s, _, sessions := newTestFolderSync(t, &fakeWatcher{}, files)
	ctx := context.Background()

	_, err := s.apply(ctx, domain.FileChange{Type: domain.ChangeCreated, Path: "/cases/a.txt"})
	require.NoError(t, err)
	sessions.err = fmt.Errorf("remove document: %w", domain.ErrNotFound)

	_, err = s.apply(ctx, domain.FileChange{Type: domain.ChangeDeleted, Path: "/cases/a.txt"})

	assert.NoError(t, err)
}

func TestFolderSyncService_Run(t *testing.T) {
	files := fakeFiles{"/cases/a.txt": "alpha"}
	watcher := &fakeWatcher{
		paths:   []string{"/cases/a.txt"},
		changes: make(chan domain.FileChange, 4),
	}
	events := make(chan SyncEvent, 4)
	s, _, _ := newTestFolderSync(t, watcher, files,
		WithSyncReporter(func(e SyncEvent) { events <- e }))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Run(ctx) }()

	first := <-events
	assert.Equal(t, "/cases/a.txt", first.Change.Path)

	files["/cases/b.txt"] = "beta"
	watcher.changes <- domain.FileChange{Type: domain.ChangeCreated, Path: "/cases/b.txt"}

	select {
	case e := <-events:
		require.NoError(t, e.Err)
		assert.Equal(t, "b.txt", e.Document.Name)
	case <-time.After(time.Second):
		t.Fatal("timeout waiting for the watched change")
	}

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("Run did not stop after cancellation")
	}
}

func TestFolderSyncService_Run_WatcherClosed(t *testing.T) {
	watcher := &fakeWatcher{changes: make(chan domain.FileChange)}
	close(watcher.changes)
	s, _, _ := newTestFolderSync(t, watcher, fakeFiles{})

	assert.NoError(t, s.Run(context.Background()))
}

func TestFolderSyncService_Run_WatchError(t *testing.T) {
	s, _, _ := newTestFolderSync(t, &fakeWatcher{watchErr: errors.New("root path error")}, fakeFiles{})

	assert.ErrorContains(t, s.Run(context.Background()), "root path error")
}
