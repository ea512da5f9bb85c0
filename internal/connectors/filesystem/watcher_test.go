package filesystem

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/lexbrief/internal/core/domain"
)

const eventTimeout = 2 * time.Second

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

// waitFor returns the first change for path, skipping others.
func waitFor(t *testing.T, changes <-chan domain.FileChange, path string) domain.FileChange {
	t.Helper()
	deadline := time.After(eventTimeout)
	for {
		select {
		case change, ok := <-changes:
			require.True(t, ok, "channel closed before a change for %s", path)
			if change.Path == path {
				return change
			}
		case <-deadline:
			t.Fatalf("timeout waiting for a change to %s", path)
		}
	}
}

func TestNew(t *testing.T) {
	w := New("/tmp/docs", WithExtensions(".PDF", ".txt"))

	assert.Equal(t, "/tmp/docs", w.Root())
	assert.True(t, w.supported("a.pdf"))
	assert.True(t, w.supported("b.TXT"))
	assert.False(t, w.supported("c.xlsx"))

	assert.True(t, New("/tmp").supported("anything.bin"))
}

func TestWatcher_Validate(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "a.txt")
	writeFile(t, file, "x")

	assert.NoError(t, New(dir).Validate())
	assert.ErrorContains(t, New(filepath.Join(dir, "missing")).Validate(), "root path error")
	assert.ErrorContains(t, New(file).Validate(), "not a directory")
}

func TestWatcher_Scan(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "lease.pdf"), "%PDF")
	writeFile(t, filepath.Join(dir, "notes.txt"), "notes")
	writeFile(t, filepath.Join(dir, "sheet.xlsx"), "skip")
	writeFile(t, filepath.Join(dir, ".draft.txt"), "hidden")
	writeFile(t, filepath.Join(dir, ".git", "config.txt"), "hidden dir")
	writeFile(t, filepath.Join(dir, "exhibits", "a.txt"), "nested")

	paths, err := New(dir, WithExtensions(".pdf", ".txt")).Scan(context.Background())

	require.NoError(t, err)
	assert.Equal(t, []string{
		filepath.Join(dir, "exhibits", "a.txt"),
		filepath.Join(dir, "lease.pdf"),
		filepath.Join(dir, "notes.txt"),
	}, paths)
}

func TestWatcher_Scan_Errors(t *testing.T) {
	_, err := New("/non/existent/path").Scan(context.Background())
	assert.ErrorContains(t, err, "root path error")

	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "a.txt"), "x")
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = New(dir).Scan(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestWatcher_Watch(t *testing.T) {
	t.Run("reports created files", func(t *testing.T) {
		dir := t.TempDir()
		w := New(dir, WithExtensions(".txt"))
		t.Cleanup(func() { _ = w.Close() })

		changes, err := w.Watch(context.Background())
		require.NoError(t, err)

		path := filepath.Join(dir, "new-file.txt")
		writeFile(t, path, "content")

		change := waitFor(t, changes, path)
		assert.Equal(t, domain.ChangeCreated, change.Type)
	})

	t.Run("reports modified files", func(t *testing.T) {
		dir := t.TempDir()
		path := filepath.Join(dir, "test.txt")
		writeFile(t, path, "initial")

		w := New(dir)
		t.Cleanup(func() { _ = w.Close() })
		changes, err := w.Watch(context.Background())
		require.NoError(t, err)

		writeFile(t, path, "modified")

		change := waitFor(t, changes, path)
		assert.Equal(t, domain.ChangeUpdated, change.Type)
	})

	t.Run("reports deleted files", func(t *testing.T) {
		dir := t.TempDir()
		path := filepath.Join(dir, "to-delete.txt")
		writeFile(t, path, "delete me")

		w := New(dir)
		t.Cleanup(func() { _ = w.Close() })
		changes, err := w.Watch(context.Background())
		require.NoError(t, err)

		require.NoError(t, os.Remove(path))

		change := waitFor(t, changes, path)
		assert.Equal(t, domain.ChangeDeleted, change.Type)
	})

	t.Run("follows new subdirectories", func(t *testing.T) {
		dir := t.TempDir()
		w := New(dir)
		t.Cleanup(func() { _ = w.Close() })
		changes, err := w.Watch(context.Background())
		require.NoError(t, err)

		sub := filepath.Join(dir, "exhibits")
		require.NoError(t, os.Mkdir(sub, 0o755))
		// Give the watcher time to add the new directory.
		time.Sleep(100 * time.Millisecond)

		path := filepath.Join(sub, "b.txt")
		writeFile(t, path, "nested")

		change := waitFor(t, changes, path)
		assert.NotEqual(t, domain.ChangeDeleted, change.Type)
	})

	t.Run("returns error for non-existent directory", func(t *testing.T) {
		changes, err := New("/non/existent/path").Watch(context.Background())

		assert.Nil(t, changes)
		assert.ErrorContains(t, err, "root path error")
	})

	t.Run("closes channel when context is cancelled", func(t *testing.T) {
		w := New(t.TempDir())
		t.Cleanup(func() { _ = w.Close() })
		ctx, cancel := context.WithCancel(context.Background())

		changes, err := w.Watch(ctx)
		require.NoError(t, err)
		cancel()

		select {
		case _, ok := <-changes:
			if ok {
				for range changes {
				}
			}
		case <-time.After(eventTimeout):
			t.Fatal("channel did not close after context cancellation")
		}
	})

	t.Run("closes channel when watcher is closed", func(t *testing.T) {
		w := New(t.TempDir())
		changes, err := w.Watch(context.Background())
		require.NoError(t, err)

		require.NoError(t, w.Close())

		select {
		case _, ok := <-changes:
			assert.False(t, ok)
		case <-time.After(eventTimeout):
			t.Fatal("channel did not close after Close")
		}
	})

	t.Run("returns error when closed", func(t *testing.T) {
		w := New(t.TempDir())
		require.NoError(t, w.Close())

		changes, err := w.Watch(context.Background())

		assert.Nil(t, changes)
		assert.ErrorIs(t, err, ErrClosed)
	})
}

func TestWatcher_Close(t *testing.T) {
	w := New("/tmp/test")

	assert.NoError(t, w.Close())
	assert.NoError(t, w.Close())
	assert.Equal(t, "/tmp/test", w.Root())
}

func TestHandleFsEvent(t *testing.T) {
	tests := []struct {
		name       string
		file       string
		create     bool
		dir        bool
		op         fsnotify.Op
		wantChange bool
		wantType   domain.ChangeType
	}{
		{name: "create", file: "a.txt", create: true, op: fsnotify.Create, wantChange: true, wantType: domain.ChangeCreated},
		{name: "write", file: "a.txt", create: true, op: fsnotify.Write, wantChange: true, wantType: domain.ChangeUpdated},
		{name: "write and chmod", file: "a.txt", create: true, op: fsnotify.Write | fsnotify.Chmod, wantChange: true, wantType: domain.ChangeUpdated},
		{name: "remove", file: "gone.txt", op: fsnotify.Remove, wantChange: true, wantType: domain.ChangeDeleted},
		{name: "rename", file: "moved.txt", op: fsnotify.Rename, wantChange: true, wantType: domain.ChangeDeleted},
		{name: "chmod only", file: "a.txt", create: true, op: fsnotify.Chmod},
		{name: "directory", file: "folder.txt", dir: true, op: fsnotify.Create},
		{name: "hidden", file: ".hidden.txt", create: true, op: fsnotify.Create},
		{name: "hidden remove", file: ".hidden.txt", op: fsnotify.Remove},
		{name: "unsupported", file: "sheet.xlsx", create: true, op: fsnotify.Create},
		{name: "create of vanished file", file: "flash.txt", op: fsnotify.Create},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			path := filepath.Join(dir, tt.file)
			switch {
			case tt.dir:
				require.NoError(t, os.Mkdir(path, 0o755))
			case tt.create:
				writeFile(t, path, "content")
			}

			w := New(dir, WithExtensions(".txt"))
			change := w.handleFsEvent(fsnotify.Event{Name: path, Op: tt.op})

			if !tt.wantChange {
				assert.Nil(t, change)
				return
			}
			require.NotNil(t, change)
			assert.Equal(t, tt.wantType, change.Type)
			assert.Equal(t, path, change.Path)
		})
	}
}

func TestHandleFsEvent_HiddenRoot(t *testing.T) {
	dir := filepath.Join(t.TempDir(), ".cases")
	path := filepath.Join(dir, "a.txt")
	writeFile(t, path, "content")

	change := New(dir).handleFsEvent(fsnotify.Event{Name: path, Op: fsnotify.Create})

	require.NotNil(t, change)
	assert.Equal(t, domain.ChangeCreated, change.Type)
}

func TestIsHidden(t *testing.T) {
	tests := []struct {
		path string
		want bool
	}{
		{".hidden", true},
		{"path/to/.hidden", true},
		{"/path/.hidden/file.txt", true},
		{".config/.cache/data", true},
		{"file.txt", false},
		{"path/to/file.txt", false},
		{"file.hidden", false},
		{".", false},
		{"..", false},
		{"path/../file", false},
		{"", false},
		{"/", false},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			assert.Equal(t, tt.want, isHidden(tt.path))
		})
	}
}
