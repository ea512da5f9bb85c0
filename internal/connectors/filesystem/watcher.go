// Package filesystem watches a local folder so its documents can be kept in a session.
package filesystem

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"

	"github.com/fsnotify/fsnotify"

	"github.com/custodia-labs/lexbrief/internal/core/domain"
	"github.com/custodia-labs/lexbrief/internal/core/ports/driven"
	"github.com/custodia-labs/lexbrief/internal/logger"
)

// Ensure Watcher implements the interface.
var _ driven.FolderWatcher = (*Watcher)(nil)

// ErrClosed is returned by Watch after Close.
var ErrClosed = errors.New("filesystem: watcher is closed")

// changeBuffer is the capacity of the change channel.
const changeBuffer = 64

// Watcher reports supported files under a root folder, including subfolders.
type Watcher struct {
	rootPath   string
	extensions map[string]bool

	mu       sync.Mutex
	closed   bool
	watchers []*fsnotify.Watcher
}

// Option configures a Watcher.
type Option func(*Watcher)

// WithExtensions limits reported files to the given extensions, with leading dot.
// Without it every visible file is reported.
func WithExtensions(exts ...string) Option {
	return func(w *Watcher) {
		for _, ext := range exts {
			w.extensions[strings.ToLower(ext)] = true
		}
	}
}

// New creates a watcher for rootPath.
func New(rootPath string, opts ...Option) *Watcher {
	w := &Watcher{
		rootPath:   rootPath,
		extensions: make(map[string]bool),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Root returns the watched folder.
func (w *Watcher) Root() string {
	return w.rootPath
}

// Validate checks that the root exists and is a directory.
func (w *Watcher) Validate() error {
	info, err := os.Stat(w.rootPath)
	if err != nil {
		return fmt.Errorf("root path error: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("root path error: %s is not a directory", w.rootPath)
	}
	return nil
}

// Scan walks the folder and returns every supported file, sorted.
func (w *Watcher) Scan(ctx context.Context) ([]string, error) {
	if err := w.Validate(); err != nil {
		return nil, err
	}

	var paths []string
	err := filepath.WalkDir(w.rootPath, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			logger.Warn("Skipping %s: %v", path, err)
			if d != nil && d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		if path != w.rootPath && isHidden(d.Name()) {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if d.Type().IsRegular() && w.supported(path) {
			paths = append(paths, path)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	slices.Sort(paths)
	return paths, nil
}

// Watch starts watching the folder tree. The returned channel closes when
// ctx is cancelled or the watcher is closed.
func (w *Watcher) Watch(ctx context.Context) (<-chan domain.FileChange, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closed {
		return nil, ErrClosed
	}
	if err := w.Validate(); err != nil {
		return nil, err
	}

	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("creating watcher: %w", err)
	}
	if err := w.addTree(fw, w.rootPath); err != nil {
		fw.Close()
		return nil, err
	}
	w.watchers = append(w.watchers, fw)

	changes := make(chan domain.FileChange, changeBuffer)
	go w.run(ctx, fw, changes)
	return changes, nil
}

// run forwards fsnotify events as changes until ctx ends or the watcher closes.
func (w *Watcher) run(ctx context.Context, fw *fsnotify.Watcher, changes chan<- domain.FileChange) {
	defer close(changes)
	defer fw.Close()

	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-fw.Events:
			if !ok {
				return
			}
			w.trackNewDir(fw, event)
			change := w.handleFsEvent(event)
			if change == nil {
				continue
			}
			select {
			case changes <- *change:
			case <-ctx.Done():
				return
			}
		case err, ok := <-fw.Errors:
			if !ok {
				return
			}
			logger.Warn("Watch error under %s: %v", w.rootPath, err)
		}
	}
}

// trackNewDir adds watches for a directory created after Watch started.
func (w *Watcher) trackNewDir(fw *fsnotify.Watcher, event fsnotify.Event) {
	if !event.Has(fsnotify.Create) || w.hidden(event.Name) {
		return
	}
	info, err := os.Stat(event.Name)
	if err != nil || !info.IsDir() {
		return
	}
	if err := w.addTree(fw, event.Name); err != nil {
		logger.Warn("Cannot watch %s: %v", event.Name, err)
	}
}

// handleFsEvent maps an fsnotify event to a change. Directories, hidden
// files, unsupported files and chmod-only events yield nil.
func (w *Watcher) handleFsEvent(event fsnotify.Event) *domain.FileChange {
	if w.hidden(event.Name) || !w.supported(event.Name) {
		return nil
	}

	switch {
	case event.Has(fsnotify.Remove), event.Has(fsnotify.Rename):
		return &domain.FileChange{Type: domain.ChangeDeleted, Path: event.Name}
	case event.Has(fsnotify.Create), event.Has(fsnotify.Write):
		info, err := os.Stat(event.Name)
		if err != nil || !info.Mode().IsRegular() {
			return nil
		}
		changeType := domain.ChangeUpdated
		if event.Has(fsnotify.Create) {
			changeType = domain.ChangeCreated
		}
		return &domain.FileChange{Type: changeType, Path: event.Name}
	default:
		return nil
	}
}

// addTree watches dir and every visible subdirectory.
func (w *Watcher) addTree(fw *fsnotify.Watcher, dir string) error {
	return filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if path == dir {
				return fmt.Errorf("root path error: %w", err)
			}
			return nil
		}
		if !d.IsDir() {
			return nil
		}
		if path != w.rootPath && isHidden(d.Name()) {
			return filepath.SkipDir
		}
		if err := fw.Add(path); err != nil {
			return fmt.Errorf("watching %s: %w", path, err)
		}
		return nil
	})
}

// hidden reports whether path is hidden relative to the root.
func (w *Watcher) hidden(path string) bool {
	rel, err := filepath.Rel(w.rootPath, path)
	if err != nil {
		return isHidden(filepath.Base(path))
	}
	return isHidden(rel)
}

// supported reports whether path carries an accepted extension.
func (w *Watcher) supported(path string) bool {
	if len(w.extensions) == 0 {
		return true
	}
	return w.extensions[strings.ToLower(filepath.Ext(path))]
}

// Close stops every active watch.
func (w *Watcher) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closed {
		return nil
	}
	w.closed = true

	var errs []error
	for _, fw := range w.watchers {
		if err := fw.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	w.watchers = nil
	return errors.Join(errs...)
}

// isHidden reports whether any element of path starts with a dot.
// "." and ".." are not hidden.
func isHidden(path string) bool {
	for _, part := range strings.Split(filepath.ToSlash(path), "/") {
		if part != "" && part != "." && part != ".." && strings.HasPrefix(part, ".") {
			return true
		}
	}
	return false
}
