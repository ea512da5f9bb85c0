package driven

import (
	"context"

	"github.com/custodia-labs/lexbrief/internal/core/domain"
)

// FolderWatcher reports the documents of a local folder and changes to them.
// Hidden files and files with unsupported extensions are never reported.
type FolderWatcher interface {
	// Root returns the watched folder.
	Root() string

	// Scan returns the paths of every file currently in the folder, sorted.
	Scan(ctx context.Context) ([]string, error)

	// Watch streams changes until ctx is cancelled or the watcher is closed,
	// then closes the channel.
	Watch(ctx context.Context) (<-chan domain.FileChange, error)

	// Close stops every watch. Calling Close more than once is safe.
	Close() error
}
