package cli

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"

	"github.com/custodia-labs/lexbrief/internal/connectors/filesystem"
	"github.com/custodia-labs/lexbrief/internal/core/services"
	"github.com/custodia-labs/lexbrief/internal/extractors"
	"github.com/custodia-labs/lexbrief/internal/logger"
)

// startFolderSync keeps session in step with dir in the background.
// The returned stop function cancels the watch and waits for it to finish.
func startFolderSync(
	ctx context.Context, dir, session string, report func(services.SyncEvent),
) (func(), error) {
	if ingestService == nil || sessionService == nil {
		return nil, errors.New("services not configured")
	}

	root, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("resolving %s: %w", dir, err)
	}
	watcher := filesystem.New(root,
		filesystem.WithExtensions(extractors.NewDefaultRegistry().Extensions()...))
	if err := watcher.Validate(); err != nil {
		return nil, err
	}

	var opts []services.FolderSyncOption
	if report != nil {
		opts = append(opts, services.WithSyncReporter(report))
	}
	folderSync := services.NewFolderSyncService(watcher, ingestService, sessionService, session, opts...)

	ctx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})
	go func() {
		defer close(done)
		if err := folderSync.Run(ctx); err != nil {
			logger.Error("Watching %s stopped: %v", root, err)
		}
	}()

	return func() {
		cancel()
		_ = watcher.Close()
		<-done
	}, nil
}

// describeSyncEvent renders a folder change for the terminal.
func describeSyncEvent(e services.SyncEvent) string {
	name := filepath.Base(e.Change.Path)
	switch {
	case e.Err != nil:
		return fmt.Sprintf("Could not sync %s: %v", name, e.Err)
	case e.Document != nil:
		return fmt.Sprintf("Synced %s (%d pages) as %s", name, e.Document.PageCount, e.Document.ID)
	default:
		return fmt.Sprintf("Removed %s", name)
	}
}
