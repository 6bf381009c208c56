package cardimport

import (
	"context"
	"fmt"
	"log"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

// DefaultDebounce collapses the burst of events editors produce on save.
const DefaultDebounce = 250 * time.Millisecond

// Watch imports source once, then again every time it changes, until ctx is
// done. The parent directory is watched so editors that save by rename are
// still seen. Failed re-imports are logged and the watch continues; onResult
// may be nil.
func Watch(ctx context.Context, source string, sink Sink, debounce time.Duration, onResult func(*Result, error)) error {
	report := func(r *Result, err error) {
		if err != nil {
			log.Printf("[CardImport] Import failed: %v", err)
		}
		if onResult != nil {
			onResult(r, err)
		}
	}
	report(Run(ctx, source, sink))

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create file watcher: %w", err)
	}
	defer func() {
		_ = watcher.Close()
	}()

	if err := watcher.Add(filepath.Dir(source)); err != nil {
		return fmt.Errorf("failed to watch %s: %w", source, err)
	}
	log.Printf("[CardImport] Watching %s for changes", source)

	target := filepath.Clean(source)
	var pending <-chan time.Time

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != target {
				continue
			}
			if event.Has(fsnotify.Write) || event.Has(fsnotify.Create) || event.Has(fsnotify.Rename) {
				pending = time.After(debounce)
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			log.Printf("[CardImport] File watcher error: %v", err)
		case <-pending:
			pending = nil
			report(Run(ctx, source, sink))
		}
	}
}
