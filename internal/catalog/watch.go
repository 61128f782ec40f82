package catalog

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// CatalogFile is the snapshot file the store depends on
const CatalogFile = "company-catalog.json"

// Watch invalidates the store whenever the catalog snapshot under dataRoot
// changes, so a fresh export is picked up without waiting for the TTL.
// The returned stop function closes the watcher and waits for it to exit.
func (s *Store) Watch(ctx context.Context, dataRoot string) (stop func(), err error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create watcher: %w", err)
	}
	if err := w.Add(dataRoot); err != nil {
		w.Close()
		return nil, fmt.Errorf("watch %s: %w", dataRoot, err)
	}

	ctx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})

	go func() {
		defer close(done)
		for {
			select {
			case <-ctx.Done():
				return
			case ev, ok := <-w.Events:
				if !ok {
					return
				}
				if filepath.Base(ev.Name) != CatalogFile {
					continue
				}
				if ev.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Rename|fsnotify.Remove) == 0 {
					continue
				}
				s.logger.Info("catalog snapshot changed, invalidating cache",
					zap.String("path", ev.Name), zap.String("op", ev.Op.String()))
				s.Invalidate()
			case err, ok := <-w.Errors:
				if !ok {
					return
				}
				s.logger.Warn("catalog watcher error", zap.Error(err))
			}
		}
	}()

	return func() {
		cancel()
		<-done
		w.Close()
	}, nil
}
