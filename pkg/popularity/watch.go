package popularity

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/bastiangx/acroserve/internal/logger"
	"github.com/bastiangx/acroserve/pkg/metrics"
)

// DebounceInterval is the quiet period after the last write before a reload.
// Editors often trigger several writes per save.
const DebounceInterval = 100 * time.Millisecond

// Watch loads path into t and keeps reloading it whenever the file is
// written, created or renamed into place, until ctx is done. The parent
// directory is watched so atomic replace-by-rename is seen. Reload errors
// are logged and keep the previous table.
func (t *Table) Watch(ctx context.Context, path string) error {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return err
	}
	log := logger.New("popularity")

	if err := t.LoadFile(absPath); err != nil {
		log.Warnf("Initial load of %s failed: %v", absPath, err)
	}

	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	if err := fw.Add(filepath.Dir(absPath)); err != nil {
		fw.Close()
		return fmt.Errorf("watch %s: %w", filepath.Dir(absPath), err)
	}

	go func() {
		defer fw.Close()
		timer := time.NewTimer(DebounceInterval)
		if !timer.Stop() {
			<-timer.C
		}

		for {
			select {
			case event, ok := <-fw.Events:
				if !ok {
					return
				}
				if filepath.Clean(event.Name) != absPath {
					continue
				}
				if event.Has(fsnotify.Write) || event.Has(fsnotify.Create) || event.Has(fsnotify.Rename) {
					timer.Reset(DebounceInterval)
				}

			case <-timer.C:
				err := t.LoadFile(absPath)
				metrics.PopularityReloads.WithLabelValues(metrics.Result(err)).Inc()
				if err != nil {
					log.Warnf("Reload of %s failed, keeping previous weights: %v", absPath, err)
					continue
				}
				log.Debugf("Reloaded %d popularity weights from %s", t.Len(), absPath)

			case err, ok := <-fw.Errors:
				if !ok {
					return
				}
				log.Warnf("Watcher error: %v", err)

			case <-ctx.Done():
				timer.Stop()
				return
			}
		}
	}()
	return nil
}
