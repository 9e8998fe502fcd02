package daemon

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

const defaultDebounce = 250 * time.Millisecond

// WatchFiles reports changes to any of files on the returned channel, at most
// once per debounce window. Parent directories are watched so that editors
// replacing a file by rename are still seen. The watcher stops when ctx is
// cancelled.
func WatchFiles(ctx context.Context, files []string, debounce time.Duration, logger *slog.Logger) (<-chan struct{}, error) {
	if debounce <= 0 {
		debounce = defaultDebounce
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create watcher: %w", err)
	}

	wanted := make(map[string]struct{}, len(files))
	dirs := make(map[string]struct{})
	for _, f := range files {
		abs, err := filepath.Abs(f)
		if err != nil {
			continue
		}
		wanted[filepath.Clean(abs)] = struct{}{}
		dirs[filepath.Dir(abs)] = struct{}{}
	}
	for dir := range dirs {
		if err := watcher.Add(dir); err != nil {
			_ = watcher.Close()
			return nil, fmt.Errorf("watch %s: %w", dir, err)
		}
	}

	out := make(chan struct{}, 1)
	go func() {
		defer watcher.Close()
		debounceEvents(ctx, watcher, wanted, debounce, out, logger)
	}()
	return out, nil
}

func debounceEvents(ctx context.Context, w *fsnotify.Watcher, wanted map[string]struct{}, debounce time.Duration, out chan<- struct{}, logger *slog.Logger) {
	timer := time.NewTimer(debounce)
	if !timer.Stop() {
		<-timer.C
	}
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-w.Events:
			if !ok {
				return
			}
			if _, ok := wanted[filepath.Clean(ev.Name)]; !ok {
				continue
			}
			if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) && !ev.Has(fsnotify.Rename) && !ev.Has(fsnotify.Remove) {
				continue
			}
			timer.Reset(debounce)
		case <-timer.C:
			select {
			case out <- struct{}{}:
			default:
			}
		case err, ok := <-w.Errors:
			if !ok {
				return
			}
			logger.Warn("config watcher error", "error", err)
		}
	}
}
