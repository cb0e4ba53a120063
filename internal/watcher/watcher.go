package watcher

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/mcncl/jsonlens/internal/logging"
)

// Watch calls onChange after path is written, created or replaced, at most
// once per debounce window. It blocks until ctx is cancelled.
//
// The parent directory is watched rather than the file itself so that
// editors which save by renaming a temp file over the original still
// produce events.
func Watch(ctx context.Context, path string, debounce time.Duration, onChange func()) error {
	logger := logging.FromContext(ctx)

	abs, err := filepath.Abs(path)
	if err != nil {
		return fmt.Errorf("failed to resolve %s: %w", path, err)
	}

	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to start file watcher: %w", err)
	}
	defer func() { _ = fw.Close() }()

	if err := fw.Add(filepath.Dir(abs)); err != nil {
		return fmt.Errorf("failed to watch %s: %w", filepath.Dir(abs), err)
	}

	d := NewDebouncer(debounce)
	defer d.Cancel()

	logger.Debug("watching file", "path", abs, "debounce", d.Window())

	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-fw.Events:
			if !ok {
				return nil
			}
			if !relevant(ev, abs) {
				continue
			}
			logger.Debug("file event", "op", ev.Op.String())
			d.Trigger(onChange)
		case err, ok := <-fw.Errors:
			if !ok {
				return nil
			}
			logger.Warn("file watcher error", "err", err)
		}
	}
}

func relevant(ev fsnotify.Event, target string) bool {
	if filepath.Clean(ev.Name) != target {
		return false
	}
	return ev.Has(fsnotify.Write) || ev.Has(fsnotify.Create) || ev.Has(fsnotify.Rename)
}
