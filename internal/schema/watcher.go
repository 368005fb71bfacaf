package schema

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/networktocode/schema-enforcer/internal/fs"
)

// WatchEvent describes a file change that warrants a revalidation run.
type WatchEvent struct {
	Path string
}

// Watcher monitors the schema tree and the data search directories for
// changes to structured files and triggers revalidation.
type Watcher struct {
	roots      []string
	extensions []string
	logger     *slog.Logger
	Ready      chan struct{}

	newWatcher func() (*fsnotify.Watcher, error)
}

// NewWatcher creates a Watcher over the given directory roots. Only files
// with one of the given extensions trigger events.
func NewWatcher(roots, extensions []string, logger *slog.Logger) *Watcher {
	return &Watcher{
		roots:      roots,
		extensions: extensions,
		logger:     logger.With("component", "watcher"),
		Ready:      make(chan struct{}),
		newWatcher: fsnotify.NewWatcher,
	}
}

// Watch starts monitoring and calls the callback whenever a relevant change
// settles. Bursts of events within the debounce window collapse into one
// callback. Watch blocks until the context is cancelled.
func (w *Watcher) Watch(ctx context.Context, callback func(WatchEvent)) error {
	watcher, err := w.newWatcher()
	if err != nil {
		return err
	}
	defer watcher.Close()

	for _, root := range w.roots {
		if err := w.addRecursive(watcher, root); err != nil {
			return err
		}
	}

	w.logger.Info("Watching for changes", "roots", w.roots)
	if w.Ready != nil {
		close(w.Ready)
	}

	var timer *time.Timer
	const debounceDuration = 100 * time.Millisecond

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case err := <-watcher.Errors:
			w.logger.Error("Watcher error", "error", err)
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if ev := w.handleEvent(watcher, event); ev != nil {
				if timer != nil {
					timer.Stop()
				}
				// Capture the event value; a fired timer's callback must not
				// race with reassignment on the next loop iteration.
				settled := *ev
				timer = time.AfterFunc(debounceDuration, func() {
					callback(settled)
				})
			}
		}
	}
}

// handleEvent processes a single fsnotify event. New directories are added to
// the watch set; relevant file changes become WatchEvents.
func (w *Watcher) handleEvent(watcher *fsnotify.Watcher, event fsnotify.Event) *WatchEvent {
	if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
		return nil
	}

	if event.Has(fsnotify.Create) {
		info, err := os.Stat(event.Name)
		if err == nil && info.IsDir() {
			if err := w.addRecursive(watcher, event.Name); err != nil {
				w.logger.Error("Failed to watch new directory", "path", event.Name, "error", err)
			}
			return nil
		}
	}

	if !fs.HasExtension(event.Name, w.extensions) {
		return nil
	}
	return &WatchEvent{Path: event.Name}
}

// addRecursive adds the given path and all its subdirectories to the watcher.
// Hidden directories below the root are skipped.
func (w *Watcher) addRecursive(watcher *fsnotify.Watcher, root string) error {
	return filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() {
			if strings.HasPrefix(filepath.Base(path), ".") && path != root {
				return filepath.SkipDir
			}
			return watcher.Add(path)
		}
		return nil
	})
}
