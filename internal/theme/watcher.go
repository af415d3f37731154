package theme

import (
	"fmt"
	"log/slog"
	"path/filepath"
	"sync"

	"github.com/fsnotify/fsnotify"
)

// Watcher reloads a file theme when any stylesheet in its directory changes,
// so edits to imported partials are picked up too.
type Watcher struct {
	mu       sync.Mutex
	logger   *slog.Logger
	theme    *Theme
	watcher  *fsnotify.Watcher
	onChange func(css string)
	done     chan struct{}
	running  bool
}

// NewWatcher creates a watcher for a file theme.
func NewWatcher(theme *Theme, logger *slog.Logger) *Watcher {
	if logger == nil {
		logger = slog.Default()
	}
	return &Watcher{
		logger: logger,
		theme:  theme,
	}
}

// SetChangeCallback sets the callback invoked with the new CSS. It runs on
// the watcher goroutine.
func (w *Watcher) SetChangeCallback(callback func(css string)) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.onChange = callback
}

// Start begins watching. Embedded themes are never watched.
func (w *Watcher) Start() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.running {
		return nil
	}
	if w.theme == nil || w.theme.Embedded() {
		w.logger.Debug("not watching embedded theme")
		return nil
	}

	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create theme watcher: %w", err)
	}
	if err := fw.Add(filepath.Dir(w.theme.Path)); err != nil {
		_ = fw.Close()
		return fmt.Errorf("failed to watch theme directory: %w", err)
	}

	w.watcher = fw
	w.done = make(chan struct{})
	w.running = true
	go w.watch(fw, w.done)

	w.logger.Debug("theme watcher started", "path", w.theme.Path)
	return nil
}

// Stop stops watching.
func (w *Watcher) Stop() {
	w.mu.Lock()
	defer w.mu.Unlock()

	if !w.running {
		return
	}
	w.running = false
	close(w.done)
	_ = w.watcher.Close()
	w.logger.Debug("theme watcher stopped")
}

// IsRunning returns whether the watcher is currently running.
func (w *Watcher) IsRunning() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.running
}

func (w *Watcher) watch(fw *fsnotify.Watcher, done <-chan struct{}) {
	for {
		select {
		case event, ok := <-fw.Events:
			if !ok {
				return
			}
			if filepath.Ext(event.Name) != ".css" {
				continue
			}
			if event.Has(fsnotify.Write) || event.Has(fsnotify.Create) || event.Has(fsnotify.Rename) {
				w.reload()
			}

		case err, ok := <-fw.Errors:
			if !ok {
				return
			}
			w.logger.Warn("theme watcher error", "error", err)

		case <-done:
			return
		}
	}
}

func (w *Watcher) reload() {
	w.mu.Lock()
	theme := w.theme
	callback := w.onChange
	w.mu.Unlock()

	changed, err := theme.Reload()
	if err != nil {
		w.logger.Debug("theme reload skipped", "path", theme.Path, "error", err)
		return
	}
	if !changed {
		return
	}

	w.logger.Info("theme file changed, reloading", "path", theme.Path)
	if callback != nil {
		callback(theme.CSS)
	}
}
