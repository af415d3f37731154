package daemon

import (
	"fmt"
	"log/slog"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/jmylchreest/levelosd/internal/config"
	"github.com/jmylchreest/levelosd/internal/model"
)

// ConfigWatcher reloads the daemon config file when it changes on disk and
// hands valid configurations to the reload callback. Invalid files are
// reported to the error callback and otherwise ignored.
type ConfigWatcher struct {
	mu       sync.RWMutex
	logger   *slog.Logger
	quantity model.Quantity
	path     string
	settle   time.Duration

	current *config.DaemonConfig

	onReload func(*config.DaemonConfig)
	onError  func(error)

	watcher *fsnotify.Watcher
	timer   *time.Timer
	done    chan struct{}
	running bool
}

// NewConfigWatcher creates a watcher for the config at path.
func NewConfigWatcher(q model.Quantity, path string, logger *slog.Logger) *ConfigWatcher {
	if logger == nil {
		logger = slog.Default()
	}
	return &ConfigWatcher{
		logger:   logger,
		quantity: q,
		path:     path,
		settle:   100 * time.Millisecond,
	}
}

// SetReloadCallback sets the callback invoked with each new valid config.
// It runs on the watcher goroutine.
func (w *ConfigWatcher) SetReloadCallback(callback func(*config.DaemonConfig)) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.onReload = callback
}

// SetErrorCallback sets the callback invoked when a changed file fails to
// load or validate.
func (w *ConfigWatcher) SetErrorCallback(callback func(error)) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.onError = callback
}

// Start watches the config file's directory. Editors that replace the file
// through a rename are handled the same as in-place writes.
func (w *ConfigWatcher) Start(initial *config.DaemonConfig) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.running {
		return nil
	}

	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create config watcher: %w", err)
	}
	if err := fw.Add(filepath.Dir(w.path)); err != nil {
		_ = fw.Close()
		return fmt.Errorf("failed to watch config directory: %w", err)
	}

	w.current = initial
	w.watcher = fw
	w.done = make(chan struct{})
	w.running = true
	go w.watch(fw, w.done)

	w.logger.Debug("config watcher started", "path", w.path)
	return nil
}

// Stop stops watching.
func (w *ConfigWatcher) Stop() {
	w.mu.Lock()
	defer w.mu.Unlock()

	if !w.running {
		return
	}
	w.running = false
	if w.timer != nil {
		w.timer.Stop()
	}
	close(w.done)
	_ = w.watcher.Close()
	w.logger.Debug("config watcher stopped")
}

// Current returns the last valid configuration.
func (w *ConfigWatcher) Current() *config.DaemonConfig {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.current
}

func (w *ConfigWatcher) watch(fw *fsnotify.Watcher, done <-chan struct{}) {
	for {
		select {
		case event, ok := <-fw.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != filepath.Clean(w.path) {
				continue
			}
			if event.Has(fsnotify.Write) || event.Has(fsnotify.Create) || event.Has(fsnotify.Rename) {
				w.schedule()
			}

		case err, ok := <-fw.Errors:
			if !ok {
				return
			}
			w.logger.Warn("config watcher error", "error", err)

		case <-done:
			return
		}
	}
}

// schedule coalesces the several events one save produces into one reload.
func (w *ConfigWatcher) schedule() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if !w.running {
		return
	}
	if w.timer != nil {
		w.timer.Stop()
	}
	w.timer = time.AfterFunc(w.settle, w.reload)
}

func (w *ConfigWatcher) reload() {
	w.mu.RLock()
	onReload, onError := w.onReload, w.onError
	w.mu.RUnlock()

	cfg, err := config.LoadDaemonConfig(w.quantity, w.path)
	if err != nil {
		w.logger.Warn("config file changed but validation failed", "path", w.path, "error", err)
		if onError != nil {
			onError(err)
		}
		return
	}

	w.mu.Lock()
	w.current = cfg
	w.mu.Unlock()

	w.logger.Info("config reloaded", "path", w.path)
	if onReload != nil {
		onReload(cfg)
	}
}
