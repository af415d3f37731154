package audio

import (
	"context"
	"log/slog"
	"os"
	"sync"
	"time"
)

// Watcher polls a sound file and reports when its modification time
// changes.
type Watcher struct {
	mu       sync.Mutex
	logger   *slog.Logger
	path     string
	modTime  time.Time
	interval time.Duration
	onChange func(path string)
}

// NewWatcher creates a watcher for path polling every interval.
func NewWatcher(path string, interval time.Duration, logger *slog.Logger) *Watcher {
	if logger == nil {
		logger = slog.Default()
	}
	if interval <= 0 {
		interval = 2 * time.Second
	}
	w := &Watcher{
		logger:   logger,
		path:     path,
		interval: interval,
	}
	if info, err := os.Stat(path); err == nil {
		w.modTime = info.ModTime()
	}
	return w
}

// SetChangeCallback sets the function called after the file changes.
func (w *Watcher) SetChangeCallback(fn func(path string)) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.onChange = fn
}

// Run polls until ctx is cancelled.
func (w *Watcher) Run(ctx context.Context) {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	w.logger.Debug("sound watcher started", "path", w.path, "interval", w.interval)
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			w.check()
		}
	}
}

func (w *Watcher) check() {
	info, err := os.Stat(w.path)
	if err != nil {
		return
	}

	w.mu.Lock()
	changed := info.ModTime().After(w.modTime)
	if changed {
		w.modTime = info.ModTime()
	}
	fn := w.onChange
	w.mu.Unlock()

	if changed {
		w.logger.Debug("sound file changed", "path", w.path)
		if fn != nil {
			fn(w.path)
		}
	}
}
