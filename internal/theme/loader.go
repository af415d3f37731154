package theme

import (
	"log/slog"
	"sync"

	"github.com/diamondburned/gotk4/pkg/core/glib"
	"github.com/diamondburned/gotk4/pkg/gdk/v4"
	"github.com/diamondburned/gotk4/pkg/gtk/v4"
)

// Loader applies a theme to the GTK display and keeps it hot-reloaded.
// LoadTheme and Apply must be called on the GTK main thread.
type Loader struct {
	mu        sync.Mutex
	logger    *slog.Logger
	provider  *gtk.CSSProvider
	themesDir string
	theme     *Theme
	watcher   *Watcher
}

// NewLoader creates a new theme loader reading user themes from themesDir.
func NewLoader(themesDir string, logger *slog.Logger) *Loader {
	if logger == nil {
		logger = slog.Default()
	}
	return &Loader{
		logger:    logger,
		provider:  gtk.NewCSSProvider(),
		themesDir: themesDir,
	}
}

// LoadTheme resolves a theme by name, loads it into the provider and
// restarts hot-reload for file themes.
func (l *Loader) LoadTheme(name string) {
	t, err := Resolve(name, l.themesDir)
	if err != nil {
		l.logger.Warn("theme fallback", "requested", name, "using", t.Name, "error", err)
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	l.theme = t
	l.provider.LoadFromString(t.CSS)
	l.logger.Info("loaded theme", "name", t.Name, "path", t.Path)

	if l.watcher != nil {
		l.watcher.Stop()
		l.watcher = nil
	}
	if t.Embedded() {
		return
	}

	w := NewWatcher(t, l.logger)
	w.SetChangeCallback(func(css string) {
		glib.IdleAdd(func() {
			l.provider.LoadFromString(css)
			l.logger.Info("hot-reloaded theme", "name", t.Name)
		})
	})
	if err := w.Start(); err != nil {
		l.logger.Warn("failed to start theme watcher", "error", err)
		return
	}
	l.watcher = w
}

// Apply attaches the provider to a display, the default one if nil.
func (l *Loader) Apply(display *gdk.Display) {
	if display == nil {
		display = gdk.DisplayGetDefault()
	}
	if display == nil {
		l.logger.Warn("no display available, cannot apply theme")
		return
	}
	gtk.StyleContextAddProviderForDisplay(display, l.provider, gtk.STYLE_PROVIDER_PRIORITY_APPLICATION)
}

// Stop ends hot-reload.
func (l *Loader) Stop() {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.watcher != nil {
		l.watcher.Stop()
		l.watcher = nil
	}
}

// CurrentTheme returns the name of the loaded theme.
func (l *Loader) CurrentTheme() string {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.theme == nil {
		return ""
	}
	return l.theme.Name
}
