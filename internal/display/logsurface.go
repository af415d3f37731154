package display

import (
	"log/slog"
	"sync"

	"github.com/jmylchreest/levelosd/internal/model"
)

// LogSurface is a Surface without a window. It logs transitions and keeps
// the last state, which is enough to drive the daemon without a compositor.
type LogSurface struct {
	mu      sync.Mutex
	logger  *slog.Logger
	visible bool
	last    model.DisplayState
}

// NewLogSurface creates a LogSurface.
func NewLogSurface(logger *slog.Logger) *LogSurface {
	if logger == nil {
		logger = slog.Default()
	}
	return &LogSurface{logger: logger.With("component", "overlay", "headless", true)}
}

func (s *LogSurface) Show() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.visible = true
	s.logger.Info("overlay shown", "text", s.last.Text)
}

func (s *LogSurface) Update(state model.DisplayState) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.last = state
	s.logger.Info("overlay updated", "text", state.Text, "icon", state.Icon, "muted", state.Muted)
}

func (s *LogSurface) Hide() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.visible = false
	s.logger.Info("overlay hidden")
}

// Visible reports whether Show was called more recently than Hide.
func (s *LogSurface) Visible() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.visible
}

// Last returns the most recent state passed to Update.
func (s *LogSurface) Last() model.DisplayState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.last
}
