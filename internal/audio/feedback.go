package audio

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/jmylchreest/levelosd/internal/config"
	"github.com/jmylchreest/levelosd/internal/model"
)

// Sounder plays a sound file without blocking.
type Sounder interface {
	Play(path string) error
}

// Feedback plays the configured sound after volume steps. It implements
// coordinator.Observer.
type Feedback struct {
	mu          sync.Mutex
	logger      *slog.Logger
	sounder     Sounder
	enabled     bool
	sound       string
	minInterval time.Duration
	last        time.Time
	now         func() time.Time
	played      uint64
	skipped     uint64
}

// NewFeedback creates feedback playing through sounder.
func NewFeedback(cfg *config.DaemonConfig, sounder Sounder, logger *slog.Logger) *Feedback {
	if logger == nil {
		logger = slog.Default()
	}
	f := &Feedback{
		logger:  logger.With("component", "feedback"),
		sounder: sounder,
		now:     time.Now,
	}
	f.UpdateConfig(cfg)
	return f
}

// UpdateConfig applies hot-reloaded feedback settings.
func (f *Feedback) UpdateConfig(cfg *config.DaemonConfig) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.enabled = cfg.Feedback.Enabled && cfg.Feedback.Sound != ""
	f.sound = cfg.FeedbackSound()
	f.minInterval = cfg.Feedback.MinInterval.Duration()
	if p, ok := f.sounder.(*Player); ok {
		p.SetVolume(float64(cfg.Feedback.Volume) / 100.0)
	}
}

// Observe plays the sound for increase and decrease commands that leave
// the sink unmuted, at most once per minimum interval.
func (f *Feedback) Observe(cmd model.Command, state model.DisplayState) {
	if cmd.Kind == model.KindToggleMute || state.Muted {
		return
	}

	f.mu.Lock()
	if !f.enabled {
		f.mu.Unlock()
		return
	}
	now := f.now()
	if !f.last.IsZero() && now.Sub(f.last) < f.minInterval {
		f.skipped++
		f.mu.Unlock()
		return
	}
	f.last = now
	f.played++
	sound := f.sound
	f.mu.Unlock()

	if err := f.sounder.Play(sound); err != nil {
		f.logger.Warn("failed to play feedback sound", "path", sound, "error", err)
	}
}

// Counts returns how many sounds were played and how many were rate-limited.
func (f *Feedback) Counts() (played, skipped uint64) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.played, f.skipped
}

// Start preloads the sound and watches it for changes until ctx is done.
// It is a no-op unless the sounder is a Player.
func (f *Feedback) Start(ctx context.Context) {
	p, ok := f.sounder.(*Player)
	if !ok {
		return
	}

	f.mu.Lock()
	enabled, sound := f.enabled, f.sound
	f.mu.Unlock()
	if !enabled {
		return
	}

	if err := p.Preload(sound); err != nil {
		f.logger.Warn("failed to preload feedback sound", "path", sound, "error", err)
	}

	w := NewWatcher(sound, 2*time.Second, f.logger)
	w.SetChangeCallback(func(path string) {
		p.InvalidateCache(path)
		if err := p.Preload(path); err != nil {
			f.logger.Warn("failed to reload feedback sound", "path", path, "error", err)
		}
	})
	go w.Run(ctx)
}
