package config

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"

	"github.com/jmylchreest/levelosd/internal/model"
)

// Duration is a time.Duration that can be unmarshaled from human-readable strings.
// Supports formats like "1s", "750ms", "1m", or integer milliseconds.
type Duration time.Duration

// UnmarshalText implements encoding.TextUnmarshaler for TOML parsing.
func (d *Duration) UnmarshalText(text []byte) error {
	s := string(text)

	if ms, err := strconv.ParseInt(s, 10, 64); err == nil {
		*d = Duration(time.Duration(ms) * time.Millisecond)
		return nil
	}

	dur, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("invalid duration %q: must be like '1s', '750ms', '1m' or milliseconds: %w", s, err)
	}
	*d = Duration(dur)
	return nil
}

// MarshalText implements encoding.TextMarshaler for TOML output.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(time.Duration(d).String()), nil
}

// Duration returns the underlying time.Duration.
func (d Duration) Duration() time.Duration {
	return time.Duration(d)
}

// DaemonConfig is the configuration for brightd and volumed.
// Loaded from ~/.config/levelosd/<daemon>.toml
type DaemonConfig struct {
	Overlay  OverlayConfig  `toml:"overlay"`
	Theme    ThemeConfig    `toml:"theme"`
	Backend  BackendConfig  `toml:"backend"`
	Feedback FeedbackConfig `toml:"feedback"`
	IPC      IPCConfig      `toml:"ipc"`
}

// OverlayConfig contains overlay window settings.
type OverlayConfig struct {
	HideDelay Duration `toml:"hide_delay"` // how long the overlay lingers after the last command
	Position  string   `toml:"position"`   // "bottom-center", "top-right", etc.
	OffsetX   int      `toml:"offset_x"`   // Pixels from screen edge
	OffsetY   int      `toml:"offset_y"`   // Pixels from screen edge
	Width     int      `toml:"width"`      // Overlay width in pixels
	Monitor   int      `toml:"monitor"`    // 0 = compositor default, 1+ = specific monitor
	Opacity   float64  `toml:"opacity"`    // 0.0-1.0, background opacity
	IconSize  int      `toml:"icon_size"`  // Icon pixel size
	Layout    string   `toml:"layout"`     // Layout template name without .xml extension
}

// ThemeConfig contains theme settings.
type ThemeConfig struct {
	Name        string `toml:"name"`         // Theme name without .css extension
	ColorScheme string `toml:"color_scheme"` // "system", "light", or "dark"
}

// BackendConfig selects the helper used to adjust and read the quantity.
type BackendConfig struct {
	Name     string   `toml:"name"`      // brightnessctl | pactl | wpctl
	Device   string   `toml:"device"`    // backlight device or sink, empty for default
	Timeout  Duration `toml:"timeout"`   // per-command helper timeout
	MaxLevel int      `toml:"max_level"` // volume ceiling in percent, 0 = none
}

// FeedbackConfig contains audible feedback settings (volumed only).
type FeedbackConfig struct {
	Enabled     bool     `toml:"enabled"`
	Sound       string   `toml:"sound"`        // WAV/OGG/MP3 path, ~ expanded
	Volume      int      `toml:"volume"`       // 0-100
	MinInterval Duration `toml:"min_interval"` // minimum gap between sounds
}

// IPCConfig contains D-Bus server settings.
type IPCConfig struct {
	QueueSize int `toml:"queue_size"` // commands buffered between D-Bus and the UI
}

// ColorScheme represents the color scheme preference.
type ColorScheme string

const (
	ColorSchemeSystem ColorScheme = "system"
	ColorSchemeLight  ColorScheme = "light"
	ColorSchemeDark   ColorScheme = "dark"
)

// ValidColorSchemes returns all valid color scheme values.
func ValidColorSchemes() []ColorScheme {
	return []ColorScheme{ColorSchemeSystem, ColorSchemeLight, ColorSchemeDark}
}

// Position represents an overlay position on screen.
type Position string

const (
	PositionTopLeft      Position = "top-left"
	PositionTopRight     Position = "top-right"
	PositionTopCenter    Position = "top-center"
	PositionCenter       Position = "center"
	PositionBottomLeft   Position = "bottom-left"
	PositionBottomRight  Position = "bottom-right"
	PositionBottomCenter Position = "bottom-center"
)

// ValidPositions returns all valid position values.
func ValidPositions() []Position {
	return []Position{
		PositionTopLeft,
		PositionTopRight,
		PositionTopCenter,
		PositionCenter,
		PositionBottomLeft,
		PositionBottomRight,
		PositionBottomCenter,
	}
}

// ValidBackends returns the backend names usable for a quantity.
func ValidBackends(q model.Quantity) []string {
	if q == model.QuantityVolume {
		return []string{"pactl", "wpctl"}
	}
	return []string{"brightnessctl"}
}

// DaemonName returns the daemon binary name for a quantity.
func DaemonName(q model.Quantity) string {
	if q == model.QuantityVolume {
		return "volumed"
	}
	return "brightd"
}

// DefaultDaemonConfig returns a new DaemonConfig with default values.
func DefaultDaemonConfig(q model.Quantity) *DaemonConfig {
	return &DaemonConfig{
		Overlay: OverlayConfig{
			HideDelay: Duration(time.Second),
			Position:  string(PositionBottomCenter),
			OffsetX:   0,
			OffsetY:   120,
			Width:     300,
			Monitor:   0,
			Opacity:   1.0,
			IconSize:  32,
			Layout:    "horizontal",
		},
		Theme: ThemeConfig{
			Name:        "default",
			ColorScheme: string(ColorSchemeSystem),
		},
		Backend: BackendConfig{
			Name:    ValidBackends(q)[0],
			Timeout: Duration(2 * time.Second),
		},
		Feedback: FeedbackConfig{
			Enabled:     false,
			Volume:      60,
			MinInterval: Duration(150 * time.Millisecond),
		},
		IPC: IPCConfig{
			QueueSize: 64,
		},
	}
}

// DaemonConfigPath returns the path to a daemon's config file.
func DaemonConfigPath(q model.Quantity) string {
	return filepath.Join(ConfigDir(), DaemonName(q)+".toml")
}

// LoadDaemonConfig loads the daemon configuration from path.
// If the file doesn't exist, returns the default configuration.
func LoadDaemonConfig(q model.Quantity, path string) (*DaemonConfig, error) {
	if path == "" {
		path = DaemonConfigPath(q)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return DefaultDaemonConfig(q), nil
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	// Start with defaults, then overlay with file contents
	config := DefaultDaemonConfig(q)
	if err := toml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	if err := config.Validate(q); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return config, nil
}

// SaveDaemonConfig writes the daemon configuration to path.
func SaveDaemonConfig(config *DaemonConfig, path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := toml.Marshal(config)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	// Write atomically via temp file
	tmpPath := path + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return os.Rename(tmpPath, path)
}

// Validate checks if the configuration is valid for the given quantity.
func (c *DaemonConfig) Validate(q model.Quantity) error {
	if !slices.Contains(ValidPositions(), Position(c.Overlay.Position)) {
		return fmt.Errorf("invalid position %q, must be one of: %v", c.Overlay.Position, ValidPositions())
	}

	if d := c.Overlay.HideDelay.Duration(); d <= 0 || d > time.Minute {
		return fmt.Errorf("hide_delay must be between 1ms and 1m, got %s", d)
	}
	if c.Overlay.Width < 100 || c.Overlay.Width > 1000 {
		return fmt.Errorf("width must be between 100 and 1000, got %d", c.Overlay.Width)
	}
	if c.Overlay.IconSize < 8 || c.Overlay.IconSize > 256 {
		return fmt.Errorf("icon_size must be between 8 and 256, got %d", c.Overlay.IconSize)
	}
	if c.Overlay.Opacity < 0 || c.Overlay.Opacity > 1 {
		return fmt.Errorf("opacity must be between 0.0 and 1.0, got %g", c.Overlay.Opacity)
	}
	if c.Overlay.Monitor < 0 {
		return fmt.Errorf("monitor must not be negative, got %d", c.Overlay.Monitor)
	}

	if !slices.Contains(ValidColorSchemes(), ColorScheme(c.Theme.ColorScheme)) {
		return fmt.Errorf("invalid color_scheme %q, must be one of: %v", c.Theme.ColorScheme, ValidColorSchemes())
	}

	if !slices.Contains(ValidBackends(q), c.Backend.Name) {
		return fmt.Errorf("invalid backend %q for %s, must be one of: %v", c.Backend.Name, q, ValidBackends(q))
	}
	if c.Backend.Timeout.Duration() <= 0 {
		return fmt.Errorf("backend timeout must be positive, got %s", c.Backend.Timeout.Duration())
	}
	if c.Backend.MaxLevel < 0 || c.Backend.MaxLevel > 300 {
		return fmt.Errorf("max_level must be between 0 and 300, got %d", c.Backend.MaxLevel)
	}

	if c.Feedback.Volume < 0 || c.Feedback.Volume > 100 {
		return fmt.Errorf("volume must be between 0 and 100, got %d", c.Feedback.Volume)
	}
	if c.Feedback.MinInterval < 0 {
		return fmt.Errorf("min_interval must not be negative")
	}

	if c.IPC.QueueSize < 1 || c.IPC.QueueSize > 4096 {
		return fmt.Errorf("queue_size must be between 1 and 4096, got %d", c.IPC.QueueSize)
	}

	return nil
}

// FeedbackSound returns the feedback sound path with ~ expanded.
func (c *DaemonConfig) FeedbackSound() string {
	return expandPath(c.Feedback.Sound)
}

// expandPath expands ~ to the user's home directory.
func expandPath(path string) string {
	if strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err == nil {
			return filepath.Join(home, path[2:])
		}
	}
	return path
}
