// Package config handles configuration file loading and parsing.
package config

import (
	"errors"
	"os"
	"path/filepath"
	"time"

	"github.com/pelletier/go-toml/v2"
)

// AppName is the directory name used under the XDG config home.
const AppName = "levelosd"

// Default client values.
const (
	DefaultClientTimeout = 2 * time.Second
	DefaultStep          = 5
	DefaultBarWidth      = 30
	DefaultStatusFormat  = "text"
)

// Config is the client configuration shared by brightctl and volumectl.
// Loaded from ~/.config/levelosd/ctl.toml
type Config struct {
	Client ClientConfig `toml:"client"`
	Status StatusConfig `toml:"status"`
	TUI    TUIConfig    `toml:"tui"`
}

// ClientConfig holds D-Bus call settings.
type ClientConfig struct {
	Timeout Duration `toml:"timeout"`
}

// StatusConfig holds defaults for the status command.
type StatusConfig struct {
	Format string `toml:"format"` // text, json, yaml
}

// TUIConfig holds TUI-specific settings.
type TUIConfig struct {
	Step     int  `toml:"step"`      // percent per key press
	BarWidth int  `toml:"bar_width"` // cells
	ShowHelp bool `toml:"show_help"`
}

// DefaultConfig returns a Config with default values.
func DefaultConfig() *Config {
	return &Config{
		Client: ClientConfig{
			Timeout: Duration(DefaultClientTimeout),
		},
		Status: StatusConfig{
			Format: DefaultStatusFormat,
		},
		TUI: TUIConfig{
			Step:     DefaultStep,
			BarWidth: DefaultBarWidth,
			ShowHelp: true,
		},
	}
}

// ConfigDir returns the levelosd config directory.
// Uses XDG_CONFIG_HOME if set, otherwise ~/.config.
func ConfigDir() string {
	configHome := os.Getenv("XDG_CONFIG_HOME")
	if configHome == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return ""
		}
		configHome = filepath.Join(home, ".config")
	}
	return filepath.Join(configHome, AppName)
}

// ConfigPath returns the path to the client config file.
func ConfigPath() string {
	return filepath.Join(ConfigDir(), "ctl.toml")
}

// LoadConfig loads configuration from the specified path.
// If path is empty, uses the default config path.
// Returns default config if file doesn't exist.
func LoadConfig(path string) (*Config, error) {
	if path == "" {
		path = ConfigPath()
	}

	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return nil, err
	}

	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}

	if cfg.TUI.Step <= 0 {
		cfg.TUI.Step = DefaultStep
	}
	if cfg.TUI.BarWidth <= 0 {
		cfg.TUI.BarWidth = DefaultBarWidth
	}
	if cfg.Client.Timeout <= 0 {
		cfg.Client.Timeout = Duration(DefaultClientTimeout)
	}

	return cfg, nil
}

// Save writes the configuration to the specified path.
// Creates parent directories if needed.
func (c *Config) Save(path string) error {
	if path == "" {
		path = ConfigPath()
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	data, err := toml.Marshal(c)
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0644)
}
