package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.Equal(t, 2*time.Second, cfg.Client.Timeout.Duration())
	assert.Equal(t, "text", cfg.Status.Format)
	assert.Equal(t, 5, cfg.TUI.Step)
	assert.Equal(t, 30, cfg.TUI.BarWidth)
	assert.True(t, cfg.TUI.ShowHelp)
}

func TestLoadConfig_DefaultsWhenNoFile(t *testing.T) {
	cfg, err := LoadConfig("/nonexistent/path/ctl.toml")
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)
}

func TestLoadConfig_ParsesTOML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "ctl.toml")

	content := `
[client]
timeout = "500ms"

[status]
format = "json"

[tui]
step = 2
bar_width = 40
show_help = false
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, 500*time.Millisecond, cfg.Client.Timeout.Duration())
	assert.Equal(t, "json", cfg.Status.Format)
	assert.Equal(t, 2, cfg.TUI.Step)
	assert.Equal(t, 40, cfg.TUI.BarWidth)
	assert.False(t, cfg.TUI.ShowHelp)
}

func TestLoadConfig_PartialConfig(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "ctl.toml")

	content := `
[tui]
step = 0
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	// Non-positive values fall back to defaults
	assert.Equal(t, DefaultStep, cfg.TUI.Step)
	assert.Equal(t, "text", cfg.Status.Format)
	assert.True(t, cfg.TUI.ShowHelp)
}

func TestLoadConfig_InvalidTOML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "ctl.toml")

	require.NoError(t, os.WriteFile(path, []byte(`this is not valid toml [`), 0644))

	_, err := LoadConfig(path)
	assert.Error(t, err)
}

func TestConfig_Save(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "subdir", "ctl.toml")

	cfg := DefaultConfig()
	cfg.TUI.Step = 10
	cfg.Client.Timeout = Duration(time.Second)

	require.NoError(t, cfg.Save(path))

	loaded, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, 10, loaded.TUI.Step)
	assert.Equal(t, time.Second, loaded.Client.Timeout.Duration())
}

func TestConfigPath(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "/custom/config")
	assert.Equal(t, "/custom/config/levelosd/ctl.toml", ConfigPath())
	assert.Equal(t, "/custom/config/levelosd", ConfigDir())
}

func TestConfigPathDefault(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "")
	assert.Contains(t, ConfigPath(), filepath.Join(".config", "levelosd", "ctl.toml"))
}
