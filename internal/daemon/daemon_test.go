package daemon

import (
	"bytes"
	"context"
	"errors"
	"flag"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jmylchreest/levelosd/internal/config"
	"github.com/jmylchreest/levelosd/internal/coordinator"
	"github.com/jmylchreest/levelosd/internal/display"
	"github.com/jmylchreest/levelosd/internal/model"
)

func nilLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type scriptedRunner struct {
	mu      sync.Mutex
	outputs map[string]string
	err     error
	calls   []string
}

func (r *scriptedRunner) Run(_ context.Context, name string, args ...string) ([]byte, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	line := strings.Join(append([]string{name}, args...), " ")
	r.calls = append(r.calls, line)
	if r.err != nil {
		return nil, r.err
	}
	return []byte(r.outputs[line]), nil
}

func (r *scriptedRunner) callLog() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.calls...)
}

func TestParseOptions(t *testing.T) {
	opts, err := ParseOptions(model.QuantityVolume, []string{"-headless", "-log-level", "debug", "-config", "/tmp/v.toml"}, io.Discard)
	require.NoError(t, err)
	assert.True(t, opts.Headless)
	assert.Equal(t, "debug", opts.LogLevel)
	assert.Equal(t, "/tmp/v.toml", opts.ConfigPath)

	opts, err = ParseOptions(model.QuantityBrightness, nil, io.Discard)
	require.NoError(t, err)
	assert.Equal(t, "info", opts.LogLevel)
	assert.Equal(t, config.DaemonConfigPath(model.QuantityBrightness), opts.ConfigPath)

	_, err = ParseOptions(model.QuantityBrightness, []string{"extra"}, io.Discard)
	assert.Error(t, err)

	_, err = ParseOptions(model.QuantityBrightness, []string{"-h"}, io.Discard)
	assert.ErrorIs(t, err, flag.ErrHelp)
}

func TestNewLogger(t *testing.T) {
	var buf bytes.Buffer
	logger, err := NewLogger("warn", &buf)
	require.NoError(t, err)

	logger.Info("hidden")
	logger.Warn("shown")
	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), "shown")

	_, err = NewLogger("loud", &buf)
	assert.Error(t, err)
}

func TestInitializationError(t *testing.T) {
	cause := errors.New("no session bus")
	err := &InitializationError{Component: "dbus", Cause: cause}
	assert.Equal(t, "failed to initialize dbus: no session bus", err.Error())
	assert.ErrorIs(t, err, cause)
}

func TestNotifierRateLimit(t *testing.T) {
	var sent []string
	n := NewNotifier(func(summary, body string, urgency byte) error {
		sent = append(sent, summary)
		return nil
	}, nilLogger())

	now := time.Unix(0, 0)
	n.now = func() time.Time { return now }

	n.NotifyConfigError("volumed", errors.New("bad position"))
	n.NotifyConfigError("volumed", errors.New("bad position"))
	n.NotifyBackendChanged("volumed", "wpctl")
	now = now.Add(6 * time.Second)
	n.NotifyConfigError("volumed", errors.New("bad width"))

	assert.Equal(t, []string{
		"volumed: configuration error",
		"volumed: restart required",
		"volumed: configuration error",
	}, sent)
}

func TestNotifierWithoutHandler(t *testing.T) {
	n := NewNotifier(nil, nilLogger())
	assert.NotPanics(t, func() {
		n.Notify("k", "summary", "body", UrgencyLow)
	})
}

func TestConfigWatcherReload(t *testing.T) {
	path := filepath.Join(t.TempDir(), "volumed.toml")
	initial := config.DefaultDaemonConfig(model.QuantityVolume)
	require.NoError(t, config.SaveDaemonConfig(initial, path))

	w := NewConfigWatcher(model.QuantityVolume, path, nilLogger())
	w.settle = 10 * time.Millisecond

	reloaded := make(chan *config.DaemonConfig, 4)
	failures := make(chan error, 4)
	w.SetReloadCallback(func(cfg *config.DaemonConfig) { reloaded <- cfg })
	w.SetErrorCallback(func(err error) { failures <- err })

	require.NoError(t, w.Start(initial))
	defer w.Stop()
	assert.Same(t, initial, w.Current())

	updated := config.DefaultDaemonConfig(model.QuantityVolume)
	updated.Overlay.HideDelay = config.Duration(2 * time.Second)
	require.NoError(t, config.SaveDaemonConfig(updated, path))

	select {
	case cfg := <-reloaded:
		assert.Equal(t, 2*time.Second, cfg.Overlay.HideDelay.Duration())
		assert.Equal(t, cfg, w.Current())
	case <-time.After(3 * time.Second):
		t.Fatal("config not reloaded")
	}

	require.NoError(t, os.WriteFile(path, []byte("[overlay]\nposition = \"nowhere\"\n"), 0o600))
	select {
	case err := <-failures:
		assert.Contains(t, err.Error(), "invalid position")
	case <-time.After(3 * time.Second):
		t.Fatal("invalid config not reported")
	}
	assert.Equal(t, 2*time.Second, w.Current().Overlay.HideDelay.Duration())
}

func TestConfigWatcherIgnoresOtherFiles(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "brightd.toml")
	w := NewConfigWatcher(model.QuantityBrightness, path, nilLogger())
	w.settle = 10 * time.Millisecond

	called := make(chan struct{}, 1)
	w.SetReloadCallback(func(*config.DaemonConfig) { called <- struct{}{} })
	require.NoError(t, w.Start(config.DefaultDaemonConfig(model.QuantityBrightness)))
	defer w.Stop()

	require.NoError(t, os.WriteFile(filepath.Join(dir, "volumed.toml"), []byte(""), 0o600))
	select {
	case <-called:
		t.Fatal("reloaded for an unrelated file")
	case <-time.After(200 * time.Millisecond):
	}
}

func newTestDaemon(t *testing.T, runner *scriptedRunner) (*Daemon, *coordinator.GoLoop, *display.LogSurface) {
	t.Helper()
	cfg := config.DefaultDaemonConfig(model.QuantityBrightness)
	cfg.Overlay.HideDelay = config.Duration(20 * time.Millisecond)

	d := New(model.QuantityBrightness, cfg, filepath.Join(t.TempDir(), "brightd.toml"), "test", nilLogger())
	d.runner = runner

	loop := coordinator.NewGoLoop(nilLogger())
	require.NoError(t, loop.Start())
	t.Cleanup(loop.Stop)

	surface := display.NewLogSurface(nilLogger())
	require.NoError(t, d.build(surface, loop))
	return d, loop, surface
}

func TestDaemonDispatchAndState(t *testing.T) {
	runner := &scriptedRunner{outputs: map[string]string{
		"brightnessctl -m info": "intel_backlight,backlight,48000,50%,96000",
	}}
	d, _, surface := newTestDaemon(t, runner)

	cmd, err := model.NewCommand(model.KindIncrease, 5, "test")
	require.NoError(t, err)
	d.coord.Dispatch(cmd)

	require.Eventually(t, func() bool { return d.coord.Status().Handled == 1 }, time.Second, 5*time.Millisecond)
	assert.Equal(t, "50%", surface.Last().Text)

	st, err := d.state(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 50, st.Level)
	assert.Equal(t, model.IconBrightnessLow, st.Icon)

	require.Eventually(t, func() bool { return !surface.Visible() }, time.Second, 5*time.Millisecond)
	assert.Contains(t, runner.callLog(), "brightnessctl set 5%+")
}

func TestDaemonStateFallsBackToLast(t *testing.T) {
	runner := &scriptedRunner{outputs: map[string]string{
		"brightnessctl -m info": "intel_backlight,backlight,72000,75%,96000",
	}}
	d, _, _ := newTestDaemon(t, runner)

	_, err := d.state(context.Background())
	require.NoError(t, err)

	cmd, err := model.NewCommand(model.KindDecrease, 5, "test")
	require.NoError(t, err)
	d.coord.Dispatch(cmd)
	require.Eventually(t, func() bool { return d.coord.Status().HasLast }, time.Second, 5*time.Millisecond)

	runner.mu.Lock()
	runner.err = errors.New("backlight gone")
	runner.mu.Unlock()

	st, err := d.state(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 75, st.Level)
}

func TestDaemonStateReadError(t *testing.T) {
	d, _, _ := newTestDaemon(t, &scriptedRunner{err: errors.New("no backlight")})
	_, err := d.state(context.Background())
	assert.Error(t, err)
}

func TestDaemonApplyConfig(t *testing.T) {
	d, loop, _ := newTestDaemon(t, &scriptedRunner{outputs: map[string]string{}})

	var sent []string
	d.notifier = NewNotifier(func(summary, _ string, _ byte) error {
		sent = append(sent, summary)
		return nil
	}, nilLogger())

	next := config.DefaultDaemonConfig(model.QuantityBrightness)
	next.Overlay.HideDelay = config.Duration(3 * time.Second)

	done := make(chan struct{})
	loop.Post(func() {
		d.applyConfig(next)
		close(done)
	})
	<-done

	assert.Same(t, next, d.Config())
	assert.Empty(t, sent)

	restart := config.DefaultDaemonConfig(model.QuantityBrightness)
	restart.Backend.Device = "amdgpu_bl0"
	done = make(chan struct{})
	loop.Post(func() {
		d.applyConfig(restart)
		close(done)
	})
	<-done
	assert.Equal(t, []string{"brightd: restart required"}, sent)
}

func TestDaemonVolumeHasFeedback(t *testing.T) {
	cfg := config.DefaultDaemonConfig(model.QuantityVolume)
	d := New(model.QuantityVolume, cfg, "", "test", nilLogger())
	d.runner = &scriptedRunner{outputs: map[string]string{}}

	loop := coordinator.NewGoLoop(nilLogger())
	require.NoError(t, loop.Start())
	defer loop.Stop()

	require.NoError(t, d.build(display.NewLogSurface(nilLogger()), loop))
	assert.NotNil(t, d.feedback)
}

func TestDaemonBadBackend(t *testing.T) {
	cfg := config.DefaultDaemonConfig(model.QuantityVolume)
	cfg.Backend.Name = "alsa"
	d := New(model.QuantityVolume, cfg, "", "test", nilLogger())

	err := d.build(display.NewLogSurface(nilLogger()), coordinator.NewGoLoop(nilLogger()))
	var initErr *InitializationError
	require.ErrorAs(t, err, &initErr)
	assert.Equal(t, "backend", initErr.Component)
}
