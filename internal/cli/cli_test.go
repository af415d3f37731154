package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/jmylchreest/levelosd/internal/dbus"
)

type fakeClient struct {
	calls  []string
	steps  []int
	state  dbus.State
	info   dbus.ServerInfo
	err    error
	closed bool
}

func (f *fakeClient) Increase(_ context.Context, step int) error {
	f.calls = append(f.calls, "increase")
	f.steps = append(f.steps, step)
	return f.err
}

func (f *fakeClient) Decrease(_ context.Context, step int) error {
	f.calls = append(f.calls, "decrease")
	f.steps = append(f.steps, step)
	return f.err
}

func (f *fakeClient) ToggleMute(_ context.Context) error {
	f.calls = append(f.calls, "toggle-mute")
	return f.err
}

func (f *fakeClient) State(_ context.Context) (dbus.State, error) {
	return f.state, f.err
}

func (f *fakeClient) ServerInformation(_ context.Context) (dbus.ServerInfo, error) {
	return f.info, f.err
}

func (f *fakeClient) Close() error {
	f.closed = true
	return nil
}

type harness struct {
	client  *fakeClient
	dialErr error
	signals []dbus.State
	stdout  bytes.Buffer
	stderr  bytes.Buffer
	profile dbus.Profile
}

func newHarness(profile dbus.Profile) *harness {
	return &harness{client: &fakeClient{}, profile: profile}
}

func (h *harness) run(t *testing.T, args ...string) int {
	t.Helper()
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	dial := func(dbus.Profile, *slog.Logger) (Client, error) {
		if h.dialErr != nil {
			return nil, h.dialErr
		}
		return h.client, nil
	}
	watch := func(_ context.Context, _ dbus.Profile, _ *slog.Logger, handler func(dbus.State)) error {
		for _, st := range h.signals {
			handler(st)
		}
		return nil
	}

	root := newRootCommand(h.profile, "test", dial, watch)
	root.SetOut(&h.stdout)
	root.SetErr(&h.stderr)
	return execute(root, h.profile, args, &h.stderr)
}

func TestIncreaseDecrease(t *testing.T) {
	h := newHarness(dbus.BrightnessProfile)
	require.Equal(t, 0, h.run(t, "increase", "5"))
	require.Equal(t, 0, h.run(t, "-", "10"))

	assert.Equal(t, []string{"increase", "decrease"}, h.client.calls)
	assert.Equal(t, []int{5, 10}, h.client.steps)
	assert.True(t, h.client.closed)
}

func TestAdjust_InvalidStep(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{"missing", []string{"increase"}},
		{"not a number", []string{"inc", "five"}},
		{"negative", []string{"dec", "--", "-5"}},
		{"wraps int32", []string{"increase", "4294967301"}},
		{"above int32", []string{"decrease", "2147483648"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness(dbus.BrightnessProfile)
			assert.Equal(t, 1, h.run(t, tt.args...))
			assert.Empty(t, h.client.calls)
		})
	}
}

func TestToggleMute_VolumeOnly(t *testing.T) {
	h := newHarness(dbus.VolumeProfile)
	require.Equal(t, 0, h.run(t, "mute"))
	assert.Equal(t, []string{"toggle-mute"}, h.client.calls)

	h = newHarness(dbus.BrightnessProfile)
	assert.Equal(t, 1, h.run(t, "toggle-mute"))
	assert.Empty(t, h.client.calls)
}

func TestTransportErrorExitCode(t *testing.T) {
	h := newHarness(dbus.VolumeProfile)
	h.dialErr = &dbus.TransportError{Op: "connect", Cause: errors.New("no bus")}

	assert.Equal(t, 2, h.run(t, "increase", "5"))
	assert.Contains(t, h.stderr.String(), "no bus")
}

func TestStatus_Text(t *testing.T) {
	h := newHarness(dbus.VolumeProfile)
	h.client.state = dbus.State{Level: 40, Text: "40%", Muted: true}

	require.Equal(t, 0, h.run(t, "status"))
	assert.Equal(t, "40% (muted)\n", h.stdout.String())
}

func TestStatus_JSON(t *testing.T) {
	h := newHarness(dbus.BrightnessProfile)
	h.client.state = dbus.State{Level: 80, Text: "80%"}

	require.Equal(t, 0, h.run(t, "status", "--format", "json"))

	var got WaybarStatus
	require.NoError(t, json.Unmarshal(h.stdout.Bytes(), &got))
	assert.Equal(t, WaybarStatus{
		Text:       "80%",
		Alt:        "level-high",
		Tooltip:    "Brightness: 80%",
		Class:      "level-high",
		Percentage: 80,
	}, got)
}

func TestStatus_YAMLClampsPercentage(t *testing.T) {
	h := newHarness(dbus.VolumeProfile)
	h.client.state = dbus.State{Level: 130, Text: "130%"}

	require.Equal(t, 0, h.run(t, "status", "-f", "yaml"))

	var got WaybarStatus
	require.NoError(t, yaml.Unmarshal(h.stdout.Bytes(), &got))
	assert.Equal(t, 100, got.Percentage)
	assert.Equal(t, "130%", got.Text)
}

func TestStatus_InvalidFormat(t *testing.T) {
	h := newHarness(dbus.BrightnessProfile)
	assert.Equal(t, 1, h.run(t, "status", "--format", "xml"))
}

func TestStatus_JSONErrorObject(t *testing.T) {
	h := newHarness(dbus.BrightnessProfile)
	h.client.err = &dbus.TransportError{Op: "GetState", Cause: errors.New("timeout")}

	assert.Equal(t, 2, h.run(t, "status", "--format", "json"))
	assert.JSONEq(t, `{"text":"","alt":"error","class":"error","percentage":0}`, h.stdout.String())
}

func TestStatus_Follow(t *testing.T) {
	h := newHarness(dbus.BrightnessProfile)
	h.client.state = dbus.State{Level: 10, Text: "10%"}
	h.signals = []dbus.State{
		{Level: 15, Text: "15%"},
		{Level: 20, Text: "20%"},
	}

	require.Equal(t, 0, h.run(t, "status", "--follow"))
	assert.Equal(t, "10%\n15%\n20%\n", h.stdout.String())
}

func TestStatus_FormatFromConfig(t *testing.T) {
	h := newHarness(dbus.BrightnessProfile)
	h.client.state = dbus.State{Level: 50, Text: "50%"}

	dir := t.TempDir()
	path := filepath.Join(dir, "ctl.toml")
	require.NoError(t, writeFile(path, "[status]\nformat = \"json\"\n"))

	require.Equal(t, 0, h.run(t, "--config", path, "status"))
	assert.Contains(t, h.stdout.String(), `"percentage":50`)
}

func TestInfo(t *testing.T) {
	h := newHarness(dbus.VolumeProfile)
	h.client.info = dbus.ServerInfo{
		Name:      "volumed",
		Version:   "1.2.3",
		StartedAt: time.Now().Add(-2 * time.Hour),
		Handled:   1234,
	}

	require.Equal(t, 0, h.run(t, "info"))
	out := h.stdout.String()
	assert.Contains(t, out, "volumed")
	assert.Contains(t, out, "1.2.3")
	assert.Contains(t, out, "2 hours ago")
	assert.Contains(t, out, "1,234")
}

func TestClientName(t *testing.T) {
	assert.Equal(t, "brightctl", clientName(dbus.BrightnessProfile))
	assert.Equal(t, "volumectl", clientName(dbus.VolumeProfile))
}

func TestParseStep(t *testing.T) {
	step, err := parseStep("0")
	require.NoError(t, err)
	assert.Equal(t, 0, step)

	_, err = parseStep("-1")
	assert.Error(t, err)

	_, err = parseStep("1.5")
	assert.Error(t, err)

	step, err = parseStep("2147483647")
	require.NoError(t, err)
	assert.Equal(t, 2147483647, step)

	_, err = parseStep("4294967301")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "at most 2147483647")
}

func TestIncrease_OverflowNotSent(t *testing.T) {
	h := newHarness(dbus.BrightnessProfile)
	assert.Equal(t, 1, h.run(t, "increase", "4294967301"))
	assert.Empty(t, h.client.calls)
	assert.Contains(t, h.stderr.String(), "at most")
}

func writeFile(path, content string) error {
	return os.WriteFile(path, []byte(content), 0o644)
}
