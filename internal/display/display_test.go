package display

import (
	"bytes"
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jmylchreest/levelosd/internal/config"
	"github.com/jmylchreest/levelosd/internal/coordinator"
	"github.com/jmylchreest/levelosd/internal/layout"
	"github.com/jmylchreest/levelosd/internal/model"
)

var (
	_ coordinator.Surface = (*Overlay)(nil)
	_ coordinator.Surface = (*LogSurface)(nil)
	_ coordinator.Loop    = (*MainLoop)(nil)
)

func TestAnchorsFor(t *testing.T) {
	tests := []struct {
		pos  config.Position
		want Anchors
	}{
		{config.PositionTopLeft, Anchors{Top: true, Left: true, MarginTop: 20, MarginLeft: 10}},
		{config.PositionTopRight, Anchors{Top: true, Right: true, MarginTop: 20, MarginRight: 10}},
		{config.PositionTopCenter, Anchors{Top: true, MarginTop: 20}},
		{config.PositionCenter, Anchors{}},
		{config.PositionBottomLeft, Anchors{Bottom: true, Left: true, MarginBottom: 20, MarginLeft: 10}},
		{config.PositionBottomRight, Anchors{Bottom: true, Right: true, MarginBottom: 20, MarginRight: 10}},
		{config.PositionBottomCenter, Anchors{Bottom: true, MarginBottom: 20}},
	}

	for _, tt := range tests {
		t.Run(string(tt.pos), func(t *testing.T) {
			assert.Equal(t, tt.want, anchorsFor(tt.pos, 10, 20))
		})
	}
}

func TestFrameClasses(t *testing.T) {
	cfg := config.DefaultDaemonConfig(model.QuantityVolume)
	classes := frameClasses(model.QuantityVolume, cfg, "horizontal", "dark")
	assert.Equal(t, []string{"osd-box", "volume", "horizontal", "dark", "theme-default"}, classes)

	cfg.Overlay.Opacity = 0.8
	cfg.Theme.Name = "Catppuccin Mocha"
	classes = frameClasses(model.QuantityVolume, cfg, "vertical", "light")
	assert.Contains(t, classes, "translucent")
	assert.Contains(t, classes, "theme-catppuccin-mocha")
	assert.Contains(t, classes, "vertical")
}

func TestStateClasses(t *testing.T) {
	tests := []struct {
		name  string
		state model.DisplayState
		want  []string
	}{
		{"low", model.DisplayState{Level: 10}, []string{"level-low"}},
		{"medium", model.DisplayState{Level: 50}, []string{"level-medium"}},
		{"high", model.DisplayState{Level: 100}, []string{"level-high"}},
		{"muted", model.DisplayState{Level: 40, Muted: true}, []string{"level-medium", "muted"}},
		{"over-amplified", model.DisplayState{Level: 120}, []string{"level-high", "over-amplified"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, stateClasses(tt.state))
		})
	}
}

func TestColorSchemeClass(t *testing.T) {
	dark := func() bool { return true }
	light := func() bool { return false }

	assert.Equal(t, "light", colorSchemeClass(config.ColorSchemeLight, dark))
	assert.Equal(t, "dark", colorSchemeClass(config.ColorSchemeDark, light))
	assert.Equal(t, "dark", colorSchemeClass(config.ColorSchemeSystem, dark))
	assert.Equal(t, "light", colorSchemeClass(config.ColorSchemeSystem, light))
	assert.Equal(t, "light", colorSchemeClass(config.ColorSchemeSystem, nil))
}

func TestSanitizeClassName(t *testing.T) {
	tests := map[string]string{
		"default":          "default",
		"Catppuccin Mocha": "catppuccin-mocha",
		"my_theme.v2":      "my-theme-v2",
		"--edge--":         "edge",
		"":                 "",
	}
	for in, want := range tests {
		assert.Equal(t, want, sanitizeClassName(in), in)
	}
}

func TestAttrInt(t *testing.T) {
	elem := layout.LayoutElement{Attributes: map[string]string{
		"size":    "48",
		"spacing": "6px",
		"bad":     "wide",
	}}

	assert.Equal(t, 48, attrInt(elem, "size", 32))
	assert.Equal(t, 6, attrInt(elem, "spacing", 4))
	assert.Equal(t, 4, attrInt(elem, "bad", 4))
	assert.Equal(t, 32, attrInt(elem, "missing", 32))
}

func TestLogSurface(t *testing.T) {
	var buf bytes.Buffer
	s := NewLogSurface(slog.New(slog.NewTextHandler(&buf, nil)))

	require.False(t, s.Visible())
	s.Update(model.DisplayState{Text: "42%", Level: 42})
	s.Show()
	assert.True(t, s.Visible())
	assert.Equal(t, "42%", s.Last().Text)

	s.Hide()
	assert.False(t, s.Visible())
	assert.Contains(t, buf.String(), "overlay shown")
	assert.Contains(t, buf.String(), "overlay hidden")
}

func TestDisplayError(t *testing.T) {
	err := error(&DisplayError{Stage: "open", Err: ErrNoDisplay})
	assert.True(t, errors.Is(err, ErrNoDisplay))
	assert.Equal(t, "overlay open: no display available", err.Error())
}
