package control

import (
	"context"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/jmylchreest/levelosd/internal/model"
)

// Volume backend names.
const (
	BackendPactl = "pactl"
	BackendWpctl = "wpctl"
)

// Default sink selectors for each backend.
const (
	DefaultPactlSink = "@DEFAULT_SINK@"
	DefaultWpctlSink = "@DEFAULT_AUDIO_SINK@"
)

// Volume controls the default audio sink through pactl or wpctl.
type Volume struct {
	runner   Runner
	backend  string
	sink     string
	maxLevel int // 0 means no limit
}

// NewVolume creates a Volume executor. An empty sink selects the default sink.
func NewVolume(runner Runner, backend, sink string, maxLevel int) (*Volume, error) {
	switch backend {
	case "", BackendPactl:
		backend = BackendPactl
		if sink == "" {
			sink = DefaultPactlSink
		}
	case BackendWpctl:
		if sink == "" {
			sink = DefaultWpctlSink
		}
	default:
		return nil, fmt.Errorf("unknown volume backend %q", backend)
	}
	return &Volume{runner: runner, backend: backend, sink: sink, maxLevel: maxLevel}, nil
}

// Backend returns the backend name in use.
func (v *Volume) Backend() string {
	return v.backend
}

// Increase raises the sink volume by step percent, respecting the max level.
func (v *Volume) Increase(ctx context.Context, step int) error {
	var err error
	if v.backend == BackendWpctl {
		args := []string{"set-volume"}
		if v.maxLevel > 0 {
			args = append(args, "-l", strconv.FormatFloat(float64(v.maxLevel)/100, 'f', 2, 64))
		}
		_, err = v.runner.Run(ctx, BackendWpctl, append(args, v.sink, fmt.Sprintf("%d%%+", step))...)
		return execErr("increase volume", err)
	}

	if _, err = v.runner.Run(ctx, BackendPactl, "set-sink-volume", v.sink, fmt.Sprintf("+%d%%", step)); err != nil {
		return execErr("increase volume", err)
	}
	if v.maxLevel <= 0 {
		return nil
	}
	level, err := v.ReadLevel(ctx)
	if err != nil {
		return err
	}
	if level > v.maxLevel {
		_, err = v.runner.Run(ctx, BackendPactl, "set-sink-volume", v.sink, fmt.Sprintf("%d%%", v.maxLevel))
	}
	return execErr("limit volume", err)
}

// Decrease lowers the sink volume by step percent.
func (v *Volume) Decrease(ctx context.Context, step int) error {
	var err error
	if v.backend == BackendWpctl {
		_, err = v.runner.Run(ctx, BackendWpctl, "set-volume", v.sink, fmt.Sprintf("%d%%-", step))
	} else {
		_, err = v.runner.Run(ctx, BackendPactl, "set-sink-volume", v.sink, fmt.Sprintf("-%d%%", step))
	}
	return execErr("decrease volume", err)
}

// ToggleMute flips the sink mute state.
func (v *Volume) ToggleMute(ctx context.Context) error {
	var err error
	if v.backend == BackendWpctl {
		_, err = v.runner.Run(ctx, BackendWpctl, "set-mute", v.sink, "toggle")
	} else {
		_, err = v.runner.Run(ctx, BackendPactl, "set-sink-mute", v.sink, "toggle")
	}
	return execErr("toggle mute", err)
}

// ReadLevel returns the sink volume percentage.
func (v *Volume) ReadLevel(ctx context.Context) (int, error) {
	r, err := v.Read(ctx)
	return r.Level, err
}

// ReadMuted reports whether the sink is muted.
func (v *Volume) ReadMuted(ctx context.Context) (bool, error) {
	r, err := v.Read(ctx)
	return r.Muted, err
}

// Execute implements coordinator.Executor.
func (v *Volume) Execute(ctx context.Context, cmd model.Command) error {
	switch cmd.Kind {
	case model.KindIncrease:
		return v.Increase(ctx, cmd.Magnitude)
	case model.KindDecrease:
		return v.Decrease(ctx, cmd.Magnitude)
	case model.KindToggleMute:
		return v.ToggleMute(ctx)
	default:
		return execErr(cmd.Kind.String()+" volume", ErrUnsupported)
	}
}

// Read implements coordinator.Executor.
func (v *Volume) Read(ctx context.Context) (model.Reading, error) {
	if v.backend == BackendWpctl {
		return v.readWpctl(ctx)
	}
	return v.readPactl(ctx)
}

// Describe implements coordinator.Executor.
func (v *Volume) Describe(r model.Reading) model.DisplayState {
	return model.Describe(model.QuantityVolume, r)
}

func (v *Volume) readWpctl(ctx context.Context) (model.Reading, error) {
	out, err := v.runner.Run(ctx, BackendWpctl, "get-volume", v.sink)
	if err != nil {
		return model.Reading{}, execErr("read volume", err)
	}
	r, err := parseWpctlVolume(string(out))
	return r, execErr("read volume", err)
}

// readPactl uses get-sink-volume/get-sink-mute and falls back to scanning
// "pactl list sinks" on pactl versions that lack them.
func (v *Volume) readPactl(ctx context.Context) (model.Reading, error) {
	volOut, err := v.runner.Run(ctx, BackendPactl, "get-sink-volume", v.sink)
	if err != nil {
		return v.readPactlList(ctx)
	}
	level, err := parsePactlVolume(string(volOut))
	if err != nil {
		return model.Reading{}, execErr("read volume", err)
	}

	muteOut, err := v.runner.Run(ctx, BackendPactl, "get-sink-mute", v.sink)
	if err != nil {
		return model.Reading{}, execErr("read mute", err)
	}
	muted, err := parseMuteLine(string(muteOut))
	if err != nil {
		return model.Reading{}, execErr("read mute", err)
	}
	return model.Reading{Level: level, Muted: muted}, nil
}

func (v *Volume) readPactlList(ctx context.Context) (model.Reading, error) {
	out, err := v.runner.Run(ctx, BackendPactl, "list", "sinks")
	if err != nil {
		return model.Reading{}, execErr("read volume", err)
	}
	sink := v.sink
	if sink == DefaultPactlSink {
		sink = v.defaultPactlSink(ctx)
	}
	r, err := parsePactlList(string(out), sink)
	return r, execErr("read volume", err)
}

// defaultPactlSink returns the "Default Sink:" name from "pactl info", or
// "" when it cannot be determined.
func (v *Volume) defaultPactlSink(ctx context.Context) string {
	out, err := v.runner.Run(ctx, BackendPactl, "info")
	if err != nil {
		return ""
	}
	for _, line := range strings.Split(string(out), "\n") {
		if name, ok := strings.CutPrefix(strings.TrimSpace(line), "Default Sink:"); ok {
			return strings.TrimSpace(name)
		}
	}
	return ""
}

// parsePactlVolume returns the first channel percentage from
// "Volume: front-left: 32768 /  50% / -18.06 dB, ...".
func parsePactlVolume(out string) (int, error) {
	for _, field := range strings.Fields(out) {
		if strings.HasSuffix(field, "%") {
			return parsePercent(field)
		}
	}
	return 0, fmt.Errorf("%w: no percentage in %q", ErrParse, strings.TrimSpace(out))
}

// parseMuteLine parses "Mute: yes" / "Mute: no".
func parseMuteLine(out string) (bool, error) {
	_, value, ok := strings.Cut(strings.TrimSpace(out), ":")
	if !ok {
		return false, fmt.Errorf("%w: %q", ErrParse, strings.TrimSpace(out))
	}
	switch strings.TrimSpace(value) {
	case "yes":
		return true, nil
	case "no":
		return false, nil
	}
	return false, fmt.Errorf("%w: mute value %q", ErrParse, value)
}

// pactlSink is one "Sink #N" block of "pactl list sinks".
type pactlSink struct {
	index     string
	name      string
	reading   model.Reading
	haveLevel bool
	haveMute  bool
}

// parsePactlList reads the Volume and Mute lines of the sink whose name or
// index equals sink. An empty sink selects the first one listed.
func parsePactlList(out, sink string) (model.Reading, error) {
	var sinks []*pactlSink
	for _, line := range strings.Split(out, "\n") {
		trimmed := strings.TrimSpace(line)
		if idx, ok := strings.CutPrefix(trimmed, "Sink #"); ok {
			sinks = append(sinks, &pactlSink{index: idx})
			continue
		}
		if len(sinks) == 0 {
			continue
		}
		cur := sinks[len(sinks)-1]
		switch {
		case strings.HasPrefix(trimmed, "Name:"):
			cur.name = strings.TrimSpace(strings.TrimPrefix(trimmed, "Name:"))
		case !cur.haveMute && strings.HasPrefix(trimmed, "Mute:"):
			muted, err := parseMuteLine(trimmed)
			if err != nil {
				return model.Reading{}, err
			}
			cur.reading.Muted = muted
			cur.haveMute = true
		case !cur.haveLevel && strings.HasPrefix(trimmed, "Volume:"):
			level, err := parsePactlVolume(trimmed)
			if err != nil {
				return model.Reading{}, err
			}
			cur.reading.Level = level
			cur.haveLevel = true
		}
	}

	for _, s := range sinks {
		if sink != "" && sink != s.name && sink != s.index {
			continue
		}
		if !s.haveLevel || !s.haveMute {
			return model.Reading{}, fmt.Errorf("%w: incomplete sink #%s", ErrParse, s.index)
		}
		return s.reading, nil
	}
	if sink == "" {
		return model.Reading{}, fmt.Errorf("%w: no sink found", ErrParse)
	}
	return model.Reading{}, fmt.Errorf("%w: sink %q not found", ErrParse, sink)
}

// parseWpctlVolume parses "Volume: 0.50" with an optional "[MUTED]" marker.
func parseWpctlVolume(out string) (model.Reading, error) {
	fields := strings.Fields(out)
	if len(fields) < 2 || fields[0] != "Volume:" {
		return model.Reading{}, fmt.Errorf("%w: %q", ErrParse, strings.TrimSpace(out))
	}
	f, err := strconv.ParseFloat(fields[1], 64)
	if err != nil {
		return model.Reading{}, fmt.Errorf("%w: volume %q", ErrParse, fields[1])
	}
	return model.Reading{
		Level: int(math.Round(f * 100)),
		Muted: strings.Contains(out, "[MUTED]"),
	}, nil
}
