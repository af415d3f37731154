package control

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/jmylchreest/levelosd/internal/model"
)

// BrightnessCtl is the brightnessctl program name.
const BrightnessCtl = "brightnessctl"

// Brightness controls a backlight through brightnessctl.
type Brightness struct {
	runner Runner
	device string // empty selects brightnessctl's default device
}

// NewBrightness creates a Brightness executor for the given device.
func NewBrightness(runner Runner, device string) *Brightness {
	return &Brightness{runner: runner, device: device}
}

// Increase raises brightness by step percent.
func (b *Brightness) Increase(ctx context.Context, step int) error {
	_, err := b.runner.Run(ctx, BrightnessCtl, b.args("set", fmt.Sprintf("%d%%+", step))...)
	return execErr("increase brightness", err)
}

// Decrease lowers brightness by step percent.
func (b *Brightness) Decrease(ctx context.Context, step int) error {
	_, err := b.runner.Run(ctx, BrightnessCtl, b.args("set", fmt.Sprintf("%d%%-", step))...)
	return execErr("decrease brightness", err)
}

// ReadLevel returns the current brightness percentage.
// Machine output is "device,class,current,percent%,max".
func (b *Brightness) ReadLevel(ctx context.Context) (int, error) {
	out, err := b.runner.Run(ctx, BrightnessCtl, b.args("-m", "info")...)
	if err != nil {
		return 0, execErr("read brightness", err)
	}
	level, err := parseBrightnessMachine(string(out))
	return level, execErr("read brightness", err)
}

// Execute implements coordinator.Executor.
func (b *Brightness) Execute(ctx context.Context, cmd model.Command) error {
	switch cmd.Kind {
	case model.KindIncrease:
		return b.Increase(ctx, cmd.Magnitude)
	case model.KindDecrease:
		return b.Decrease(ctx, cmd.Magnitude)
	default:
		return execErr(cmd.Kind.String()+" brightness", ErrUnsupported)
	}
}

// Read implements coordinator.Executor.
func (b *Brightness) Read(ctx context.Context) (model.Reading, error) {
	level, err := b.ReadLevel(ctx)
	if err != nil {
		return model.Reading{}, err
	}
	return model.Reading{Level: level}, nil
}

// Describe implements coordinator.Executor.
func (b *Brightness) Describe(r model.Reading) model.DisplayState {
	return model.Describe(model.QuantityBrightness, r)
}

func (b *Brightness) args(args ...string) []string {
	if b.device == "" {
		return args
	}
	return append([]string{"--device=" + b.device}, args...)
}

func parseBrightnessMachine(out string) (int, error) {
	line, _, _ := strings.Cut(strings.TrimSpace(out), "\n")
	fields := strings.Split(line, ",")
	if len(fields) < 4 {
		return 0, fmt.Errorf("%w: %q", ErrParse, line)
	}
	return parsePercent(fields[3])
}

// parsePercent parses "50%" or "50".
func parsePercent(s string) (int, error) {
	s = strings.TrimSuffix(strings.TrimSpace(s), "%")
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("%w: percentage %q", ErrParse, s)
	}
	return n, nil
}
