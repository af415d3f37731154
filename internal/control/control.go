package control

import (
	"fmt"
	"log/slog"

	"github.com/jmylchreest/levelosd/internal/coordinator"
	"github.com/jmylchreest/levelosd/internal/model"
)

// Options selects and configures an executor.
type Options struct {
	Backend  string // "brightnessctl" for brightness; "pactl" or "wpctl" for volume
	Device   string // backlight device or sink name
	MaxLevel int    // volume ceiling in percent, 0 for none
	Runner   Runner
	Logger   *slog.Logger
}

// New returns the executor for a quantity.
func New(q model.Quantity, opts Options) (coordinator.Executor, error) {
	if opts.Runner == nil {
		opts.Runner = NewExecRunner(opts.Logger)
	}

	switch q {
	case model.QuantityBrightness:
		if opts.Backend != "" && opts.Backend != BrightnessCtl {
			return nil, fmt.Errorf("unknown brightness backend %q", opts.Backend)
		}
		return NewBrightness(opts.Runner, opts.Device), nil
	case model.QuantityVolume:
		v, err := NewVolume(opts.Runner, opts.Backend, opts.Device, opts.MaxLevel)
		if err != nil {
			return nil, err
		}
		return v, nil
	default:
		return nil, fmt.Errorf("unknown quantity %q", q)
	}
}
