package daemon

import (
	"flag"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/jmylchreest/levelosd/internal/config"
	"github.com/jmylchreest/levelosd/internal/model"
)

// Options are the daemon's command line flags.
type Options struct {
	ConfigPath  string
	LogLevel    string
	Headless    bool
	InitConfig  bool
	ShowVersion bool
}

// ParseOptions parses daemon flags. args excludes the program name.
func ParseOptions(q model.Quantity, args []string, output io.Writer) (Options, error) {
	var opts Options

	fs := flag.NewFlagSet(config.DaemonName(q), flag.ContinueOnError)
	if output != nil {
		fs.SetOutput(output)
	}
	fs.StringVar(&opts.ConfigPath, "config", "", "Path to config file (default "+config.DaemonConfigPath(q)+")")
	fs.StringVar(&opts.LogLevel, "log-level", "info", "Log level: debug, info, warn, error")
	fs.BoolVar(&opts.Headless, "headless", false, "Run without a window, logging overlay changes instead")
	fs.BoolVar(&opts.InitConfig, "init-config", false, "Write the default config file and exit")
	fs.BoolVar(&opts.ShowVersion, "version", false, "Show version and exit")

	if err := fs.Parse(args); err != nil {
		return opts, err
	}
	if fs.NArg() > 0 {
		return opts, fmt.Errorf("unexpected arguments: %s", strings.Join(fs.Args(), " "))
	}
	if opts.ConfigPath == "" {
		opts.ConfigPath = config.DaemonConfigPath(q)
	}
	return opts, nil
}

// NewLogger creates the text logger the daemons write to stderr.
func NewLogger(level string, w io.Writer) (*slog.Logger, error) {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", level, err)
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: lvl})), nil
}
