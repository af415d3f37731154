package daemon

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/jmylchreest/levelosd/internal/config"
	"github.com/jmylchreest/levelosd/internal/model"
)

// Run is the entry point of a daemon binary. args excludes the program
// name. It returns the process exit code.
func Run(q model.Quantity, version string, args []string) int {
	name := config.DaemonName(q)

	opts, err := ParseOptions(q, args, os.Stderr)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		fmt.Fprintln(os.Stderr, name+":", err)
		return 2
	}

	if opts.ShowVersion {
		fmt.Println(name, "version", version)
		return 0
	}

	logger, err := NewLogger(opts.LogLevel, os.Stderr)
	if err != nil {
		fmt.Fprintln(os.Stderr, name+":", err)
		return 2
	}
	slog.SetDefault(logger)

	if opts.InitConfig {
		return initConfig(q, opts.ConfigPath, logger)
	}

	logger.Info("starting "+name, "version", version, "headless", opts.Headless)

	cfg, err := config.LoadDaemonConfig(q, opts.ConfigPath)
	if err != nil {
		logger.Error("failed to load config", "path", opts.ConfigPath, "error", err)
		return 1
	}

	d := New(q, cfg, opts.ConfigPath, version, logger)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if opts.Headless {
		return d.runHeadless(ctx, cancel)
	}
	return d.runGUI(ctx, cancel)
}

// initConfig writes the default config unless a file already exists.
func initConfig(q model.Quantity, path string, logger *slog.Logger) int {
	if _, err := os.Stat(path); err == nil {
		logger.Error("config file already exists", "path", path)
		return 1
	}
	if err := config.SaveDaemonConfig(config.DefaultDaemonConfig(q), path); err != nil {
		logger.Error("failed to write config", "path", path, "error", err)
		return 1
	}
	fmt.Println("wrote", path)
	return 0
}

// notifySignals calls fn once on the first SIGINT or SIGTERM.
func notifySignals(ctx context.Context, logger *slog.Logger, fn func()) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		defer signal.Stop(sigCh)
		select {
		case sig := <-sigCh:
			logger.Info("received signal, shutting down", "signal", sig)
			fn()
		case <-ctx.Done():
		}
	}()
}
