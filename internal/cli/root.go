// Package cli implements the brightctl and volumectl commands.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/jmylchreest/levelosd/internal/config"
	"github.com/jmylchreest/levelosd/internal/dbus"
	"github.com/jmylchreest/levelosd/internal/tui"
)

// Client is the daemon API used by the commands.
type Client interface {
	tui.Controller
	ServerInformation(ctx context.Context) (dbus.ServerInfo, error)
	Close() error
}

// ClientFactory connects to a daemon.
type ClientFactory func(profile dbus.Profile, logger *slog.Logger) (Client, error)

// WatchFunc follows StateChanged signals until ctx is done.
type WatchFunc func(ctx context.Context, profile dbus.Profile, logger *slog.Logger, handler func(dbus.State)) error

func dialSessionBus(profile dbus.Profile, logger *slog.Logger) (Client, error) {
	c, err := dbus.NewClient(profile, logger)
	if err != nil {
		return nil, err
	}
	return c, nil
}

func watchSessionBus(ctx context.Context, profile dbus.Profile, logger *slog.Logger, handler func(dbus.State)) error {
	w := dbus.NewWatcher(profile, logger)
	w.SetStateHandler(handler)
	return w.Run(ctx)
}

// app holds the state shared by one command tree.
type app struct {
	profile dbus.Profile
	dial    ClientFactory
	watch   WatchFunc

	opts struct {
		verbose    bool
		timeout    time.Duration
		configPath string
	}
	cfg    *config.Config
	logger *slog.Logger
}

// NewRootCommand builds the command tree for a daemon profile.
func NewRootCommand(profile dbus.Profile, version string) *cobra.Command {
	return newRootCommand(profile, version, dialSessionBus, watchSessionBus)
}

func newRootCommand(profile dbus.Profile, version string, dial ClientFactory, watch WatchFunc) *cobra.Command {
	a := &app{
		profile: profile,
		dial:    dial,
		watch:   watch,
		cfg:     config.DefaultConfig(),
		logger:  slog.New(slog.NewTextHandler(io.Discard, nil)),
	}

	name := clientName(profile)
	daemon := config.DaemonName(profile.Quantity)
	root := &cobra.Command{
		Use:   name,
		Short: fmt.Sprintf("Control the %s on-screen display", profile.Quantity),
		Long: fmt.Sprintf(`%s sends commands to %s, the %s overlay daemon.

Each command adjusts the %s and shows the overlay, which hides
once no command has arrived for the configured delay.

Running %s without a subcommand launches the interactive TUI.`,
			name, daemon, profile.Quantity, profile.Quantity, name),
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			a.setupLogger(cmd.ErrOrStderr())

			cfg, err := config.LoadConfig(a.opts.configPath)
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}
			if cmd.Flags().Changed("timeout") {
				cfg.Client.Timeout = config.Duration(a.opts.timeout)
			}
			a.cfg = cfg
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runTUI(cmd, args)
		},
	}

	root.PersistentFlags().BoolVarP(&a.opts.verbose, "verbose", "v", false,
		"Enable verbose logging")
	root.PersistentFlags().DurationVar(&a.opts.timeout, "timeout", config.DefaultClientTimeout,
		"D-Bus call timeout")
	root.PersistentFlags().StringVar(&a.opts.configPath, "config", "",
		"Path to config file (default: ~/.config/levelosd/ctl.toml)")

	root.AddCommand(
		a.increaseCommand(),
		a.decreaseCommand(),
		a.statusCommand(),
		a.infoCommand(),
		a.tuiCommand(),
	)
	if profile.ToggleMute {
		root.AddCommand(a.toggleMuteCommand())
	}

	return root
}

// Execute runs the command tree and returns the process exit code.
func Execute(profile dbus.Profile, version string) int {
	return execute(NewRootCommand(profile, version), profile, os.Args[1:], os.Stderr)
}

// execute returns 0 on success, 2 when the daemon could not be reached and
// 1 for any other failure.
func execute(root *cobra.Command, profile dbus.Profile, args []string, stderr io.Writer) int {
	root.SetArgs(args)
	err := root.Execute()
	if err == nil {
		return 0
	}

	if dbus.IsServiceUnknown(err) {
		fmt.Fprintf(stderr, "Error: %s is not running\n", config.DaemonName(profile.Quantity))
	} else {
		fmt.Fprintf(stderr, "Error: %v\n", err)
	}

	var te *dbus.TransportError
	if errors.As(err, &te) {
		return 2
	}
	return 1
}

// setupLogger configures the command logger.
func (a *app) setupLogger(w io.Writer) {
	level := slog.LevelWarn
	if a.opts.verbose {
		level = slog.LevelDebug
	}

	// Log to stderr so stdout is clean for output
	handler := slog.NewTextHandler(w, &slog.HandlerOptions{Level: level})
	a.logger = slog.New(handler)
}

// withClient connects, runs fn with a timeout context and closes the client.
func (a *app) withClient(cmd *cobra.Command, fn func(ctx context.Context, c Client) error) error {
	c, err := a.dial(a.profile, a.logger)
	if err != nil {
		return err
	}
	defer func() {
		if err := c.Close(); err != nil {
			a.logger.Debug("failed to close client", "error", err)
		}
	}()

	ctx, cancel := context.WithTimeout(commandContext(cmd), a.cfg.Client.Timeout.Duration())
	defer cancel()
	return fn(ctx, c)
}

func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}

func clientName(p dbus.Profile) string {
	return strings.TrimSuffix(config.DaemonName(p.Quantity), "d") + "ctl"
}
