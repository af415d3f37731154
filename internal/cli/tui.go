package cli

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/jmylchreest/levelosd/internal/dbus"
	"github.com/jmylchreest/levelosd/internal/tui"
)

func (a *app) tuiCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "tui",
		Short: "Launch the interactive controller",
		Long: `Launch an interactive controller showing the current level.

Key bindings:
  +/↑, -/↓    Adjust by the configured step
  pgup/pgdn   Adjust by four steps
  m           Toggle mute (volume only)
  r           Refresh
  ?           Show help
  q           Quit`,
		Args: cobra.NoArgs,
		RunE: a.runTUI,
	}
}

func (a *app) runTUI(cmd *cobra.Command, args []string) error {
	c, err := a.dial(a.profile, a.logger)
	if err != nil {
		return err
	}
	defer func() { _ = c.Close() }()

	ctx, cancel := context.WithCancel(commandContext(cmd))
	defer cancel()

	updates := make(chan dbus.State, 8)
	go func() {
		err := a.watch(ctx, a.profile, a.logger, func(st dbus.State) {
			select {
			case updates <- st:
			default:
				a.logger.Debug("dropping state update, tui busy")
			}
		})
		if err != nil {
			a.logger.Warn("state updates unavailable", "error", err)
		}
	}()

	return tui.Run(c, a.profile, a.cfg, updates)
}
