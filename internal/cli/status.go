package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os/signal"
	"slices"
	"strings"
	"sync"
	"syscall"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/jmylchreest/levelosd/internal/dbus"
	"github.com/jmylchreest/levelosd/internal/model"
)

// WaybarStatus represents the Waybar custom module JSON format.
type WaybarStatus struct {
	Text       string `json:"text" yaml:"text"`
	Alt        string `json:"alt,omitempty" yaml:"alt,omitempty"`
	Tooltip    string `json:"tooltip,omitempty" yaml:"tooltip,omitempty"`
	Class      string `json:"class,omitempty" yaml:"class,omitempty"`
	Percentage int    `json:"percentage" yaml:"percentage"`
}

var statusFormats = []string{"text", "json", "yaml"}

func (a *app) statusCommand() *cobra.Command {
	var (
		format string
		follow bool
	)

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Print the current level",
		Long: fmt.Sprintf(`Print the %[1]s daemon's current state.

The json format is compatible with Waybar's custom module:

  "custom/%[2]s": {
    "exec": "%[3]s status --format json --follow",
    "return-type": "json",
    "on-scroll-up": "%[3]s increase 5",
    "on-scroll-down": "%[3]s decrease 5"
  }

With --follow a new line is printed for every state change.`,
			a.profile.Quantity, a.profile.Quantity, clientName(a.profile)),
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !cmd.Flags().Changed("format") {
				format = a.cfg.Status.Format
			}
			if !slices.Contains(statusFormats, format) {
				return fmt.Errorf("invalid format %q (valid: %s)", format, strings.Join(statusFormats, ", "))
			}

			var st dbus.State
			err := a.withClient(cmd, func(ctx context.Context, c Client) error {
				var err error
				st, err = c.State(ctx)
				return err
			})
			if err != nil {
				if format == "json" {
					_ = writeStatus(cmd.OutOrStdout(), format, WaybarStatus{Alt: "error", Class: "error"}, "")
				}
				return err
			}
			if err := a.printState(cmd.OutOrStdout(), format, st); err != nil {
				return err
			}
			if !follow {
				return nil
			}
			return a.followStatus(cmd, format)
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", "text",
		"Output format (text, json, yaml)")
	cmd.Flags().BoolVar(&follow, "follow", false,
		"Keep running and print every state change")

	return cmd
}

// followStatus prints states from StateChanged signals until interrupted.
func (a *app) followStatus(cmd *cobra.Command, format string) error {
	ctx, stop := signal.NotifyContext(commandContext(cmd), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var (
		mu      sync.Mutex
		lastErr error
	)
	out := cmd.OutOrStdout()
	err := a.watch(ctx, a.profile, a.logger, func(st dbus.State) {
		mu.Lock()
		defer mu.Unlock()
		if err := a.printState(out, format, st); err != nil {
			lastErr = err
			stop()
		}
	})
	if err != nil {
		return err
	}
	mu.Lock()
	defer mu.Unlock()
	return lastErr
}

func (a *app) printState(w io.Writer, format string, st dbus.State) error {
	return writeStatus(w, format, a.waybarStatus(st), textStatus(st))
}

// waybarStatus converts a daemon state to the Waybar format.
func (a *app) waybarStatus(st dbus.State) WaybarStatus {
	class := model.LevelClass(st.Level)
	if st.Muted {
		class = "muted"
	}

	name := string(a.profile.Quantity)
	if name != "" {
		name = strings.ToUpper(name[:1]) + name[1:]
	}
	tooltip := fmt.Sprintf("%s: %s", name, st.Text)
	if st.Muted {
		tooltip += " (muted)"
	}

	return WaybarStatus{
		Text:       st.Text,
		Alt:        class,
		Tooltip:    tooltip,
		Class:      class,
		Percentage: min(max(st.Level, 0), 100),
	}
}

func textStatus(st dbus.State) string {
	if st.Muted {
		return st.Text + " (muted)"
	}
	return st.Text
}

func writeStatus(w io.Writer, format string, status WaybarStatus, text string) error {
	switch format {
	case "json":
		return json.NewEncoder(w).Encode(status)
	case "yaml":
		data, err := yaml.Marshal(status)
		if err != nil {
			return err
		}
		_, err = w.Write(data)
		return err
	default:
		_, err := fmt.Fprintln(w, text)
		return err
	}
}
