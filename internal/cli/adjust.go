package cli

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strconv"

	"github.com/spf13/cobra"
)

func (a *app) increaseCommand() *cobra.Command {
	return &cobra.Command{
		Use:     "increase <step>",
		Aliases: []string{"inc", "i", "+"},
		Short:   fmt.Sprintf("Raise the %s by step percent", a.profile.Quantity),
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			step, err := parseStep(args[0])
			if err != nil {
				return err
			}
			return a.withClient(cmd, func(ctx context.Context, c Client) error {
				return c.Increase(ctx, step)
			})
		},
	}
}

func (a *app) decreaseCommand() *cobra.Command {
	return &cobra.Command{
		Use:     "decrease <step>",
		Aliases: []string{"dec", "d", "-"},
		Short:   fmt.Sprintf("Lower the %s by step percent", a.profile.Quantity),
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			step, err := parseStep(args[0])
			if err != nil {
				return err
			}
			return a.withClient(cmd, func(ctx context.Context, c Client) error {
				return c.Decrease(ctx, step)
			})
		},
	}
}

func (a *app) toggleMuteCommand() *cobra.Command {
	return &cobra.Command{
		Use:     "toggle-mute",
		Aliases: []string{"mute", "unmute", "m", "/"},
		Short:   "Toggle mute",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withClient(cmd, func(ctx context.Context, c Client) error {
				return c.ToggleMute(ctx)
			})
		},
	}
}

// parseStep parses a percentage step that fits the daemon's int32 argument.
func parseStep(s string) (int, error) {
	step, err := strconv.ParseInt(s, 10, 32)
	if err != nil {
		var numErr *strconv.NumError
		if errors.As(err, &numErr) && errors.Is(numErr.Err, strconv.ErrRange) {
			return 0, fmt.Errorf("invalid step %s: must be at most %d", s, math.MaxInt32)
		}
		return 0, fmt.Errorf("invalid step %q: must be an integer", s)
	}
	if step < 0 {
		return 0, fmt.Errorf("invalid step %d: must not be negative", step)
	}
	return int(step), nil
}
