package cli

import (
	"context"
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
)

func (a *app) infoCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "info",
		Short: "Show daemon information",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withClient(cmd, func(ctx context.Context, c Client) error {
				info, err := c.ServerInformation(ctx)
				if err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				fmt.Fprintf(out, "Name:     %s\n", info.Name)
				fmt.Fprintf(out, "Version:  %s\n", info.Version)
				fmt.Fprintf(out, "Started:  %s\n", humanize.Time(info.StartedAt))
				fmt.Fprintf(out, "Commands: %s\n", humanize.Comma(int64(info.Handled)))
				return nil
			})
		},
	}
}
