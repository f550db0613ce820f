package commands

import (
	"github.com/ocx-dev/ocx/internal/ui/summary"
	"github.com/spf13/cobra"
)

func (c *CLI) newUpdateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "update [[registry/]name[@constraint]...]",
		Short: "Update installed components to their highest satisfying versions",
		Args:  cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			plan, entries, err := c.app.Update(cmd.Context(), args)
			if err != nil {
				summary.Installed(cmd.OutOrStdout(), entries)
				return err
			}
			summary.Plan(cmd.OutOrStdout(), plan)
			summary.Installed(cmd.OutOrStdout(), entries)
			return nil
		},
	}
}
