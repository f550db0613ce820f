package commands

import (
	"github.com/ocx-dev/ocx/internal/app"
	"github.com/ocx-dev/ocx/internal/ui/summary"
	"github.com/spf13/cobra"
)

func (c *CLI) newAddCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "add [registry/]name[@constraint]...",
		Short: "Resolve and install components with their dependencies",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			overwrite, _ := cmd.Flags().GetBool("overwrite")

			plan, entries, err := c.app.Add(cmd.Context(), args, app.AddOptions{Overwrite: overwrite})
			if err != nil {
				// Components installed before the failure stay installed.
				summary.Installed(cmd.OutOrStdout(), entries)
				return err
			}
			summary.Plan(cmd.OutOrStdout(), plan)
			summary.Installed(cmd.OutOrStdout(), entries)
			return nil
		},
	}
	cmd.Flags().Bool("overwrite", false, "Claim paths already owned by other components")
	return cmd
}
