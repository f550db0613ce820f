package commands

import (
	"github.com/ocx-dev/ocx/internal/ui/summary"
	"github.com/spf13/cobra"
)

func (c *CLI) newDiffCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "diff [component]",
		Short: "Report drift between installed files and the lockfile",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			componentID := ""
			if len(args) == 1 {
				componentID = args[0]
			}
			fix, _ := cmd.Flags().GetBool("fix")

			drifts, err := c.app.Diff(cmd.Context(), componentID, fix)
			if err != nil {
				return err
			}
			summary.Drift(cmd.OutOrStdout(), drifts)
			return nil
		},
	}
	cmd.Flags().Bool("fix", false, "Re-record the current on-disk state as the baseline")
	return cmd
}
