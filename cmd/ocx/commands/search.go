package commands

import (
	"github.com/ocx-dev/ocx/internal/ui/summary"
	"github.com/spf13/cobra"
)

func (c *CLI) newSearchCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "search [query]",
		Short: "Search configured registries for components",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			query := ""
			if len(args) == 1 {
				query = args[0]
			}
			installedOnly, _ := cmd.Flags().GetBool("installed")

			results, err := c.app.Search(cmd.Context(), query, installedOnly)
			if err != nil {
				return err
			}
			summary.Search(cmd.OutOrStdout(), results)
			return nil
		},
	}
	cmd.Flags().Bool("installed", false, "Search only installed components")
	return cmd
}
