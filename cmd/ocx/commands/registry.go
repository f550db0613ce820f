package commands

import (
	"github.com/ocx-dev/ocx/internal/ui/summary"
	"github.com/spf13/cobra"
)

func (c *CLI) newRegistryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "registry",
		Short: "Manage the project's component registries",
	}

	add := &cobra.Command{
		Use:   "add <name> <url>",
		Short: "Add a registry to the project configuration",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			pin, _ := cmd.Flags().GetString("pin")
			return c.app.RegistryAdd(cmd.Context(), args[0], args[1], pin)
		},
	}
	add.Flags().String("pin", "", "Pin every component from this registry to an exact version")

	remove := &cobra.Command{
		Use:   "remove <name>",
		Short: "Remove a registry from the project configuration",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.app.RegistryRemove(cmd.Context(), args[0])
		},
	}

	list := &cobra.Command{
		Use:   "list",
		Short: "List registries in priority order",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			registries, locked, err := c.app.RegistryList(cmd.Context())
			if err != nil {
				return err
			}
			summary.Registries(cmd.OutOrStdout(), registries, locked)
			return nil
		},
	}

	cmd.AddCommand(add, remove, list)
	return cmd
}
