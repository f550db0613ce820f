package commands

import (
	"fmt"

	"github.com/ocx-dev/ocx/internal/app"
	"github.com/ocx-dev/ocx/internal/ui/summary"
	"github.com/spf13/cobra"
)

// newGhostCmd groups the profile-scoped commands: profiles live outside any
// project and project their component trees onto foreign repositories.
func (c *CLI) newGhostCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ghost",
		Short: "Apply your own component set to any repository without writing to it",
	}
	cmd.PersistentFlags().String("profile", "", "Profile to use instead of the current one")

	cmd.AddCommand(c.newGhostInitCmd())
	cmd.AddCommand(c.newGhostProfileCmd())
	cmd.AddCommand(c.newGhostRegistryCmd())
	cmd.AddCommand(c.newGhostAddCmd())
	cmd.AddCommand(c.newGhostRunCmd())
	return cmd
}

func (c *CLI) newGhostInitCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Seed the profile home with the default profile",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			profile, source, err := c.app.GhostInit()
			if err != nil {
				return err
			}
			summary.Profile(cmd.OutOrStdout(), profile, source)
			return nil
		},
	}
}

func (c *CLI) newGhostProfileCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "profile",
		Short: "Manage ghost profiles",
	}

	create := &cobra.Command{
		Use:   "create <name>",
		Short: "Create a profile",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			from, _ := cmd.Flags().GetString("from")
			profile, err := c.app.ProfileCreate(args[0], from)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "created profile %s\n", profile.Name)
			return nil
		},
	}
	create.Flags().String("from", "", "Clone configuration from an existing profile")

	use := &cobra.Command{
		Use:   "use <name>",
		Short: "Make a profile the current one",
		Args:  cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			return c.app.ProfileUse(args[0])
		},
	}

	list := &cobra.Command{
		Use:   "list",
		Short: "List profiles",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			names, current, err := c.app.ProfileList()
			if err != nil {
				return err
			}
			summary.Profiles(cmd.OutOrStdout(), names, current)
			return nil
		},
	}

	show := &cobra.Command{
		Use:   "show",
		Short: "Show the resolved profile and how it was selected",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			override, _ := cmd.Flags().GetString("profile")
			profile, source, err := c.app.ProfileShow(override)
			if err != nil {
				return err
			}
			summary.Profile(cmd.OutOrStdout(), profile, source)
			return nil
		},
	}

	remove := &cobra.Command{
		Use:   "rm <name>",
		Short: "Remove a profile",
		Args:  cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			return c.app.ProfileRemove(args[0])
		},
	}

	cmd.AddCommand(create, use, list, show, remove)
	return cmd
}

func (c *CLI) newGhostRegistryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "registry",
		Short: "Manage the resolved profile's registries",
	}

	add := &cobra.Command{
		Use:   "add <name> <url>",
		Short: "Add a registry to the profile",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			override, _ := cmd.Flags().GetString("profile")
			pin, _ := cmd.Flags().GetString("pin")
			return c.app.ProfileRegistryAdd(override, args[0], args[1], pin)
		},
	}
	add.Flags().String("pin", "", "Pin every component from this registry to an exact version")

	remove := &cobra.Command{
		Use:   "remove <name>",
		Short: "Remove a registry from the profile",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			override, _ := cmd.Flags().GetString("profile")
			return c.app.ProfileRegistryRemove(override, args[0])
		},
	}

	cmd.AddCommand(add, remove)
	return cmd
}

func (c *CLI) newGhostAddCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "add [registry/]name[@constraint]...",
		Short: "Install components into the resolved profile's component tree",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			override, _ := cmd.Flags().GetString("profile")
			overwrite, _ := cmd.Flags().GetBool("overwrite")

			plan, entries, err := c.app.ProfileAdd(cmd.Context(), override, args, app.AddOptions{Overwrite: overwrite})
			if err != nil {
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

func (c *CLI) newGhostRunCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "run <target-repo> [-- command...]",
		Short: "Run a command inside a ghost overlay of the target repository",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			override, _ := cmd.Flags().GetString("profile")
			return c.app.Run(cmd.Context(), override, args[0], args[1:])
		},
	}
}
