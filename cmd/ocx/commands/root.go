// Package commands implements the CLI commands for ocx.
package commands

import (
	"context"
	"fmt"
	"io"

	"github.com/ocx-dev/ocx/internal/app"
	"github.com/ocx-dev/ocx/internal/build"
	"github.com/ocx-dev/ocx/internal/core/domain"
	"github.com/spf13/cobra"
)

// CLI represents the command line interface for ocx.
type CLI struct {
	app     Application
	rootCmd *cobra.Command
}

// Application represents the application logic interface.
type Application interface {
	Init(ctx context.Context) error
	Add(ctx context.Context, specs []string, opts app.AddOptions) (domain.Plan, []domain.LockEntry, error)
	Update(ctx context.Context, specs []string) (domain.Plan, []domain.LockEntry, error)
	Diff(ctx context.Context, componentID string, fix bool) ([]domain.Drift, error)
	RegistryAdd(ctx context.Context, name, url, version string) error
	RegistryRemove(ctx context.Context, name string) error
	RegistryList(ctx context.Context) ([]domain.Registry, bool, error)
	Search(ctx context.Context, query string, installedOnly bool) ([]domain.SearchResult, error)
	GhostInit() (domain.Profile, domain.ProfileSource, error)
	ProfileCreate(name, cloneFrom string) (domain.Profile, error)
	ProfileUse(name string) error
	ProfileList() ([]string, string, error)
	ProfileShow(override string) (domain.Profile, domain.ProfileSource, error)
	ProfileRemove(name string) error
	ProfileRegistryAdd(override, name, url, version string) error
	ProfileRegistryRemove(override, name string) error
	ProfileAdd(ctx context.Context, override string, specs []string, opts app.AddOptions) (domain.Plan, []domain.LockEntry, error)
	Run(ctx context.Context, override, target string, argv []string) error
}

// New creates a new CLI instance with the given app.
func New(a Application) *CLI {
	rootCmd := &cobra.Command{
		Use:           "ocx",
		Short:         "A component manager with registries, lockfiles and ghost mode",
		SilenceUsage:  true,
		SilenceErrors: true,
		Version:       build.Version,
	}

	rootCmd.SetVersionTemplate(fmt.Sprintf(
		"{{.Name}} version {{.Version}} (commit: %s, date: %s)\n",
		build.Commit,
		build.Date,
	))
	rootCmd.InitDefaultVersionFlag()
	rootCmd.Flags().Lookup("version").Usage = "Print the application version"

	rootCmd.InitDefaultHelpFlag()
	rootCmd.Flags().Lookup("help").Usage = "Show help for command"

	c := &CLI{
		app:     a,
		rootCmd: rootCmd,
	}

	rootCmd.AddCommand(c.newInitCmd())
	rootCmd.AddCommand(c.newAddCmd())
	rootCmd.AddCommand(c.newUpdateCmd())
	rootCmd.AddCommand(c.newDiffCmd())
	rootCmd.AddCommand(c.newRegistryCmd())
	rootCmd.AddCommand(c.newSearchCmd())
	rootCmd.AddCommand(c.newGhostCmd())
	rootCmd.AddCommand(c.newVersionCmd())

	return c
}

// Execute runs the root command with the given context.
func (c *CLI) Execute(ctx context.Context) error {
	c.rootCmd.SetContext(ctx)
	return c.rootCmd.Execute()
}

// SetArgs sets the arguments for the root command. Used for testing.
func (c *CLI) SetArgs(args []string) {
	c.rootCmd.SetArgs(args)
}

// SetOutput sets the output and error streams for the root command. Used for testing.
func (c *CLI) SetOutput(out, err io.Writer) {
	c.rootCmd.SetOut(out)
	c.rootCmd.SetErr(err)
}
