package app

import (
	"fmt"
	"runtime"

	"github.com/spf13/cobra"
	"github.com/spf13/cobra/doc"

	"github.com/kodepos-id/kodepos/cmd/kodepos/cmd/build"
	"github.com/kodepos-id/kodepos/cmd/kodepos/cmd/coverage"
	"github.com/kodepos-id/kodepos/cmd/kodepos/cmd/publish"
	"github.com/kodepos-id/kodepos/cmd/kodepos/cmd/serve"
	"github.com/kodepos-id/kodepos/cmd/kodepos/cmd/validate"
	"github.com/kodepos-id/kodepos/internal/cmd/output"
)

// registerCommands registers all subcommands with the root command.
func (a *App) registerCommands(rootCmd *cobra.Command) {
	// Core commands
	rootCmd.AddCommand(build.NewCommand(a))
	rootCmd.AddCommand(publish.NewCommand(a))
	rootCmd.AddCommand(serve.NewCommand(a))

	// Data commands
	rootCmd.AddCommand(coverage.NewCommand(a))
	rootCmd.AddCommand(validate.NewCommand(a))
	rootCmd.AddCommand(a.newProfilesCommand())

	// Utility commands
	rootCmd.AddCommand(a.newVersionCommand())
	rootCmd.AddCommand(a.newManCommand())
}

func (a *App) newProfilesCommand() *cobra.Command {
	return &cobra.Command{
		Use:     "profiles",
		GroupID: "data",
		Short:   "List build profiles",
		Long: `List the build profiles: the bundled ones merged with those configured
under the profiles key of .kodepos.yaml.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return output.Print(cmd.OutOrStdout(), a.OutputFormat(), output.Profiles{Set: a.Profiles()})
		},
	}
}

func (a *App) newVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			w := cmd.OutOrStdout()
			_, err := fmt.Fprintf(w,
				"kodepos version %s\ncommit: %s\nbuilt: %s\nbuilt by: %s\ngo version: %s\nplatform: %s/%s\n",
				a.version, a.commit, a.date, a.builtBy,
				runtime.Version(), runtime.GOOS, runtime.GOARCH)
			return err
		},
	}
}

func (a *App) newManCommand() *cobra.Command {
	return &cobra.Command{
		Use:    "man",
		Short:  "Generate man page",
		Hidden: true,
		Args:   cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			header := &doc.GenManHeader{
				Title:   "KODEPOS",
				Section: "1",
				Source:  "kodepos " + a.version,
				Manual:  "kodepos Manual",
			}
			return doc.GenMan(cmd.Root(), header, cmd.OutOrStdout())
		},
	}
}
