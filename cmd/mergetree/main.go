package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/sdejongh/mergetree/internal/cli"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	rootCmd := &cobra.Command{
		Use:   "mergetree",
		Short: "Three-way directory tree merge utility",
		Long: `mergetree reconciles two divergent copies of a directory tree against
their common ancestor. Files that only one side changed are merged
automatically; files both sides changed receive embedded conflict markers.`,
		Version:       fmt.Sprintf("%s (commit: %s, built: %s)", version, commit, date),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Add global flags
	cli.AddGlobalFlags(rootCmd)

	// Add commands
	rootCmd.AddCommand(cli.NewMergeCommand())
	rootCmd.AddCommand(cli.NewDiffCommand())
	rootCmd.AddCommand(cli.NewConfigCommand())
	rootCmd.AddCommand(cli.NewVersionCommand())

	return rootCmd.Execute()
}
