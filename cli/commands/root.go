// Package commands wires the butane CLI.
package commands

import (
	"github.com/spf13/cobra"

	"github.com/sssemil/butane/cli/internal/ui"
)

var rootCmd = &cobra.Command{
	Use:   "butane",
	Short: "Schema migrations for Go projects",
	Long: `butane manages your database schema from declarative model files.

Define tables in models.butane, generate migrations with makemigration,
and apply them with migrate. Postgres, MySQL, and SQLite are supported
through a single model language.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the CLI and reports any error on stderr.
func Execute() error {
	if err := rootCmd.Execute(); err != nil {
		ui.PrintError("%v", err)
		return err
	}
	return nil
}
