package commands

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/sssemil/butane/cli/internal/ui"
	"github.com/sssemil/butane/migrate"
)

var rollbackForce bool

var rollbackCmd = &cobra.Command{
	Use:   "rollback",
	Short: "Revert the most recently applied migration",
	Args:  cobra.NoArgs,
	RunE:  runRollback,
}

func init() {
	rollbackCmd.Flags().BoolVarP(&rollbackForce, "force", "f", false, "roll back without asking")
	rootCmd.AddCommand(rollbackCmd)
}

func runRollback(cmd *cobra.Command, args []string) error {
	ui.PrintHeader("butane", "rollback")

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	backend, err := connect(cfg)
	if err != nil {
		return err
	}
	defer backend.Close()

	if !rollbackForce && !confirm("Roll back the last applied migration? This can drop tables and columns.") {
		ui.PrintInfo("aborted")
		return nil
	}

	applier := migrate.NewApplier(backend, openStore(cfg))
	name, err := applier.Rollback(context.Background())
	if err != nil {
		return err
	}
	ui.PrintSuccess("rolled back %s", name)
	return nil
}
