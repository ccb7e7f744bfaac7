package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/sssemil/butane/cli/internal/ui"
)

var makemigrationName string

var makemigrationCmd = &cobra.Command{
	Use:   "makemigration",
	Short: "Diff the model file against the latest migration and write a new one",
	Args:  cobra.NoArgs,
	RunE:  runMakemigration,
}

func init() {
	makemigrationCmd.Flags().StringVarP(&makemigrationName, "name", "n", "", "migration name, as in add_email (required)")
	makemigrationCmd.MarkFlagRequired("name")
	rootCmd.AddCommand(makemigrationCmd)
}

func runMakemigration(cmd *cobra.Command, args []string) error {
	ui.PrintHeader("butane", "makemigration")

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	target, err := loadModels(cfg)
	if err != nil {
		return err
	}

	stop := ui.Spinner("diffing against the latest migration")
	store := openStore(cfg)
	m, err := store.Create(makemigrationName, target)
	if err != nil {
		stop(false, "diff failed")
		return err
	}
	if m == nil {
		stop(true, "no changes, nothing to do")
		return nil
	}
	stop(true, fmt.Sprintf("created %s", m.Name))

	rows := make([][]string, 0, len(m.Operations))
	for _, op := range m.Operations {
		note := ""
		if op.Destructive() {
			note = ui.WarningStyle.Render("destructive")
		}
		rows = append(rows, []string{op.String(), note})
	}
	ui.Table([]string{"operation", ""}, rows)

	if m.Destructive() {
		ui.PrintWarning("this migration contains destructive operations; `butane migrate` will ask before applying")
	}
	return nil
}
