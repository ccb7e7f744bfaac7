package commands

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/sssemil/butane/cli/internal/ui"
	"github.com/sssemil/butane/migrate"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show applied and pending migrations",
	Args:  cobra.NoArgs,
	RunE:  runStatus,
}

func init() {
	rootCmd.AddCommand(statusCmd)
}

func runStatus(cmd *cobra.Command, args []string) error {
	ui.PrintHeader("butane", "status")

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	backend, err := connect(cfg)
	if err != nil {
		return err
	}
	defer backend.Close()

	applier := migrate.NewApplier(backend, openStore(cfg))
	statuses, err := applier.Status(context.Background())
	if err != nil {
		return err
	}
	if len(statuses) == 0 {
		ui.PrintInfo("no migrations yet, run `butane makemigration` first")
		return nil
	}

	pending := 0
	rows := make([][]string, 0, len(statuses))
	for _, st := range statuses {
		state := ui.SuccessStyle.Render("applied")
		if !st.Applied {
			state = ui.WarningStyle.Render("pending")
			pending++
		}
		note := ""
		if st.Destructive {
			note = "destructive"
		}
		rows = append(rows, []string{st.Name, state, note})
	}
	ui.Table([]string{"migration", "state", ""}, rows)

	if pending == 0 {
		ui.PrintSuccess("database is up to date")
	} else {
		ui.PrintInfo("%d pending migration(s), run `butane migrate` to apply", pending)
	}
	return nil
}
