package commands

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/sssemil/butane/cli/internal/ui"
	"github.com/sssemil/butane/migrate"
)

var (
	migrateForce bool
	migratePlan  bool
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply pending migrations to the database",
	Args:  cobra.NoArgs,
	RunE:  runMigrate,
}

func init() {
	migrateCmd.Flags().BoolVarP(&migrateForce, "force", "f", false, "apply destructive migrations without asking")
	migrateCmd.Flags().BoolVar(&migratePlan, "plan", false, "print the SQL that would run, without touching the database")
	rootCmd.AddCommand(migrateCmd)
}

func runMigrate(cmd *cobra.Command, args []string) error {
	ui.PrintHeader("butane", "migrate")

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	backend, err := connect(cfg)
	if err != nil {
		return err
	}
	defer backend.Close()

	ctx := context.Background()
	store := openStore(cfg)
	applier := migrate.NewApplier(backend, store)

	statuses, err := applier.Status(ctx)
	if err != nil {
		return err
	}
	var pending []string
	destructive := false
	for _, st := range statuses {
		if !st.Applied {
			pending = append(pending, st.Name)
			destructive = destructive || st.Destructive
		}
	}
	if len(pending) == 0 {
		ui.PrintSuccess("database is up to date")
		return nil
	}

	if migratePlan {
		return printPlan(store, applier, pending)
	}

	if destructive && !migrateForce {
		ui.PrintWarning("pending migrations contain destructive operations")
		if !confirm(fmt.Sprintf("Apply %d migration(s) to the %s database?", len(pending), backend.Dialect().Name())) {
			ui.PrintInfo("aborted, nothing was applied")
			return nil
		}
	}

	for _, name := range pending {
		m, err := store.Get(name)
		if err != nil {
			return err
		}
		stop := ui.Spinner("applying " + name)
		if err := applier.Apply(ctx, m); err != nil {
			stop(false, "failed on "+name)
			return err
		}
		stop(true, "applied "+name)
	}
	ui.PrintSuccess("applied %d migration(s)", len(pending))
	return nil
}

// printPlan renders the pending statements as a markdown document so
// the SQL reads nicely in the terminal.
func printPlan(store *migrate.Store, applier *migrate.Applier, pending []string) error {
	var doc strings.Builder
	doc.WriteString("# Migration plan\n")
	for _, name := range pending {
		m, err := store.Get(name)
		if err != nil {
			return err
		}
		stmts, err := applier.Plan(m)
		if err != nil {
			return err
		}
		fmt.Fprintf(&doc, "\n## %s\n\n```sql\n", name)
		for _, stmt := range stmts {
			doc.WriteString(stmt.SQL)
			doc.WriteString(";\n")
		}
		doc.WriteString("```\n")
	}
	fmt.Print(ui.Markdown(doc.String()))
	return nil
}
