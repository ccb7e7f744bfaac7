package commands

import (
	"fmt"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/sssemil/butane/cli/internal/config"
	"github.com/sssemil/butane/cli/internal/ui"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Scaffold a butane project in the current directory",
	Args:  cobra.NoArgs,
	RunE:  runInit,
}

func init() {
	rootCmd.AddCommand(initCmd)
}

const starterModels = `// Describe your tables here, then run:
//
//   butane makemigration --name initial
//   butane migrate

model users {
    id         bigint    @id
    name       text
    email      text?
    created_at timestamp
}
`

func runInit(cmd *cobra.Command, args []string) error {
	ui.PrintHeader("butane", "init")

	cfg := &config.Config{
		ModelsPath:    "models.butane",
		MigrationsDir: "migrations",
	}

	if exists, _ := afero.Exists(config.AppFs, "butane.yaml"); exists {
		return fmt.Errorf("butane.yaml already exists, refusing to overwrite")
	}
	if err := config.Save(cfg); err != nil {
		return fmt.Errorf("write butane.yaml: %w", err)
	}
	ui.PrintSuccess("created butane.yaml")

	if exists, _ := afero.Exists(config.AppFs, cfg.ModelsPath); !exists {
		if err := afero.WriteFile(config.AppFs, cfg.ModelsPath, []byte(starterModels), 0o644); err != nil {
			return err
		}
		ui.PrintSuccess("created %s", cfg.ModelsPath)
	}

	if err := config.AppFs.MkdirAll(cfg.MigrationsDir, 0o755); err != nil {
		return err
	}
	ui.PrintSuccess("created %s/", cfg.MigrationsDir)

	ui.PrintInfo("\nSet DATABASE_URL (or put it in .env), edit %s, then run `butane makemigration`.", cfg.ModelsPath)
	return nil
}
