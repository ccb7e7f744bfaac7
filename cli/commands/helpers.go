package commands

import (
	"fmt"
	"os"
	"strings"

	"github.com/AlecAivazis/survey/v2"
	"github.com/spf13/afero"

	"github.com/sssemil/butane/cli/internal/config"
	"github.com/sssemil/butane/cli/internal/ui"
	"github.com/sssemil/butane/db"
	"github.com/sssemil/butane/internal/debug"
	"github.com/sssemil/butane/migrate"
	"github.com/sssemil/butane/schema"
	"github.com/sssemil/butane/schema/dsl"
)

// loadConfig resolves project configuration and arms debug logging.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	debug.Init(cfg.Debug)
	return cfg, nil
}

// connect opens the configured database backend.
func connect(cfg *config.Config) (db.Backend, error) {
	if cfg.Provider == "" {
		return nil, fmt.Errorf("no database provider: set DATABASE_URL or provider in butane.yaml")
	}
	dsn, err := cfg.DSN()
	if err != nil {
		return nil, err
	}
	return db.Connect(cfg.Provider, dsn)
}

// openStore opens the migration store on the configured directory.
func openStore(cfg *config.Config) *migrate.Store {
	return migrate.NewStoreFs(config.AppFs, cfg.MigrationsDir)
}

// loadModels parses the model file into a validated schema, printing
// positioned diagnostics on failure.
func loadModels(cfg *config.Config) (*schema.Schema, error) {
	data, err := afero.ReadFile(config.AppFs, cfg.ModelsPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("model file not found: %s (run `butane init` first)", cfg.ModelsPath)
		}
		return nil, err
	}
	source := string(data)

	file, err := dsl.ParseFile(cfg.ModelsPath, strings.NewReader(source))
	if err != nil {
		return nil, err
	}
	s, diags := dsl.ConvertFile(file)
	if diags.HasErrors() {
		diags.PrettyPrint(os.Stderr, source)
		return nil, fmt.Errorf("%s has %d error(s)", cfg.ModelsPath, len(diags.Errors()))
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return s, nil
}

// confirm asks the user to proceed, defaulting to no. A failed prompt
// (no terminal) counts as a refusal.
func confirm(message string) bool {
	ok := false
	prompt := &survey.Confirm{Message: message, Default: false}
	if err := survey.AskOne(prompt, &ok); err != nil {
		ui.PrintWarning("could not prompt, assuming no: %v", err)
		return false
	}
	return ok
}
