package commands

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/sssemil/butane/cli/internal/ui"
	"github.com/sssemil/butane/cli/internal/watch"
)

var validateWatch bool

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Parse and validate the model file",
	Args:  cobra.NoArgs,
	RunE:  runValidate,
}

func init() {
	validateCmd.Flags().BoolVarP(&validateWatch, "watch", "w", false, "re-validate whenever the model file changes")
	rootCmd.AddCommand(validateCmd)
}

func runValidate(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	check := func() error {
		s, err := loadModels(cfg)
		if err != nil {
			ui.PrintError("%v", err)
			return err
		}
		tables := s.Tables()
		ui.PrintSuccess("%s is valid (%d table(s), hash %.12s)", cfg.ModelsPath, len(tables), s.Hash())
		return nil
	}

	if !validateWatch {
		ui.PrintHeader("butane", "validate")
		return check()
	}

	ui.PrintHeader("butane", "validate --watch")
	w, err := watch.New(cfg.ModelsPath, func() error {
		fmt.Printf("[%s] checking %s\n", time.Now().Format("15:04:05"), cfg.ModelsPath)
		// Keep watching after a failed check.
		_ = check()
		return nil
	})
	if err != nil {
		return err
	}
	defer w.Stop()
	ui.PrintInfo("watching %s, press Ctrl-C to stop", cfg.ModelsPath)
	return w.Start()
}
