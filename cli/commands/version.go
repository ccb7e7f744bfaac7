package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/sssemil/butane/cli/internal/ui"
	"github.com/sssemil/butane/cli/internal/update"
	"github.com/sssemil/butane/cli/internal/version"
)

var versionCheck bool

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Args:  cobra.NoArgs,
	RunE:  runVersion,
}

func init() {
	versionCmd.Flags().BoolVar(&versionCheck, "check", false, "check for a newer release")
	rootCmd.AddCommand(versionCmd)
}

func runVersion(cmd *cobra.Command, args []string) error {
	fmt.Println(version.Full())
	if !versionCheck {
		return nil
	}

	latest, newer, err := update.Check(version.Version)
	if err != nil {
		ui.PrintWarning("update check failed: %v", err)
		return nil
	}
	if newer {
		ui.PrintWarning("a newer release is available: %s", latest)
		ui.PrintInfo("update with: go install github.com/sssemil/butane/cli@latest")
	} else {
		ui.PrintSuccess("you are on the latest release")
	}
	return nil
}
