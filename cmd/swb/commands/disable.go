package commands

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	errs "github.com/swbuilder/swb/internal/errors"
	"github.com/swbuilder/swb/internal/logging"
)

var disableRemove bool

func init() {
	disableCmd.Flags().BoolVar(&disableRemove, "remove", false,
		"drop the plugin entry entirely instead of marking it disabled")
	rootCmd.AddCommand(disableCmd)
}

var disableCmd = &cobra.Command{
	Use:   "disable",
	Short: "Disable the signalwire-builder plugin",
	Long: `Mark the signalwire-builder plugin as disabled in the assistant's
settings file.

The plugin entry stays in the file marked false so the assistant
remembers the explicit choice; --remove drops the entry entirely. As
with enable, unknown fields and file permissions are preserved and the
original file is snapshotted before the first edit.`,
	Example: `  # Disable the plugin
  swb disable

  # Remove the entry entirely
  swb disable --remove

  See Also: swb enable`,
	Args: cobra.NoArgs,
	RunE: runDisable,
}

func runDisable(cmd *cobra.Command, _ []string) error {
	return runDisableWithWriter(cmd, os.Stdout)
}

// runDisableWithWriter allows injecting a writer for testing.
func runDisableWithWriter(cmd *cobra.Command, w io.Writer) error {
	logger := logging.FromContext(cmd.Context())

	svc, key, err := openSettings(logger)
	if err != nil {
		return err
	}

	if disableRemove {
		if err := svc.RemovePlugin(key); err != nil {
			return errs.NewSystemError(err, "Run 'swb doctor' to inspect the settings file.")
		}
		successStyle.Fprintf(w, "✓ Removed %s from settings\n", key)
		fmt.Fprintf(w, "  %s\n", svc.Path())
		return nil
	}

	if err := svc.DisablePlugin(key); err != nil {
		return errs.NewSystemError(err, "Run 'swb doctor' to inspect the settings file.")
	}

	successStyle.Fprintf(w, "✓ Disabled %s\n", key)
	fmt.Fprintf(w, "  %s\n", svc.Path())
	return nil
}
