package commands

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/swbuilder/swb/internal/installer"
	"github.com/swbuilder/swb/internal/logging"
)

var (
	uninstallProject  bool
	uninstallYes      bool
	uninstallNoBackup bool
)

func init() {
	uninstallCmd.Flags().BoolVar(&uninstallProject, "project", false,
		"remove from ./.claude of the current project instead of the user home")
	uninstallCmd.Flags().BoolVarP(&uninstallYes, "yes", "y", false,
		"remove without prompting")
	uninstallCmd.Flags().BoolVar(&uninstallNoBackup, "no-backup", false,
		"skip the snapshot before removal")
	rootCmd.AddCommand(uninstallCmd)
}

var uninstallCmd = &cobra.Command{
	Use:   "uninstall [plugin|skill]",
	Short: "Remove an installed layout",
	Long: `Remove an installed signalwire-builder layout from an assistant
directory.

The removal is confirmed first (default: keep the installation) and the
removed tree is snapshotted so 'swb backup restore' can bring it back.`,
	Example: `  # Remove the plugin installation
  swb uninstall

  # Remove the skill without prompting
  swb uninstall skill --yes

  See Also: swb install, swb backup restore`,
	Args:      cobra.MaximumNArgs(1),
	ValidArgs: installer.LayoutNames(),
	RunE:      runUninstall,
}

func runUninstall(cmd *cobra.Command, args []string) error {
	return runUninstallWithIO(cmd, args, os.Stdout, os.Stdin)
}

// runUninstallWithIO allows injecting prompt IO for testing.
func runUninstallWithIO(cmd *cobra.Command, args []string, w io.Writer, r io.Reader) error {
	logger := logging.FromContext(cmd.Context())

	layout, err := layoutFromArgs(args)
	if err != nil {
		return err
	}

	assistant, home, err := resolveInstallHome(uninstallProject)
	if err != nil {
		return err
	}

	inst := installer.New(installer.Config{
		Home:     home,
		Out:      w,
		In:       r,
		Logger:   logger,
		Force:    uninstallYes,
		NoBackup: uninstallNoBackup,
		Backup:   backupHook(logger),
	})

	result, err := inst.Uninstall(cmd.Context(), layout)
	if err != nil {
		return err
	}

	successStyle.Fprintf(w, "✓ Removed %s for %s\n", result.Layout, assistant)
	fmt.Fprintf(w, "  %s\n", result.Path)
	if result.BackupID != "" {
		fmt.Fprintf(w, "  backed up as %s (restore with 'swb backup restore %s %s')\n",
			result.BackupID, result.Layout, result.BackupID)
	}
	return nil
}
