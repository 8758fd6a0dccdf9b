package commands

import (
	"fmt"
	"io"
	"os"

	"github.com/cockroachdb/errors"
	"github.com/spf13/cobra"

	errs "github.com/swbuilder/swb/internal/errors"
	"github.com/swbuilder/swb/internal/installer"
)

var backupCreateProject bool

func init() {
	backupCreateCmd.Flags().BoolVar(&backupCreateProject, "project", false,
		"snapshot the install under ./.claude of the current project")
	backupCmd.AddCommand(backupCreateCmd)
}

var backupCreateCmd = &cobra.Command{
	Use:   "create [plugin|skill]",
	Short: "Snapshot an installed layout",
	Long: `Snapshot an installed layout without modifying it.

Install and uninstall snapshot automatically before destructive steps;
create is for taking one by hand, for example before editing installed
files in place.`,
	Example: `  # Snapshot the plugin install
  swb backup create

  # Snapshot the skill install of the current project
  swb backup create skill --project

  See Also: swb backup list, swb backup restore`,
	Args:      cobra.MaximumNArgs(1),
	ValidArgs: installer.LayoutNames(),
	RunE:      runBackupCreate,
}

func runBackupCreate(cmd *cobra.Command, args []string) error {
	return runBackupCreateWithWriter(cmd, args, os.Stdout)
}

// runBackupCreateWithWriter allows injecting a writer for testing.
func runBackupCreateWithWriter(_ *cobra.Command, args []string, w io.Writer) error {
	layout, err := layoutFromArgs(args)
	if err != nil {
		return err
	}

	_, home, err := resolveInstallHome(backupCreateProject)
	if err != nil {
		return err
	}

	destDir := layout.DestDir(home)
	if _, err := os.Stat(destDir); os.IsNotExist(err) {
		return errs.NewUserError(
			errors.Wrapf(errs.ErrNotInstalled, "nothing to snapshot at %s", destDir),
			"Run 'swb install' first.")
	}

	manifest, err := newBackupManager().Snapshot(layout.Name, destDir)
	if err != nil {
		return errs.NewSystemError(errors.Wrap(err, "creating snapshot"), "")
	}

	successStyle.Fprintf(w, "✓ Created backup %s\n", manifest.ID)
	fmt.Fprintf(w, "  %d files from %s\n", len(manifest.Files), manifest.Root)
	return nil
}
