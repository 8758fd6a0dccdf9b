package commands

import (
	"fmt"
	"io"
	"os"

	"github.com/cockroachdb/errors"
	"github.com/spf13/cobra"

	"github.com/swbuilder/swb/internal/backup"
	errs "github.com/swbuilder/swb/internal/errors"
)

func init() {
	backupCmd.AddCommand(backupRestoreCmd)
}

var backupRestoreCmd = &cobra.Command{
	Use:   "restore <group> [backup-id]",
	Short: "Restore from a snapshot",
	Long: `Restore files from a snapshot to their original locations.

Without a backup ID the most recent snapshot of the group is used. The
whole snapshot is verified against its SHA256 manifest before the first
file is written, so a corrupt snapshot never leaves a half-restored
tree behind. Existing files are overwritten and permissions preserved.`,
	Example: `  # Restore the most recent plugin snapshot
  swb backup restore plugin

  # Restore a specific snapshot
  swb backup restore plugin 20260123T100712

  # List available snapshots first
  swb backup list plugin

  See Also: swb backup list, swb backup create`,
	Args: cobra.RangeArgs(1, 2),
	RunE: runBackupRestore,
}

func runBackupRestore(cmd *cobra.Command, args []string) error {
	return runBackupRestoreWithWriter(cmd, args, os.Stdout)
}

// runBackupRestoreWithWriter allows injecting a writer for testing.
func runBackupRestoreWithWriter(_ *cobra.Command, args []string, w io.Writer) error {
	group := args[0]
	mgr := newBackupManager()

	var backupID string
	if len(args) > 1 {
		backupID = args[1]
	} else {
		manifests, err := mgr.List(group)
		if err != nil {
			if errors.Is(err, backup.ErrNoBackupsFound) {
				return errs.NewUserError(
					errors.Wrapf(err, "group %s", group),
					"Run 'swb backup list' to see what exists.")
			}
			return errors.Wrap(err, "listing backups")
		}
		backupID = manifests[0].ID
		fmt.Fprintf(w, "Using most recent backup: %s\n", backupID)
	}

	manifest, err := mgr.Get(group, backupID)
	if err != nil {
		if errors.Is(err, backup.ErrNoBackupsFound) {
			return errs.NewUserError(errors.Wrapf(err, "group %s", group),
				"Run 'swb backup list' to see what exists.")
		}
		return errors.Wrapf(err, "getting backup %s", backupID)
	}

	fmt.Fprintf(w, "Restoring %d files from backup %s...\n", len(manifest.Files), backupID)

	if err := mgr.Restore(group, backupID); err != nil {
		return errs.NewSystemError(errors.Wrap(err, "restoring backup"), "")
	}

	successStyle.Fprintf(w, "✓ Restored %s from backup %s\n", manifest.Root, backupID)
	return nil
}
