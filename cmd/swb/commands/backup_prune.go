package commands

import (
	"fmt"
	"io"
	"os"

	"github.com/cockroachdb/errors"
	"github.com/spf13/cobra"

	"github.com/swbuilder/swb/internal/backup"
)

var backupPruneKeep int

func init() {
	backupPruneCmd.Flags().IntVar(&backupPruneKeep, "keep", -1,
		"number of snapshots to keep per group (default: config backup.retention)")
	backupCmd.AddCommand(backupPruneCmd)
}

var backupPruneCmd = &cobra.Command{
	Use:   "prune [group]",
	Short: "Remove old snapshots",
	Long: `Remove snapshots beyond the newest --keep per group.

Install and enable prune automatically after taking their snapshots;
prune is for reclaiming space by hand or after lowering the configured
retention.`,
	Example: `  # Prune every group to the configured retention
  swb backup prune

  # Keep only the two newest plugin snapshots
  swb backup prune plugin --keep 2

  See Also: swb backup list, swb config set`,
	Args: cobra.MaximumNArgs(1),
	RunE: runBackupPrune,
}

func runBackupPrune(cmd *cobra.Command, args []string) error {
	return runBackupPruneWithWriter(cmd, args, os.Stdout)
}

// runBackupPruneWithWriter allows injecting a writer for testing.
func runBackupPruneWithWriter(_ *cobra.Command, args []string, w io.Writer) error {
	mgr := newBackupManager()

	keep := backupPruneKeep
	if keep < 0 {
		keep = mgr.RetentionCount()
	}

	groups, err := backupGroups(mgr, args)
	if err != nil {
		return err
	}

	pruned := 0
	for _, group := range groups {
		manifests, err := mgr.List(group)
		if err != nil {
			if errors.Is(err, backup.ErrNoBackupsFound) {
				continue
			}
			return errors.Wrapf(err, "listing %s snapshots", group)
		}

		if err := mgr.Prune(group, keep); err != nil {
			return errors.Wrapf(err, "pruning %s", group)
		}

		if removed := len(manifests) - keep; removed > 0 {
			pruned += removed
			fmt.Fprintf(w, "Pruned %d snapshots from %s\n", removed, group)
		}
	}

	if pruned == 0 {
		fmt.Fprintln(w, "Nothing to prune.")
		return nil
	}
	successStyle.Fprintf(w, "✓ Pruned %d snapshots, keeping the newest %d per group\n", pruned, keep)
	return nil
}
