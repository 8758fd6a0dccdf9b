package commands

import (
	"github.com/spf13/cobra"

	"github.com/swbuilder/swb/internal/backup"
)

func init() {
	rootCmd.AddCommand(backupCmd)
}

var backupCmd = &cobra.Command{
	Use:   "backup",
	Short: "Manage installation snapshots",
	Long: `Manage snapshots of installed layouts and settings files.

swb takes a snapshot automatically before replacing or removing an
installation and before the first settings edit in a session. Snapshots
are grouped by what they captured (plugin, skill, settings), carry a
SHA256 manifest for integrity checking, and old ones are pruned to the
configured retention.`,
	Example: `  # List all snapshots
  swb backup list

  # Snapshot the current plugin install by hand
  swb backup create

  # Roll the plugin install back
  swb backup restore plugin

  See Also: swb install, swb uninstall`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		return cmd.Help()
	},
}

// newBackupManager builds a Manager honoring the configured retention.
func newBackupManager() *backup.Manager {
	return backup.NewManager(backup.WithRetentionCount(currentConfig().Backup.Retention))
}
