package commands

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"text/tabwriter"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/spf13/cobra"

	"github.com/swbuilder/swb/internal/backup"
)

var backupListJSON bool

func init() {
	backupListCmd.Flags().BoolVar(&backupListJSON, "json", false, "output as JSON")
	backupCmd.AddCommand(backupListCmd)
}

var backupListCmd = &cobra.Command{
	Use:   "list [group]",
	Short: "List snapshots",
	Long: `List snapshots, newest first.

Without an argument every group is listed; pass a group name (plugin,
skill, settings) to narrow the listing.`,
	Example: `  # List everything
  swb backup list

  # List only plugin snapshots
  swb backup list plugin

  See Also: swb backup restore, swb backup prune`,
	Args: cobra.MaximumNArgs(1),
	RunE: runBackupList,
}

func runBackupList(cmd *cobra.Command, args []string) error {
	return runBackupListWithWriter(cmd, args, os.Stdout)
}

// backupInfo is one snapshot in the JSON listing.
type backupInfo struct {
	Group      string    `json:"group"`
	ID         string    `json:"id"`
	CreatedAt  time.Time `json:"created_at"`
	FileCount  int       `json:"file_count"`
	SWBVersion string    `json:"swb_version"`
}

// runBackupListWithWriter allows injecting a writer for testing.
func runBackupListWithWriter(_ *cobra.Command, args []string, w io.Writer) error {
	mgr := newBackupManager()

	groups, err := backupGroups(mgr, args)
	if err != nil {
		return err
	}

	var infos []backupInfo
	for _, group := range groups {
		manifests, err := mgr.List(group)
		if err != nil {
			if errors.Is(err, backup.ErrNoBackupsFound) {
				continue
			}
			return errors.Wrapf(err, "listing %s snapshots", group)
		}
		for _, manifest := range manifests {
			infos = append(infos, backupInfo{
				Group:      group,
				ID:         manifest.ID,
				CreatedAt:  manifest.CreatedAt,
				FileCount:  len(manifest.Files),
				SWBVersion: manifest.SWBVersion,
			})
		}
	}

	if backupListJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if err := enc.Encode(infos); err != nil {
			return errors.Wrap(err, "encoding JSON")
		}
		return nil
	}

	if len(infos) == 0 {
		fmt.Fprintln(w, "No backups found.")
		return nil
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n",
		boldStyle.Sprint("GROUP"),
		boldStyle.Sprint("ID"),
		boldStyle.Sprint("CREATED"),
		boldStyle.Sprint("FILES"),
		boldStyle.Sprint("VERSION"))

	for _, info := range infos {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t%s\n",
			info.Group,
			successStyle.Sprint(info.ID),
			info.CreatedAt.Local().Format("2006-01-02 15:04:05"),
			info.FileCount,
			info.SWBVersion)
	}
	return tw.Flush()
}

// backupGroups resolves the optional group argument, defaulting to
// every group with snapshots.
func backupGroups(mgr *backup.Manager, args []string) ([]string, error) {
	if len(args) > 0 {
		return []string{args[0]}, nil
	}
	groups, err := mgr.Groups()
	if err != nil {
		return nil, errors.Wrap(err, "listing backup groups")
	}
	return groups, nil
}
