package installer

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/cockroachdb/errors"

	errs "github.com/swbuilder/swb/internal/errors"
)

// UninstallResult reports what an uninstall did.
type UninstallResult struct {
	// Layout is the removed layout name.
	Layout string `json:"layout"`

	// Path is the directory that was removed.
	Path string `json:"path"`

	// BackupID identifies the snapshot taken before removal, if any.
	BackupID string `json:"backup_id,omitempty"`

	// DryRun is true when no filesystem changes were made.
	DryRun bool `json:"dry_run,omitempty"`
}

// Uninstall removes an installed layout. The removal is confirmed
// unless Force is set, and preceded by a backup when one is configured.
// An absent install is reported via errs.ErrNotInstalled.
//
// The context is consulted once on entry; a removal that has started
// runs to completion.
func (i *Installer) Uninstall(ctx context.Context, layout Layout) (*UninstallResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if i.home == "" {
		return nil, errs.NewSystemError(errors.New("no install destination configured"), "")
	}

	destDir := layout.DestDir(i.home)
	logger := i.logger.With("layout", layout.Name, "dest", destDir)

	exists, err := dirExists(destDir)
	if err != nil {
		return nil, errs.NewSystemError(err, "")
	}
	if !exists {
		return nil, errors.Wrapf(errs.ErrNotInstalled, "nothing at %s", destDir)
	}

	if i.dryRun {
		logger.Debug("dry run, skipping uninstall")
		return &UninstallResult{Layout: layout.Name, Path: destDir, DryRun: true}, nil
	}

	if !i.force && !i.confirmRemoval(destDir) {
		fmt.Fprintln(i.out, "Uninstall aborted.")
		return nil, errors.Wrapf(errs.ErrAborted, "installation at %s kept", destDir)
	}

	result := &UninstallResult{Layout: layout.Name, Path: destDir}

	if i.backup != nil && !i.noBackup {
		id, err := i.backup(layout, destDir)
		if err != nil {
			return nil, errs.NewSystemError(
				errors.Wrap(err, "backing up installation before removal"),
				"Re-run with --no-backup to remove without a snapshot.")
		}
		result.BackupID = id
		logger.Debug("backed up installation", "backup", id)
	}

	if err := os.RemoveAll(destDir); err != nil {
		return nil, errs.NewSystemError(errors.Wrapf(err, "removing %s", destDir), "")
	}

	logger.Info("uninstalled")
	return result, nil
}

// confirmRemoval asks before deleting an install. Only "y" or "Y"
// confirms.
func (i *Installer) confirmRemoval(destDir string) bool {
	fmt.Fprintf(i.out, "This will remove %s\n", destDir)
	fmt.Fprint(i.out, "Do you want to continue? (y/N) ")

	if i.in == nil {
		fmt.Fprintln(i.out)
		return false
	}

	reader := bufio.NewReader(i.in)
	response, err := reader.ReadString('\n')
	if err != nil && response == "" {
		return false
	}
	return strings.EqualFold(strings.TrimSpace(response), "y")
}
