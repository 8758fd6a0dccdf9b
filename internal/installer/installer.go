package installer

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/cockroachdb/errors"

	errs "github.com/swbuilder/swb/internal/errors"
)

// BackupFunc snapshots destDir before it is replaced or removed and
// returns an identifier for the snapshot.
type BackupFunc func(layout Layout, destDir string) (string, error)

// Config holds the knobs for an Installer.
type Config struct {
	// Source is the install source filesystem. Required; the embedded
	// corpus, an unpacked directory, or a cached git checkout.
	Source fs.FS

	// Home is the assistant home receiving the install, e.g. ~/.claude
	// for user scope or <project>/.claude for project scope. Required.
	Home string

	// Out receives the overwrite prompt and abort notice. Defaults to
	// io.Discard, which together with a nil In declines all prompts.
	Out io.Writer

	// In supplies prompt responses. A nil In declines all prompts.
	In io.Reader

	// Logger defaults to slog.Default().
	Logger *slog.Logger

	// Force replaces an existing install without prompting.
	Force bool

	// DryRun reports what would happen without touching the filesystem.
	DryRun bool

	// NoBackup skips the pre-replace snapshot.
	NoBackup bool

	// Backup snapshots the destination before destructive steps. Nil
	// disables snapshots.
	Backup BackupFunc
}

// Installer runs layouts through the install state machine:
// validate source, confirm overwrite, backup, replace, verify.
type Installer struct {
	source fs.FS
	home   string
	out    io.Writer
	in     io.Reader
	logger *slog.Logger

	force    bool
	dryRun   bool
	noBackup bool
	backup   BackupFunc
}

// New creates an Installer from cfg, filling unset optional fields.
func New(cfg Config) *Installer {
	inst := &Installer{
		source:   cfg.Source,
		home:     cfg.Home,
		out:      cfg.Out,
		in:       cfg.In,
		logger:   cfg.Logger,
		force:    cfg.Force,
		dryRun:   cfg.DryRun,
		noBackup: cfg.NoBackup,
		backup:   cfg.Backup,
	}
	if inst.out == nil {
		inst.out = io.Discard
	}
	if inst.logger == nil {
		inst.logger = slog.Default()
	}
	return inst
}

// Result reports what an install did.
type Result struct {
	// Layout is the name of the installed layout.
	Layout string `json:"layout"`

	// Path is the final install directory.
	Path string `json:"path"`

	// Replaced is true when an existing install was overwritten.
	Replaced bool `json:"replaced"`

	// BackupID identifies the snapshot taken before replacement, if any.
	BackupID string `json:"backup_id,omitempty"`

	// Workflows lists the files installed under the layout's workflows
	// directory, for the success summary.
	Workflows []string `json:"workflows,omitempty"`

	// DryRun is true when no filesystem changes were made.
	DryRun bool `json:"dry_run,omitempty"`
}

// Install runs the full state machine for one layout.
//
// The source is validated before the destination is touched: a source
// missing any marker fails with nothing modified. An existing install
// is only replaced after confirmation (or Force), and replacement is
// preceded by a backup when one is configured. After copying, the
// markers are re-checked on disk; a failed verification is reported as
// a system error.
//
// The context is consulted once on entry. A replacement that has
// started runs to completion, so cancellation never leaves a partial
// tree behind.
func (i *Installer) Install(ctx context.Context, layout Layout) (*Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if i.source == nil {
		return nil, errs.NewSystemError(errors.New("no install source configured"), "")
	}
	if i.home == "" {
		return nil, errs.NewSystemError(errors.New("no install destination configured"), "")
	}

	if err := ValidateSource(i.source, layout); err != nil {
		return nil, errs.NewSystemError(err, "Check the --source path or reinstall swb.")
	}

	destDir := layout.DestDir(i.home)
	logger := i.logger.With("layout", layout.Name, "dest", destDir)

	exists, err := dirExists(destDir)
	if err != nil {
		return nil, errs.NewSystemError(err, "")
	}

	if i.dryRun {
		logger.Debug("dry run, skipping install")
		return &Result{
			Layout:   layout.Name,
			Path:     destDir,
			Replaced: exists,
			DryRun:   true,
		}, nil
	}

	result := &Result{Layout: layout.Name, Path: destDir}

	if exists {
		if !i.force && !i.confirmOverwrite(destDir) {
			fmt.Fprintln(i.out, "Installation aborted.")
			return nil, errors.Wrapf(errs.ErrAborted, "existing installation at %s kept", destDir)
		}
		result.Replaced = true

		if i.backup != nil && !i.noBackup {
			id, err := i.backup(layout, destDir)
			if err != nil {
				return nil, errs.NewSystemError(
					errors.Wrap(err, "backing up existing installation"),
					"Re-run with --no-backup to replace without a snapshot.")
			}
			result.BackupID = id
			logger.Debug("backed up existing installation", "backup", id)
		}

		if err := os.RemoveAll(destDir); err != nil {
			return nil, errs.NewSystemError(errors.Wrapf(err, "removing existing installation %s", destDir), "")
		}
	}

	if err := os.MkdirAll(destDir, installDirPerm); err != nil {
		return nil, errs.NewSystemError(errors.Wrapf(err, "creating install directory %s", destDir), "")
	}

	for _, tree := range layout.Trees {
		target := destDir
		if tree.Dst != "." {
			target = filepath.Join(destDir, filepath.FromSlash(tree.Dst))
		}
		logger.Debug("copying tree", "src", tree.Src, "dst", target)
		if err := copyTree(i.source, tree.Src, target); err != nil {
			return nil, errs.NewSystemError(err, "")
		}
	}

	if missing := MissingMarkers(destDir, layout.Markers); len(missing) > 0 {
		return nil, errs.NewSystemError(
			errors.Wrapf(errs.ErrVerifyFailed, "missing after install: %s", strings.Join(missing, ", ")),
			"The installation is incomplete; re-run swb install.")
	}

	workflows, err := listWorkflows(destDir, layout.Workflows)
	if err != nil {
		logger.Warn("listing installed workflows", "error", err)
	}
	result.Workflows = workflows

	logger.Info("installed", "replaced", result.Replaced, "workflows", len(workflows))
	return result, nil
}

// confirmOverwrite asks before replacing an existing install. Only "y"
// or "Y" confirms; anything else, including an empty line, declines.
func (i *Installer) confirmOverwrite(destDir string) bool {
	fmt.Fprintf(i.out, "Existing installation found at %s\n", destDir)
	fmt.Fprint(i.out, "Do you want to overwrite it? (y/N) ")

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

// ValidateSource checks that every tree and marker the layout needs is
// present in the source filesystem. It touches nothing on disk.
func ValidateSource(source fs.FS, layout Layout) error {
	for _, tree := range layout.Trees {
		if tree.Src == "." {
			continue
		}
		info, err := fs.Stat(source, tree.Src)
		if err != nil {
			return errors.Wrapf(errs.ErrSourceInvalid, "source tree %s not found", tree.Src)
		}
		if !info.IsDir() {
			return errors.Wrapf(errs.ErrSourceInvalid, "source tree %s is not a directory", tree.Src)
		}
	}

	for _, marker := range layout.Markers {
		srcPath, ok := layout.SourcePath(marker)
		if !ok {
			return errors.Wrapf(errs.ErrSourceInvalid, "marker %s is outside all source trees", marker)
		}
		info, err := fs.Stat(source, srcPath)
		if err != nil {
			return errors.Wrapf(errs.ErrSourceInvalid, "marker %s not found in source", srcPath)
		}
		if info.IsDir() {
			return errors.Wrapf(errs.ErrSourceInvalid, "marker %s is a directory in source", srcPath)
		}
	}
	return nil
}

// dirExists reports whether path exists and is a directory. A path that
// exists but is not a directory is an error; installs never replace
// regular files.
func dirExists(path string) (bool, error) {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, errors.Wrapf(err, "checking %s", path)
	}
	if !info.IsDir() {
		return false, errors.Newf("%s exists but is not a directory", path)
	}
	return true, nil
}

// listWorkflows returns the sorted markdown files in the workflows
// directory of an installed layout.
func listWorkflows(destDir, workflowsDir string) ([]string, error) {
	if workflowsDir == "" {
		return nil, nil
	}
	dir := filepath.Join(destDir, filepath.FromSlash(workflowsDir))
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, errors.Wrapf(err, "reading %s", dir)
	}

	var names []string
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".md") {
			continue
		}
		names = append(names, entry.Name())
	}
	sort.Strings(names)
	return names, nil
}
