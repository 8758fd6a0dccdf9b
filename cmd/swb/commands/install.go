package commands

import (
	"context"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/spf13/cobra"

	"github.com/swbuilder/swb/internal/backup"
	"github.com/swbuilder/swb/internal/bundle"
	errs "github.com/swbuilder/swb/internal/errors"
	"github.com/swbuilder/swb/internal/gitsrc"
	"github.com/swbuilder/swb/internal/installer"
	"github.com/swbuilder/swb/internal/logging"
	"github.com/swbuilder/swb/internal/watch"
)

var (
	installSource   string
	installProject  bool
	installYes      bool
	installDryRun   bool
	installNoBackup bool
	installWatch    bool
)

func init() {
	installCmd.Flags().StringVar(&installSource, "source", "",
		"install from a directory or git URL instead of the embedded corpus")
	installCmd.Flags().BoolVar(&installProject, "project", false,
		"install into ./.claude of the current project instead of the user home")
	installCmd.Flags().BoolVarP(&installYes, "yes", "y", false,
		"overwrite an existing installation without prompting")
	installCmd.Flags().BoolVar(&installDryRun, "dry-run", false,
		"report what would be installed without touching the filesystem")
	installCmd.Flags().BoolVar(&installNoBackup, "no-backup", false,
		"skip the snapshot of an existing installation before replacing it")
	installCmd.Flags().BoolVar(&installWatch, "watch", false,
		"keep running and reinstall whenever the --source directory changes")
	rootCmd.AddCommand(installCmd)
}

var installCmd = &cobra.Command{
	Use:   "install [plugin|skill]",
	Short: "Install the signalwire-builder corpus",
	Long: `Install the signalwire-builder content corpus into an assistant
directory.

Two layouts are available:
  plugin   the full corpus at <home>/plugins/signalwire-builder
           (default, claude only)
  skill    only the skill subtree at <home>/skills/signalwire

The source is validated before anything is touched, an existing
installation is only replaced after confirmation (default: keep it),
and the replaced tree is snapshotted first so 'swb backup restore' can
bring it back. After copying, the marker files are re-checked on disk.`,
	Example: `  # Install the full plugin for Claude
  swb install

  # Install only the skill, overwriting without prompting
  swb install skill --yes

  # Install into the current project instead of the user home
  swb install --project

  # Develop the corpus: reinstall on every save
  swb install --source ./corpus --watch

  See Also: swb uninstall, swb verify, swb backup list`,
	Args:      cobra.MaximumNArgs(1),
	ValidArgs: installer.LayoutNames(),
	RunE:      runInstall,
}

func runInstall(cmd *cobra.Command, args []string) error {
	return runInstallWithIO(cmd, args, os.Stdout, os.Stdin)
}

// runInstallWithIO allows injecting prompt IO for testing.
func runInstallWithIO(cmd *cobra.Command, args []string, w io.Writer, r io.Reader) error {
	logger := logging.FromContext(cmd.Context())

	layout, err := layoutFromArgs(args)
	if err != nil {
		return err
	}

	assistant, home, err := resolveInstallHome(installProject)
	if err != nil {
		return err
	}
	if !layout.ForAssistant(assistant) {
		return errs.NewUserError(
			errors.Newf("the %s layout installs for %s only",
				layout.Name, strings.Join(layout.Assistants, ", ")),
			"Use the skill layout for other assistants.")
	}

	source, sourceDir, err := resolveInstallSource(installSource, logger)
	if err != nil {
		return err
	}
	if installWatch && sourceDir == "" {
		return errs.NewUserError(
			errors.New("--watch requires a local --source directory"),
			"Point --source at the corpus checkout you are editing.")
	}

	cfg := installer.Config{
		Source:   source,
		Home:     home,
		Out:      w,
		In:       r,
		Logger:   logger,
		Force:    installYes,
		DryRun:   installDryRun,
		NoBackup: installNoBackup,
		Backup:   backupHook(logger),
	}

	result, err := installer.New(cfg).Install(cmd.Context(), layout)
	if err != nil {
		return err
	}
	printInstallResult(w, assistant, result)

	if !installWatch || installDryRun {
		return nil
	}
	return watchAndReinstall(cmd.Context(), logger, w, sourceDir, layout, cfg)
}

// resolveInstallSource maps --source to a filesystem: empty means the
// embedded corpus, a git URL is fetched into the source cache, anything
// else must be a local directory. The returned dir is non-empty only
// for local directory sources, the only kind --watch can follow.
func resolveInstallSource(src string, logger *slog.Logger) (fs.FS, string, error) {
	if src == "" {
		return bundle.Corpus(), "", nil
	}

	if gitsrc.IsURL(src) {
		cache := gitsrc.NewCache(gitsrc.WithLogger(logger))
		fsys, err := cache.Fetch(src)
		if err != nil {
			return nil, "", errs.NewSystemError(err, "Check the URL and your network connection.")
		}
		return fsys, "", nil
	}

	info, err := os.Stat(src)
	if err != nil {
		return nil, "", errs.NewUserError(errors.Wrapf(err, "source %s", src),
			"Pass a directory or a git URL to --source.")
	}
	if !info.IsDir() {
		return nil, "", errs.NewUserError(errors.Newf("source %s is not a directory", src), "")
	}
	return os.DirFS(src), src, nil
}

// backupHook returns the pre-replace snapshot function, or nil when
// backups are disabled in config.
func backupHook(logger *slog.Logger) installer.BackupFunc {
	cfg := currentConfig()
	if cfg.Backup.Disabled {
		return nil
	}

	mgr := backup.NewManager(backup.WithRetentionCount(cfg.Backup.Retention))
	return func(layout installer.Layout, destDir string) (string, error) {
		manifest, err := mgr.Snapshot(layout.Name, destDir)
		if err != nil {
			return "", err
		}
		if err := mgr.Prune(layout.Name, mgr.RetentionCount()); err != nil {
			logger.Warn("pruning old backups", "group", layout.Name, "error", err)
		}
		return manifest.ID, nil
	}
}

func printInstallResult(w io.Writer, assistant string, result *installer.Result) {
	if result.DryRun {
		action := "install to"
		if result.Replaced {
			action = "replace the installation at"
		}
		fmt.Fprintf(w, "Dry run: would %s %s\n", action, result.Path)
		return
	}

	successStyle.Fprintf(w, "✓ Installed %s for %s\n", result.Layout, assistant)
	fmt.Fprintf(w, "  %s\n", result.Path)
	if result.BackupID != "" {
		fmt.Fprintf(w, "  previous installation backed up as %s\n", result.BackupID)
	}

	fmt.Fprintln(w)
	if len(result.Workflows) == 0 {
		fmt.Fprintln(w, "No workflows found in this installation.")
		return
	}
	fmt.Fprintln(w, "Workflows:")
	for _, name := range result.Workflows {
		fmt.Fprintf(w, "  %s\n", name)
	}
}

// watchAndReinstall reruns the install whenever the source directory
// changes. Later runs replace without prompting or snapshotting; the
// first install already confirmed and backed up.
func watchAndReinstall(ctx context.Context, logger *slog.Logger, w io.Writer, sourceDir string, layout installer.Layout, cfg installer.Config) error {
	cfg.Force = true
	cfg.NoBackup = true
	inst := installer.New(cfg)

	watcher, err := watch.New(watch.Config{
		Roots:  []string{sourceDir},
		Logger: logger,
	})
	if err != nil {
		return errs.NewSystemError(err, "")
	}

	fmt.Fprintf(w, "\nWatching %s for changes. Press Ctrl-C to stop.\n", sourceDir)
	return watcher.Run(ctx, func() error {
		result, err := inst.Install(ctx, layout)
		if err != nil {
			return err
		}
		fmt.Fprintf(w, "Reinstalled %s (%d workflows)\n", result.Path, len(result.Workflows))
		return nil
	})
}
