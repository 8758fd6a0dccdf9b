package commands

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/cockroachdb/errors"
	"github.com/spf13/cobra"

	"github.com/swbuilder/swb/internal/backup"
	"github.com/swbuilder/swb/internal/bundle"
	errs "github.com/swbuilder/swb/internal/errors"
	"github.com/swbuilder/swb/internal/logging"
	"github.com/swbuilder/swb/internal/paths"
	"github.com/swbuilder/swb/internal/settings"
)

func init() {
	rootCmd.AddCommand(enableCmd)
}

var enableCmd = &cobra.Command{
	Use:   "enable",
	Short: "Enable the signalwire-builder plugin",
	Long: `Mark the signalwire-builder plugin as enabled in the assistant's
settings file.

The settings file is edited surgically: unknown fields, comments-free
formatting, and file permissions are preserved, and the original file
is snapshotted once per session before the first edit. Only Claude has
a settings file swb knows how to edit.`,
	Example: `  # Enable the plugin
  swb enable

  # Disable it again
  swb disable

  See Also: swb disable, swb install`,
	Args: cobra.NoArgs,
	RunE: runEnable,
}

func runEnable(cmd *cobra.Command, _ []string) error {
	return runEnableWithWriter(cmd, os.Stdout)
}

// runEnableWithWriter allows injecting a writer for testing.
func runEnableWithWriter(cmd *cobra.Command, w io.Writer) error {
	logger := logging.FromContext(cmd.Context())

	svc, key, err := openSettings(logger)
	if err != nil {
		return err
	}

	enabled, err := svc.IsEnabled(key)
	if err != nil {
		return errs.NewSystemError(err, "Run 'swb doctor' to inspect the settings file.")
	}
	if enabled {
		fmt.Fprintf(w, "%s is already enabled.\n", key)
		return nil
	}

	if err := svc.EnablePlugin(key); err != nil {
		return errs.NewSystemError(err, "Run 'swb doctor' to inspect the settings file.")
	}

	successStyle.Fprintf(w, "✓ Enabled %s\n", key)
	fmt.Fprintf(w, "  %s\n", svc.Path())
	return nil
}

// openSettings builds the settings service for the target assistant and
// the plugin key the corpus manifests declare.
func openSettings(logger *slog.Logger) (*settings.Service, string, error) {
	assistant, err := resolveTargetAssistant()
	if err != nil {
		return nil, "", err
	}

	path := paths.SettingsPath(assistant)
	if path == "" {
		return nil, "", errs.NewUserError(
			errors.Newf("%s has no settings file swb can edit", assistant),
			"Plugin enablement is available for claude only.")
	}

	key, err := pluginSettingsKey()
	if err != nil {
		return nil, "", err
	}

	svc := settings.NewService(path,
		settings.WithLogger(logger),
		settings.WithPreEdit(settingsBackupHook(logger)))
	return svc, key, nil
}

// pluginSettingsKey derives the plugin@marketplace key from the bundled
// manifests, so a renamed corpus never leaves a stale key behind.
func pluginSettingsKey() (string, error) {
	plugin, err := bundle.Manifest()
	if err != nil {
		return "", errs.NewSystemError(err, "")
	}
	marketplace, err := bundle.Marketplace()
	if err != nil {
		return "", errs.NewSystemError(err, "")
	}
	return settings.PluginKey(plugin.Name, marketplace.Name), nil
}

// settingsBackupHook snapshots the settings file before its first edit
// in this session. Nil when backups are disabled in config.
func settingsBackupHook(logger *slog.Logger) func(path string) error {
	cfg := currentConfig()
	if cfg.Backup.Disabled {
		return nil
	}

	mgr := backup.NewManager(backup.WithRetentionCount(cfg.Backup.Retention))
	return func(path string) error {
		// Nothing to snapshot when the settings file is being created.
		if _, err := os.Stat(path); os.IsNotExist(err) {
			return nil
		}
		if err := backup.EnsureSnapshot(mgr, "settings", path); err != nil {
			return err
		}
		if err := mgr.Prune("settings", mgr.RetentionCount()); err != nil {
			logger.Warn("pruning old backups", "group", "settings", "error", err)
		}
		return nil
	}
}
