package commands

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/swbuilder/swb/internal/config"
	"github.com/swbuilder/swb/internal/editor"
	errs "github.com/swbuilder/swb/internal/errors"
)

func init() {
	configCmd.AddCommand(configGetCmd)
	configCmd.AddCommand(configSetCmd)
	configCmd.AddCommand(configListCmd)
	configCmd.AddCommand(configEditCmd)
	rootCmd.AddCommand(configCmd)
}

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage swb configuration",
	Long: `Manage swb configuration stored in ~/.config/swb/config.yaml.

Without a subcommand, lists all configuration values. Every key can
also be overridden per invocation with an SWB_ environment variable
(e.g. SWB_ASSISTANT=codex).`,
	Example: `  # List all configuration
  swb config

  # Get a specific value
  swb config get assistant

  # Set the default assistant
  swb config set assistant claude

  # Turn off pre-install snapshots
  swb config set backup.disabled true

  See Also: swb doctor`,
	RunE: runConfigList,
}

var configGetCmd = &cobra.Command{
	Use:   "get <key>",
	Short: "Get a configuration value",
	Long:  `Get a single configuration value by key, using dot notation for nested keys.`,
	Example: `  # Get the default assistant
  swb config get assistant

  # Get the backup retention
  swb config get backup.retention

See Also: swb config set, swb config list`,
	Args: cobra.ExactArgs(1),
	RunE: runConfigGet,
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Set a configuration value",
	Long: `Set a configuration value and write it to the config file, creating
the file when missing.

The value is validated before anything is written: unknown keys,
unknown assistants, and invalid color modes are rejected.`,
	Example: `  # Set the default assistant
  swb config set assistant codex

  # Keep more snapshots around
  swb config set backup.retention 10

See Also: swb config get, swb config list`,
	Args: cobra.ExactArgs(2),
	RunE: runConfigSet,
}

var configListCmd = &cobra.Command{
	Use:   "list",
	Short: "List all configuration",
	Long:  `List all configuration values in YAML format.`,
	Example: `  # List all configuration
  swb config list

See Also: swb config get, swb config set`,
	RunE: runConfigList,
}

var configEditCmd = &cobra.Command{
	Use:   "edit",
	Short: "Open configuration in $EDITOR",
	Long: `Open the configuration file in your default editor.

The editor is taken from $EDITOR, then $VISUAL, then nano, then vi. A
missing config file is created with the current values first.`,
	Example: `  # Open config in default editor
  swb config edit

  # Open with specific editor
  EDITOR=nano swb config edit

See Also: swb config list`,
	RunE: runConfigEdit,
}

func runConfigGet(_ *cobra.Command, args []string) error {
	return runConfigGetWithWriter(os.Stdout, args)
}

// runConfigGetWithWriter allows injecting a writer for testing.
func runConfigGetWithWriter(w io.Writer, args []string) error {
	key := args[0]
	if !config.KnownKey(key) {
		return unknownConfigKey(key)
	}

	fmt.Fprintln(w, viper.Get(key))
	return nil
}

func runConfigSet(_ *cobra.Command, args []string) error {
	return runConfigSetWithWriter(os.Stdout, args)
}

// runConfigSetWithWriter allows injecting a writer for testing.
func runConfigSetWithWriter(w io.Writer, args []string) error {
	key, value := args[0], args[1]
	if !config.KnownKey(key) {
		return unknownConfigKey(key)
	}

	if err := config.Set(key, value); err != nil {
		return errs.NewUserError(err, "")
	}

	fmt.Fprintf(w, "Set %s = %s\n", key, value)
	return nil
}

func runConfigList(_ *cobra.Command, _ []string) error {
	return runConfigListWithWriter(os.Stdout)
}

// runConfigListWithWriter allows injecting a writer for testing.
func runConfigListWithWriter(w io.Writer) error {
	data, err := yaml.Marshal(currentConfig())
	if err != nil {
		return errors.Wrap(err, "marshaling config")
	}

	fmt.Fprint(w, string(data))
	return nil
}

func runConfigEdit(_ *cobra.Command, _ []string) error {
	configPath := config.Path()

	// Seed a missing file so the editor has something to open.
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		if err := config.Set("assistant", currentConfig().Assistant); err != nil {
			return errs.NewSystemError(errors.Wrap(err, "creating config file"), "")
		}
	}

	return editor.Open(configPath)
}

func unknownConfigKey(key string) error {
	return errs.NewUserError(
		errors.Newf("unknown config key: %s (valid: %s)", key, strings.Join(config.Keys(), ", ")),
		"")
}
