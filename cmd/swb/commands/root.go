// Package commands implements the CLI commands for swb.
package commands

import (
	"context"
	"log/slog"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/cockroachdb/errors"

	"github.com/swbuilder/swb/internal/cli"
	"github.com/swbuilder/swb/internal/config"
	errs "github.com/swbuilder/swb/internal/errors"
	"github.com/swbuilder/swb/internal/logging"
)

// assistantFlag holds the value of the --assistant flag.
var assistantFlag []string

// verbosity holds the count of -v flags.
var verbosity int

// quiet holds the value of the -q/--quiet flag.
var quiet bool

// logFormat holds the value of the --log-format flag.
var logFormat string

// logFile holds the path to the log file.
var logFile string

// loadedConfig holds the configuration read during initConfig.
var loadedConfig *config.Config

// configLoadErr holds any error that occurred during config loading.
var configLoadErr error

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringSliceVarP(&assistantFlag, "assistant", "a", nil,
		`target assistant(s): claude, codex, cursor (default: from config)`)
	rootCmd.PersistentFlags().CountVarP(&verbosity, "verbose", "v",
		"increase verbosity level (e.g., -v, -vv)")
	rootCmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false,
		"suppress non-error output")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "text",
		"log format: text, json")
	rootCmd.PersistentFlags().StringVar(&logFile, "log-file", "",
		"write logs to file in JSON format")

	rootCmd.Version = Version
	rootCmd.SetVersionTemplate("swb version {{.Version}}\n")

	// Silence errors and usage so main controls error output
	rootCmd.SilenceErrors = true
	rootCmd.SilenceUsage = true
}

func initConfig() {
	config.Init()
	loadedConfig, configLoadErr = config.Load("")
}

var rootCmd = &cobra.Command{
	Use:   "swb",
	Short: "Install and manage the signalwire-builder corpus",
	Long: `swb installs the signalwire-builder content corpus into AI coding
assistant directories and keeps those installations healthy.

The corpus ships embedded in the binary: a Claude plugin manifest, the
signalwire skill with its workflow guides, and runnable reference
examples. Install it as a full plugin under ~/.claude/plugins or as a
standalone skill under ~/.claude/skills, browse the bundled docs, and
flip the plugin on or off in the assistant's settings.

Use the --assistant flag to target a specific assistant, or set a
default with 'swb config set assistant <name>'.`,
	Example: `  # Install the full plugin for Claude
  swb install

  # Install only the skill into the current project
  swb install skill --project

  # Check what is installed where
  swb status

  # Browse the bundled workflow guides
  swb docs

  See Also: swb install, swb status, swb doctor`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := setupLogging(cmd); err != nil {
			return err
		}
		applyColorMode()
		return validateAssistantFlag(cmd, args)
	},
	Run: func(cmd *cobra.Command, args []string) {
		_ = cmd.Help()
	},
}

// setupLogging configures the default logger based on verbosity flags.
func setupLogging(cmd *cobra.Command) error {
	if quiet && verbosity > 0 {
		return errs.NewUserError(errors.New("cannot use --quiet and --verbose together"), "")
	}

	var level slog.Level
	if quiet {
		level = slog.LevelError
	} else {
		v := verbosity

		// CLI flags take precedence, but if not set, check env var
		if v == 0 {
			if val, ok := os.LookupEnv("SWB_DEBUG"); ok {
				switch val {
				case "1", "true":
					v = 2 // Debug
				case "2":
					v = 3 // Trace
				}
			}
		}
		level = logging.LevelFromVerbosity(v)
	}

	opts := &slog.HandlerOptions{
		Level: level,
	}

	var primaryHandler slog.Handler
	switch logging.Format(logFormat) {
	case logging.FormatJSON:
		primaryHandler = slog.NewJSONHandler(cmd.ErrOrStderr(), opts)
	default:
		primaryHandler = logging.NewHandler(cmd.ErrOrStderr(), opts)
	}

	handlers := []slog.Handler{primaryHandler}

	if logFile != "" {
		f, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0600)
		if err != nil {
			return errs.NewUserError(errors.Wrap(err, "opening log file"), "")
		}
		// File output uses JSON format
		handlers = append(handlers, slog.NewJSONHandler(f, &slog.HandlerOptions{
			Level: level,
		}))
	}

	var handler slog.Handler
	if len(handlers) > 1 {
		handler = logging.NewMultiHandler(handlers...)
	} else {
		handler = handlers[0]
	}

	logger := slog.New(handler)
	slog.SetDefault(logger)

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	cmd.SetContext(logging.NewContext(ctx, logger))

	return nil
}

// applyColorMode applies the configured color mode. "auto" leaves the
// terminal detection in place.
func applyColorMode() {
	switch currentConfig().Color {
	case config.ColorAlways:
		color.NoColor = false
	case config.ColorNever:
		color.NoColor = true
	}
}

// validateAssistantFlag checks that all specified assistants are valid.
func validateAssistantFlag(cmd *cobra.Command, _ []string) error {
	// Skip validation for help and version commands
	if cmd.Name() == "help" || cmd.Name() == "version" || cmd.Name() == "gendoc" {
		return nil
	}

	// Check for config load errors first
	if configLoadErr != nil {
		return errs.NewUserError(configLoadErr,
			"Fix or remove the file at "+config.Path()+".")
	}

	// If no assistants specified, that's fine - the config default applies
	if len(assistantFlag) == 0 {
		return nil
	}

	if _, err := cli.ResolveAssistants(assistantFlag); err != nil {
		return errs.NewUserError(err, "Run 'swb --help' to see valid assistants")
	}

	return nil
}

// GetAssistantFlag returns the current value of the --assistant flag.
// This is used by subcommands to access the flag value.
func GetAssistantFlag() []string {
	return assistantFlag
}

// SetAssistantFlag sets the assistant flag value.
// This is used for programmatic override (e.g., tests).
func SetAssistantFlag(assistants []string) {
	assistantFlag = assistants
}

// Execute runs the root command.
func Execute() error {
	return ExecuteContext(context.Background())
}

// ExecuteContext runs the root command under ctx so long-running
// commands (install --watch) stop on interrupt. The error comes back
// unwrapped; main owns its presentation.
func ExecuteContext(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}
