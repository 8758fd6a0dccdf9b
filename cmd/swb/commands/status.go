package commands

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/spf13/cobra"

	"github.com/swbuilder/swb/internal/cli"
	errs "github.com/swbuilder/swb/internal/errors"
	"github.com/swbuilder/swb/internal/installer"
	"github.com/swbuilder/swb/internal/logging"
)

var (
	statusJSON  bool
	statusQuiet bool
	statusAll   bool
)

func init() {
	statusCmd.Flags().BoolVar(&statusJSON, "json", false, "output as JSON")
	statusCmd.Flags().BoolVar(&statusQuiet, "quiet", false, "one line per assistant")
	statusCmd.Flags().BoolVar(&statusAll, "all", false,
		"also scan the current project's assistant directories")
	rootCmd.AddCommand(statusCmd)
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show installed layouts across assistants",
	Long: `Show which signalwire-builder layouts are installed in which
assistant directories.

Every supported assistant's user home is scanned; --all additionally
scans the current project's assistant directories. Partial installs
(present but missing marker files) are called out.

Output modes (mutually exclusive):
  (default)   Grouped view, one section per assistant home
  --quiet     One line per assistant home
  --json      Machine-readable JSON output`,
	Example: `  # Show status for all assistants
  swb status

  # Include project-scope installs
  swb status --all

  # JSON output for scripting
  swb status --json`,
	PreRunE: validateStatusFlags,
	RunE:    runStatus,
}

// validateStatusFlags ensures output flags are mutually exclusive.
func validateStatusFlags(_ *cobra.Command, _ []string) error {
	if statusJSON && statusQuiet {
		return errs.NewUserError(errors.New("flags --json and --quiet are mutually exclusive"), "")
	}
	return nil
}

func runStatus(cmd *cobra.Command, _ []string) error {
	return runStatusWithWriter(cmd, os.Stdout)
}

// runStatusWithWriter allows injecting a writer for testing.
func runStatusWithWriter(cmd *cobra.Command, w io.Writer) error {
	logger := logging.FromContext(cmd.Context())

	assistants, err := cli.ResolveAssistants(GetAssistantFlag())
	if err != nil {
		return errs.NewUserError(err, "")
	}

	projectRoot := ""
	if statusAll {
		projectRoot, err = resolveProjectRoot(true)
		if err != nil {
			return err
		}
	}

	targets := cli.Targets(assistants, projectRoot)
	scanner := installer.NewScannerWithLogger(logger)
	states, err := scanner.ScanAll(cmd.Context(), targets, installer.Layouts())
	if err != nil {
		return err
	}

	if statusJSON {
		return outputStatusJSON(w, states)
	}
	if statusQuiet {
		outputStatusQuiet(w, targets, states)
		return nil
	}
	outputStatusText(w, targets, states)
	return nil
}

type statusOutput struct {
	Version  string                   `json:"version"`
	Installs []installer.InstallState `json:"installs"`
}

func outputStatusJSON(w io.Writer, states []installer.InstallState) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(statusOutput{Version: Version, Installs: states}); err != nil {
		return errors.Wrap(err, "encoding JSON")
	}
	return nil
}

// targetStates groups the scan results back under their target, in
// target order.
func targetStates(targets []installer.Target, states []installer.InstallState) [][]installer.InstallState {
	perTarget := len(installer.Layouts())
	grouped := make([][]installer.InstallState, len(targets))
	for i := range targets {
		start := i * perTarget
		end := start + perTarget
		if start > len(states) {
			break
		}
		if end > len(states) {
			end = len(states)
		}
		grouped[i] = states[start:end]
	}
	return grouped
}

func outputStatusQuiet(w io.Writer, targets []installer.Target, states []installer.InstallState) {
	for i, group := range targetStates(targets, states) {
		target := targets[i]

		parts := make([]string, 0, len(group))
		for _, state := range group {
			switch {
			case state.Complete():
				parts = append(parts, state.Layout)
			case state.Installed:
				parts = append(parts, state.Layout+" (incomplete)")
			}
		}
		if len(parts) == 0 {
			fmt.Fprintf(w, "%s (%s): none\n", target.Assistant, target.Scope)
			continue
		}
		fmt.Fprintf(w, "%s (%s): %s\n", target.Assistant, target.Scope, strings.Join(parts, ", "))
	}
}

func outputStatusText(w io.Writer, targets []installer.Target, states []installer.InstallState) {
	fmt.Fprintf(w, "swb version %s\n", Version)

	for i, group := range targetStates(targets, states) {
		target := targets[i]

		fmt.Fprintln(w)
		boldStyle.Fprintf(w, "%s (%s)", target.Assistant, target.Scope)
		dimStyle.Fprintf(w, "  %s\n", target.Home)

		for _, state := range group {
			switch {
			case state.Complete():
				version := state.Version
				if version == "" {
					version = "-"
				}
				successStyle.Fprintf(w, "  ✓ %-7s", state.Layout)
				fmt.Fprintf(w, " %-8s %s\n", version, state.Path)
			case state.Installed:
				warnStyle.Fprintf(w, "  ✗ %-7s", state.Layout)
				fmt.Fprintf(w, " incomplete, missing %s\n", strings.Join(state.Missing, ", "))
			default:
				dimStyle.Fprintf(w, "  - %-7s not installed\n", state.Layout)
			}
		}
	}
}
