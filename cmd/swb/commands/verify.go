package commands

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/spf13/cobra"

	errs "github.com/swbuilder/swb/internal/errors"
	"github.com/swbuilder/swb/internal/installer"
	"github.com/swbuilder/swb/internal/logging"
)

var (
	verifyJSON    bool
	verifyProject bool
)

func init() {
	verifyCmd.Flags().BoolVar(&verifyJSON, "json", false, "output as JSON")
	verifyCmd.Flags().BoolVar(&verifyProject, "project", false,
		"verify ./.claude of the current project instead of the user home")
	rootCmd.AddCommand(verifyCmd)
}

var verifyCmd = &cobra.Command{
	Use:   "verify [plugin|skill]",
	Short: "Check installed layouts against their marker files",
	Long: `Check that installed signalwire-builder layouts are complete.

Each layout has marker files whose presence proves a complete install
(plugin.json and the skill's SKILL.md for the plugin layout, SKILL.md
for the skill layout). Markers swb understands are also parsed, so a
manifest corrupted after install is caught. Without an argument every
layout is checked.

Exit codes:
  0 - every checked installation is complete
  1 - nothing is installed
  2 - an installation has missing or invalid marker files`,
	Example: `  # Verify everything installed for the default assistant
  swb verify

  # Verify only the plugin layout, as JSON
  swb verify plugin --json

  See Also: swb status, swb doctor`,
	Args:      cobra.MaximumNArgs(1),
	ValidArgs: installer.LayoutNames(),
	RunE:      runVerify,
}

func runVerify(cmd *cobra.Command, args []string) error {
	return runVerifyWithWriter(cmd, args, os.Stdout)
}

// runVerifyWithWriter allows injecting a writer for testing.
func runVerifyWithWriter(cmd *cobra.Command, args []string, w io.Writer) error {
	logger := logging.FromContext(cmd.Context())

	layouts, err := layoutsFromArgs(args)
	if err != nil {
		return err
	}

	_, home, err := resolveInstallHome(verifyProject)
	if err != nil {
		return err
	}

	inst := installer.New(installer.Config{Home: home, Logger: logger})

	reports := make([]*installer.VerifyReport, 0, len(layouts))
	for _, layout := range layouts {
		report, err := inst.Verify(layout)
		if err != nil {
			return err
		}
		reports = append(reports, report)
	}

	if verifyJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if err := enc.Encode(reports); err != nil {
			return errors.Wrap(err, "encoding JSON")
		}
	} else {
		printVerifyReports(w, reports)
	}

	return verifyExitError(reports, home)
}

func printVerifyReports(w io.Writer, reports []*installer.VerifyReport) {
	for _, report := range reports {
		switch {
		case !report.Installed:
			dimStyle.Fprintf(w, "- %-7s not installed (%s)\n", report.Layout, report.Path)
		case !report.Complete():
			errorStyle.Fprintf(w, "✗ %-7s incomplete at %s\n", report.Layout, report.Path)
			for _, marker := range report.Missing {
				fmt.Fprintf(w, "    missing %s\n", marker)
			}
			for _, marker := range report.Invalid {
				fmt.Fprintf(w, "    invalid %s\n", marker)
			}
		default:
			successStyle.Fprintf(w, "✓ %-7s complete at %s (%d workflows)\n",
				report.Layout, report.Path, len(report.Workflows))
		}
	}
}

// verifyExitError maps the reports to the command's exit contract:
// incomplete installs are system errors, nothing installed is a user
// error, complete installs succeed.
func verifyExitError(reports []*installer.VerifyReport, home string) error {
	var broken []string
	installed := 0
	for _, report := range reports {
		if !report.Installed {
			continue
		}
		installed++
		if !report.Complete() {
			broken = append(broken, report.Layout)
		}
	}

	if len(broken) > 0 {
		return errs.NewSystemError(
			errors.Wrapf(errs.ErrVerifyFailed, "incomplete: %s", strings.Join(broken, ", ")),
			"Re-run 'swb install' to repair the installation.")
	}
	if installed == 0 {
		return errs.NewUserError(
			errors.Wrapf(errs.ErrNotInstalled, "no layouts under %s", home),
			"Run 'swb install' first.")
	}
	return nil
}
