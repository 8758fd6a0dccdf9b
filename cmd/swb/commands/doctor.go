package commands

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/cockroachdb/errors"
	"github.com/spf13/cobra"

	"github.com/swbuilder/swb/internal/bundle"
	"github.com/swbuilder/swb/internal/doctor"
	errs "github.com/swbuilder/swb/internal/errors"
	"github.com/swbuilder/swb/internal/installer"
	"github.com/swbuilder/swb/internal/paths"
)

var (
	doctorJSON    bool
	doctorQuiet   bool
	doctorVerbose bool
	doctorFix     bool
)

func init() {
	doctorCmd.Flags().BoolVar(&doctorJSON, "json", false,
		"output results as JSON")
	doctorCmd.Flags().BoolVar(&doctorQuiet, "quiet", false,
		"suppress output, exit code only")
	doctorCmd.Flags().BoolVar(&doctorVerbose, "verbose", false,
		"show detailed check-by-check output")
	doctorCmd.Flags().BoolVar(&doctorFix, "fix", false,
		"attempt to fix issues automatically")
	rootCmd.AddCommand(doctorCmd)
}

var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Diagnose installation issues",
	Long: `Run diagnostic checks on swb and the assistant directories it
installs into.

Checks cover install root permissions, partial installs left by
interrupted copies, the embedded corpus, the syntax of Claude's
settings.json, and the syntax of Codex's config.toml.

Output modes (mutually exclusive):
  (default)   Show errors and warnings
  --verbose   Show all checks including passed ones
  --quiet     No output, exit code only
  --json      Machine-readable JSON output

Exit codes:
  0 - All checks passed (no errors or warnings)
  1 - Warnings present, no errors
  2 - Errors present`,
	Example: `  # Check everything
  swb doctor

  # Create missing install roots and fix loose permissions
  swb doctor --fix

  See Also: swb verify, swb status`,
	PreRunE: validateDoctorFlags,
	RunE:    runDoctor,
}

// validateDoctorFlags ensures output flags are mutually exclusive.
func validateDoctorFlags(_ *cobra.Command, _ []string) error {
	count := 0
	if doctorJSON {
		count++
	}
	if doctorQuiet {
		count++
	}
	if doctorVerbose {
		count++
	}

	if count > 1 {
		return errs.NewUserError(
			errors.New("flags --json, --quiet, and --verbose are mutually exclusive"), "")
	}

	return nil
}

func runDoctor(_ *cobra.Command, _ []string) error {
	return runDoctorWithWriter(os.Stdout)
}

// runDoctorWithWriter allows injecting a writer for testing.
func runDoctorWithWriter(w io.Writer) error {
	checks := buildDoctorChecks()

	runner := doctor.NewRunner()
	for _, check := range checks {
		runner.AddCheck(check)
	}
	report := runner.Run()

	if doctorFix {
		applyDoctorFixes(w, checks)
		// Show the post-fix state
		report = runner.Run()
	}

	if err := outputDoctorReport(w, report); err != nil {
		return err
	}

	if report.HasErrors() {
		return errs.NewExitError(errors.New("doctor found errors"), errs.ExitSystem)
	}
	if report.HasWarnings() {
		return errs.NewExitError(errors.New("doctor found warnings"), errs.ExitUser)
	}
	return nil
}

// buildDoctorChecks assembles the full diagnostic suite: install roots,
// per-assistant install state, the embedded corpus, and the assistant
// config files swb touches or depends on.
func buildDoctorChecks() []doctor.Check {
	checks := []doctor.Check{
		doctor.NewInstallRootCheck(),
		doctor.NewSourceCheck("bundle", bundle.Corpus(), requiredCorpusFiles()),
		doctor.NewSettingsSyntaxCheck(),
		doctor.NewCodexConfigCheck(),
	}

	for _, assistant := range paths.Assistants() {
		home := paths.AssistantHome(assistant)
		if home == "" {
			continue
		}
		for _, layout := range installer.Layouts() {
			if !layout.ForAssistant(assistant) {
				continue
			}
			checks = append(checks, doctor.NewInstallStateCheck(
				layout.Name,
				assistant,
				layout.DestDir(home),
				layout.Markers,
			))
		}
	}

	return checks
}

// requiredCorpusFiles lists the source-relative files every usable
// corpus needs: the markers of each layout plus the marketplace
// manifest shipped alongside the plugin.
func requiredCorpusFiles() []string {
	seen := map[string]bool{"marketplace.json": true}
	required := []string{"marketplace.json"}

	for _, layout := range installer.Layouts() {
		for _, marker := range layout.Markers {
			src, ok := layout.SourcePath(marker)
			if !ok || seen[src] {
				continue
			}
			seen[src] = true
			required = append(required, src)
		}
	}
	return required
}

// applyDoctorFixes runs the fixers of checks that found fixable issues.
func applyDoctorFixes(w io.Writer, checks []doctor.Check) {
	for _, check := range checks {
		fixer, ok := check.(doctor.Fixer)
		if !ok || !fixer.CanFix() {
			continue
		}

		for _, result := range fixer.Fix() {
			if result.Fixed {
				successStyle.Fprintf(w, "✓ fixed %s", result.Path)
				fmt.Fprintf(w, ": %s\n", result.Description)
			} else {
				warnStyle.Fprintf(w, "✗ could not fix %s", result.Path)
				fmt.Fprintf(w, ": %s (%v)\n", result.Description, result.Error)
			}
		}
	}
}

func outputDoctorReport(w io.Writer, report *doctor.Report) error {
	if doctorQuiet {
		return nil
	}

	if doctorJSON {
		return outputDoctorJSON(w, report)
	}

	return outputDoctorText(w, report)
}

func outputDoctorJSON(w io.Writer, report *doctor.Report) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(report); err != nil {
		return errors.Wrap(err, "encoding JSON")
	}
	return nil
}

func outputDoctorText(w io.Writer, report *doctor.Report) error {
	// In normal mode, show only errors and warnings
	// In verbose mode, show all checks
	showAll := doctorVerbose

	hasOutput := false
	for _, result := range report.Results {
		if !showAll && result.Status != doctor.SeverityError && result.Status != doctor.SeverityWarning {
			continue
		}

		hasOutput = true
		icon := statusIcon(result.Status)
		fmt.Fprintf(w, "%s [%s] %s: %s\n", icon, result.Category, result.Name, result.Message)

		if result.FixHint != "" && (result.Status == doctor.SeverityError || result.Status == doctor.SeverityWarning) {
			fmt.Fprintf(w, "  hint: %s\n", result.FixHint)
		}
	}

	// Print summary
	if hasOutput || showAll {
		fmt.Fprintln(w)
	}

	fmt.Fprintf(w, "Summary: %d passed, %d info, %d warnings, %d errors\n",
		report.Summary.Passed, report.Summary.Info, report.Summary.Warnings, report.Summary.Errors)

	return nil
}

func statusIcon(s doctor.Severity) string {
	switch s {
	case doctor.SeverityPass:
		return successStyle.Sprint("✓")
	case doctor.SeverityInfo:
		return "ℹ"
	case doctor.SeverityWarning:
		return warnStyle.Sprint("⚠")
	case doctor.SeverityError:
		return errorStyle.Sprint("✗")
	default:
		return "?"
	}
}
