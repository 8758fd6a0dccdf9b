package commands

import (
	"fmt"
	"io"
	"os"
	"runtime"

	"github.com/spf13/cobra"

	"github.com/swbuilder/swb/cmd"
	"github.com/swbuilder/swb/internal/bundle"
	"github.com/swbuilder/swb/internal/paths"
)

// Build metadata, mirrored from the cmd package so output helpers can
// reference it without shadowing cobra command parameters.
var (
	Version = cmd.Version
	Commit  = cmd.Commit
	Date    = cmd.Date
)

func init() {
	rootCmd.AddCommand(versionCmd)
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version information",
	Long:  `Print the version, commit, build date, and detected assistants of swb.`,
	Run: func(_ *cobra.Command, _ []string) {
		printVersion(os.Stdout)
	},
}

func printVersion(w io.Writer) {
	fmt.Fprintf(w, "swb version %s\n", Version)
	fmt.Fprintf(w, "  commit:    %s\n", Commit)
	fmt.Fprintf(w, "  built:     %s\n", Date)
	fmt.Fprintf(w, "  go:        %s\n", runtime.Version())
	fmt.Fprintf(w, "  corpus:    %s\n", corpusSummary())
	fmt.Fprintf(w, "  assistants:\n")
	for _, assistant := range paths.Assistants() {
		status := "not installed"
		if assistantInstalled(assistant) {
			status = "installed"
		}
		fmt.Fprintf(w, "    %-9s %s\n", assistant+":", status)
	}
}

// corpusSummary describes the embedded corpus: its manifest version and
// workflow guide count.
func corpusSummary() string {
	summary := bundle.Version()
	if workflows, err := bundle.Workflows(); err == nil {
		summary += fmt.Sprintf(" (%d workflows)", len(workflows))
	}
	return summary
}

// assistantInstalled reports whether the assistant's home directory
// exists, which is the best available signal that it is in use.
func assistantInstalled(assistant string) bool {
	home := paths.AssistantHome(assistant)
	if home == "" {
		return false
	}
	info, err := os.Stat(home)
	return err == nil && info.IsDir()
}
