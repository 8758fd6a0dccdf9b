package commands

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/cockroachdb/errors"
	"github.com/spf13/cobra"

	"github.com/swbuilder/swb/internal/bundle"
	"github.com/swbuilder/swb/internal/docs"
	errs "github.com/swbuilder/swb/internal/errors"
	"github.com/swbuilder/swb/internal/logging"
)

var docsJSON bool

func init() {
	docsCmd.Flags().BoolVar(&docsJSON, "json", false, "output as JSON")
	docsCmd.AddCommand(docsShowCmd)
	docsCmd.AddCommand(docsSearchCmd)
	rootCmd.AddCommand(docsCmd)
}

var docsCmd = &cobra.Command{
	Use:   "docs",
	Short: "Browse the bundled documentation",
	Long: `Browse the documentation bundled into swb: the signalwire skill,
its workflow guides, and the runnable reference examples.

Without a subcommand, lists every document.`,
	Example: `  # List all documents
  swb docs

  # Read a workflow guide
  swb docs show workflows/agent-basics

  # Search, or browse interactively in a terminal
  swb docs search voice
  swb docs search

  See Also: swb docs show, swb docs search`,
	RunE: runDocsList,
}

func runDocsList(cmd *cobra.Command, _ []string) error {
	return runDocsListWithWriter(cmd, os.Stdout)
}

// runDocsListWithWriter allows injecting a writer for testing.
func runDocsListWithWriter(cmd *cobra.Command, w io.Writer) error {
	catalog, err := openCatalog(cmd)
	if err != nil {
		return err
	}

	documents := catalog.List()
	if docsJSON {
		return outputDocsJSON(w, documents)
	}
	return outputDocsTable(w, documents)
}

// openCatalog indexes the embedded skill tree.
func openCatalog(cmd *cobra.Command) (*docs.Catalog, error) {
	logger := logging.FromContext(cmd.Context())
	catalog, err := docs.NewCatalog(bundle.Skill(), docs.WithLogger(logger))
	if err != nil {
		return nil, errs.NewSystemError(errors.Wrap(err, "indexing bundled docs"), "")
	}
	return catalog, nil
}

func outputDocsJSON(w io.Writer, documents []docs.Document) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(documents); err != nil {
		return errors.Wrap(err, "encoding JSON")
	}
	return nil
}

func outputDocsTable(w io.Writer, documents []docs.Document) error {
	if len(documents) == 0 {
		fmt.Fprintln(w, "No documents found.")
		return nil
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n",
		boldStyle.Sprint("KIND"),
		boldStyle.Sprint("ID"),
		boldStyle.Sprint("TITLE"),
		boldStyle.Sprint("DESCRIPTION"))

	for _, doc := range documents {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n",
			doc.Kind,
			successStyle.Sprint(doc.ID),
			doc.Title,
			dimStyle.Sprint(truncate(doc.Description, 50)))
	}

	return tw.Flush()
}
