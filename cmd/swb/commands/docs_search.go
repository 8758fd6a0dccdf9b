package commands

import (
	"fmt"
	"io"
	"os"

	"github.com/cockroachdb/errors"
	fuzzyfinder "github.com/ktr0731/go-fuzzyfinder"
	"github.com/spf13/cobra"

	"github.com/swbuilder/swb/internal/docs"
	"github.com/swbuilder/swb/internal/logging"
)

var docsSearchJSON bool

func init() {
	docsSearchCmd.Flags().BoolVar(&docsSearchJSON, "json", false, "output as JSON")
}

var docsSearchCmd = &cobra.Command{
	Use:   "search [query]",
	Short: "Search the bundled documentation",
	Long: `Search the bundled documentation by substring match against document
IDs, titles, and descriptions.

Without a query in a terminal, an interactive fuzzy finder opens with a
preview of each document; outside a terminal all documents are listed.`,
	Example: `  # Find everything mentioning voice
  swb docs search voice

  # Browse interactively
  swb docs search

  # JSON output for scripting
  swb docs search agent --json`,
	Args: cobra.MaximumNArgs(1),
	RunE: runDocsSearch,
}

func runDocsSearch(cmd *cobra.Command, args []string) error {
	return runDocsSearchWithWriter(cmd, args, os.Stdout)
}

// runDocsSearchWithWriter allows injecting a writer for testing.
func runDocsSearchWithWriter(cmd *cobra.Command, args []string, w io.Writer) error {
	catalog, err := openCatalog(cmd)
	if err != nil {
		return err
	}

	var query string
	if len(args) > 0 {
		query = args[0]
	}

	if query == "" && !docsSearchJSON && logging.IsTTY(os.Stdin) && logging.IsTTY(os.Stdout) {
		return runInteractiveDocsSearch(w, catalog)
	}

	results := catalog.Search(query)
	if docsSearchJSON {
		return outputDocsJSON(w, results)
	}
	return outputDocsTable(w, results)
}

// runInteractiveDocsSearch opens a fuzzy finder over the catalog and
// prints the chosen document. Aborting the finder is not an error.
func runInteractiveDocsSearch(w io.Writer, catalog *docs.Catalog) error {
	documents := catalog.List()
	if len(documents) == 0 {
		fmt.Fprintln(w, "No documents found.")
		return nil
	}

	idx, err := fuzzyfinder.Find(
		documents,
		func(i int) string {
			return fmt.Sprintf("%s: %s", documents[i].Kind, documents[i].ID)
		},
		fuzzyfinder.WithPreviewWindow(func(i, width, height int) string {
			if i == -1 {
				return ""
			}
			doc := documents[i]
			content, err := catalog.Content(&doc)
			if err != nil {
				return fmt.Sprintf("%s\n\n%s", doc.Title, doc.Description)
			}
			return string(content)
		}),
	)
	if err != nil {
		if errors.Is(err, fuzzyfinder.ErrAbort) {
			return nil
		}
		return errors.Wrap(err, "interactive search failed")
	}

	doc := documents[idx]
	content, err := catalog.Content(&doc)
	if err != nil {
		return errors.Wrapf(err, "reading %s", doc.ID)
	}
	_, err = w.Write(content)
	return err
}
