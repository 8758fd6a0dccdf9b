package commands

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/spf13/cobra"

	"github.com/swbuilder/swb/internal/cli/prompt"
	"github.com/swbuilder/swb/internal/docs"
	errs "github.com/swbuilder/swb/internal/errors"
	"github.com/swbuilder/swb/internal/logging"
)

var docsShowCmd = &cobra.Command{
	Use:   "show <topic>",
	Short: "Print a bundled document",
	Long: `Print a bundled document to stdout.

Topics are addressed by ID (e.g. workflows/agent-basics) or by their
short name (agent-basics). When a short name matches several documents
and stdin is a terminal, a selection prompt is shown; otherwise the
matches are listed and the command fails.`,
	Example: `  # Read a workflow guide by full ID
  swb docs show workflows/agent-basics

  # Short names work when unambiguous
  swb docs show agent-basics

  See Also: swb docs, swb docs search`,
	Args: cobra.ExactArgs(1),
	RunE: runDocsShow,
}

func runDocsShow(cmd *cobra.Command, args []string) error {
	return runDocsShowWithWriter(cmd, args, os.Stdout)
}

// runDocsShowWithWriter allows injecting a writer for testing.
func runDocsShowWithWriter(cmd *cobra.Command, args []string, w io.Writer) error {
	catalog, err := openCatalog(cmd)
	if err != nil {
		return err
	}

	doc, err := resolveDocument(catalog, args[0])
	if err != nil {
		return err
	}

	content, err := catalog.Content(doc)
	if err != nil {
		return errs.NewSystemError(errors.Wrapf(err, "reading %s", doc.ID), "")
	}
	_, err = w.Write(content)
	return err
}

// resolveDocument looks up a topic, falling back to an interactive
// selection when the short name is ambiguous and stdin is a terminal.
func resolveDocument(catalog *docs.Catalog, topic string) (*docs.Document, error) {
	doc, err := catalog.Get(topic)
	if err == nil {
		return doc, nil
	}

	if errors.Is(err, docs.ErrDocNotFound) {
		return nil, errs.NewUserError(err, "Run 'swb docs' to list available topics.")
	}
	if !errors.Is(err, docs.ErrDocAmbiguous) {
		return nil, err
	}

	matches := catalog.Matches(topic)
	if logging.IsTTY(os.Stdin) {
		doc, err := prompt.NewSelector().SelectDocument(topic, matches)
		if err != nil {
			return nil, errs.NewUserError(err, "")
		}
		return doc, nil
	}

	ids := make([]string, len(matches))
	for i, match := range matches {
		ids[i] = match.ID
	}
	return nil, errs.NewUserError(
		errors.Wrapf(docs.ErrDocAmbiguous, "%q matches %s", topic, strings.Join(ids, ", ")),
		fmt.Sprintf("Use a full ID, e.g. 'swb docs show %s'.", ids[0]))
}
