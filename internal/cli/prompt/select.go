// Package prompt provides interactive CLI prompts for user input.
package prompt

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/cockroachdb/errors"

	"github.com/swbuilder/swb/internal/docs"
)

// Sentinel errors for document selection.
var (
	ErrNoDocuments        = errors.New("no documents to select from")
	ErrInvalidSelection   = errors.New("invalid selection")
	ErrSelectionCancelled = errors.New("selection cancelled")
)

// Selector handles interactive selection prompts.
type Selector struct {
	reader io.Reader
	writer io.Writer
}

// NewSelector creates a new Selector using stdin and stdout.
func NewSelector() *Selector {
	return &Selector{
		reader: os.Stdin,
		writer: os.Stdout,
	}
}

// NewSelectorWithIO creates a Selector with custom reader and writer for testing.
func NewSelectorWithIO(r io.Reader, w io.Writer) *Selector {
	return &Selector{
		reader: r,
		writer: w,
	}
}

// SelectDocument prompts the user to choose from documents matching an
// ambiguous query.
//
// Returns:
//   - ErrNoDocuments if the list is empty
//   - The document if only one matches (auto-selects without prompting)
//   - The selected document based on user input
//   - ErrInvalidSelection if the selection is out of range
//   - ErrSelectionCancelled if input is EOF (e.g., Ctrl+D)
func (s *Selector) SelectDocument(query string, matches []docs.Document) (*docs.Document, error) {
	if len(matches) == 0 {
		return nil, ErrNoDocuments
	}

	if len(matches) == 1 {
		return &matches[0], nil
	}

	fmt.Fprintf(s.writer, "Multiple documents match %q:\n", query)
	for i, d := range matches {
		fmt.Fprintf(s.writer, "  [%d] %s (%s)\n", i+1, d.ID, d.Title)
	}
	fmt.Fprintf(s.writer, "Select [1]: ")

	reader := bufio.NewReader(s.reader)
	input, err := reader.ReadString('\n')
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, ErrSelectionCancelled
		}
		return nil, errors.Wrap(err, "reading selection")
	}

	input = strings.TrimSpace(input)

	// Default to first option if empty
	if input == "" {
		return &matches[0], nil
	}

	selection, err := strconv.Atoi(input)
	if err != nil {
		return nil, errors.Wrapf(ErrInvalidSelection, "%q is not a number", input)
	}

	// Validate range (1-indexed)
	if selection < 1 || selection > len(matches) {
		return nil, errors.Wrapf(ErrInvalidSelection, "%d is out of range [1-%d]", selection, len(matches))
	}

	return &matches[selection-1], nil
}
