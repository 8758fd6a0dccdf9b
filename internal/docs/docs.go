// Package docs catalogs the readable documents in the corpus: the
// skill guide, its workflow guides, and the reference examples. The
// docs command browses this catalog without installing anything.
package docs

import (
	"bufio"
	"io/fs"
	"log/slog"
	"path"
	"sort"
	"strings"

	"github.com/cockroachdb/errors"

	"github.com/swbuilder/swb/internal/manifest"
)

// Kind classifies a catalog document.
type Kind string

const (
	KindSkill    Kind = "skill"
	KindWorkflow Kind = "workflow"
	KindExample  Kind = "example"
)

// Sentinel errors for catalog lookups.
var (
	// ErrDocNotFound indicates no document matches the requested ID.
	ErrDocNotFound = errors.New("document not found")

	// ErrDocAmbiguous indicates a short ID matches several documents.
	ErrDocAmbiguous = errors.New("document ID is ambiguous")
)

// Document is one readable item in the corpus.
type Document struct {
	// ID addresses the document, e.g. "workflows/agent-basics".
	ID string `json:"id"`

	// Title is the human-readable name.
	Title string `json:"title"`

	// Description summarizes the document.
	Description string `json:"description"`

	// Kind classifies the document.
	Kind Kind `json:"kind"`

	// Path locates the document within the skill tree.
	Path string `json:"path"`
}

// Catalog indexes the documents of a skill tree.
type Catalog struct {
	fsys   fs.FS
	docs   []Document
	logger *slog.Logger
}

// Option configures a Catalog.
type Option func(*Catalog)

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Catalog) {
		c.logger = logger
	}
}

// NewCatalog scans a skill tree (SKILL.md at the root) and builds the
// document index. Unreadable entries are logged and skipped; a tree
// without SKILL.md is an error.
func NewCatalog(fsys fs.FS, opts ...Option) (*Catalog, error) {
	c := &Catalog{
		fsys:   fsys,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}

	if err := c.index(); err != nil {
		return nil, err
	}
	return c, nil
}

func (c *Catalog) index() error {
	skill, err := manifest.LoadSkill(c.fsys, "SKILL.md")
	if err != nil {
		return errors.Wrap(err, "reading SKILL.md")
	}
	c.docs = append(c.docs, Document{
		ID:          "skill",
		Title:       skill.Name,
		Description: skill.Description,
		Kind:        KindSkill,
		Path:        "SKILL.md",
	})

	if err := c.indexWorkflows(); err != nil {
		return err
	}
	c.indexExamples()

	sort.Slice(c.docs, func(a, b int) bool { return c.docs[a].ID < c.docs[b].ID })
	return nil
}

func (c *Catalog) indexWorkflows() error {
	entries, err := fs.ReadDir(c.fsys, "workflows")
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return errors.Wrap(err, "reading workflows directory")
	}

	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".md") {
			continue
		}
		docPath := path.Join("workflows", entry.Name())

		f, err := c.fsys.Open(docPath)
		if err != nil {
			c.logger.Warn("opening workflow", "path", docPath, "error", err)
			continue
		}
		meta, err := manifest.ParseWorkflowHeader(f, docPath)
		f.Close()
		if err != nil {
			c.logger.Warn("parsing workflow frontmatter", "path", docPath, "error", err)
			continue
		}

		base := strings.TrimSuffix(entry.Name(), ".md")
		title := meta.Title
		if title == "" {
			title = base
		}
		c.docs = append(c.docs, Document{
			ID:          "workflows/" + base,
			Title:       title,
			Description: meta.Description,
			Kind:        KindWorkflow,
			Path:        docPath,
		})
	}
	return nil
}

func (c *Catalog) indexExamples() {
	entries, err := fs.ReadDir(c.fsys, "reference/examples")
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			c.logger.Warn("reading examples directory", "error", err)
		}
		return
	}

	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".py") {
			continue
		}
		docPath := path.Join("reference/examples", entry.Name())
		base := strings.TrimSuffix(entry.Name(), ".py")

		c.docs = append(c.docs, Document{
			ID:          "examples/" + base,
			Title:       base,
			Description: c.exampleSummary(docPath),
			Kind:        KindExample,
			Path:        docPath,
		})
	}
}

// exampleSummary pulls the first line of a Python module docstring.
func (c *Catalog) exampleSummary(docPath string) string {
	f, err := c.fsys.Open(docPath)
	if err != nil {
		return ""
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		if rest, ok := strings.CutPrefix(line, `"""`); ok {
			rest = strings.TrimSuffix(rest, `"""`)
			return strings.TrimSpace(rest)
		}
		// Code before any docstring; give up.
		return ""
	}
	return ""
}

// List returns all documents, sorted by ID.
func (c *Catalog) List() []Document {
	out := make([]Document, len(c.docs))
	copy(out, c.docs)
	return out
}

// Get resolves a document by full ID or unique base name, so both
// "workflows/agent-basics" and "agent-basics" work.
func (c *Catalog) Get(id string) (*Document, error) {
	for i := range c.docs {
		if c.docs[i].ID == id {
			return &c.docs[i], nil
		}
	}

	var matches []*Document
	for i := range c.docs {
		if path.Base(c.docs[i].ID) == id {
			matches = append(matches, &c.docs[i])
		}
	}
	switch len(matches) {
	case 1:
		return matches[0], nil
	case 0:
		return nil, errors.Wrapf(ErrDocNotFound, "%q", id)
	default:
		ids := make([]string, len(matches))
		for i, m := range matches {
			ids[i] = m.ID
		}
		return nil, errors.Wrapf(ErrDocAmbiguous, "%q matches %s", id, strings.Join(ids, ", "))
	}
}

// Matches returns every document whose full ID or base name equals id.
// Commands use it to offer a selection when Get reports ambiguity.
func (c *Catalog) Matches(id string) []Document {
	var matches []Document
	for i := range c.docs {
		if c.docs[i].ID == id || path.Base(c.docs[i].ID) == id {
			matches = append(matches, c.docs[i])
		}
	}
	return matches
}

// Content returns the raw bytes of a document.
func (c *Catalog) Content(doc *Document) ([]byte, error) {
	data, err := fs.ReadFile(c.fsys, doc.Path)
	if err != nil {
		return nil, errors.Wrapf(err, "reading %s", doc.Path)
	}
	return data, nil
}
