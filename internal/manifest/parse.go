package manifest

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"io/fs"
	"strings"

	"github.com/swbuilder/swb/pkg/frontmatter"
)

// ParseError represents an error that occurred while parsing a corpus
// document.
type ParseError struct {
	Path string // Path to the file that failed to parse
	Err  error  // Underlying error
}

func (e *ParseError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("parsing manifest: %v", e.Err)
	}
	return fmt.Sprintf("parsing %s: %v", e.Path, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// ParsePlugin decodes a plugin.json document.
// The path parameter is used for error context only.
func ParsePlugin(r io.Reader, path string) (*Plugin, error) {
	var p Plugin
	if err := decodeJSON(r, &p); err != nil {
		return nil, &ParseError{Path: path, Err: err}
	}
	return &p, nil
}

// ParseMarketplace decodes a marketplace.json document.
// The path parameter is used for error context only.
func ParseMarketplace(r io.Reader, path string) (*Marketplace, error) {
	var m Marketplace
	if err := decodeJSON(r, &m); err != nil {
		return nil, &ParseError{Path: path, Err: err}
	}
	return &m, nil
}

func decodeJSON(r io.Reader, v any) error {
	// Unknown fields are allowed: manifests may carry keys for other
	// tooling (commands, hooks, mcpServers) that we don't model.
	dec := json.NewDecoder(r)
	if err := dec.Decode(v); err != nil {
		return err
	}
	// A manifest file holds exactly one JSON document.
	if err := dec.Decode(&struct{}{}); err != io.EOF {
		return fmt.Errorf("trailing data after JSON document")
	}
	return nil
}

// ParseSkill decodes a SKILL.md document. The frontmatter header is
// required; the markdown body becomes Instructions with surrounding
// whitespace trimmed. The path parameter is used for error context only.
func ParseSkill(r io.Reader, path string) (*Skill, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, &ParseError{Path: path, Err: err}
	}

	var skill Skill
	body, err := frontmatter.MustParse(bytes.NewReader(data), &skill)
	if err != nil {
		return nil, &ParseError{Path: path, Err: err}
	}

	skill.Instructions = strings.TrimSpace(string(body))
	return &skill, nil
}

// ParseSkillHeader decodes only the SKILL.md frontmatter, without
// reading the body. Cheaper than ParseSkill for inventory listings.
func ParseSkillHeader(r io.Reader, path string) (*Skill, error) {
	var skill Skill
	if err := frontmatter.ParseHeader(r, &skill); err != nil {
		return nil, &ParseError{Path: path, Err: err}
	}
	return &skill, nil
}

// ParseWorkflowHeader decodes the optional frontmatter of a workflow
// guide. Documents without a header yield a zero WorkflowMeta.
func ParseWorkflowHeader(r io.Reader, path string) (*WorkflowMeta, error) {
	var meta WorkflowMeta
	if err := frontmatter.ParseHeader(r, &meta); err != nil {
		return nil, &ParseError{Path: path, Err: err}
	}
	return &meta, nil
}

// LoadPlugin reads and decodes plugin.json from a filesystem.
func LoadPlugin(fsys fs.FS, path string) (*Plugin, error) {
	f, err := fsys.Open(path)
	if err != nil {
		return nil, &ParseError{Path: path, Err: err}
	}
	defer f.Close()
	return ParsePlugin(f, path)
}

// LoadMarketplace reads and decodes marketplace.json from a filesystem.
func LoadMarketplace(fsys fs.FS, path string) (*Marketplace, error) {
	f, err := fsys.Open(path)
	if err != nil {
		return nil, &ParseError{Path: path, Err: err}
	}
	defer f.Close()
	return ParseMarketplace(f, path)
}

// LoadSkill reads and decodes a SKILL.md from a filesystem.
func LoadSkill(fsys fs.FS, path string) (*Skill, error) {
	f, err := fsys.Open(path)
	if err != nil {
		return nil, &ParseError{Path: path, Err: err}
	}
	defer f.Close()
	return ParseSkill(f, path)
}
