// Package frontmatter parses YAML frontmatter from Markdown documents.
package frontmatter

import (
	"bufio"
	"bytes"
	"errors"
	"io"
	"strings"

	"gopkg.in/yaml.v3"
)

// Sentinel errors for frontmatter parsing.
var (
	// ErrMissingFrontmatter is returned by MustParse when the document
	// does not start with a "---" delimiter.
	ErrMissingFrontmatter = errors.New("missing frontmatter")

	// ErrUnterminated is returned when an opening delimiter is never
	// closed by a matching "---" line.
	ErrUnterminated = errors.New("missing closing frontmatter delimiter")
)

// Parse extracts YAML frontmatter and body content from a reader.
// If no frontmatter is present the full content is returned as the body
// and matter is left untouched. Use this for documents where the header
// is optional, such as workflow guides.
func Parse[T any](r io.Reader, matter *T) (body []byte, err error) {
	return parse(r, matter, false)
}

// MustParse is like Parse but fails when no frontmatter is found.
// Use this for documents where the header is required, such as SKILL.md.
func MustParse[T any](r io.Reader, matter *T) (body []byte, err error) {
	return parse(r, matter, true)
}

func parse[T any](r io.Reader, matter *T, required bool) ([]byte, error) {
	content, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}

	if !bytes.HasPrefix(content, []byte("---\n")) && !bytes.HasPrefix(content, []byte("---\r\n")) {
		if required {
			return nil, ErrMissingFrontmatter
		}
		return content, nil
	}

	// Skip the opening delimiter, tolerating CRLF.
	start := 3
	if len(content) > start && content[start] == '\r' {
		start++
	}
	if len(content) > start && content[start] == '\n' {
		start++
	}

	parts := bytes.SplitN(content[start:], []byte("\n---"), 2)
	if len(parts) < 2 {
		parts = bytes.SplitN(content[start:], []byte("\r\n---"), 2)
	}
	if len(parts) < 2 {
		if required {
			return nil, ErrUnterminated
		}
		return content, nil
	}

	header := parts[0]
	rest := parts[1]

	// Drop the newline left over from the split.
	if len(rest) > 0 && rest[0] == '\r' {
		rest = rest[1:]
	}
	if len(rest) > 0 && rest[0] == '\n' {
		rest = rest[1:]
	}

	if err := yaml.Unmarshal(header, matter); err != nil {
		return nil, err
	}
	return rest, nil
}

// ParseHeader decodes only the frontmatter block, stopping at the
// closing delimiter without consuming the body. A document with no
// frontmatter leaves matter untouched and returns nil. This keeps
// inventory scans cheap for large documents.
func ParseHeader(r io.Reader, matter any) error {
	scanner := bufio.NewScanner(r)

	if !scanner.Scan() {
		return scanner.Err()
	}
	if strings.TrimSpace(scanner.Text()) != "---" {
		return nil
	}

	var buf bytes.Buffer
	for scanner.Scan() {
		line := scanner.Text()
		if strings.TrimSpace(line) == "---" {
			return yaml.Unmarshal(buf.Bytes(), matter)
		}
		buf.WriteString(line)
		buf.WriteByte('\n')
	}
	if err := scanner.Err(); err != nil {
		return err
	}
	return ErrUnterminated
}
