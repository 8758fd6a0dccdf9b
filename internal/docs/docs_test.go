package docs

import (
	"errors"
	"strings"
	"testing"
	"testing/fstest"

	"github.com/swbuilder/swb/internal/logging"
)

// testSkillTree mirrors the skill subtree of the corpus.
func testSkillTree() fstest.MapFS {
	return fstest.MapFS{
		"SKILL.md": &fstest.MapFile{
			Data: []byte("---\nname: signalwire\ndescription: Build voice agents\n---\n\n# Guide\n"),
		},
		"workflows/agent-basics.md": &fstest.MapFile{
			Data: []byte("---\ntitle: Agent Basics\ndescription: AgentBase and languages\n---\n\nbody\n"),
		},
		"workflows/testing.md": &fstest.MapFile{
			Data: []byte("---\ntitle: Testing\ndescription: swaig-test CLI usage\n---\n\nbody\n"),
		},
		"reference/examples/faq-bot.py": &fstest.MapFile{
			Data: []byte("\"\"\"FAQ agent: structured prompt sections.\n\nMore detail.\n\"\"\"\n\nprint('x')\n"),
		},
		"reference/examples/simple-agent.py": &fstest.MapFile{
			Data: []byte("import os\n"),
		},
	}
}

func newTestCatalog(t *testing.T) *Catalog {
	t.Helper()
	c, err := NewCatalog(testSkillTree(), WithLogger(logging.ForTest(t)))
	if err != nil {
		t.Fatalf("NewCatalog: %v", err)
	}
	return c
}

func TestCatalogList(t *testing.T) {
	c := newTestCatalog(t)
	docs := c.List()

	wantIDs := []string{
		"examples/faq-bot",
		"examples/simple-agent",
		"skill",
		"workflows/agent-basics",
		"workflows/testing",
	}
	if len(docs) != len(wantIDs) {
		t.Fatalf("got %d docs, want %d: %+v", len(docs), len(wantIDs), docs)
	}
	for i, want := range wantIDs {
		if docs[i].ID != want {
			t.Errorf("docs[%d].ID = %q, want %q", i, docs[i].ID, want)
		}
	}
}

func TestCatalogMetadata(t *testing.T) {
	c := newTestCatalog(t)

	doc, err := c.Get("workflows/agent-basics")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if doc.Title != "Agent Basics" {
		t.Errorf("title = %q", doc.Title)
	}
	if doc.Kind != KindWorkflow {
		t.Errorf("kind = %q", doc.Kind)
	}

	example, err := c.Get("examples/faq-bot")
	if err != nil {
		t.Fatalf("Get example: %v", err)
	}
	if example.Description != "FAQ agent: structured prompt sections." {
		t.Errorf("docstring summary = %q", example.Description)
	}

	// No docstring, no description.
	plain, err := c.Get("examples/simple-agent")
	if err != nil {
		t.Fatal(err)
	}
	if plain.Description != "" {
		t.Errorf("description = %q, want empty", plain.Description)
	}
}

func TestCatalogGetByBaseName(t *testing.T) {
	c := newTestCatalog(t)

	doc, err := c.Get("agent-basics")
	if err != nil {
		t.Fatalf("Get by base name: %v", err)
	}
	if doc.ID != "workflows/agent-basics" {
		t.Errorf("resolved %q", doc.ID)
	}

	if _, err := c.Get("no-such-doc"); !errors.Is(err, ErrDocNotFound) {
		t.Errorf("error = %v, want ErrDocNotFound", err)
	}
}

func TestCatalogGetAmbiguous(t *testing.T) {
	tree := testSkillTree()
	tree["reference/examples/testing.py"] = &fstest.MapFile{Data: []byte("x = 1\n")}

	c, err := NewCatalog(tree, WithLogger(logging.ForTest(t)))
	if err != nil {
		t.Fatal(err)
	}

	// "testing" is both a workflow and an example base name.
	_, err = c.Get("testing")
	if !errors.Is(err, ErrDocAmbiguous) {
		t.Fatalf("error = %v, want ErrDocAmbiguous", err)
	}
	if !strings.Contains(err.Error(), "workflows/testing") {
		t.Errorf("ambiguity error should list candidates: %v", err)
	}

	// Full IDs still resolve.
	if _, err := c.Get("workflows/testing"); err != nil {
		t.Errorf("full ID failed: %v", err)
	}

	// Matches exposes the candidates Get refuses to pick between.
	matches := c.Matches("testing")
	if len(matches) != 2 {
		t.Fatalf("Matches() returned %d documents, want 2", len(matches))
	}
	if matches[0].ID != "examples/testing" || matches[1].ID != "workflows/testing" {
		t.Errorf("Matches() = %q, %q", matches[0].ID, matches[1].ID)
	}
	if got := c.Matches("no-such-doc"); len(got) != 0 {
		t.Errorf("Matches(no-such-doc) = %v, want empty", got)
	}
}

func TestCatalogContent(t *testing.T) {
	c := newTestCatalog(t)
	doc, err := c.Get("skill")
	if err != nil {
		t.Fatal(err)
	}

	data, err := c.Content(doc)
	if err != nil {
		t.Fatalf("Content: %v", err)
	}
	if !strings.Contains(string(data), "# Guide") {
		t.Errorf("content = %q", data)
	}
}

func TestCatalogRequiresSkillFile(t *testing.T) {
	tree := testSkillTree()
	delete(tree, "SKILL.md")

	if _, err := NewCatalog(tree, WithLogger(logging.ForTest(t))); err == nil {
		t.Error("expected error without SKILL.md")
	}
}

func TestSearch(t *testing.T) {
	c := newTestCatalog(t)

	tests := []struct {
		name      string
		query     string
		wantFirst string
		wantCount int
	}{
		{name: "empty query returns all", query: "", wantCount: 5},
		{name: "exact base name ranks first", query: "testing", wantFirst: "workflows/testing", wantCount: 1},
		{name: "prefix match ranks above substring and description", query: "agent", wantFirst: "workflows/agent-basics", wantCount: 4},
		{name: "description only", query: "swaig-test", wantFirst: "workflows/testing", wantCount: 1},
		{name: "no match", query: "zzz", wantCount: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			results := c.Search(tt.query)
			if len(results) != tt.wantCount {
				t.Fatalf("got %d results, want %d: %+v", len(results), tt.wantCount, results)
			}
			if tt.wantFirst != "" && results[0].ID != tt.wantFirst {
				t.Errorf("first result = %q, want %q", results[0].ID, tt.wantFirst)
			}
		})
	}
}
