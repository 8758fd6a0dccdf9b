// Package installer copies the signalwire-builder corpus into assistant
// directories. Every install shape (full plugin, standalone skill, user
// or project scope) is one Layout run through the same install routine;
// the layouts differ only in data.
package installer

import (
	"path"
	"path/filepath"
	"slices"
	"strings"

	"github.com/cockroachdb/errors"

	errs "github.com/swbuilder/swb/internal/errors"
)

// RootKind names the assistant subdirectory that receives an install.
type RootKind string

const (
	// RootPlugins installs under <home>/plugins.
	RootPlugins RootKind = "plugins"

	// RootSkills installs under <home>/skills.
	RootSkills RootKind = "skills"
)

// TreeSpec maps one subtree of the install source into the destination
// directory. Src is a slash path within the source filesystem and Dst a
// slash path within the destination; "." means the respective root.
type TreeSpec struct {
	Src string
	Dst string
}

// Layout describes one install shape: where the corpus lands, which
// source subtrees are copied, and which files prove the install is
// complete. All install, verify, and uninstall logic is driven by this
// data so new shapes never need new code paths.
type Layout struct {
	// Name is the user-facing layout identifier (e.g. "plugin").
	Name string

	// Dir is the directory created under the install root.
	Dir string

	// Root selects plugins/ or skills/ under the assistant home.
	Root RootKind

	// Trees are the source subtrees copied into the destination.
	Trees []TreeSpec

	// Markers are destination-relative files whose presence proves a
	// complete install. They are also validated against the source
	// before anything is touched.
	Markers []string

	// Workflows is the destination-relative directory whose files are
	// listed in the install summary.
	Workflows string

	// Assistants names the assistants the layout can install for.
	// Empty means every supported assistant.
	Assistants []string
}

// ForAssistant reports whether the layout can install for the given
// assistant.
func (l Layout) ForAssistant(assistant string) bool {
	return len(l.Assistants) == 0 || slices.Contains(l.Assistants, assistant)
}

// PluginLayout is the full plugin install: the whole corpus lands at
// <home>/plugins/signalwire-builder. Only claude reads a plugin tree,
// so the layout is claude-specific.
func PluginLayout() Layout {
	return Layout{
		Name: "plugin",
		Dir:  "signalwire-builder",
		Root: RootPlugins,
		Trees: []TreeSpec{
			{Src: ".", Dst: "."},
		},
		Markers: []string{
			"plugin.json",
			"skills/signalwire/SKILL.md",
		},
		Workflows:  "skills/signalwire/workflows",
		Assistants: []string{"claude"},
	}
}

// SkillLayout is the standalone skill install: only the skill subtree
// lands at <home>/skills/signalwire.
func SkillLayout() Layout {
	return Layout{
		Name: "skill",
		Dir:  "signalwire",
		Root: RootSkills,
		Trees: []TreeSpec{
			{Src: "skills/signalwire", Dst: "."},
		},
		Markers: []string{
			"SKILL.md",
		},
		Workflows: "workflows",
	}
}

// Layouts returns all built-in layouts.
func Layouts() []Layout {
	return []Layout{PluginLayout(), SkillLayout()}
}

// LayoutByName resolves a layout identifier. Both the layout name and
// its destination directory name are accepted, so "plugin" and
// "signalwire-builder" name the same layout.
func LayoutByName(name string) (Layout, error) {
	for _, l := range Layouts() {
		if name == l.Name || name == l.Dir {
			return l, nil
		}
	}
	return Layout{}, errors.Wrapf(errs.ErrUnknownLayout, "%q", name)
}

// LayoutNames returns the built-in layout identifiers.
func LayoutNames() []string {
	layouts := Layouts()
	names := make([]string, len(layouts))
	for i, l := range layouts {
		names[i] = l.Name
	}
	return names
}

// RootDir returns the install root under the given assistant home,
// e.g. ~/.claude/plugins.
func (l Layout) RootDir(home string) string {
	return filepath.Join(home, string(l.Root))
}

// DestDir returns the final install directory under the given assistant
// home, e.g. ~/.claude/plugins/signalwire-builder.
func (l Layout) DestDir(home string) string {
	return filepath.Join(home, string(l.Root), l.Dir)
}

// SourcePath maps a destination-relative slash path back to its
// location in the source filesystem via the layout's trees. The second
// return is false when no tree covers the path.
func (l Layout) SourcePath(destRel string) (string, bool) {
	for _, t := range l.Trees {
		rel := destRel
		if t.Dst != "." {
			if destRel == t.Dst {
				rel = "."
			} else {
				r, ok := strings.CutPrefix(destRel, t.Dst+"/")
				if !ok {
					continue
				}
				rel = r
			}
		}
		switch {
		case t.Src == ".":
			return rel, true
		case rel == ".":
			return t.Src, true
		default:
			return path.Join(t.Src, rel), true
		}
	}
	return "", false
}
