// Package bundle ships the signalwire-builder corpus compiled into the
// binary. The corpus is the canonical install source: a plugin manifest,
// a marketplace listing, and the signalwire skill with its workflow
// guides and reference examples.
package bundle

import (
	"embed"
	"io/fs"
	"strings"

	"github.com/cockroachdb/errors"

	"github.com/swbuilder/swb/internal/manifest"
)

// The all: prefix keeps files beginning with "." or "_" in the bundle.
//
//go:embed all:corpus
var embedded embed.FS

// corpusRoot is the directory inside the embed FS holding the corpus.
const corpusRoot = "corpus"

// Path constants within the corpus.
const (
	PluginManifestPath = "plugin.json"
	MarketplacePath    = "marketplace.json"
	SkillDir           = "skills/signalwire"
	SkillFilePath      = "skills/signalwire/SKILL.md"
	WorkflowsDir       = "skills/signalwire/workflows"
	ExamplesDir        = "skills/signalwire/reference/examples"
)

// Corpus returns the embedded corpus rooted at its top level, so
// PluginManifestPath and friends resolve directly.
func Corpus() fs.FS {
	sub, err := fs.Sub(embedded, corpusRoot)
	if err != nil {
		// The corpus directory is compiled in; failure here means a
		// broken build.
		panic("bundle: embedded corpus missing: " + err.Error())
	}
	return sub
}

// Skill returns the corpus subtree for the signalwire skill, rooted so
// SKILL.md sits at the top level. This is the source tree for
// skill-layout installs.
func Skill() fs.FS {
	sub, err := fs.Sub(embedded, corpusRoot+"/"+SkillDir)
	if err != nil {
		panic("bundle: embedded skill missing: " + err.Error())
	}
	return sub
}

// Manifest decodes the embedded plugin.json.
func Manifest() (*manifest.Plugin, error) {
	return manifest.LoadPlugin(Corpus(), PluginManifestPath)
}

// Marketplace decodes the embedded marketplace.json.
func Marketplace() (*manifest.Marketplace, error) {
	return manifest.LoadMarketplace(Corpus(), MarketplacePath)
}

// SkillMeta decodes the embedded SKILL.md.
func SkillMeta() (*manifest.Skill, error) {
	return manifest.LoadSkill(Corpus(), SkillFilePath)
}

// Workflows lists the markdown workflow guides in the corpus, sorted by
// file name.
func Workflows() ([]string, error) {
	entries, err := fs.ReadDir(Corpus(), WorkflowsDir)
	if err != nil {
		return nil, errors.Wrapf(err, "reading embedded %s", WorkflowsDir)
	}
	var names []string
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".md") {
			continue
		}
		names = append(names, entry.Name())
	}
	return names, nil
}

// Version reports the corpus version from the embedded plugin manifest,
// or "unknown" if the manifest cannot be decoded.
func Version() string {
	m, err := Manifest()
	if err != nil || m.Version == "" {
		return "unknown"
	}
	return m.Version
}
