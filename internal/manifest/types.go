// Package manifest defines the metadata documents shipped in the
// signalwire-builder corpus: the plugin manifest, the marketplace
// listing, and SKILL.md frontmatter.
package manifest

// Plugin represents a plugin.json manifest.
type Plugin struct {
	Name        string   `json:"name"`
	Description string   `json:"description,omitempty"`
	Version     string   `json:"version,omitempty"`
	Author      Author   `json:"author,omitempty"`
	Repository  *Repo    `json:"repository,omitempty"`
	License     string   `json:"license,omitempty"`
	Keywords    []string `json:"keywords,omitempty"`
}

// Author represents plugin author info.
type Author struct {
	Name  string `json:"name,omitempty"`
	Email string `json:"email,omitempty"`
	URL   string `json:"url,omitempty"`
}

// Repo represents plugin repository info.
type Repo struct {
	Type string `json:"type,omitempty"`
	URL  string `json:"url,omitempty"`
}

// Marketplace represents a marketplace.json listing.
type Marketplace struct {
	Name    string             `json:"name"`
	Owner   Owner              `json:"owner,omitempty"`
	Plugins []MarketplaceEntry `json:"plugins"`
}

// Owner represents the marketplace owner.
type Owner struct {
	Name  string `json:"name,omitempty"`
	Email string `json:"email,omitempty"`
}

// MarketplaceEntry is one plugin listed in a marketplace.
type MarketplaceEntry struct {
	Name        string `json:"name"`
	Source      string `json:"source,omitempty"`
	Description string `json:"description,omitempty"`
	Version     string `json:"version,omitempty"`
}

// Skill represents SKILL.md frontmatter plus the markdown body.
type Skill struct {
	// Name is the skill's unique identifier. Must match the containing
	// directory name.
	Name string `yaml:"name"`

	// Description tells the assistant when to use this skill.
	Description string `yaml:"description"`

	// License is an optional SPDX identifier.
	License string `yaml:"license,omitempty"`

	// Metadata holds optional free-form key/value pairs.
	Metadata map[string]string `yaml:"metadata,omitempty"`

	// Instructions is the markdown body following the frontmatter.
	// Not part of the YAML header.
	Instructions string `yaml:"-"`
}

// WorkflowMeta is the optional frontmatter carried by workflow guides.
type WorkflowMeta struct {
	Title       string `yaml:"title,omitempty"`
	Description string `yaml:"description,omitempty"`
}
