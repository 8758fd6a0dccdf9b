package manifest

import (
	"fmt"
	"path/filepath"
	"regexp"
	"strings"
)

const (
	// maxNameLength is the maximum allowed length for plugin and skill names.
	maxNameLength = 64

	// maxDescriptionLength keeps descriptions usable in listings.
	maxDescriptionLength = 1024
)

// nameRegex validates names: lowercase alphanumeric, single hyphens allowed
// between segments, no start/end hyphen, no consecutive hyphens.
var nameRegex = regexp.MustCompile(`^[a-z0-9]+(-[a-z0-9]+)*$`)

// ValidatePlugin checks a plugin manifest for required fields and naming
// rules. Returns a slice of validation errors, or nil if valid.
func ValidatePlugin(p *Plugin) []error {
	var errs []error

	errs = append(errs, validateName("plugin name", p.Name)...)

	if strings.TrimSpace(p.Description) == "" {
		errs = append(errs, fmt.Errorf("plugin description is required"))
	}
	if strings.TrimSpace(p.Version) == "" {
		errs = append(errs, fmt.Errorf("plugin version is required"))
	}

	if len(errs) == 0 {
		return nil
	}
	return errs
}

// ValidateMarketplace checks a marketplace listing. Every listed plugin
// must carry a valid name and a source.
func ValidateMarketplace(m *Marketplace) []error {
	var errs []error

	errs = append(errs, validateName("marketplace name", m.Name)...)

	if len(m.Plugins) == 0 {
		errs = append(errs, fmt.Errorf("marketplace lists no plugins"))
	}
	for i, entry := range m.Plugins {
		label := fmt.Sprintf("marketplace plugin[%d] name", i)
		errs = append(errs, validateName(label, entry.Name)...)
		if strings.TrimSpace(entry.Source) == "" {
			errs = append(errs, fmt.Errorf("marketplace plugin[%d] source is required", i))
		}
	}

	if len(errs) == 0 {
		return nil
	}
	return errs
}

// ValidateSkill checks SKILL.md frontmatter for required fields and
// naming rules.
func ValidateSkill(s *Skill) []error {
	var errs []error

	errs = append(errs, validateName("skill name", s.Name)...)

	desc := strings.TrimSpace(s.Description)
	if desc == "" {
		errs = append(errs, fmt.Errorf("skill description is required"))
	} else if len(desc) > maxDescriptionLength {
		errs = append(errs, fmt.Errorf("skill description exceeds %d characters", maxDescriptionLength))
	}

	if len(errs) == 0 {
		return nil
	}
	return errs
}

// ValidateSkillPath validates a skill and additionally checks that the
// skill name matches its containing directory name. path is the path to
// the SKILL.md file.
func ValidateSkillPath(s *Skill, path string) []error {
	errs := ValidateSkill(s)

	dir := filepath.Base(filepath.Dir(path))
	if s.Name != "" && dir != "." && dir != s.Name {
		errs = append(errs, fmt.Errorf("skill name %q does not match directory %q", s.Name, dir))
	}

	if len(errs) == 0 {
		return nil
	}
	return errs
}

func validateName(label, name string) []error {
	var errs []error

	switch {
	case strings.TrimSpace(name) == "":
		errs = append(errs, fmt.Errorf("%s is required", label))
	case len(name) > maxNameLength:
		errs = append(errs, fmt.Errorf("%s exceeds %d characters", label, maxNameLength))
	case !nameRegex.MatchString(name):
		errs = append(errs, fmt.Errorf("%s %q must be lowercase alphanumeric with single hyphens", label, name))
	}

	return errs
}
