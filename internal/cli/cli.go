// Package cli provides CLI-specific types and utilities shared by swb
// commands.
package cli

import (
	"strings"

	"github.com/cockroachdb/errors"

	errs "github.com/swbuilder/swb/internal/errors"
	"github.com/swbuilder/swb/internal/installer"
	"github.com/swbuilder/swb/internal/paths"
)

// ResolveAssistant validates an --assistant flag value, falling back to
// def when the flag is unset, and to claude when both are empty.
func ResolveAssistant(name, def string) (string, error) {
	if name == "" {
		name = def
	}
	if name == "" {
		name = paths.AssistantClaude
	}
	if !paths.ValidAssistant(name) {
		return "", errors.Wrapf(errs.ErrUnknownAssistant,
			"%q (valid: %s)", name, strings.Join(paths.Assistants(), ", "))
	}
	return name, nil
}

// ResolveAssistants expands --assistant values for multi-target
// commands. Empty means every supported assistant.
func ResolveAssistants(names []string) ([]string, error) {
	if len(names) == 0 {
		return paths.Assistants(), nil
	}

	var invalid []string
	resolved := make([]string, 0, len(names))
	for _, name := range names {
		if !paths.ValidAssistant(name) {
			invalid = append(invalid, name)
			continue
		}
		resolved = append(resolved, name)
	}
	if len(invalid) > 0 {
		return nil, errors.Wrapf(errs.ErrUnknownAssistant,
			"%s (valid: %s)",
			strings.Join(invalid, ", "),
			strings.Join(paths.Assistants(), ", "))
	}
	return resolved, nil
}

// Targets builds scan targets for the given assistants, in order. A
// non-empty projectRoot adds a project-scope target after the
// user-scope one for each assistant that supports project installs.
func Targets(assistants []string, projectRoot string) []installer.Target {
	var targets []installer.Target
	for _, assistant := range assistants {
		if home := paths.AssistantHome(assistant); home != "" {
			targets = append(targets, installer.Target{
				Assistant: assistant,
				Home:      home,
				Scope:     installer.ScopeUser,
			})
		}
		if projectRoot != "" {
			if home := paths.ProjectHome(assistant, projectRoot); home != "" {
				targets = append(targets, installer.Target{
					Assistant: assistant,
					Home:      home,
					Scope:     installer.ScopeProject,
				})
			}
		}
	}
	return targets
}

// InstallHome resolves the home directory an install should write to:
// the assistant's project home when projectRoot is set, its user home
// otherwise. Project scope exists for claude only.
func InstallHome(assistant, projectRoot string) (string, error) {
	if projectRoot != "" {
		if !paths.ValidAssistant(assistant) {
			return "", errors.Wrapf(errs.ErrUnknownAssistant, "%q", assistant)
		}
		home := paths.ProjectHome(assistant, projectRoot)
		if home == "" {
			return "", errs.NewUserError(
				errors.Newf("%s has no project-scope directory", assistant),
				"Project installs go under ./.claude; rerun with --assistant claude.")
		}
		return home, nil
	}
	home := paths.AssistantHome(assistant)
	if home == "" {
		return "", errors.Wrapf(errs.ErrUnknownAssistant, "%q", assistant)
	}
	return home, nil
}
