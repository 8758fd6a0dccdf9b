// Package paths provides cross-platform path resolution for AI coding
// assistant directories and for swb's own state.
//
// # XDG Base Directory Compliance
//
// The package wraps github.com/adrg/xdg for cross-platform XDG Base
// Directory Specification compliance. swb keeps its config and backups
// under <ConfigHome>/swb and its git source cache under <CacheHome>/swb.
//
// # Assistant Directories
//
// Each supported assistant keeps its artifacts under a dotted home
// directory:
//
//	| Assistant | Home      | Plugins            | Skills            |
//	|-----------|-----------|--------------------|-------------------|
//	| claude    | ~/.claude | ~/.claude/plugins  | ~/.claude/skills  |
//	| codex     | ~/.codex  | ~/.codex/plugins   | ~/.codex/skills   |
//	| cursor    | ~/.cursor | ~/.cursor/plugins  | ~/.cursor/skills  |
//
// Project-scoped skill installs live under <projectRoot>/.<assistant>/skills.
//
// # Error Handling
//
// Functions that accept an assistant parameter return empty strings for
// unknown assistants. Use [ValidAssistant] to check validity first:
//
//	if !paths.ValidAssistant(name) {
//	    return errors.Wrapf(swberrors.ErrUnknownAssistant, "%s", name)
//	}
package paths
