package doctor

import (
	"fmt"
	"os"
)

// Fixer is an optional interface that checks can implement to support
// auto-remediation. Checks that implement Fixer can fix issues they detect
// when the --fix flag is used.
type Fixer interface {
	// CanFix returns true if this check has fixable issues.
	// Must be called after Run().
	CanFix() bool

	// Fix attempts to remediate the issues found by Run().
	// Must be called after Run().
	Fix() []FixResult
}

// FixResult describes the outcome of an attempted fix operation.
type FixResult struct {
	// Path is the file or directory that was targeted for fixing.
	Path string

	// Fixed indicates whether the fix was successfully applied.
	Fixed bool

	// Description explains what was fixed or why it couldn't be fixed.
	Description string

	// Error contains the error if the fix failed.
	Error error
}

// secureDirPerm is the target permission for install roots (rwxr-xr-x).
const secureDirPerm os.FileMode = 0755

// DirFixer creates missing install roots and tightens loose directory
// permissions. It is embedded in InstallRootCheck to provide fix capability.
type DirFixer struct {
	issues []rootIssue
}

var _ Fixer = (*InstallRootCheck)(nil)

// CanFix returns true if there are any fixable root issues.
func (c *InstallRootCheck) CanFix() bool {
	return c.fixer.CanFix()
}

// Fix attempts to fix all fixable root issues.
func (c *InstallRootCheck) Fix() []FixResult {
	return c.fixer.Fix()
}

// CanFix returns true if there are any fixable root issues.
func (f *DirFixer) CanFix() bool {
	for _, issue := range f.issues {
		if issue.Missing || issue.BadPerm != 0 {
			return true
		}
	}
	return false
}

// Fix creates missing directories and clears world-writable bits.
func (f *DirFixer) Fix() []FixResult {
	var results []FixResult
	for _, issue := range f.issues {
		switch {
		case issue.Missing:
			err := os.MkdirAll(issue.Path, secureDirPerm)
			results = append(results, FixResult{
				Path:        issue.Path,
				Fixed:       err == nil,
				Description: describeFix("created directory", err),
				Error:       err,
			})
		case issue.BadPerm != 0:
			err := os.Chmod(issue.Path, issue.BadPerm&^0o002)
			results = append(results, FixResult{
				Path:        issue.Path,
				Fixed:       err == nil,
				Description: describeFix("removed world-writable bit", err),
				Error:       err,
			})
		}
	}
	return results
}

func (f *DirFixer) setIssues(issues []rootIssue) {
	f.issues = issues
}

func describeFix(action string, err error) string {
	if err != nil {
		return fmt.Sprintf("%s failed: %v", action, err)
	}
	return action
}
