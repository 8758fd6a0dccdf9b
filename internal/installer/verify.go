package installer

import (
	"io/fs"
	"os"
	"path"
	"path/filepath"

	"github.com/cockroachdb/errors"

	errs "github.com/swbuilder/swb/internal/errors"
	"github.com/swbuilder/swb/internal/manifest"
)

// VerifyReport describes the on-disk state of one layout.
type VerifyReport struct {
	// Layout is the verified layout name.
	Layout string `json:"layout"`

	// Path is the expected install directory.
	Path string `json:"path"`

	// Installed is true when the install directory exists.
	Installed bool `json:"installed"`

	// Missing lists markers absent from an existing install directory.
	// Empty for a complete install.
	Missing []string `json:"missing,omitempty"`

	// Invalid lists markers that exist but fail to parse or validate.
	// Empty for a healthy install.
	Invalid []string `json:"invalid,omitempty"`

	// Workflows lists the installed workflow files when the install is
	// complete.
	Workflows []string `json:"workflows,omitempty"`
}

// Complete reports whether the layout is installed with every marker
// present and parseable.
func (r *VerifyReport) Complete() bool {
	return r.Installed && len(r.Missing) == 0 && len(r.Invalid) == 0
}

// Verify checks an installed layout against its markers without
// modifying anything.
func (i *Installer) Verify(layout Layout) (*VerifyReport, error) {
	if i.home == "" {
		return nil, errs.NewSystemError(errors.New("no install destination configured"), "")
	}

	destDir := layout.DestDir(i.home)
	report := &VerifyReport{Layout: layout.Name, Path: destDir}

	exists, err := dirExists(destDir)
	if err != nil {
		return nil, errs.NewSystemError(err, "")
	}
	if !exists {
		return report, nil
	}
	report.Installed = true
	report.Missing = MissingMarkers(destDir, layout.Markers)
	report.Invalid = i.invalidMarkers(destDir, layout.Markers, report.Missing)

	if report.Complete() {
		workflows, err := listWorkflows(destDir, layout.Workflows)
		if err != nil {
			i.logger.Warn("listing installed workflows", "error", err)
		}
		report.Workflows = workflows
	}
	return report, nil
}

// invalidMarkers parses the markers that carry structured content and
// returns those that fail. Markers already reported missing are
// skipped.
func (i *Installer) invalidMarkers(destDir string, markers, missing []string) []string {
	skip := make(map[string]bool, len(missing))
	for _, m := range missing {
		skip[m] = true
	}

	fsys := os.DirFS(destDir)
	var invalid []string
	for _, marker := range markers {
		if skip[marker] {
			continue
		}
		if err := checkMarkerContent(fsys, marker); err != nil {
			i.logger.Debug("marker content check failed", "marker", marker, "error", err)
			invalid = append(invalid, marker)
		}
	}
	return invalid
}

// checkMarkerContent validates the marker formats swb understands: the
// plugin manifest and SKILL.md frontmatter. Other markers pass on
// existence alone.
func checkMarkerContent(fsys fs.FS, marker string) error {
	switch path.Base(marker) {
	case "plugin.json":
		plugin, err := manifest.LoadPlugin(fsys, marker)
		if err != nil {
			return err
		}
		return errors.Join(manifest.ValidatePlugin(plugin)...)
	case "SKILL.md":
		skill, err := manifest.LoadSkill(fsys, marker)
		if err != nil {
			return err
		}
		return errors.Join(manifest.ValidateSkillPath(skill, marker)...)
	}
	return nil
}

// MissingMarkers returns the markers that do not exist as regular files
// under destDir.
func MissingMarkers(destDir string, markers []string) []string {
	var missing []string
	for _, marker := range markers {
		p := filepath.Join(destDir, filepath.FromSlash(marker))
		info, err := os.Stat(p)
		if err != nil || info.IsDir() {
			missing = append(missing, marker)
		}
	}
	return missing
}
