package doctor

import (
	"encoding/json"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strings"

	toml "github.com/pelletier/go-toml/v2"

	"github.com/swbuilder/swb/internal/paths"
	"github.com/swbuilder/swb/pkg/fileutil"
)

// maxSecureFilePerm is the maximum secure permission for config files (-rw-r--r--).
const maxSecureFilePerm os.FileMode = 0644

// InstallRootCheck validates the assistant directories swb installs into:
// they must be real directories, writable, and not world-writable.
type InstallRootCheck struct {
	fixer DirFixer
}

var _ Check = (*InstallRootCheck)(nil)

// NewInstallRootCheck creates a new install root check.
func NewInstallRootCheck() *InstallRootCheck {
	return &InstallRootCheck{}
}

// Name returns the unique identifier for this check.
func (c *InstallRootCheck) Name() string {
	return "install-roots"
}

// Category returns the grouping for this check.
func (c *InstallRootCheck) Category() string {
	return "filesystem"
}

// Run executes the install root diagnostic check.
func (c *InstallRootCheck) Run() *CheckResult {
	var issues []rootIssue
	var checked int

	for _, assistant := range paths.Assistants() {
		home := paths.AssistantHome(assistant)
		if home == "" {
			continue
		}
		if _, err := os.Stat(home); os.IsNotExist(err) {
			// Absent assistant homes are not a problem; the assistant
			// may simply not be installed.
			continue
		}
		checked++

		for _, dir := range []string{paths.PluginsDir(assistant), paths.SkillsDir(assistant)} {
			issues = append(issues, c.checkDir(assistant, dir)...)
		}
	}

	c.fixer.setIssues(issues)
	return c.buildResult(issues, checked)
}

// rootIssue records a single problem with an install root.
type rootIssue struct {
	Assistant string
	Path      string
	Problem   string
	Severity  Severity
	Missing   bool
	BadPerm   os.FileMode
	FixHint   string
}

func (c *InstallRootCheck) checkDir(assistant, dir string) []rootIssue {
	info, err := os.Stat(dir)
	if os.IsNotExist(err) {
		// The root will be created on first install; report it as
		// fixable so --fix can pre-create it.
		return []rootIssue{{
			Assistant: assistant,
			Path:      dir,
			Problem:   "directory does not exist",
			Severity:  SeverityInfo,
			Missing:   true,
			FixHint:   "created automatically on install, or run: swb doctor --fix",
		}}
	}
	if err != nil {
		return []rootIssue{{
			Assistant: assistant,
			Path:      dir,
			Problem:   fmt.Sprintf("cannot stat directory: %v", err),
			Severity:  SeverityError,
		}}
	}
	if !info.IsDir() {
		return []rootIssue{{
			Assistant: assistant,
			Path:      dir,
			Problem:   "exists but is not a directory",
			Severity:  SeverityError,
			FixHint:   "remove the file blocking the install root",
		}}
	}

	var issues []rootIssue
	if !isWritable(dir) {
		issues = append(issues, rootIssue{
			Assistant: assistant,
			Path:      dir,
			Problem:   "directory is not writable",
			Severity:  SeverityError,
			FixHint:   "chmod u+w " + dir,
		})
	}
	if runtime.GOOS != "windows" && info.Mode().Perm()&0o002 != 0 {
		issues = append(issues, rootIssue{
			Assistant: assistant,
			Path:      dir,
			Problem:   "directory is world-writable",
			Severity:  SeverityWarning,
			BadPerm:   info.Mode().Perm(),
			FixHint:   "chmod o-w " + dir,
		})
	}
	return issues
}

func (c *InstallRootCheck) buildResult(issues []rootIssue, checked int) *CheckResult {
	result := &CheckResult{
		Name:     c.Name(),
		Category: c.Category(),
	}

	if checked == 0 {
		result.Status = SeverityInfo
		result.Message = "no assistant directories found"
		return result
	}

	worst := SeverityPass
	var problems []string
	for _, issue := range issues {
		if issue.Severity > worst {
			worst = issue.Severity
		}
		problems = append(problems, fmt.Sprintf("%s: %s (%s)", issue.Assistant, issue.Problem, issue.Path))
		if result.FixHint == "" && issue.FixHint != "" {
			result.FixHint = issue.FixHint
		}
		if issue.Missing {
			result.Fixable = true
		}
	}

	result.Status = worst
	switch {
	case len(issues) == 0:
		result.Message = fmt.Sprintf("checked %d assistant home(s), all install roots healthy", checked)
	default:
		result.Message = strings.Join(problems, "; ")
	}
	return result
}

// isWritable probes a directory by creating and removing a temp file.
// Mode bits alone are unreliable across ACLs and network mounts.
func isWritable(dir string) bool {
	f, err := os.CreateTemp(dir, ".swb-doctor-*")
	if err != nil {
		return false
	}
	name := f.Name()
	f.Close()
	os.Remove(name)
	return true
}

// InstallStateCheck verifies that a named install is either absent or
// complete: a directory that exists but lacks marker files is a partial
// install left by an interrupted copy.
type InstallStateCheck struct {
	layout    string
	assistant string
	dir       string
	markers   []string
}

var _ Check = (*InstallStateCheck)(nil)

// NewInstallStateCheck creates a check for one layout in one assistant
// home. dir is the absolute install directory; markers are dest-relative
// files that must exist when the layout is installed.
func NewInstallStateCheck(layout, assistant, dir string, markers []string) *InstallStateCheck {
	return &InstallStateCheck{layout: layout, assistant: assistant, dir: dir, markers: markers}
}

// Name returns the unique identifier for this check.
func (c *InstallStateCheck) Name() string {
	return "install-state-" + c.layout + "-" + c.assistant
}

// Category returns the grouping for this check.
func (c *InstallStateCheck) Category() string {
	return "install"
}

// Run executes the install state diagnostic check.
func (c *InstallStateCheck) Run() *CheckResult {
	result := &CheckResult{
		Name:     c.Name(),
		Category: c.Category(),
	}

	if _, err := os.Stat(c.dir); os.IsNotExist(err) {
		result.Status = SeverityInfo
		result.Message = fmt.Sprintf("%s is not installed for %s", c.layout, c.assistant)
		result.FixHint = fmt.Sprintf("Run: swb install %s", c.layout)
		return result
	}

	var missing []string
	for _, marker := range c.markers {
		if _, err := os.Stat(filepath.Join(c.dir, marker)); err != nil {
			missing = append(missing, marker)
		}
	}

	if len(missing) > 0 {
		result.Status = SeverityError
		result.Message = fmt.Sprintf("%s install for %s at %s is incomplete (missing: %s)",
			c.layout, c.assistant, c.dir, strings.Join(missing, ", "))
		result.FixHint = fmt.Sprintf("Run: swb install %s --yes", c.layout)
		return result
	}

	result.Status = SeverityPass
	result.Message = fmt.Sprintf("%s installed for %s at %s", c.layout, c.assistant, c.dir)
	return result
}

// SettingsSyntaxCheck validates that the Claude settings file, which the
// enable/disable commands edit, is syntactically valid JSON.
type SettingsSyntaxCheck struct {
	// path overrides the default settings location, for tests.
	path string
}

var _ Check = (*SettingsSyntaxCheck)(nil)

// NewSettingsSyntaxCheck creates a new settings syntax check.
func NewSettingsSyntaxCheck() *SettingsSyntaxCheck {
	return &SettingsSyntaxCheck{}
}

// Name returns the unique identifier for this check.
func (c *SettingsSyntaxCheck) Name() string {
	return "settings-syntax"
}

// Category returns the grouping for this check.
func (c *SettingsSyntaxCheck) Category() string {
	return "config"
}

// Run executes the settings syntax diagnostic check.
func (c *SettingsSyntaxCheck) Run() *CheckResult {
	result := &CheckResult{
		Name:     c.Name(),
		Category: c.Category(),
	}

	path := c.path
	if path == "" {
		path = paths.SettingsPath(paths.AssistantClaude)
	}
	if path == "" {
		result.Status = SeverityInfo
		result.Message = "settings location unknown"
		return result
	}

	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		result.Status = SeverityInfo
		result.Message = "settings.json not present (created on first enable)"
		return result
	}
	if err != nil {
		result.Status = SeverityError
		result.Message = fmt.Sprintf("cannot stat %s: %v", path, err)
		return result
	}

	data, err := fileutil.ReadFileWithLimit(path)
	if err != nil {
		result.Status = SeverityError
		result.Message = fmt.Sprintf("cannot read %s: %v", path, err)
		return result
	}

	var parsed map[string]any
	if err := json.Unmarshal(data, &parsed); err != nil {
		result.Status = SeverityError
		result.Message = fmt.Sprintf("%s: %s", path, formatJSONError(err, data))
		result.FixHint = "fix the JSON by hand; swb will not modify a corrupt settings file"
		return result
	}

	result.Status = SeverityPass
	result.Message = fmt.Sprintf("%s is valid JSON", path)
	if runtime.GOOS != "windows" && info.Mode().Perm() > maxSecureFilePerm {
		result.Status = SeverityWarning
		result.Message = fmt.Sprintf("%s has loose permissions %04o", path, info.Mode().Perm())
		result.FixHint = "chmod 644 " + path
	}
	return result
}

// CodexConfigCheck validates the Codex CLI config file syntax. Codex keeps
// its settings in TOML rather than JSON.
type CodexConfigCheck struct {
	// path overrides the default config location, for tests.
	path string
}

var _ Check = (*CodexConfigCheck)(nil)

// NewCodexConfigCheck creates a new codex config check.
func NewCodexConfigCheck() *CodexConfigCheck {
	return &CodexConfigCheck{}
}

// Name returns the unique identifier for this check.
func (c *CodexConfigCheck) Name() string {
	return "codex-config-syntax"
}

// Category returns the grouping for this check.
func (c *CodexConfigCheck) Category() string {
	return "config"
}

// Run executes the codex config diagnostic check.
func (c *CodexConfigCheck) Run() *CheckResult {
	result := &CheckResult{
		Name:     c.Name(),
		Category: c.Category(),
	}

	path := c.path
	if path == "" {
		path = paths.CodexConfigPath()
	}

	if _, err := os.Stat(path); os.IsNotExist(err) || path == "" {
		result.Status = SeverityInfo
		result.Message = "codex config.toml not present"
		return result
	}

	data, err := fileutil.ReadFileWithLimit(path)
	if err != nil {
		result.Status = SeverityError
		result.Message = fmt.Sprintf("cannot read %s: %v", path, err)
		return result
	}

	var parsed map[string]any
	if err := toml.Unmarshal(data, &parsed); err != nil {
		result.Status = SeverityError
		result.Message = fmt.Sprintf("%s: %s", path, formatTOMLError(err))
		result.FixHint = "fix the TOML syntax before installing skills for codex"
		return result
	}

	result.Status = SeverityPass
	result.Message = fmt.Sprintf("%s is valid TOML", path)
	return result
}

// SourceCheck validates that an install source carries every required
// corpus file. Run against the embedded bundle it guards against a bad
// build; run against a --source tree it catches incomplete checkouts.
type SourceCheck struct {
	label    string
	fsys     fs.FS
	required []string
}

var _ Check = (*SourceCheck)(nil)

// NewSourceCheck creates a check that the given source contains every
// required source-relative file.
func NewSourceCheck(label string, fsys fs.FS, required []string) *SourceCheck {
	return &SourceCheck{label: label, fsys: fsys, required: required}
}

// Name returns the unique identifier for this check.
func (c *SourceCheck) Name() string {
	return "source-" + c.label
}

// Category returns the grouping for this check.
func (c *SourceCheck) Category() string {
	return "source"
}

// Run executes the source completeness diagnostic check.
func (c *SourceCheck) Run() *CheckResult {
	result := &CheckResult{
		Name:     c.Name(),
		Category: c.Category(),
	}

	var missing []string
	for _, rel := range c.required {
		if _, err := fs.Stat(c.fsys, rel); err != nil {
			missing = append(missing, rel)
		}
	}
	sort.Strings(missing)

	if len(missing) > 0 {
		result.Status = SeverityError
		result.Message = fmt.Sprintf("source %s is missing: %s", c.label, strings.Join(missing, ", "))
		return result
	}

	result.Status = SeverityPass
	result.Message = fmt.Sprintf("source %s contains all %d required files", c.label, len(c.required))
	return result
}

// formatJSONError converts encoding/json errors into line/column messages.
func formatJSONError(err error, data []byte) string {
	if syntaxErr, ok := err.(*json.SyntaxError); ok {
		line, col := offsetToLineCol(data, int(syntaxErr.Offset))
		return fmt.Sprintf("invalid JSON at line %d, column %d: %v", line, col, err)
	}
	return fmt.Sprintf("invalid JSON: %v", err)
}

// formatTOMLError extracts position info from go-toml decode errors.
func formatTOMLError(err error) string {
	var decodeErr *toml.DecodeError
	if ok := asTOMLDecodeError(err, &decodeErr); ok {
		row, col := decodeErr.Position()
		return fmt.Sprintf("invalid TOML at line %d, column %d: %s", row, col, decodeErr.Error())
	}
	return fmt.Sprintf("invalid TOML: %v", err)
}

func asTOMLDecodeError(err error, target **toml.DecodeError) bool {
	if de, ok := err.(*toml.DecodeError); ok {
		*target = de
		return true
	}
	return false
}

// offsetToLineCol converts a byte offset into 1-based line and column numbers.
func offsetToLineCol(data []byte, offset int) (line, col int) {
	line, col = 1, 1
	for i := 0; i < offset && i < len(data); i++ {
		if data[i] == '\n' {
			line++
			col = 1
		} else {
			col++
		}
	}
	return line, col
}
