package paths

import (
	"os"
	"path/filepath"

	"github.com/adrg/xdg"
	"github.com/cockroachdb/errors"
)

// Assistant identifiers for supported AI coding assistants.
const (
	AssistantClaude = "claude"
	AssistantCodex  = "codex"
	AssistantCursor = "cursor"
)

// assistantHomes maps assistant names to their home directories,
// relative to the user's home directory.
var assistantHomes = map[string]string{
	AssistantClaude: ".claude",
	AssistantCodex:  ".codex",
	AssistantCursor: ".cursor",
}

// Sentinel errors for path resolution.
var (
	// ErrHomeDirNotFound indicates the user's home directory could not
	// be determined.
	ErrHomeDirNotFound = errors.New("home directory not found")
)

// DefaultDirPerm is the default permission for newly created directories (private).
const DefaultDirPerm = 0o700

// EnsureDir creates the directory and any necessary parents with specified
// permissions. If perm is 0, DefaultDirPerm (0700) is used. Idempotent.
func EnsureDir(path string, perm os.FileMode) error {
	if perm == 0 {
		perm = DefaultDirPerm
	}
	return os.MkdirAll(path, perm)
}

// Home returns the user's home directory, or an empty string when it
// cannot be determined. Use ResolveHome for proper error handling.
func Home() string {
	h, _ := ResolveHome()
	return h
}

// ResolveHome returns the user's home directory.
// Returns ErrHomeDirNotFound if the directory cannot be determined.
func ResolveHome() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", errors.Wrap(ErrHomeDirNotFound, err.Error())
	}
	return home, nil
}

// ConfigHome returns the XDG config home directory.
// On Linux: ~/.config
// On macOS: ~/Library/Application Support
func ConfigHome() string {
	return xdg.ConfigHome
}

// CacheHome returns the XDG cache home directory.
// On Linux: ~/.cache
// On macOS: ~/Library/Caches
func CacheHome() string {
	return xdg.CacheHome
}

// AppConfigDir returns swb's own config directory. The SWB_CONFIG_DIR
// environment variable overrides the XDG location, which keeps tests
// and sandboxed runs off the real home directory.
// Returns: <ConfigHome>/swb/
func AppConfigDir() string {
	if dir := os.Getenv("SWB_CONFIG_DIR"); dir != "" {
		return dir
	}
	return filepath.Join(ConfigHome(), "swb")
}

// BackupsDir returns the root directory for install backups.
// Returns: <ConfigHome>/swb/backups/
func BackupsDir() string {
	return filepath.Join(AppConfigDir(), "backups")
}

// SourceCacheDir returns the directory for cached git source clones.
// Returns: <CacheHome>/swb/sources/
func SourceCacheDir() string {
	return filepath.Join(CacheHome(), "swb", "sources")
}

// ValidAssistant returns true if the assistant name is recognized.
func ValidAssistant(name string) bool {
	_, ok := assistantHomes[name]
	return ok
}

// Assistants returns a slice of all supported assistant identifiers.
func Assistants() []string {
	return []string{
		AssistantClaude,
		AssistantCodex,
		AssistantCursor,
	}
}

// AssistantHome returns the home directory for an assistant.
//
// Assistant paths:
//   - claude: ~/.claude/
//   - codex:  ~/.codex/
//   - cursor: ~/.cursor/
//
// Returns an empty string for unknown assistants.
func AssistantHome(assistant string) string {
	relPath, ok := assistantHomes[assistant]
	if !ok {
		return ""
	}
	home := Home()
	if home == "" {
		return ""
	}
	return filepath.Join(home, relPath)
}

// PluginsDir returns the plugins directory for an assistant.
// Always returns: <AssistantHome>/plugins/
//
// Returns an empty string for unknown assistants.
func PluginsDir(assistant string) string {
	homeDir := AssistantHome(assistant)
	if homeDir == "" {
		return ""
	}
	return filepath.Join(homeDir, "plugins")
}

// SkillsDir returns the global skills directory for an assistant.
// Always returns: <AssistantHome>/skills/
//
// Returns an empty string for unknown assistants.
func SkillsDir(assistant string) string {
	homeDir := AssistantHome(assistant)
	if homeDir == "" {
		return ""
	}
	return filepath.Join(homeDir, "skills")
}

// ProjectHome returns the project-scoped home directory for an
// assistant. Only claude has a project directory convention
// (<projectRoot>/.claude/); other assistants return an empty string,
// as do unknown assistants and an empty projectRoot.
func ProjectHome(assistant, projectRoot string) string {
	if projectRoot == "" || assistant != AssistantClaude {
		return ""
	}
	return filepath.Join(projectRoot, assistantHomes[assistant])
}

// ProjectSkillsDir returns the project-scoped skills directory.
// Returns: <projectRoot>/.claude/skills/
//
// Returns an empty string whenever ProjectHome does.
func ProjectSkillsDir(assistant, projectRoot string) string {
	home := ProjectHome(assistant, projectRoot)
	if home == "" {
		return ""
	}
	return filepath.Join(home, "skills")
}

// SettingsPath returns the settings file for an assistant, used for
// plugin enablement.
//
// Assistant paths:
//   - claude: ~/.claude/settings.json
//
// Returns an empty string for assistants without a known settings file.
func SettingsPath(assistant string) string {
	if assistant != AssistantClaude {
		return ""
	}
	homeDir := AssistantHome(assistant)
	if homeDir == "" {
		return ""
	}
	return filepath.Join(homeDir, "settings.json")
}

// CodexConfigPath returns the Codex CLI config file path (TOML).
// Returns: ~/.codex/config.toml
func CodexConfigPath() string {
	homeDir := AssistantHome(AssistantCodex)
	if homeDir == "" {
		return ""
	}
	return filepath.Join(homeDir, "config.toml")
}
