// Package settings edits assistant settings files surgically. Claude's
// settings.json carries many keys swb does not own (model choice,
// hooks, MCP servers), so edits go through gjson/sjson path operations
// that leave every unrelated byte of the document untouched.
package settings

import (
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"

	"github.com/swbuilder/swb/pkg/fileutil"
)

// Sentinel errors for settings operations.
var (
	// ErrCorrupt indicates the settings file is not valid JSON. swb
	// refuses to edit a file it cannot parse rather than risk making
	// it worse.
	ErrCorrupt = errors.New("settings file is not valid JSON")

	// ErrNotEnabled indicates a disable targeted a plugin that is not
	// enabled.
	ErrNotEnabled = errors.New("plugin not enabled")
)

// newFilePerm is the mode for a settings file swb creates itself.
// Settings may carry tokens, so keep it private.
const newFilePerm = 0o600

// PluginKey builds the enabledPlugins entry name for a plugin from a
// marketplace, e.g. "signalwire-builder@signalwire-marketplace".
func PluginKey(plugin, marketplace string) string {
	return plugin + "@" + marketplace
}

// Service edits one settings file.
type Service struct {
	path    string
	logger  *slog.Logger
	preEdit func(path string) error
}

// Option configures a Service.
type Option func(*Service)

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

// WithPreEdit registers a hook that runs before the first write to the
// settings file, typically to snapshot it.
func WithPreEdit(hook func(path string) error) Option {
	return func(s *Service) {
		s.preEdit = hook
	}
}

// NewService creates a Service for the settings file at path.
func NewService(path string, opts ...Option) *Service {
	s := &Service{
		path:   path,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Path returns the settings file path.
func (s *Service) Path() string {
	return s.path
}

// EnablePlugin sets enabledPlugins.<key> to true. A missing settings
// file is created when its directory exists.
func (s *Service) EnablePlugin(key string) error {
	return s.setPlugin(key, true)
}

// DisablePlugin sets enabledPlugins.<key> to false. Disabling a plugin
// that is not enabled reports ErrNotEnabled.
func (s *Service) DisablePlugin(key string) error {
	enabled, err := s.IsEnabled(key)
	if err != nil {
		return err
	}
	if !enabled {
		return errors.Wrapf(ErrNotEnabled, "%s", key)
	}
	return s.setPlugin(key, false)
}

// RemovePlugin deletes the enabledPlugins entry entirely. Removing an
// absent entry is a no-op; uninstall calls this unconditionally.
func (s *Service) RemovePlugin(key string) error {
	data, err := s.read()
	if err != nil {
		return err
	}
	if data == nil {
		return nil
	}

	path := "enabledPlugins." + escapeKey(key)
	if !gjson.GetBytes(data, path).Exists() {
		return nil
	}

	updated, err := sjson.DeleteBytes(data, path)
	if err != nil {
		return errors.Wrapf(err, "removing %s", key)
	}
	return s.write(updated)
}

// IsEnabled reports whether enabledPlugins.<key> is true. A missing
// settings file means nothing is enabled.
func (s *Service) IsEnabled(key string) (bool, error) {
	data, err := s.read()
	if err != nil {
		return false, err
	}
	if data == nil {
		return false, nil
	}
	return gjson.GetBytes(data, "enabledPlugins."+escapeKey(key)).Bool(), nil
}

// EnabledPlugins returns the full enabledPlugins map.
func (s *Service) EnabledPlugins() (map[string]bool, error) {
	data, err := s.read()
	if err != nil {
		return nil, err
	}
	if data == nil {
		return nil, nil
	}

	entries := gjson.GetBytes(data, "enabledPlugins")
	if !entries.Exists() {
		return nil, nil
	}

	plugins := make(map[string]bool)
	entries.ForEach(func(key, value gjson.Result) bool {
		plugins[key.String()] = value.Bool()
		return true
	})
	return plugins, nil
}

func (s *Service) setPlugin(key string, enabled bool) error {
	data, err := s.read()
	if err != nil {
		return err
	}
	if data == nil {
		if _, err := os.Stat(filepath.Dir(s.path)); err != nil {
			return errors.Wrapf(err, "settings directory for %s", s.path)
		}
		data = []byte("{}")
	}

	updated, err := sjson.SetBytes(data, "enabledPlugins."+escapeKey(key), enabled)
	if err != nil {
		return errors.Wrapf(err, "updating %s", key)
	}
	if err := s.write(updated); err != nil {
		return err
	}

	s.logger.Debug("updated settings", "path", s.path, "plugin", key, "enabled", enabled)
	return nil
}

// read returns the settings document, nil when the file does not
// exist, or ErrCorrupt when it exists but is not JSON.
func (s *Service) read() ([]byte, error) {
	data, err := fileutil.ReadFileWithLimit(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, errors.Wrapf(err, "reading %s", s.path)
	}
	if !gjson.ValidBytes(data) {
		return nil, errors.Wrapf(ErrCorrupt, "%s", s.path)
	}
	return data, nil
}

// write replaces the settings file atomically, preserving its mode.
func (s *Service) write(data []byte) error {
	perm := os.FileMode(newFilePerm)
	if info, err := os.Stat(s.path); err == nil {
		perm = info.Mode().Perm()
	}

	if s.preEdit != nil {
		if err := s.preEdit(s.path); err != nil {
			return errors.Wrap(err, "pre-edit hook")
		}
	}
	return fileutil.AtomicWriteFile(s.path, data, perm)
}

// escapeKey escapes gjson path metacharacters so a plugin key is
// addressed as one literal object key even when it contains dots.
func escapeKey(key string) string {
	var b strings.Builder
	for _, r := range key {
		switch r {
		case '.', '|', '#', '@', '*', '?', '\\':
			b.WriteByte('\\')
		}
		b.WriteRune(r)
	}
	return b.String()
}
