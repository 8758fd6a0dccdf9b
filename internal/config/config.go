package config

import (
	"path/filepath"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/spf13/viper"

	"github.com/swbuilder/swb/internal/backup"
	"github.com/swbuilder/swb/internal/paths"
)

// AppName is the application name used for config file naming.
const AppName = "swb"

// Color modes for command output.
const (
	ColorAuto   = "auto"
	ColorAlways = "always"
	ColorNever  = "never"
)

// Config represents the top-level configuration structure.
type Config struct {
	Version   int          `mapstructure:"version" yaml:"version"`
	Assistant string       `mapstructure:"assistant" yaml:"assistant"`
	Color     string       `mapstructure:"color" yaml:"color"`
	Backup    BackupConfig `mapstructure:"backup" yaml:"backup"`
}

// BackupConfig controls pre-install snapshot behavior.
type BackupConfig struct {
	Retention int  `mapstructure:"retention" yaml:"retention"`
	Disabled  bool `mapstructure:"disabled" yaml:"disabled"`
}

// Default returns the built-in configuration used when no file exists.
func Default() *Config {
	return &Config{
		Version:   1,
		Assistant: paths.AssistantClaude,
		Color:     ColorAuto,
		Backup: BackupConfig{
			Retention: backup.DefaultRetentionCount,
		},
	}
}

// Init initializes Viper with swb defaults. It resets any previous
// Viper state, so call it once at application startup before binding
// flags or accessing config values.
func Init() {
	viper.Reset()

	// Config file settings
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")

	// Search paths (in order of precedence). AppConfigDir honors
	// SWB_CONFIG_DIR, which keeps tests off the real home directory.
	viper.AddConfigPath(".")
	viper.AddConfigPath(paths.AppConfigDir())

	// Environment variable support: SWB_ASSISTANT, SWB_BACKUP_RETENTION, ...
	viper.SetEnvPrefix("SWB")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	def := Default()
	viper.SetDefault("version", def.Version)
	viper.SetDefault("assistant", def.Assistant)
	viper.SetDefault("color", def.Color)
	viper.SetDefault("backup.retention", def.Backup.Retention)
	viper.SetDefault("backup.disabled", def.Backup.Disabled)
}

// Load reads the configuration file.
// If path is provided, it reads from that specific file; a missing
// explicit file is an error. If path is empty, it searches the default
// locations and falls back to defaults when no file is found.
func Load(path string) (*Config, error) {
	if path != "" {
		viper.SetConfigFile(path)
	}

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			if path != "" {
				return nil, errors.Wrapf(err, "config file not found at %s", path)
			}
			// Implicit load without a config file uses defaults.
		} else {
			return nil, errors.Wrap(err, "reading config file")
		}
	}

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, errors.Wrap(err, "unmarshaling config")
	}

	if errs := Validate(&cfg); len(errs) > 0 {
		return nil, errors.Wrap(errs[0], "validating config")
	}

	return &cfg, nil
}

// Path returns the config file in use, or the default write location
// when no file has been loaded.
func Path() string {
	if used := viper.ConfigFileUsed(); used != "" {
		return used
	}
	return filepath.Join(paths.AppConfigDir(), "config.yaml")
}

// Keys lists the settable configuration keys.
func Keys() []string {
	return []string{
		"assistant",
		"backup.disabled",
		"backup.retention",
		"color",
	}
}

// KnownKey reports whether key is a recognized configuration key.
func KnownKey(key string) bool {
	for _, k := range Keys() {
		if k == key {
			return true
		}
	}
	return false
}

// Set validates and persists a single key into the config file,
// creating the file when missing.
func Set(key string, value any) error {
	if !KnownKey(key) {
		return errors.Newf("unknown config key: %s", key)
	}
	viper.Set(key, value)

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return errors.Wrap(err, "unmarshaling config")
	}
	if errs := Validate(&cfg); len(errs) > 0 {
		return errors.Wrap(errs[0], "validating config")
	}

	path := Path()
	if err := paths.EnsureDir(filepath.Dir(path), 0); err != nil {
		return errors.Wrap(err, "creating config directory")
	}
	if err := viper.WriteConfigAs(path); err != nil {
		return errors.Wrap(err, "writing config file")
	}
	return nil
}
