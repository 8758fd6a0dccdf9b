package config

import (
	"github.com/cockroachdb/errors"

	"github.com/swbuilder/swb/internal/paths"
)

// Validation errors for configuration fields.
var (
	// ErrUnsupportedVersion indicates an unknown config schema version.
	ErrUnsupportedVersion = errors.New("unsupported config version")

	// ErrInvalidAssistant indicates an unrecognized assistant name.
	ErrInvalidAssistant = errors.New("invalid assistant")

	// ErrInvalidColorMode indicates a color value outside auto/always/never.
	ErrInvalidColorMode = errors.New("invalid color mode")

	// ErrInvalidRetention indicates a negative backup retention.
	ErrInvalidRetention = errors.New("backup retention must be >= 0")
)

// Validate checks a Config for validity.
// Returns nil if valid, or a slice of validation errors.
func Validate(cfg *Config) []error {
	if cfg == nil {
		return []error{errors.New("config is nil")}
	}

	var errs []error

	if cfg.Version != 1 {
		errs = append(errs, errors.Wrapf(ErrUnsupportedVersion, "%d", cfg.Version))
	}

	if cfg.Assistant != "" && !paths.ValidAssistant(cfg.Assistant) {
		errs = append(errs, errors.Wrapf(ErrInvalidAssistant, "%q", cfg.Assistant))
	}

	switch cfg.Color {
	case "", ColorAuto, ColorAlways, ColorNever:
	default:
		errs = append(errs, errors.Wrapf(ErrInvalidColorMode, "%q", cfg.Color))
	}

	if cfg.Backup.Retention < 0 {
		errs = append(errs, errors.Wrapf(ErrInvalidRetention, "%d", cfg.Backup.Retention))
	}

	return errs
}
