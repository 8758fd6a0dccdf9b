package installer

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/swbuilder/swb/internal/manifest"
)

// Scope labels for Target.
const (
	ScopeUser    = "user"
	ScopeProject = "project"
)

// Target names one assistant home to scan for installed layouts.
type Target struct {
	// Assistant identifies the assistant, e.g. paths.AssistantClaude.
	Assistant string

	// Home is the assistant's home directory.
	Home string

	// Scope labels the target in reports, e.g. "user" or "project".
	Scope string
}

// InstallState is the observed state of one layout in one target.
type InstallState struct {
	Layout    string   `json:"layout"`
	Assistant string   `json:"assistant"`
	Scope     string   `json:"scope"`
	Path      string   `json:"path"`
	Installed bool     `json:"installed"`
	Missing   []string `json:"missing,omitempty"`

	// Version is read from the installed manifest when available.
	Version string `json:"version,omitempty"`
}

// Complete reports whether the layout is installed with all markers.
func (s InstallState) Complete() bool {
	return s.Installed && len(s.Missing) == 0
}

// Scanner inspects assistant homes for installed layouts.
type Scanner struct {
	logger *slog.Logger
}

// NewScanner creates a Scanner logging through slog.Default().
func NewScanner() *Scanner {
	return &Scanner{logger: slog.Default()}
}

// NewScannerWithLogger creates a Scanner with the given logger.
func NewScannerWithLogger(logger *slog.Logger) *Scanner {
	return &Scanner{logger: logger}
}

// ScanTarget checks every layout against one target.
func (s *Scanner) ScanTarget(target Target, layouts []Layout) []InstallState {
	states := make([]InstallState, 0, len(layouts))
	for _, layout := range layouts {
		states = append(states, s.scanLayout(target, layout))
	}
	return states
}

// ScanAll checks every layout against every target, scanning targets
// concurrently up to GOMAXPROCS at a time. The result is ordered by
// target, then layout, regardless of completion order. A cancelled
// context stops the scan and returns the context's error.
func (s *Scanner) ScanAll(ctx context.Context, targets []Target, layouts []Layout) ([]InstallState, error) {
	if len(targets) == 0 || len(layouts) == 0 {
		return nil, nil
	}

	workers := runtime.GOMAXPROCS(0)
	if len(targets) < workers {
		workers = len(targets)
	}

	perTarget := make([][]InstallState, len(targets))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for idx, target := range targets {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			perTarget[idx] = s.ScanTarget(target, layouts)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	states := make([]InstallState, 0, len(targets)*len(layouts))
	for _, scanned := range perTarget {
		states = append(states, scanned...)
	}
	return states, nil
}

func (s *Scanner) scanLayout(target Target, layout Layout) InstallState {
	destDir := layout.DestDir(target.Home)
	state := InstallState{
		Layout:    layout.Name,
		Assistant: target.Assistant,
		Scope:     target.Scope,
		Path:      destDir,
	}

	info, err := os.Stat(destDir)
	if err != nil || !info.IsDir() {
		return state
	}
	state.Installed = true
	state.Missing = MissingMarkers(destDir, layout.Markers)
	state.Version = s.installedVersion(destDir, layout)
	return state
}

// installedVersion reads the version from an installed plugin manifest.
// Skill installs carry no version and report empty.
func (s *Scanner) installedVersion(destDir string, layout Layout) string {
	if layout.Root != RootPlugins {
		return ""
	}
	plugin, err := manifest.LoadPlugin(os.DirFS(destDir), "plugin.json")
	if err != nil {
		s.logger.Debug("reading installed manifest",
			"path", filepath.Join(destDir, "plugin.json"),
			"error", err)
		return ""
	}
	return plugin.Version
}
