package doctor

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"testing/fstest"
)

func TestInstallStateCheck(t *testing.T) {
	t.Run("not installed is informational", func(t *testing.T) {
		dir := filepath.Join(t.TempDir(), "absent")
		check := NewInstallStateCheck("plugin", "claude", dir, []string{"plugin.json"})

		if got := check.Name(); got != "install-state-plugin-claude" {
			t.Errorf("Name() = %q", got)
		}

		result := check.Run()
		if result.Status != SeverityInfo {
			t.Errorf("status = %v, want info", result.Status)
		}
		if !strings.Contains(result.FixHint, "swb install plugin") {
			t.Errorf("FixHint = %q", result.FixHint)
		}
	})

	t.Run("partial install is an error", func(t *testing.T) {
		dir := t.TempDir()
		// Directory exists but markers are missing.
		check := NewInstallStateCheck("plugin", "claude", dir, []string{"plugin.json", "skills/signalwire/SKILL.md"})

		result := check.Run()
		if result.Status != SeverityError {
			t.Errorf("status = %v, want error", result.Status)
		}
		if !strings.Contains(result.Message, "plugin.json") {
			t.Errorf("message should name missing markers: %q", result.Message)
		}
	})

	t.Run("complete install passes", func(t *testing.T) {
		dir := t.TempDir()
		if err := os.MkdirAll(filepath.Join(dir, "skills", "signalwire"), 0o755); err != nil {
			t.Fatal(err)
		}
		for _, f := range []string{"plugin.json", "skills/signalwire/SKILL.md"} {
			if err := os.WriteFile(filepath.Join(dir, f), []byte("x"), 0o644); err != nil {
				t.Fatal(err)
			}
		}
		check := NewInstallStateCheck("plugin", "claude", dir, []string{"plugin.json", "skills/signalwire/SKILL.md"})

		result := check.Run()
		if result.Status != SeverityPass {
			t.Errorf("status = %v, want pass (message: %s)", result.Status, result.Message)
		}
	})
}

func TestSettingsSyntaxCheck(t *testing.T) {
	t.Run("valid json passes", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "settings.json")
		if err := os.WriteFile(path, []byte(`{"enabledPlugins": {"signalwire-builder": true}}`), 0o644); err != nil {
			t.Fatal(err)
		}
		check := &SettingsSyntaxCheck{path: path}

		result := check.Run()
		if result.Status != SeverityPass {
			t.Errorf("status = %v, want pass (message: %s)", result.Status, result.Message)
		}
	})

	t.Run("invalid json reports line and column", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "settings.json")
		if err := os.WriteFile(path, []byte("{\n  \"a\": ,\n}"), 0o644); err != nil {
			t.Fatal(err)
		}
		check := &SettingsSyntaxCheck{path: path}

		result := check.Run()
		if result.Status != SeverityError {
			t.Errorf("status = %v, want error", result.Status)
		}
		if !strings.Contains(result.Message, "line") {
			t.Errorf("message should include position: %q", result.Message)
		}
	})

	t.Run("missing file is informational", func(t *testing.T) {
		check := &SettingsSyntaxCheck{path: filepath.Join(t.TempDir(), "nope.json")}
		result := check.Run()
		if result.Status != SeverityInfo {
			t.Errorf("status = %v, want info", result.Status)
		}
	})

	t.Run("loose permissions warn", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "settings.json")
		if err := os.WriteFile(path, []byte(`{}`), 0o666); err != nil {
			t.Fatal(err)
		}
		// Umask may already narrow the mode; force it.
		if err := os.Chmod(path, 0o666); err != nil {
			t.Fatal(err)
		}
		check := &SettingsSyntaxCheck{path: path}

		result := check.Run()
		if result.Status != SeverityWarning {
			t.Errorf("status = %v, want warning (message: %s)", result.Status, result.Message)
		}
	})
}

func TestCodexConfigCheck(t *testing.T) {
	t.Run("valid toml passes", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "config.toml")
		if err := os.WriteFile(path, []byte("model = \"o3\"\n[profiles.dev]\napproval = \"never\"\n"), 0o644); err != nil {
			t.Fatal(err)
		}
		check := &CodexConfigCheck{path: path}

		result := check.Run()
		if result.Status != SeverityPass {
			t.Errorf("status = %v, want pass (message: %s)", result.Status, result.Message)
		}
	})

	t.Run("invalid toml is an error", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "config.toml")
		if err := os.WriteFile(path, []byte("model = \"unterminated\n"), 0o644); err != nil {
			t.Fatal(err)
		}
		check := &CodexConfigCheck{path: path}

		result := check.Run()
		if result.Status != SeverityError {
			t.Errorf("status = %v, want error", result.Status)
		}
	})

	t.Run("missing file is informational", func(t *testing.T) {
		check := &CodexConfigCheck{path: filepath.Join(t.TempDir(), "config.toml")}
		result := check.Run()
		if result.Status != SeverityInfo {
			t.Errorf("status = %v, want info", result.Status)
		}
	})
}

func TestSourceCheck(t *testing.T) {
	required := []string{"plugin.json", "skills/signalwire/SKILL.md"}

	t.Run("complete source passes", func(t *testing.T) {
		fsys := fstest.MapFS{
			"plugin.json":                 {Data: []byte("{}")},
			"skills/signalwire/SKILL.md":  {Data: []byte("---\nname: signalwire\n---\n")},
			"skills/signalwire/extra.txt": {Data: []byte("x")},
		}
		check := NewSourceCheck("embedded", fsys, required)

		result := check.Run()
		if result.Status != SeverityPass {
			t.Errorf("status = %v, want pass (message: %s)", result.Status, result.Message)
		}
	})

	t.Run("incomplete source names missing files", func(t *testing.T) {
		fsys := fstest.MapFS{
			"plugin.json": {Data: []byte("{}")},
		}
		check := NewSourceCheck("local", fsys, required)

		result := check.Run()
		if result.Status != SeverityError {
			t.Errorf("status = %v, want error", result.Status)
		}
		if !strings.Contains(result.Message, "skills/signalwire/SKILL.md") {
			t.Errorf("message should name the missing file: %q", result.Message)
		}
	})
}

func TestInstallRootCheck_Fix(t *testing.T) {
	// Exercise the fixer directly with a synthetic missing-dir issue.
	missing := filepath.Join(t.TempDir(), "skills")
	check := NewInstallRootCheck()
	check.fixer.setIssues([]rootIssue{{
		Assistant: "claude",
		Path:      missing,
		Problem:   "directory does not exist",
		Severity:  SeverityInfo,
		Missing:   true,
	}})

	if !check.CanFix() {
		t.Fatal("CanFix() = false, want true")
	}
	results := check.Fix()
	if len(results) != 1 {
		t.Fatalf("got %d fix results, want 1", len(results))
	}
	if !results[0].Fixed {
		t.Errorf("fix failed: %v", results[0].Error)
	}
	if info, err := os.Stat(missing); err != nil || !info.IsDir() {
		t.Errorf("directory not created: %v", err)
	}
}

func TestOffsetToLineCol(t *testing.T) {
	data := []byte("line one\nline two\nline three")
	line, col := offsetToLineCol(data, 9)
	if line != 2 || col != 1 {
		t.Errorf("offsetToLineCol = (%d, %d), want (2, 1)", line, col)
	}
}
