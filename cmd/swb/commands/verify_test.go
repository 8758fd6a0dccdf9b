package commands

import (
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	errs "github.com/swbuilder/swb/internal/errors"
	"github.com/swbuilder/swb/internal/installer"
)

func resetVerifyFlags(t *testing.T) {
	t.Helper()
	origJSON, origProject := verifyJSON, verifyProject
	t.Cleanup(func() {
		verifyJSON, verifyProject = origJSON, origProject
	})
	verifyJSON = false
	verifyProject = false
}

func TestVerifyCommand_NothingInstalled(t *testing.T) {
	setupHome(t)
	resetVerifyFlags(t)

	var out bytes.Buffer
	err := runVerifyWithWriter(testCommand(t), nil, &out)
	if !errors.Is(err, errs.ErrNotInstalled) {
		t.Fatalf("error = %v, want ErrNotInstalled", err)
	}
	if errs.Code(err) != errs.ExitUser {
		t.Errorf("exit code = %d, want %d", errs.Code(err), errs.ExitUser)
	}
	if !strings.Contains(out.String(), "not installed") {
		t.Errorf("output missing not-installed lines:\n%s", out.String())
	}
}

func TestVerifyCommand_Complete(t *testing.T) {
	home := setupHome(t)
	resetVerifyFlags(t)

	dest := seedPluginInstall(t, home)
	workflows := filepath.Join(dest, "skills", "signalwire", "workflows")
	if err := os.MkdirAll(workflows, 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(workflows, "testing.md"), []byte("body"), 0o644); err != nil {
		t.Fatal(err)
	}

	var out bytes.Buffer
	err := runVerifyWithWriter(testCommand(t), []string{"plugin"}, &out)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	output := out.String()
	if !strings.Contains(output, "✓ plugin") || !strings.Contains(output, "complete at") {
		t.Errorf("output missing complete line:\n%s", output)
	}
	if !strings.Contains(output, "(1 workflows)") {
		t.Errorf("output missing workflow count:\n%s", output)
	}
}

func TestVerifyCommand_Incomplete(t *testing.T) {
	home := setupHome(t)
	resetVerifyFlags(t)

	dest := seedPluginInstall(t, home)
	if err := os.Remove(filepath.Join(dest, "skills", "signalwire", "SKILL.md")); err != nil {
		t.Fatal(err)
	}

	var out bytes.Buffer
	err := runVerifyWithWriter(testCommand(t), []string{"plugin"}, &out)
	if !errors.Is(err, errs.ErrVerifyFailed) {
		t.Fatalf("error = %v, want ErrVerifyFailed", err)
	}
	if errs.Code(err) != errs.ExitSystem {
		t.Errorf("exit code = %d, want %d", errs.Code(err), errs.ExitSystem)
	}

	output := out.String()
	if !strings.Contains(output, "✗ plugin") || !strings.Contains(output, "incomplete at") {
		t.Errorf("output missing incomplete line:\n%s", output)
	}
	if !strings.Contains(output, "missing skills/signalwire/SKILL.md") {
		t.Errorf("output missing the absent marker:\n%s", output)
	}
}

func TestVerifyCommand_CorruptManifest(t *testing.T) {
	home := setupHome(t)
	resetVerifyFlags(t)

	dest := seedPluginInstall(t, home)
	if err := os.WriteFile(filepath.Join(dest, "plugin.json"), []byte("{not json"), 0o644); err != nil {
		t.Fatal(err)
	}

	var out bytes.Buffer
	err := runVerifyWithWriter(testCommand(t), []string{"plugin"}, &out)
	if !errors.Is(err, errs.ErrVerifyFailed) {
		t.Fatalf("error = %v, want ErrVerifyFailed", err)
	}
	if errs.Code(err) != errs.ExitSystem {
		t.Errorf("exit code = %d, want %d", errs.Code(err), errs.ExitSystem)
	}

	output := out.String()
	if !strings.Contains(output, "✗ plugin") || !strings.Contains(output, "incomplete at") {
		t.Errorf("output missing incomplete line:\n%s", output)
	}
	if !strings.Contains(output, "invalid plugin.json") {
		t.Errorf("output missing the invalid marker:\n%s", output)
	}
}

func TestVerifyCommand_MixedInstall(t *testing.T) {
	home := setupHome(t)
	resetVerifyFlags(t)
	seedPluginInstall(t, home)

	// Plugin complete, skill absent: the command succeeds and reports both.
	var out bytes.Buffer
	err := runVerifyWithWriter(testCommand(t), nil, &out)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	output := out.String()
	if !strings.Contains(output, "complete at") {
		t.Errorf("output missing plugin line:\n%s", output)
	}
	if !strings.Contains(output, "- skill") || !strings.Contains(output, "not installed") {
		t.Errorf("output missing skill line:\n%s", output)
	}
}

func TestVerifyCommand_JSON(t *testing.T) {
	home := setupHome(t)
	resetVerifyFlags(t)
	verifyJSON = true
	seedPluginInstall(t, home)

	var out bytes.Buffer
	if err := runVerifyWithWriter(testCommand(t), nil, &out); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var reports []installer.VerifyReport
	if err := json.Unmarshal(out.Bytes(), &reports); err != nil {
		t.Fatalf("output is not valid JSON: %v\n%s", err, out.String())
	}
	if len(reports) != 2 {
		t.Fatalf("got %d reports, want 2", len(reports))
	}
	if reports[0].Layout != "plugin" || !reports[0].Installed {
		t.Errorf("plugin report = %+v", reports[0])
	}
	if reports[1].Layout != "skill" || reports[1].Installed {
		t.Errorf("skill report = %+v", reports[1])
	}
}
