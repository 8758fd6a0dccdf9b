package installer

import (
	"bytes"
	"errors"
	"os"
	"strings"
	"testing"

	errs "github.com/swbuilder/swb/internal/errors"
)

func TestUninstall_NotInstalled(t *testing.T) {
	home := t.TempDir()
	inst := newTestInstaller(t, Config{Home: home, Force: true})

	_, err := inst.Uninstall(t.Context(), SkillLayout())
	if !errors.Is(err, errs.ErrNotInstalled) {
		t.Fatalf("error = %v, want ErrNotInstalled", err)
	}
}

func TestUninstall_ForceRemoves(t *testing.T) {
	home := t.TempDir()
	inst := newTestInstaller(t, Config{Home: home, Force: true})

	layout := PluginLayout()
	if _, err := inst.Install(t.Context(), layout); err != nil {
		t.Fatalf("Install: %v", err)
	}

	result, err := inst.Uninstall(t.Context(), layout)
	if err != nil {
		t.Fatalf("Uninstall: %v", err)
	}
	if result.Path != layout.DestDir(home) {
		t.Errorf("result path = %q", result.Path)
	}
	mustNotExist(t, layout.DestDir(home))
}

func TestUninstall_DeclineKeeps(t *testing.T) {
	home := t.TempDir()
	layout := SkillLayout()

	install := newTestInstaller(t, Config{Home: home, Force: true})
	if _, err := install.Install(t.Context(), layout); err != nil {
		t.Fatalf("Install: %v", err)
	}

	var out bytes.Buffer
	inst := newTestInstaller(t, Config{Home: home, Out: &out, In: strings.NewReader("n\n")})

	_, err := inst.Uninstall(t.Context(), layout)
	if !errors.Is(err, errs.ErrAborted) {
		t.Fatalf("error = %v, want ErrAborted", err)
	}
	if !strings.Contains(out.String(), "(y/N)") {
		t.Errorf("prompt missing:\n%s", out.String())
	}
	mustExist(t, layout.DestDir(home))
}

func TestUninstall_ConfirmRemoves(t *testing.T) {
	home := t.TempDir()
	layout := SkillLayout()

	install := newTestInstaller(t, Config{Home: home, Force: true})
	if _, err := install.Install(t.Context(), layout); err != nil {
		t.Fatalf("Install: %v", err)
	}

	inst := newTestInstaller(t, Config{Home: home, In: strings.NewReader("y\n")})
	if _, err := inst.Uninstall(t.Context(), layout); err != nil {
		t.Fatalf("Uninstall: %v", err)
	}
	mustNotExist(t, layout.DestDir(home))
}

func TestUninstall_BackupBeforeRemoval(t *testing.T) {
	home := t.TempDir()
	layout := PluginLayout()

	install := newTestInstaller(t, Config{Home: home, Force: true})
	if _, err := install.Install(t.Context(), layout); err != nil {
		t.Fatalf("Install: %v", err)
	}

	var sawContent bool
	backup := func(l Layout, destDir string) (string, error) {
		if _, err := os.Stat(destDir); err == nil {
			sawContent = true
		}
		return "snap-1", nil
	}

	inst := newTestInstaller(t, Config{Home: home, Force: true, Backup: backup})
	result, err := inst.Uninstall(t.Context(), layout)
	if err != nil {
		t.Fatalf("Uninstall: %v", err)
	}
	if !sawContent {
		t.Error("backup ran after removal")
	}
	if result.BackupID != "snap-1" {
		t.Errorf("backup id = %q", result.BackupID)
	}
}

func TestUninstall_DryRun(t *testing.T) {
	home := t.TempDir()
	layout := PluginLayout()

	install := newTestInstaller(t, Config{Home: home, Force: true})
	if _, err := install.Install(t.Context(), layout); err != nil {
		t.Fatalf("Install: %v", err)
	}

	inst := newTestInstaller(t, Config{Home: home, DryRun: true})
	result, err := inst.Uninstall(t.Context(), layout)
	if err != nil {
		t.Fatalf("Uninstall: %v", err)
	}
	if !result.DryRun {
		t.Error("DryRun not reported")
	}
	mustExist(t, layout.DestDir(home))
}
