package commands

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/cockroachdb/errors"

	"github.com/swbuilder/swb/internal/backup"
	errs "github.com/swbuilder/swb/internal/errors"
)

// snapshotPluginInstall seeds a plugin install, snapshots it, and
// returns the install dir and snapshot ID.
func snapshotPluginInstall(t *testing.T, home string) (dest, id string) {
	t.Helper()
	dest = seedPluginInstall(t, home)
	if err := runBackupCreateWithWriter(testCommand(t), []string{"plugin"}, new(bytes.Buffer)); err != nil {
		t.Fatalf("creating snapshot: %v", err)
	}

	groupDir := filepath.Join(home, ".config", "swb", "backups", "plugin")
	entries, err := os.ReadDir(groupDir)
	if err != nil {
		t.Fatalf("reading snapshot group: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("got %d snapshots, want 1", len(entries))
	}
	return dest, entries[0].Name()
}

func TestBackupRestoreCommand_MostRecent(t *testing.T) {
	home := setupHome(t)
	resetBackupCreateFlags(t)
	dest, _ := snapshotPluginInstall(t, home)

	// Damage the live install.
	manifestPath := filepath.Join(dest, "plugin.json")
	if err := os.WriteFile(manifestPath, []byte("damaged"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.Remove(filepath.Join(dest, "skills", "signalwire", "SKILL.md")); err != nil {
		t.Fatal(err)
	}

	var out bytes.Buffer
	if err := runBackupRestoreWithWriter(testCommand(t), []string{"plugin"}, &out); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !strings.Contains(out.String(), "Using most recent backup: ") {
		t.Errorf("output missing backup selection notice:\n%s", out.String())
	}
	if !strings.Contains(out.String(), "✓ Restored "+dest) {
		t.Errorf("output missing restore confirmation:\n%s", out.String())
	}

	data, err := os.ReadFile(manifestPath)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != seededManifest {
		t.Errorf("plugin.json = %q, want original content restored", data)
	}
	mustExist(t, filepath.Join(dest, "skills", "signalwire", "SKILL.md"))
}

func TestBackupRestoreCommand_SpecificID(t *testing.T) {
	home := setupHome(t)
	resetBackupCreateFlags(t)
	dest, id := snapshotPluginInstall(t, home)

	if err := os.WriteFile(filepath.Join(dest, "plugin.json"), []byte("damaged"), 0o644); err != nil {
		t.Fatal(err)
	}

	var out bytes.Buffer
	if err := runBackupRestoreWithWriter(testCommand(t), []string{"plugin", id}, &out); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if strings.Contains(out.String(), "Using most recent backup") {
		t.Errorf("explicit ID should skip backup selection:\n%s", out.String())
	}
	if !strings.Contains(out.String(), "✓ Restored "+dest+" from backup "+id) {
		t.Errorf("output missing restore confirmation:\n%s", out.String())
	}

	data, err := os.ReadFile(filepath.Join(dest, "plugin.json"))
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != seededManifest {
		t.Errorf("plugin.json = %q, want original content restored", data)
	}
}

func TestBackupRestoreCommand_NoBackups(t *testing.T) {
	setupHome(t)

	err := runBackupRestoreWithWriter(testCommand(t), []string{"plugin"}, new(bytes.Buffer))
	if !errors.Is(err, backup.ErrNoBackupsFound) {
		t.Errorf("error = %v, want ErrNoBackupsFound", err)
	}
	if errs.Code(err) != errs.ExitUser {
		t.Errorf("exit code = %d, want %d", errs.Code(err), errs.ExitUser)
	}
}

func TestBackupRestoreCommand_UnknownID(t *testing.T) {
	home := setupHome(t)
	resetBackupCreateFlags(t)
	snapshotPluginInstall(t, home)

	err := runBackupRestoreWithWriter(testCommand(t), []string{"plugin", "19990101T000000"}, new(bytes.Buffer))
	if !errors.Is(err, backup.ErrNoBackupsFound) {
		t.Errorf("error = %v, want ErrNoBackupsFound", err)
	}
	if errs.Code(err) != errs.ExitUser {
		t.Errorf("exit code = %d, want %d", errs.Code(err), errs.ExitUser)
	}
}

func TestBackupRestoreCommand_CorruptSnapshot(t *testing.T) {
	home := setupHome(t)
	resetBackupCreateFlags(t)
	dest, id := snapshotPluginInstall(t, home)

	// Tamper with the stored copy; restore must refuse to write anything.
	stored := filepath.Join(home, ".config", "swb", "backups", "plugin", id, "content", "plugin.json")
	if err := os.WriteFile(stored, []byte("tampered"), 0o644); err != nil {
		t.Fatal(err)
	}
	livePath := filepath.Join(dest, "plugin.json")
	if err := os.WriteFile(livePath, []byte("live"), 0o644); err != nil {
		t.Fatal(err)
	}

	err := runBackupRestoreWithWriter(testCommand(t), []string{"plugin", id}, new(bytes.Buffer))
	if !errors.Is(err, backup.ErrBackupCorrupted) {
		t.Errorf("error = %v, want ErrBackupCorrupted", err)
	}
	if errs.Code(err) != errs.ExitSystem {
		t.Errorf("exit code = %d, want %d", errs.Code(err), errs.ExitSystem)
	}

	data, err := os.ReadFile(livePath)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "live" {
		t.Errorf("corrupt restore modified the live file: %q", data)
	}
}
