package commands

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/swbuilder/swb/internal/backup"
)

func resetBackupListFlags(t *testing.T) {
	t.Helper()
	orig := backupListJSON
	t.Cleanup(func() { backupListJSON = orig })
	backupListJSON = false
}

// writeBackupFixture fabricates a snapshot directory with a chosen
// creation time, so listing and pruning order is deterministic.
func writeBackupFixture(t *testing.T, home, group, id string, createdAt time.Time) {
	t.Helper()
	dir := filepath.Join(home, ".config", "swb", "backups", group, id)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatal(err)
	}
	manifest := backup.Manifest{
		Version:    backup.ManifestVersion,
		CreatedAt:  createdAt,
		Group:      group,
		Files:      []backup.File{{OriginalPath: "/x", RelPath: "content/x", SHA256Hash: "0"}},
		SWBVersion: "test",
	}
	data, err := json.Marshal(manifest)
	if err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "manifest.json"), data, 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestBackupListCommand_Empty(t *testing.T) {
	setupHome(t)
	resetBackupListFlags(t)

	var out bytes.Buffer
	if err := runBackupListWithWriter(testCommand(t), nil, &out); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out.String() != "No backups found.\n" {
		t.Errorf("output = %q, want %q", out.String(), "No backups found.\n")
	}
}

func TestBackupListCommand_Table(t *testing.T) {
	home := setupHome(t)
	resetBackupListFlags(t)

	base := time.Date(2026, 8, 25, 10, 0, 0, 0, time.UTC)
	writeBackupFixture(t, home, "plugin", "20260825T100000", base)
	writeBackupFixture(t, home, "plugin", "20260825T110000", base.Add(time.Hour))
	writeBackupFixture(t, home, "settings", "20260825T120000", base.Add(2*time.Hour))

	var out bytes.Buffer
	if err := runBackupListWithWriter(testCommand(t), nil, &out); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	output := out.String()
	for _, want := range []string{"GROUP", "ID", "plugin", "settings",
		"20260825T100000", "20260825T110000", "20260825T120000"} {
		if !strings.Contains(output, want) {
			t.Errorf("output missing %q:\n%s", want, output)
		}
	}

	// Within a group the newest snapshot is listed first.
	if strings.Index(output, "20260825T110000") > strings.Index(output, "20260825T100000") {
		t.Errorf("snapshots not newest first:\n%s", output)
	}
}

func TestBackupListCommand_GroupFilter(t *testing.T) {
	home := setupHome(t)
	resetBackupListFlags(t)

	base := time.Date(2026, 8, 25, 10, 0, 0, 0, time.UTC)
	writeBackupFixture(t, home, "plugin", "20260825T100000", base)
	writeBackupFixture(t, home, "settings", "20260825T110000", base.Add(time.Hour))

	var out bytes.Buffer
	if err := runBackupListWithWriter(testCommand(t), []string{"settings"}, &out); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(out.String(), "20260825T110000") {
		t.Errorf("output missing settings snapshot:\n%s", out.String())
	}
	if strings.Contains(out.String(), "20260825T100000") {
		t.Errorf("output includes snapshot from another group:\n%s", out.String())
	}
}

func TestBackupListCommand_JSON(t *testing.T) {
	home := setupHome(t)
	resetBackupListFlags(t)
	backupListJSON = true

	base := time.Date(2026, 8, 25, 10, 0, 0, 0, time.UTC)
	writeBackupFixture(t, home, "plugin", "20260825T100000", base)
	writeBackupFixture(t, home, "plugin", "20260825T110000", base.Add(time.Hour))

	var out bytes.Buffer
	if err := runBackupListWithWriter(testCommand(t), []string{"plugin"}, &out); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var infos []backupInfo
	if err := json.Unmarshal(out.Bytes(), &infos); err != nil {
		t.Fatalf("output is not valid JSON: %v\n%s", err, out.String())
	}
	if len(infos) != 2 {
		t.Fatalf("got %d entries, want 2", len(infos))
	}
	if infos[0].ID != "20260825T110000" {
		t.Errorf("first entry = %q, want the newest snapshot", infos[0].ID)
	}
	if infos[0].Group != "plugin" || infos[0].FileCount != 1 {
		t.Errorf("entry = %+v, want group plugin with 1 file", infos[0])
	}
}
