package editor

import (
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
)

func TestDetectEditor(t *testing.T) {
	tests := []struct {
		name   string
		editor string
		visual string
		want   string
	}{
		{"EDITOR wins", "nvim", "code", "nvim"},
		{"VISUAL when EDITOR unset", "", "code", "code"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("EDITOR", tt.editor)
			t.Setenv("VISUAL", tt.visual)

			if got := detectEditor(); got != tt.want {
				t.Errorf("detectEditor() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestDetectEditor_Fallback(t *testing.T) {
	t.Setenv("EDITOR", "")
	t.Setenv("VISUAL", "")

	got := detectEditor()
	if _, err := exec.LookPath("nano"); err == nil {
		if got != "nano" {
			t.Errorf("detectEditor() = %q, want %q", got, "nano")
		}
	} else if got != "vi" {
		t.Errorf("detectEditor() = %q, want %q", got, "vi")
	}
}

func TestOpen(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("mock editor is a shell script")
	}

	tmpDir := t.TempDir()
	mockEditor := filepath.Join(tmpDir, "mock-editor.sh")
	outputFile := filepath.Join(tmpDir, "output.txt")
	script := "#!/bin/sh\necho \"$@\" > " + outputFile + "\n"
	if err := os.WriteFile(mockEditor, []byte(script), 0o755); err != nil {
		t.Fatal(err)
	}
	t.Setenv("EDITOR", mockEditor)

	target := filepath.Join(tmpDir, "config.yaml")
	if err := os.WriteFile(target, []byte("assistant: claude\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	if err := Open(target); err != nil {
		t.Fatalf("Open() error = %v", err)
	}

	got, err := os.ReadFile(outputFile)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(got), target) {
		t.Errorf("editor was invoked with %q, want it to receive %q", got, target)
	}
}

func TestOpen_MissingEditor(t *testing.T) {
	t.Setenv("EDITOR", "no-such-editor-binary-31337")
	t.Setenv("VISUAL", "")

	if err := Open("config.yaml"); err == nil {
		t.Error("expected error for missing editor binary, got nil")
	}
}
