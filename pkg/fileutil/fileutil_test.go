package fileutil

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestAtomicWriteFile(t *testing.T) {
	t.Run("writes new file", func(t *testing.T) {
		dir := t.TempDir()
		path := filepath.Join(dir, "out.txt")

		if err := AtomicWriteFile(path, []byte("hello"), 0644); err != nil {
			t.Fatalf("AtomicWriteFile() error = %v", err)
		}

		data, err := os.ReadFile(path)
		if err != nil {
			t.Fatalf("reading result: %v", err)
		}
		if string(data) != "hello" {
			t.Errorf("content = %q, want %q", string(data), "hello")
		}
	})

	t.Run("replaces existing file", func(t *testing.T) {
		dir := t.TempDir()
		path := filepath.Join(dir, "out.txt")
		if err := os.WriteFile(path, []byte("old"), 0644); err != nil {
			t.Fatal(err)
		}

		if err := AtomicWriteFile(path, []byte("new"), 0644); err != nil {
			t.Fatalf("AtomicWriteFile() error = %v", err)
		}

		data, _ := os.ReadFile(path)
		if string(data) != "new" {
			t.Errorf("content = %q, want %q", string(data), "new")
		}
	})

	t.Run("leaves no temp files behind", func(t *testing.T) {
		dir := t.TempDir()
		path := filepath.Join(dir, "out.txt")
		if err := AtomicWriteFile(path, []byte("data"), 0644); err != nil {
			t.Fatalf("AtomicWriteFile() error = %v", err)
		}

		entries, err := os.ReadDir(dir)
		if err != nil {
			t.Fatal(err)
		}
		for _, e := range entries {
			if strings.HasPrefix(e.Name(), ".swb-atomic-") {
				t.Errorf("temp file left behind: %s", e.Name())
			}
		}
	})

	t.Run("applies permissions", func(t *testing.T) {
		dir := t.TempDir()
		path := filepath.Join(dir, "secret.txt")
		if err := AtomicWriteFile(path, []byte("x"), 0600); err != nil {
			t.Fatalf("AtomicWriteFile() error = %v", err)
		}

		info, err := os.Stat(path)
		if err != nil {
			t.Fatal(err)
		}
		if got := info.Mode().Perm(); got != 0600 {
			t.Errorf("perm = %o, want %o", got, 0600)
		}
	})
}

func TestAtomicWriteJSON(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "out.json")

	v := map[string]any{"name": "signalwire-builder", "version": "1.0.0"}
	if err := AtomicWriteJSON(path, v); err != nil {
		t.Fatalf("AtomicWriteJSON() error = %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasSuffix(string(data), "\n") {
		t.Error("output missing trailing newline")
	}

	var got map[string]any
	if err := json.Unmarshal(data, &got); err != nil {
		t.Fatalf("output is not valid JSON: %v", err)
	}
	if got["name"] != "signalwire-builder" {
		t.Errorf("name = %v", got["name"])
	}
}

func TestAtomicWriteYAML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "out.yaml")

	v := map[string]any{"assistant": "claude"}
	if err := AtomicWriteYAML(path, v); err != nil {
		t.Fatalf("AtomicWriteYAML() error = %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), "assistant: claude") {
		t.Errorf("unexpected output: %q", string(data))
	}
}

func TestReadFileWithLimit(t *testing.T) {
	t.Run("reads small file", func(t *testing.T) {
		dir := t.TempDir()
		path := filepath.Join(dir, "small.txt")
		if err := os.WriteFile(path, []byte("content"), 0644); err != nil {
			t.Fatal(err)
		}

		data, err := ReadFileWithLimit(path)
		if err != nil {
			t.Fatalf("ReadFileWithLimit() error = %v", err)
		}
		if string(data) != "content" {
			t.Errorf("data = %q", string(data))
		}
	})

	t.Run("rejects oversized file", func(t *testing.T) {
		dir := t.TempDir()
		path := filepath.Join(dir, "big.txt")
		big := make([]byte, MaxFileSize+1)
		if err := os.WriteFile(path, big, 0644); err != nil {
			t.Fatal(err)
		}

		_, err := ReadFileWithLimit(path)
		if !errors.Is(err, ErrFileTooLarge) {
			t.Errorf("error = %v, want ErrFileTooLarge", err)
		}
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := ReadFileWithLimit(filepath.Join(t.TempDir(), "nope.txt"))
		if err == nil {
			t.Fatal("expected error for missing file")
		}
	})
}
