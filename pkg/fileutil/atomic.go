// Package fileutil provides file system utilities including atomic write operations.
package fileutil

import (
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/cockroachdb/errors"
	"gopkg.in/yaml.v3"
)

// AtomicWriteFile writes data to a file atomically using a temp file + rename
// pattern, so interrupted writes leave the original file intact.
//
// The caller is responsible for ensuring the parent directory exists.
// Permissions are applied to the final file via the perm parameter.
func AtomicWriteFile(path string, data []byte, perm os.FileMode) error {
	dir := filepath.Dir(path)

	// Temp file in the same directory so the rename stays on one filesystem.
	tmp, err := os.CreateTemp(dir, ".swb-atomic-*.tmp")
	if err != nil {
		return errors.Wrap(err, "creating temp file")
	}

	tmpName := tmp.Name()
	defer func() {
		// Only remove if the rename did not happen.
		if _, statErr := os.Stat(tmpName); statErr == nil {
			os.Remove(tmpName)
		}
	}()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return errors.Wrap(err, "writing temp file")
	}

	if err := tmp.Chmod(perm); err != nil {
		tmp.Close()
		return errors.Wrap(err, "setting file permissions")
	}

	if err := tmp.Close(); err != nil {
		return errors.Wrap(err, "closing temp file")
	}

	if err := os.Rename(tmpName, path); err != nil {
		return errors.Wrap(err, "renaming temp file")
	}

	return nil
}

// AtomicWriteJSONWithPerm writes v as indented JSON to path atomically with
// the given permissions. Uses 2-space indentation and a trailing newline.
//
// The caller is responsible for ensuring the parent directory exists.
func AtomicWriteJSONWithPerm(path string, v any, perm os.FileMode) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return errors.Wrap(err, "marshaling JSON")
	}
	data = append(data, '\n')

	return AtomicWriteFile(path, data, perm)
}

// AtomicWriteJSON writes v as indented JSON to path atomically with 0644
// permissions.
func AtomicWriteJSON(path string, v any) error {
	return AtomicWriteJSONWithPerm(path, v, 0644)
}

// AtomicWriteYAMLWithPerm writes v as YAML to path atomically with the given
// permissions.
//
// The caller is responsible for ensuring the parent directory exists.
func AtomicWriteYAMLWithPerm(path string, v any, perm os.FileMode) (err error) {
	// yaml.Marshal panics on unmarshalable types; recover and return error.
	defer func() {
		if r := recover(); r != nil {
			err = errors.Newf("marshaling YAML: %v", r)
		}
	}()

	data, err := yaml.Marshal(v)
	if err != nil {
		return errors.Wrap(err, "marshaling YAML")
	}
	if len(data) > 0 && data[len(data)-1] != '\n' {
		data = append(data, '\n')
	}

	return AtomicWriteFile(path, data, perm)
}

// AtomicWriteYAML writes v as YAML to path atomically with 0644 permissions.
func AtomicWriteYAML(path string, v any) error {
	return AtomicWriteYAMLWithPerm(path, v, 0644)
}
