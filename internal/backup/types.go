package backup

import (
	"io/fs"
	"time"

	"github.com/cockroachdb/errors"
)

// Manifest format version for forward compatibility.
const ManifestVersion = 1

// DefaultRetentionCount is the default number of snapshots retained per
// group.
const DefaultRetentionCount = 5

// Sentinel errors for backup operations.
var (
	// ErrNoBackupsFound indicates no snapshots exist for the group.
	ErrNoBackupsFound = errors.New("no backups found")

	// ErrBackupCorrupted indicates a snapshot file failed its SHA256
	// integrity check.
	ErrBackupCorrupted = errors.New("backup corrupted")
)

// Manifest describes one snapshot. It is stored as manifest.json in the
// snapshot directory.
type Manifest struct {
	// Version is the manifest format version.
	Version int `json:"version"`

	// CreatedAt is when the snapshot was taken.
	CreatedAt time.Time `json:"created_at"`

	// Group names what was snapshotted: a layout name like "plugin" or
	// "skill", or "settings" for assistant settings files.
	Group string `json:"group"`

	// Root is the directory or file the snapshot captured.
	Root string `json:"root"`

	// Files contains metadata for each captured file.
	Files []File `json:"files"`

	// SWBVersion is the version of swb that took the snapshot.
	SWBVersion string `json:"swb_version"`

	// ID is the snapshot identifier (timestamp format: 20260123T100712).
	// Populated when loading from disk but not stored in JSON.
	ID string `json:"-"`
}

// File contains metadata for a single captured file.
type File struct {
	// OriginalPath is the absolute path where the file was located.
	OriginalPath string `json:"original_path"`

	// RelPath is the path within the snapshot directory.
	RelPath string `json:"rel_path"`

	// SHA256Hash is the hex-encoded SHA256 of the file contents.
	SHA256Hash string `json:"sha256_hash"`

	// Mode is the file's permission bits.
	Mode fs.FileMode `json:"mode"`
}
