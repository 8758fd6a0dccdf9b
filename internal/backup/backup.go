package backup

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"time"

	"github.com/cockroachdb/errors"

	"github.com/swbuilder/swb/internal/paths"
	"github.com/swbuilder/swb/pkg/fileutil"
)

// Version is set at build time via ldflags.
var Version = "dev"

// Manager takes, lists, restores, and prunes snapshots. Snapshots are
// grouped (one subdirectory per group under the root) so each install
// layout and the settings files retain their own history.
type Manager struct {
	rootDir        string
	retentionCount int
}

// Option configures a Manager.
type Option func(*Manager)

// WithBackupDir sets the root snapshot directory.
func WithBackupDir(dir string) Option {
	return func(m *Manager) {
		m.rootDir = dir
	}
}

// WithRetentionCount sets the number of snapshots retained per group.
func WithRetentionCount(n int) Option {
	return func(m *Manager) {
		if n > 0 {
			m.retentionCount = n
		}
	}
}

// NewManager creates a Manager storing snapshots under
// paths.BackupsDir() unless overridden.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		rootDir:        paths.BackupsDir(),
		retentionCount: DefaultRetentionCount,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// RetentionCount returns the configured per-group retention.
func (m *Manager) RetentionCount() int {
	return m.retentionCount
}

// Snapshot captures root (a file or a directory, recursively) into a
// new snapshot for the group. Every file is copied with its permissions
// and recorded with a SHA256 hash for integrity checking on restore.
func (m *Manager) Snapshot(group, root string) (*Manifest, error) {
	if group == "" {
		return nil, errors.New("group is required")
	}
	if root == "" {
		return nil, errors.New("root path is required")
	}

	info, err := os.Stat(root)
	if err != nil {
		return nil, errors.Wrapf(err, "stat %s", root)
	}

	backupID := time.Now().Format("20060102T150405")
	backupPath := m.backupPath(group, backupID)
	if err := os.MkdirAll(backupPath, 0o755); err != nil {
		return nil, errors.Wrap(err, "creating snapshot directory")
	}

	var files []File
	if info.IsDir() {
		files, err = m.snapshotDir(root, backupPath)
	} else {
		var f *File
		f, err = m.snapshotFile(root, filepath.Base(root), backupPath)
		if f != nil {
			files = []File{*f}
		}
	}
	if err != nil {
		os.RemoveAll(backupPath)
		return nil, errors.Wrapf(err, "snapshotting %s", root)
	}

	if len(files) == 0 {
		os.RemoveAll(backupPath)
		return nil, errors.Newf("nothing to snapshot under %s", root)
	}

	manifest := &Manifest{
		Version:    ManifestVersion,
		CreatedAt:  time.Now().UTC(),
		Group:      group,
		Root:       root,
		Files:      files,
		SWBVersion: Version,
		ID:         backupID,
	}

	manifestPath := filepath.Join(backupPath, "manifest.json")
	if err := fileutil.AtomicWriteJSON(manifestPath, manifest); err != nil {
		return nil, errors.Wrap(err, "writing manifest")
	}

	return manifest, nil
}

// snapshotDir captures every file under srcDir, storing them relative
// to srcDir inside the snapshot's content directory.
func (m *Manager) snapshotDir(srcDir, backupPath string) ([]File, error) {
	var files []File

	err := filepath.WalkDir(srcDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}

		rel, err := filepath.Rel(srcDir, path)
		if err != nil {
			return errors.Wrapf(err, "computing relative path for %s", path)
		}

		f, err := m.snapshotFile(path, rel, backupPath)
		if err != nil {
			return err
		}
		files = append(files, *f)
		return nil
	})

	return files, err
}

// snapshotFile copies one file into the snapshot's content directory.
func (m *Manager) snapshotFile(src, relPath, backupPath string) (*File, error) {
	dst := filepath.Join(backupPath, "content", relPath)
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return nil, errors.Wrap(err, "creating parent directory")
	}

	hash, mode, err := copyFile(src, dst)
	if err != nil {
		return nil, err
	}

	return &File{
		OriginalPath: src,
		RelPath:      filepath.ToSlash(filepath.Join("content", relPath)),
		SHA256Hash:   hash,
		Mode:         mode,
	}, nil
}

// Restore copies every file of a snapshot back to its original
// location. Each file's hash is verified before anything is written; a
// corrupted snapshot restores nothing.
func (m *Manager) Restore(group, backupID string) error {
	manifest, err := m.Get(group, backupID)
	if err != nil {
		return err
	}

	backupPath := m.backupPath(group, backupID)

	// Verify the whole snapshot first so a corrupt file cannot leave a
	// half-restored tree behind.
	for _, f := range manifest.Files {
		srcPath := filepath.Join(backupPath, filepath.FromSlash(f.RelPath))
		hash, err := hashFile(srcPath)
		if err != nil {
			return errors.Wrapf(err, "reading snapshot file %s", f.RelPath)
		}
		if hash != f.SHA256Hash {
			return errors.Wrapf(ErrBackupCorrupted, "file %s hash mismatch", f.RelPath)
		}
	}

	for _, f := range manifest.Files {
		srcPath := filepath.Join(backupPath, filepath.FromSlash(f.RelPath))

		if err := os.MkdirAll(filepath.Dir(f.OriginalPath), 0o755); err != nil {
			return errors.Wrapf(err, "creating directory for %s", f.OriginalPath)
		}
		if _, _, err := copyFile(srcPath, f.OriginalPath); err != nil {
			return errors.Wrapf(err, "restoring %s", f.OriginalPath)
		}
		if err := os.Chmod(f.OriginalPath, f.Mode); err != nil {
			return errors.Wrapf(err, "setting permissions for %s", f.OriginalPath)
		}
	}

	return nil
}

// List returns all snapshots for a group, newest first.
func (m *Manager) List(group string) ([]Manifest, error) {
	if group == "" {
		return nil, errors.New("group is required")
	}

	groupDir := filepath.Join(m.rootDir, group)
	entries, err := os.ReadDir(groupDir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrNoBackupsFound
		}
		return nil, errors.Wrap(err, "reading snapshot directory")
	}

	manifests := make([]Manifest, 0, len(entries))
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		manifest, err := m.Get(group, entry.Name())
		if err != nil {
			// Skip directories without a readable manifest.
			continue
		}
		manifests = append(manifests, *manifest)
	}

	if len(manifests) == 0 {
		return nil, ErrNoBackupsFound
	}

	slices.SortFunc(manifests, func(a, b Manifest) int {
		return b.CreatedAt.Compare(a.CreatedAt)
	})
	return manifests, nil
}

// Groups returns the group names that have at least one snapshot.
func (m *Manager) Groups() ([]string, error) {
	entries, err := os.ReadDir(m.rootDir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, errors.Wrap(err, "reading backup root")
	}

	var groups []string
	for _, entry := range entries {
		if entry.IsDir() {
			groups = append(groups, entry.Name())
		}
	}
	return groups, nil
}

// Prune removes snapshots beyond the newest 'keep' for the group.
func (m *Manager) Prune(group string, keep int) error {
	if keep < 0 {
		return errors.New("keep must be non-negative")
	}

	manifests, err := m.List(group)
	if err != nil {
		if errors.Is(err, ErrNoBackupsFound) {
			return nil
		}
		return err
	}

	for i := keep; i < len(manifests); i++ {
		backupPath := m.backupPath(group, manifests[i].ID)
		if err := os.RemoveAll(backupPath); err != nil {
			return errors.Wrapf(err, "removing snapshot %s", manifests[i].ID)
		}
	}
	return nil
}

// Get returns the manifest for one snapshot.
func (m *Manager) Get(group, backupID string) (*Manifest, error) {
	if group == "" {
		return nil, errors.New("group is required")
	}
	if backupID == "" {
		return nil, errors.New("backup ID is required")
	}

	manifestPath := filepath.Join(m.backupPath(group, backupID), "manifest.json")
	data, err := os.ReadFile(manifestPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.Wrapf(ErrNoBackupsFound, "snapshot %s not found", backupID)
		}
		return nil, errors.Wrap(err, "reading manifest")
	}

	var manifest Manifest
	if err := json.Unmarshal(data, &manifest); err != nil {
		return nil, errors.Wrap(err, "parsing manifest")
	}
	manifest.ID = backupID
	return &manifest, nil
}

// backupPath returns the directory holding one snapshot.
func (m *Manager) backupPath(group, backupID string) string {
	return filepath.Join(m.rootDir, group, backupID)
}

// hashFile computes the SHA256 hash of a file.
func hashFile(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", errors.Wrap(err, "opening file")
	}
	defer f.Close()

	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", errors.Wrap(err, "reading file")
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

// copyFile copies src to dst, returning the content hash and source
// mode. The destination ends up with the source's permissions.
func copyFile(src, dst string) (hash string, mode fs.FileMode, err error) {
	srcFile, err := os.Open(src)
	if err != nil {
		return "", 0, errors.Wrap(err, "opening source file")
	}
	defer srcFile.Close()

	srcInfo, err := srcFile.Stat()
	if err != nil {
		return "", 0, errors.Wrap(err, "stat source file")
	}
	mode = srcInfo.Mode()

	dstFile, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o644)
	if err != nil {
		return "", 0, errors.Wrap(err, "creating destination file")
	}

	h := sha256.New()
	w := io.MultiWriter(dstFile, h)
	if _, err := io.Copy(w, srcFile); err != nil {
		dstFile.Close()
		return "", 0, errors.Wrap(err, "copying file")
	}
	if err := dstFile.Close(); err != nil {
		return "", 0, errors.Wrap(err, "closing destination file")
	}

	if err := os.Chmod(dst, mode.Perm()); err != nil {
		return "", 0, errors.Wrap(err, "setting permissions")
	}
	return hex.EncodeToString(h.Sum(nil)), mode, nil
}
