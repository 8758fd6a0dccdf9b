package installer

import (
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/cockroachdb/errors"
)

const (
	installDirPerm  = 0o755
	installFilePerm = 0o644
)

// copyTree copies the subtree rooted at srcRoot within source onto
// destDir on disk. destDir is created if needed. Directories land with
// installDirPerm; files keep the source's permission bits when those
// carry owner write, and get installFilePerm otherwise (embedded
// filesystems stat every file read-only).
func copyTree(source fs.FS, srcRoot, destDir string) error {
	return fs.WalkDir(source, srcRoot, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return errors.Wrapf(err, "walking source %s", p)
		}

		rel := relativeTo(srcRoot, p)
		target := destDir
		if rel != "." {
			target = filepath.Join(destDir, filepath.FromSlash(rel))
		}

		if d.IsDir() {
			if err := os.MkdirAll(target, installDirPerm); err != nil {
				return errors.Wrapf(err, "creating directory %s", target)
			}
			// MkdirAll is subject to umask; pin the mode explicitly.
			if err := os.Chmod(target, installDirPerm); err != nil {
				return errors.Wrapf(err, "setting mode on %s", target)
			}
			return nil
		}
		return copyFile(source, p, target)
	})
}

// relativeTo strips root from a slash path produced by walking root.
func relativeTo(root, p string) string {
	if root == "." || p == root {
		if p == root {
			return "."
		}
		return p
	}
	return strings.TrimPrefix(p, root+"/")
}

// copyFile copies a single file out of the source filesystem.
func copyFile(source fs.FS, srcPath, target string) error {
	srcFile, err := source.Open(srcPath)
	if err != nil {
		return errors.Wrapf(err, "opening source file %s", srcPath)
	}
	defer srcFile.Close()

	mode := os.FileMode(installFilePerm)
	if info, err := srcFile.Stat(); err == nil {
		if perm := info.Mode().Perm(); perm&0o200 != 0 {
			mode = perm
		}
	}

	dstFile, err := os.OpenFile(target, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, mode)
	if err != nil {
		return errors.Wrapf(err, "creating destination file %s", target)
	}
	defer dstFile.Close()

	if err := dstFile.Chmod(mode); err != nil {
		return errors.Wrapf(err, "setting mode on %s", target)
	}
	if _, err := io.Copy(dstFile, srcFile); err != nil {
		return errors.Wrapf(err, "copying %s to %s", srcPath, target)
	}
	if err := dstFile.Close(); err != nil {
		return errors.Wrapf(err, "closing destination file %s", target)
	}
	return nil
}
