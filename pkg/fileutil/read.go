package fileutil

import (
	"io"
	"os"

	"github.com/cockroachdb/errors"
)

// MaxFileSize is the maximum file size we'll read (1MB). All corpus
// documents and assistant config files are far below this; anything
// larger is treated as corrupt.
const MaxFileSize = 1024 * 1024

// ErrFileTooLarge indicates that a file exceeded MaxFileSize.
var ErrFileTooLarge = errors.Newf("file exceeds maximum size of %d bytes", MaxFileSize)

// ReadFileWithLimit reads a file up to MaxFileSize.
// It returns ErrFileTooLarge if the file is larger than the limit.
func ReadFileWithLimit(path string) ([]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, "opening file")
	}
	defer f.Close()

	// Fail fast when the size is already known to be too large.
	if info, err := f.Stat(); err == nil {
		if info.Size() > MaxFileSize {
			return nil, ErrFileTooLarge
		}
	}

	r := io.LimitReader(f, MaxFileSize+1)
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, errors.Wrap(err, "reading file")
	}
	if len(data) > MaxFileSize {
		return nil, ErrFileTooLarge
	}

	return data, nil
}
