// Package fs provides file system implementations of the content reader
// and of a corpus searcher over bibliography files.
package fs

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/fwojciec/webcite"
)

// Ensure Reader implements webcite.ContentReader at compile time.
var _ webcite.ContentReader = (*Reader)(nil)

// Reader reads pre-fetched page content from local files.
type Reader struct{}

// NewReader creates a new Reader.
func NewReader() *Reader {
	return &Reader{}
}

// Read returns the content of the file at path. A leading "~/" is
// expanded to the user's home directory.
// Returns ENOTFOUND if the file does not exist.
func (r *Reader) Read(ctx context.Context, path string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	path, err := ExpandHome(path)
	if err != nil {
		return "", err
	}
	b, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return "", webcite.Errorf(webcite.ENOTFOUND, "file %s not found", path)
	} else if err != nil {
		return "", err
	}
	return string(b), nil
}

// ExpandHome replaces a leading "~" path element with the user's home
// directory.
func ExpandHome(path string) (string, error) {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~")), nil
}
