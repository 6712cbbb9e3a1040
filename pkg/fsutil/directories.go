package fsutil

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/glorpus-work/digipathos/pkg/errors"
)

// CreateDir creates a single directory with default permissions.
// Unlike EnsureDir it does not create parents and fails when the path already exists,
// so callers can detect a non-empty workspace. The returned error carries the path.
func CreateDir(path string) error {
	if err := os.Mkdir(path, DirModeDefault); err != nil {
		return fmt.Errorf("%w %s: %w", errors.ErrCreateDir, path, err)
	}
	return nil
}

// EnsureDir creates a directory and all necessary parent directories if they don't exist.
func EnsureDir(path string) error {
	return os.MkdirAll(path, DirModeDefault)
}

// ListFiles returns the names of the non-directory entries of dir, sorted by name.
func ListFiles(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to list directory %s", dir)
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		names = append(names, e.Name())
	}
	sort.Strings(names)
	return names, nil
}

// DirSizeAndFiles calculates the total size and number of regular files below dir.
// A missing directory is reported as empty.
func DirSizeAndFiles(dir string) (size int64, count int, err error) {
	if _, err = os.Stat(dir); os.IsNotExist(err) {
		return 0, 0, nil
	}

	err = filepath.Walk(dir, func(_ string, info os.FileInfo, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if !info.IsDir() {
			size += info.Size()
			count++
		}
		return nil
	})
	if err != nil {
		err = errors.Wrapf(err, "error walking directory %s", dir)
	}
	return size, count, err
}
