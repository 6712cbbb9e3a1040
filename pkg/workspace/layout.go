// Package workspace manages the dataset and scratch directories of a run.
package workspace

import (
	"os"
	"path/filepath"

	"github.com/glorpus-work/digipathos/pkg/errors"
	"github.com/glorpus-work/digipathos/pkg/fsutil"
)

// Default directory names, relative to the working directory.
const (
	DefaultDatasetDir = "plant-disease-db"
	DefaultScratchDir = "tmp"
)

// Layout describes where extracted classes and downloaded archives live.
type Layout struct {
	DatasetDir string // one subdirectory per extracted archive
	ScratchDir string // downloaded archives until cleanup
}

// NewLayout returns a layout, substituting the defaults for empty paths.
func NewLayout(datasetDir, scratchDir string) Layout {
	if datasetDir == "" {
		datasetDir = DefaultDatasetDir
	}
	if scratchDir == "" {
		scratchDir = DefaultScratchDir
	}
	return Layout{DatasetDir: datasetDir, ScratchDir: scratchDir}
}

// Validate checks the layout without touching the filesystem.
func (l Layout) Validate() error {
	if l.DatasetDir == "" || l.ScratchDir == "" {
		return errors.Wrap(errors.ErrInvalidPath, "dataset and scratch directories must be set")
	}
	if samePath(l.DatasetDir, l.ScratchDir) {
		return errors.Wrapf(errors.ErrSameDirectory, "%s", l.DatasetDir)
	}
	return nil
}

// Create validates the layout and then creates the dataset and scratch directories,
// in that order. Neither may exist yet.
func (l Layout) Create() error {
	if err := l.Validate(); err != nil {
		return err
	}
	if err := fsutil.CreateDir(l.DatasetDir); err != nil {
		return errors.Wrap(err, "dataset directory")
	}
	if err := fsutil.CreateDir(l.ScratchDir); err != nil {
		return errors.Wrap(err, "scratch directory")
	}
	return nil
}

// RemoveScratch recursively deletes the scratch directory.
func (l Layout) RemoveScratch() error {
	if err := os.RemoveAll(l.ScratchDir); err != nil {
		return errors.Wrapf(err, "failed to remove scratch directory %s", l.ScratchDir)
	}
	return nil
}

func samePath(a, b string) bool {
	a, b = filepath.Clean(a), filepath.Clean(b)
	if a == b {
		return true
	}
	absA, errA := filepath.Abs(a)
	absB, errB := filepath.Abs(b)
	return errA == nil && errB == nil && absA == absB
}
