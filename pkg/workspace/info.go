package workspace

import (
	"os"

	"github.com/glorpus-work/digipathos/pkg/errors"
	"github.com/glorpus-work/digipathos/pkg/fsutil"
)

// Info represents the on-disk state of a layout.
type Info struct {
	DatasetDir   string
	DatasetSize  int64
	DatasetFiles int
	Classes      int
	ScratchDir   string
	ScratchSize  int64
	ScratchFiles int
	TotalSize    int64
}

// CleanResult contains information about what was cleaned.
type CleanResult struct {
	Removed    bool
	TotalFreed int64
}

// Info reports sizes and file counts of both directories. Missing directories count as empty.
func (l Layout) Info() (*Info, error) {
	info := &Info{DatasetDir: l.DatasetDir, ScratchDir: l.ScratchDir}

	size, files, err := fsutil.DirSizeAndFiles(l.DatasetDir)
	if err != nil {
		return nil, errors.Wrap(err, "failed to get dataset info")
	}
	info.DatasetSize, info.DatasetFiles = size, files

	entries, err := os.ReadDir(l.DatasetDir)
	if err != nil && !os.IsNotExist(err) {
		return nil, errors.Wrap(err, "failed to list dataset directory")
	}
	for _, e := range entries {
		if e.IsDir() {
			info.Classes++
		}
	}

	size, files, err = fsutil.DirSizeAndFiles(l.ScratchDir)
	if err != nil {
		return nil, errors.Wrap(err, "failed to get scratch info")
	}
	info.ScratchSize, info.ScratchFiles = size, files

	info.TotalSize = info.DatasetSize + info.ScratchSize
	return info, nil
}

// Clean removes the scratch directory and returns the bytes freed.
// A missing scratch directory is not an error.
func (l Layout) Clean() (*CleanResult, error) {
	if _, err := os.Stat(l.ScratchDir); os.IsNotExist(err) {
		return &CleanResult{}, nil
	}

	size, _, err := fsutil.DirSizeAndFiles(l.ScratchDir)
	if err != nil {
		return nil, err
	}
	if err := l.RemoveScratch(); err != nil {
		return nil, err
	}
	return &CleanResult{Removed: true, TotalFreed: size}, nil
}
