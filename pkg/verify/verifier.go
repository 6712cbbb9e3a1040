// Package verify checks a scratch directory of downloaded archives against the catalog it came from.
package verify

import (
	"os"
	"path/filepath"

	"github.com/glorpus-work/digipathos/internal/logger"
	"github.com/glorpus-work/digipathos/pkg/errors"
)

// Report is the outcome of a validation run. It is purely observational.
type Report struct {
	Expected int      `json:"expected"`
	Actual   int      `json:"actual"`
	ZeroByte []string `json:"zero_byte"` // paths of files with a size of exactly 0 bytes
}

// CountMismatch reports whether the directory holds a different number of files than expected.
func (r *Report) CountMismatch() bool {
	return r.Expected != r.Actual
}

// OK reports whether the count matches and no file is empty.
func (r *Report) OK() bool {
	return !r.CountMismatch() && len(r.ZeroByte) == 0
}

// Verifier validates download directories.
type Verifier struct{}

// NewVerifier creates a new Verifier instance.
func NewVerifier() *Verifier {
	return &Verifier{}
}

// Validate is the method form of Downloads.
func (v *Verifier) Validate(expected int, dir string) (*Report, error) {
	return Downloads(expected, dir)
}

// Downloads counts the non-directory entries of dir and collects the empty ones.
// Deviations are logged as warnings; nothing is deleted or retried.
// An error is returned only if dir cannot be listed.
func Downloads(expected int, dir string) (*Report, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to list download directory %s", dir)
	}

	report := &Report{Expected: expected}
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		report.Actual++

		path := filepath.Join(dir, entry.Name())
		info, err := entry.Info()
		if err != nil {
			// Vanished between listing and stat; count it but skip the size check.
			logger.Warn("Cannot stat downloaded file", logger.Fields{"path": path, "error": err.Error()})
			continue
		}
		if info.Size() == 0 {
			report.ZeroByte = append(report.ZeroByte, path)
		}
	}

	if report.CountMismatch() {
		logger.Warn("Number of downloaded files does not match the catalog", logger.Fields{
			"expected": report.Expected,
			"actual":   report.Actual,
			"dir":      dir,
		})
	}
	for _, path := range report.ZeroByte {
		logger.Warn("Downloaded file is empty", logger.Fields{"path": path})
	}
	return report, nil
}
