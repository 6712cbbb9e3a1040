// Package archive extracts downloaded dataset archives into per-class directories and builds ZIP files.
package archive

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/glorpus-work/digipathos/internal/logger"
	pkgerrors "github.com/glorpus-work/digipathos/pkg/errors"
	"github.com/glorpus-work/digipathos/pkg/fsutil"
	"github.com/mholt/archives"
)

// Error describes an archive that could not be extracted.
type Error struct {
	Archive string // path of the archive inside the scratch directory
	Err     error
}

func (e *Error) Error() string {
	return fmt.Sprintf("extract %s: %v", e.Archive, e.Err)
}

// Unwrap exposes both ErrExtractFailed and the underlying cause.
func (e *Error) Unwrap() []error {
	return []error{pkgerrors.ErrExtractFailed, e.Err}
}

// UnpackResult aggregates the outcome of UnpackAll.
type UnpackResult struct {
	Dirs   []string // class directories that were fully extracted
	Failed []string // archive paths that could not be extracted
}

// ProgressFunc is called once per archive after it was processed. err is nil on success.
type ProgressFunc func(archivePath string, err error)

// Manager handles archive extraction and creation operations.
type Manager struct{}

// NewManager creates a new Manager instance.
func NewManager() *Manager {
	return &Manager{}
}

// ClassDirName returns the directory name an archive is extracted to: the file name
// without its final extension. A name without an extension is kept as is.
func ClassDirName(filename string) (string, error) {
	name := strings.TrimSuffix(filename, filepath.Ext(filename))
	if name == "" || name == "." || name == ".." {
		return "", fmt.Errorf("cannot derive a directory name from %q: %w", filename, pkgerrors.ErrInvalidPath)
	}
	return name, nil
}

// Unpack extracts scratchDir/filename into a new directory below datasetDir.
// The target directory must not exist yet. Every failure is returned as an *Error.
func (am *Manager) Unpack(ctx context.Context, filename, datasetDir, scratchDir string) error {
	_, err := am.unpack(ctx, filename, datasetDir, scratchDir)
	return err
}

func (am *Manager) unpack(ctx context.Context, filename, datasetDir, scratchDir string) (string, error) {
	archivePath := filepath.Join(scratchDir, filename)

	className, err := ClassDirName(filename)
	if err != nil {
		return "", &Error{Archive: archivePath, Err: err}
	}
	target := filepath.Join(datasetDir, className)
	if err := fsutil.CreateDir(target); err != nil {
		return "", &Error{Archive: archivePath, Err: err}
	}
	if err := am.ExtractAll(ctx, archivePath, target); err != nil {
		return "", &Error{Archive: archivePath, Err: err}
	}
	return target, nil
}

// UnpackAll extracts every file of scratchDir in name order and aggregates the failures.
// The returned error is non-nil only if scratchDir cannot be listed.
func (am *Manager) UnpackAll(ctx context.Context, scratchDir, datasetDir string, progress ProgressFunc) (UnpackResult, error) {
	var result UnpackResult

	files, err := fsutil.ListFiles(scratchDir)
	if err != nil {
		return result, err
	}

	for _, name := range files {
		dir, err := am.unpack(ctx, name, datasetDir, scratchDir)
		if err != nil {
			var archivePath string
			if aErr, ok := err.(*Error); ok {
				archivePath = aErr.Archive
			}
			logger.Error("Failed to extract archive", logger.Fields{
				"archive": archivePath,
				"error":   err.Error(),
			})
			result.Failed = append(result.Failed, archivePath)
		} else {
			logger.Debug("Extracted archive", logger.Fields{"archive": name, "dir": dir})
			result.Dirs = append(result.Dirs, dir)
		}
		if progress != nil {
			progress(filepath.Join(scratchDir, name), err)
		}
	}
	return result, nil
}

// ExtractAll extracts all entries of the ZIP archive at archivePath below destDir.
// Entries that would be written outside destDir are rejected.
func (am *Manager) ExtractAll(ctx context.Context, archivePath, destDir string) error {
	file, err := os.Open(archivePath)
	if err != nil {
		return fmt.Errorf("failed to open archive file: %w", err)
	}
	defer func() { _ = file.Close() }()

	if err := fsutil.EnsureDir(destDir); err != nil {
		return fmt.Errorf("failed to create destination directory: %w", err)
	}

	root, err := filepath.Abs(destDir)
	if err != nil {
		return fmt.Errorf("failed to get absolute path for destination directory: %w", err)
	}

	err = archives.Zip{}.Extract(ctx, file, func(ctx context.Context, f archives.FileInfo) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		return am.extractEntry(root, f)
	})
	if err != nil {
		return fmt.Errorf("failed to extract archive: %w", err)
	}
	return nil
}

// Create writes a ZIP archive of the contents of sourceDir to archivePath.
func (am *Manager) Create(ctx context.Context, sourceDir, archivePath string) error {
	absolutePath, err := filepath.Abs(sourceDir)
	if err != nil {
		return fmt.Errorf("failed to get absolute path for source directory: %w", err)
	}

	archiveFiles, err := archives.FilesFromDisk(ctx, nil, map[string]string{
		absolutePath + string(os.PathSeparator): "",
	})
	if err != nil {
		return fmt.Errorf("failed to read files from disk: %w", err)
	}

	file, err := os.Create(archivePath)
	if err != nil {
		return fmt.Errorf("failed to create output file %s: %w", archivePath, err)
	}
	defer func() {
		_ = file.Sync()
		_ = file.Close()
	}()

	if err := (archives.Zip{}).Archive(ctx, file, archiveFiles); err != nil {
		return fmt.Errorf("failed to create archive: %w", err)
	}
	return nil
}

// targetPath maps an entry name to a path below root, rejecting escapes.
func targetPath(root, name string) (string, error) {
	target := filepath.Join(root, filepath.FromSlash(name))
	rel, err := filepath.Rel(root, target)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(os.PathSeparator)) {
		return "", fmt.Errorf("entry %q escapes the destination directory: %w", name, pkgerrors.ErrInvalidPath)
	}
	return target, nil
}

// extractEntry writes a single archive entry below root.
func (am *Manager) extractEntry(root string, f archives.FileInfo) error {
	target, err := targetPath(root, f.NameInArchive)
	if err != nil {
		return err
	}

	if f.IsDir() {
		return fsutil.EnsureDir(target)
	}

	if f.Mode()&os.ModeSymlink != 0 {
		return am.writeSymlink(root, target, f)
	}

	return am.writeRegularFile(target, f)
}

// writeSymlink creates a symlink whose target must stay inside root.
func (am *Manager) writeSymlink(root, target string, f archives.FileInfo) error {
	link := f.LinkTarget
	resolved := link
	if !filepath.IsAbs(link) {
		resolved = filepath.Join(filepath.Dir(target), link)
	}
	if _, err := targetPath(root, relSlash(root, resolved)); err != nil {
		return fmt.Errorf("symlink %s: %w", f.NameInArchive, err)
	}

	if err := fsutil.EnsureDir(filepath.Dir(target)); err != nil {
		return fmt.Errorf("failed to create parent directory for symlink %s: %w", f.NameInArchive, err)
	}
	_ = os.Remove(target)
	return os.Symlink(link, target)
}

func relSlash(root, path string) string {
	rel, err := filepath.Rel(root, path)
	if err != nil {
		return ".."
	}
	return filepath.ToSlash(rel)
}

// writeRegularFile copies an archive entry to target and preserves its mode and mtime.
func (am *Manager) writeRegularFile(target string, f archives.FileInfo) error {
	src, err := f.Open()
	if err != nil {
		return fmt.Errorf("failed to open archive entry %s: %w", f.NameInArchive, err)
	}
	defer func() { _ = src.Close() }()

	if err := fsutil.EnsureDir(filepath.Dir(target)); err != nil {
		return fmt.Errorf("failed to create parent directory for %s: %w", f.NameInArchive, err)
	}

	perm := f.Mode().Perm()
	if perm == 0 {
		perm = fsutil.FileModeDefault
	}
	dst, err := fsutil.CreateFilePerm(target, perm)
	if err != nil {
		return fmt.Errorf("failed to create destination file %s: %w", target, err)
	}
	defer func() { _ = dst.Close() }()

	if _, err := io.Copy(dst, src); err != nil {
		return fmt.Errorf("failed to copy file %s: %w", f.NameInArchive, err)
	}
	if err := os.Chtimes(target, f.ModTime(), f.ModTime()); err != nil {
		return fmt.Errorf("failed to set modification time for %s: %w", target, err)
	}
	return nil
}
