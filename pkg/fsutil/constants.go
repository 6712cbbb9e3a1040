// Package fsutil provides utility functions and constants for file system operations.
package fsutil

// File and directory permission constants.
const (
	// Default file modes.
	FileModeDefault = 0o644 // -rw-r--r--
	FileModeSecure  = 0o640 // -rw-r-----

	// Default directory modes.
	DirModeDefault = 0o755 // drwxr-xr-x
)
