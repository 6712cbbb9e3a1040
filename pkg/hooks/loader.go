package hooks

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/glorpus-work/digipathos/pkg/errors"
)

// HookFileExtension is the extension of hook scripts found by LoadFromDir.
const HookFileExtension = ".tengo"

// LoadFromFiles registers one script file per hook type. Empty paths are skipped.
func LoadFromFiles(manager HookManager, paths map[HookType]string) error {
	for _, hookType := range Types {
		path := paths[hookType]
		if path == "" {
			continue
		}
		if err := loadFile(manager, hookType, path); err != nil {
			return err
		}
	}
	return nil
}

// LoadFromDir registers <dir>/<hook-type>.tengo for every known hook type present.
// A missing directory is not an error.
func LoadFromDir(manager HookManager, dir string) error {
	entries, err := os.ReadDir(dir)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return errors.Wrapf(errors.ErrHookLoad, "failed to read hooks directory %s: %v", dir, err)
	}

	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != HookFileExtension {
			continue
		}
		hookType := HookType(strings.TrimSuffix(entry.Name(), HookFileExtension))
		if !hookType.Valid() {
			continue
		}
		if err := loadFile(manager, hookType, filepath.Join(dir, entry.Name())); err != nil {
			return err
		}
	}
	return nil
}

func loadFile(manager HookManager, hookType HookType, path string) error {
	content, err := os.ReadFile(path)
	if err != nil {
		return errors.Wrapf(errors.ErrHookLoad, "error reading hooks file %s: %v", path, err)
	}
	if err := manager.AddHook(Hook{Type: hookType, Content: string(content)}); err != nil {
		return errors.Wrapf(err, "error adding hook %s", hookType)
	}
	return nil
}

// HookTemplate generates a template for a hooks script.
func HookTemplate(hookType HookType) string {
	switch hookType {
	case PostExtract:
		return `// Post-extract hook
// This script runs after an archive was extracted into its class directory
// Available variables:
// - archiveName: string - file name of the archive
// - archivePath: string - path of the archive in the scratch directory
// - classDir: string - directory the archive was extracted to
// - datasetDir: string - dataset root directory
// - vars: map - custom variables passed to the hook
// Assign a non-empty string to err to report a failure.

// Example: Fail if the class directory is missing
/*
os := import("os")
if is_error(os.stat(classDir)) {
    err = "class directory missing: " + classDir
}
*/`

	case PostDataset:
		return `// Post-dataset hook
// This script runs once after all archives were processed
// Available variables:
// - datasetDir: string - dataset root directory
// - scratchDir: string - scratch directory, removed after this hook
// - classes: array - extracted class directories
// - failed: array - failure markers of the run
// - vars: map - custom variables passed to the hook

// Example: Print a summary
/*
fmt := import("fmt")
fmt.println(len(classes), " classes extracted, ", len(failed), " failures")
*/`

	default:
		return "// Unknown hooks type: " + string(hookType)
	}
}
