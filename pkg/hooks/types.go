package hooks

import "context"

// HookType represents the type of hooks.
type HookType string

// Supported hooks types.
const (
	// PostExtract runs once for every archive that was extracted successfully.
	PostExtract HookType = "post-extract"
	// PostDataset runs once at the end of a run, before the scratch directory is removed.
	PostDataset HookType = "post-dataset"
)

// Types lists the supported hook types in execution order.
var Types = []HookType{PostExtract, PostDataset}

// Valid reports whether t is a supported hook type.
func (t HookType) Valid() bool {
	for _, known := range Types {
		if t == known {
			return true
		}
	}
	return false
}

// Hook represents a hooks script with its type and content.
type Hook struct {
	Type    HookType
	Content string
}

// HookContext contains information passed to hooks.
// Fields that do not apply to a hook type are empty.
type HookContext struct {
	ArchiveName string // file name of the archive in the scratch directory
	ArchivePath string
	ClassDir    string // directory the archive was extracted to
	DatasetDir  string
	ScratchDir  string
	Classes     []string // post-dataset: all extracted class directories
	Failed      []string // post-dataset: failure markers of the run
	Vars        map[string]interface{}
}

// HookManager defines the interface for managing hooks.
type HookManager interface {
	// Execute runs the specified hooks type with the given context
	Execute(ctx context.Context, hookType HookType, hc HookContext) error

	// AddHook adds a new hooks
	AddHook(hook Hook) error

	// RemoveHook removes a hooks of the specified type
	RemoveHook(hookType HookType) error

	// HasHook checks if a hooks of the specified type exists
	HasHook(hookType HookType) bool
}
