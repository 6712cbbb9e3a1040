//go:generate mockgen -destination=./mocks/orchestrator.go . CatalogFetcher,Downloader,Validator,Extractor,ScriptRunner

package orchestrator

import (
	"context"

	"github.com/glorpus-work/digipathos/pkg/archive"
	"github.com/glorpus-work/digipathos/pkg/catalog"
	"github.com/glorpus-work/digipathos/pkg/download"
	"github.com/glorpus-work/digipathos/pkg/hooks"
	"github.com/glorpus-work/digipathos/pkg/verify"
	"github.com/glorpus-work/digipathos/pkg/workspace"
)

// CatalogFetcher retrieves the filtered archive listing.
type CatalogFetcher interface {
	Fetch(ctx context.Context, nameFilter string) (catalog.Catalog, error)
}

// Downloader handles archive downloading.
type Downloader interface {
	FetchAll(ctx context.Context, items []download.Item, opts download.Options) []string
}

// Validator checks the scratch directory after downloading.
type Validator interface {
	Validate(expected int, dir string) (*verify.Report, error)
}

// Extractor unpacks every archive of the scratch directory.
type Extractor interface {
	UnpackAll(ctx context.Context, scratchDir, datasetDir string, progress archive.ProgressFunc) (archive.UnpackResult, error)
}

// ScriptRunner executes user hook scripts.
type ScriptRunner interface {
	Execute(ctx context.Context, hookType hooks.HookType, hc hooks.HookContext) error
}

// Orchestrator ties the catalog, download, validation and extraction steps together.
type Orchestrator struct {
	Catalog   CatalogFetcher
	DL        Downloader
	Validator Validator
	Extractor Extractor
	Scripts   ScriptRunner // optional
	Hooks     Hooks        // Hooks for progress and event notifications
}

// Pipeline phases reported through Event.Phase.
const (
	PhasePreparing   = "preparing"
	PhaseFetching    = "fetching"
	PhaseDownloading = "downloading"
	PhaseValidating  = "validating"
	PhaseExtracting  = "extracting"
	PhaseHooks       = "hooks"
	PhaseCleanup     = "cleanup"
	PhaseDone        = "done"
	PhaseError       = "error"
)

// Event represents a simple progress notification.
type Event struct {
	Phase string
	ID    string // archive name, when the event concerns one item
	Msg   string
	Index int // 1-based position within the phase, 0 for phase-level events
	Total int
	Err   error
}

// Hooks carries callbacks for progress events.
type Hooks struct {
	OnEvent func(Event)
}

// Request describes which dataset to retrieve and where to put it.
type Request struct {
	Layout     workspace.Layout
	NameFilter string
}

// Options control orchestrator execution.
type Options struct {
	Concurrency int
	MaxAttempts int
}

// Report aggregates every non-fatal outcome of a run.
type Report struct {
	CatalogSize       int
	FailedDownloads   []string // fully-qualified URLs
	Validation        *verify.Report
	FailedExtractions []string // archive paths
	Dirs              []string // extracted class directories
	HookErrors        []error
}

// Failed reports whether any download or extraction failed.
func (r *Report) Failed() bool {
	return len(r.FailedDownloads) > 0 || len(r.FailedExtractions) > 0
}
