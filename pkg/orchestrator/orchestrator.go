package orchestrator

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/glorpus-work/digipathos/internal/logger"
	"github.com/glorpus-work/digipathos/pkg/archive"
	"github.com/glorpus-work/digipathos/pkg/download"
	"github.com/glorpus-work/digipathos/pkg/hooks"
)

func emit(h Hooks, e Event) {
	if h.OnEvent != nil {
		h.OnEvent(e)
	}
}

func (o *Orchestrator) check() error {
	switch {
	case o.Catalog == nil:
		return fmt.Errorf("catalog fetcher is not configured")
	case o.DL == nil:
		return fmt.Errorf("download manager is not configured")
	case o.Validator == nil:
		return fmt.Errorf("validator is not configured")
	case o.Extractor == nil:
		return fmt.Errorf("extractor is not configured")
	}
	return nil
}

// GetDataset provisions the layout, fetches the catalog, downloads every archive,
// validates the downloads, extracts them, runs the hooks and removes the scratch directory.
//
// Only provisioning and catalog retrieval abort the run. All later failures are collected
// in the report, and the run always ends with cleanup, whose error is returned with the report.
func (o *Orchestrator) GetDataset(ctx context.Context, req Request, opts Options) (*Report, error) {
	if err := o.check(); err != nil {
		return nil, err
	}
	layout := req.Layout

	emit(o.Hooks, Event{Phase: PhasePreparing, Msg: layout.DatasetDir})
	if err := layout.Create(); err != nil {
		emit(o.Hooks, Event{Phase: PhaseError, Err: err})
		return nil, err
	}

	emit(o.Hooks, Event{Phase: PhaseFetching, Msg: req.NameFilter})
	entries, err := o.Catalog.Fetch(ctx, req.NameFilter)
	if err != nil {
		emit(o.Hooks, Event{Phase: PhaseError, Err: err})
		return nil, err
	}
	report := &Report{CatalogSize: len(entries)}
	logger.Info("Fetched catalog", logger.Fields{"archives": len(entries), "filter": req.NameFilter})

	items := download.ItemsFromCatalog(entries)
	emit(o.Hooks, Event{Phase: PhaseDownloading, Total: len(items)})
	done := 0
	report.FailedDownloads = o.DL.FetchAll(ctx, items, download.Options{
		Dir:         layout.ScratchDir,
		MaxAttempts: opts.MaxAttempts,
		Concurrency: opts.Concurrency,
		Progress: func(_ int, item download.Item, err error) {
			done++
			emit(o.Hooks, Event{Phase: PhaseDownloading, ID: item.Name, Index: done, Total: len(items), Err: err})
		},
	})

	emit(o.Hooks, Event{Phase: PhaseValidating, Total: len(entries)})
	validation, err := o.Validator.Validate(len(entries), layout.ScratchDir)
	if err != nil {
		logger.Warn("Could not validate downloads", logger.Fields{"error": err.Error()})
	}
	report.Validation = validation

	o.extract(ctx, req, report)

	if o.Scripts != nil {
		emit(o.Hooks, Event{Phase: PhaseHooks, ID: string(hooks.PostDataset)})
		failed := append(append([]string(nil), report.FailedDownloads...), report.FailedExtractions...)
		o.runHook(ctx, report, hooks.PostDataset, hooks.HookContext{
			DatasetDir: layout.DatasetDir,
			ScratchDir: layout.ScratchDir,
			Classes:    report.Dirs,
			Failed:     failed,
		})
	}

	emit(o.Hooks, Event{Phase: PhaseCleanup, Msg: layout.ScratchDir})
	if err := layout.RemoveScratch(); err != nil {
		emit(o.Hooks, Event{Phase: PhaseError, Err: err})
		return report, err
	}

	emit(o.Hooks, Event{Phase: PhaseDone})
	return report, nil
}

func (o *Orchestrator) extract(ctx context.Context, req Request, report *Report) {
	layout := req.Layout
	total := report.CatalogSize - len(report.FailedDownloads)
	emit(o.Hooks, Event{Phase: PhaseExtracting, Total: total})

	done := 0
	result, err := o.Extractor.UnpackAll(ctx, layout.ScratchDir, layout.DatasetDir, func(archivePath string, err error) {
		done++
		name := filepath.Base(archivePath)
		emit(o.Hooks, Event{Phase: PhaseExtracting, ID: name, Index: done, Total: total, Err: err})
		if err != nil || o.Scripts == nil {
			return
		}
		className, nameErr := archive.ClassDirName(name)
		if nameErr != nil {
			return
		}
		o.runHook(ctx, report, hooks.PostExtract, hooks.HookContext{
			ArchiveName: name,
			ArchivePath: archivePath,
			ClassDir:    filepath.Join(layout.DatasetDir, className),
			DatasetDir:  layout.DatasetDir,
			ScratchDir:  layout.ScratchDir,
		})
	})
	if err != nil {
		logger.Error("Could not list scratch directory for extraction", logger.Fields{"error": err.Error()})
		report.FailedExtractions = append(report.FailedExtractions, layout.ScratchDir)
		return
	}
	report.Dirs = result.Dirs
	report.FailedExtractions = result.Failed
}

func (o *Orchestrator) runHook(ctx context.Context, report *Report, hookType hooks.HookType, hc hooks.HookContext) {
	if err := o.Scripts.Execute(ctx, hookType, hc); err != nil {
		logger.Warn("Hook failed", logger.Fields{"hook": string(hookType), "archive": hc.ArchiveName, "error": err.Error()})
		report.HookErrors = append(report.HookErrors, err)
	}
}
