package cli

import (
	"fmt"
	"os"

	"github.com/glorpus-work/digipathos/internal/logger"
	"github.com/glorpus-work/digipathos/pkg/errors"
	"github.com/glorpus-work/digipathos/pkg/fsutil"
	"github.com/glorpus-work/digipathos/pkg/orchestrator"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"
)

type getOptions struct {
	datasetDir   string
	scratchDir   string
	filter       string
	concurrency  int
	maxAttempts  int
	allowPartial bool
	noProgress   bool
}

// NewGetCmd creates the get command, which runs the whole download pipeline.
func NewGetCmd() *cobra.Command {
	opts := &getOptions{}

	cmd := &cobra.Command{
		Use:   "get",
		Short: "Download and unpack the plant disease dataset",
		Long: `Fetch the archive catalog, download every archive with retries,
validate the downloads, unpack each archive into its own class directory
and remove the scratch directory.

The dataset directory must not exist yet.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runGet(cmd, opts)
		},
	}

	cmd.Flags().StringVar(&opts.datasetDir, "dataset-dir", "", "Directory receiving the class directories")
	cmd.Flags().StringVar(&opts.scratchDir, "scratch-dir", "", "Directory holding downloaded archives until cleanup")
	cmd.Flags().StringVar(&opts.filter, "filter", "", "Archive name filter: cropped, original or all")
	cmd.Flags().IntVarP(&opts.concurrency, "concurrency", "j", 0, "Number of parallel downloads")
	cmd.Flags().IntVar(&opts.maxAttempts, "max-attempts", 0, "Download attempts per archive")
	cmd.Flags().BoolVar(&opts.allowPartial, "allow-partial", false, "Exit successfully even if some archives failed")
	cmd.Flags().BoolVar(&opts.noProgress, "no-progress", false, "Log progress instead of drawing progress bars")

	return cmd
}

func runGet(cmd *cobra.Command, opts *getOptions) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	s := &cfg.Settings
	if opts.datasetDir != "" {
		s.DatasetDir = opts.datasetDir
	}
	if opts.scratchDir != "" {
		s.ScratchDir = opts.scratchDir
	}
	if opts.filter != "" {
		s.NameFilter = opts.filter
	}
	if opts.concurrency != 0 {
		s.Concurrency = opts.concurrency
	}
	if opts.maxAttempts != 0 {
		s.MaxAttempts = opts.maxAttempts
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	progress := newProgressRenderer(cmd.ErrOrStderr(), !opts.noProgress && !isJSON(cfg) && stderrIsTerminal())
	orch, err := loadOrchestrator(cfg, progress.OnEvent)
	if err != nil {
		return err
	}

	report, runErr := orch.GetDataset(cmd.Context(), orchestrator.Request{
		Layout:     s.Layout(),
		NameFilter: s.NameFilter,
	}, orchestrator.Options{
		Concurrency: s.Concurrency,
		MaxAttempts: s.MaxAttempts,
	})
	progress.Close()
	if report == nil {
		return runErr
	}

	size, _, sizeErr := fsutil.DirSizeAndFiles(s.DatasetDir)
	if sizeErr != nil {
		logger.Warn("Could not measure dataset directory", logger.Fields{"error": sizeErr.Error()})
	}
	summary := newRunSummary(s.DatasetDir, size, report)
	if isJSON(cfg) {
		if err := writeSummaryJSON(cmd.OutOrStdout(), summary); err != nil {
			return err
		}
	} else {
		writeSummaryText(cmd.OutOrStdout(), summary)
	}

	if runErr != nil {
		return fmt.Errorf("failed to remove scratch directory: %w", runErr)
	}
	if report.Failed() && !opts.allowPartial {
		return fmt.Errorf("%w: %d downloads and %d extractions failed",
			errors.ErrIncomplete, len(report.FailedDownloads), len(report.FailedExtractions))
	}
	return nil
}

func stderrIsTerminal() bool {
	fd := os.Stderr.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}
