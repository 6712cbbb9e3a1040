package cli

import (
	"fmt"
	"path/filepath"

	"github.com/fatih/color"
	"github.com/glorpus-work/digipathos/internal/logger"
	"github.com/glorpus-work/digipathos/pkg/archive"
	"github.com/glorpus-work/digipathos/pkg/errors"
	"github.com/glorpus-work/digipathos/pkg/fsutil"
	"github.com/spf13/cobra"
)

// NewUnpackCmd creates the unpack command.
func NewUnpackCmd() *cobra.Command {
	var keepScratch bool

	cmd := &cobra.Command{
		Use:   "unpack",
		Short: "Unpack already downloaded archives",
		Long:  "Extract every archive of the scratch directory into the dataset directory, then remove the scratch directory",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runUnpack(cmd, keepScratch)
		},
	}

	cmd.Flags().BoolVar(&keepScratch, "keep-scratch", false, "Keep the scratch directory after unpacking")

	return cmd
}

func runUnpack(cmd *cobra.Command, keepScratch bool) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	layout := cfg.Settings.Layout()
	if err := layout.Validate(); err != nil {
		return err
	}
	if err := fsutil.EnsureDir(layout.DatasetDir); err != nil {
		return fmt.Errorf("%w %s: %w", errors.ErrCreateDir, layout.DatasetDir, err)
	}

	result, err := archive.NewManager().UnpackAll(cmd.Context(), layout.ScratchDir, layout.DatasetDir,
		func(archivePath string, err error) {
			if err != nil {
				logger.Warn("Skipping archive", logger.Fields{"archive": filepath.Base(archivePath), "error": err.Error()})
				return
			}
			logger.Debug("Unpacked archive", logger.Fields{"archive": filepath.Base(archivePath)})
		})
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	_, _ = fmt.Fprintf(out, "Unpacked %d archives into %s\n", len(result.Dirs), layout.DatasetDir)
	for _, p := range result.Failed {
		_, _ = color.New(color.FgRed).Fprintf(out, "Failed: %s\n", p)
	}

	if !keepScratch {
		if err := layout.RemoveScratch(); err != nil {
			return err
		}
	}
	if len(result.Failed) > 0 {
		return fmt.Errorf("%w: %d extractions failed", errors.ErrIncomplete, len(result.Failed))
	}
	return nil
}
