package cli

import (
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/glorpus-work/digipathos/internal/logger"
	"github.com/spf13/cobra"
)

// NewCleanCmd creates the clean command.
func NewCleanCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "clean",
		Short: "Remove the scratch directory",
		Long:  "Remove the scratch directory and every archive left in it",
		Args:  cobra.NoArgs,
		RunE:  runClean,
	}

	return cmd
}

func runClean(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	layout := cfg.Settings.Layout()
	if err := layout.Validate(); err != nil {
		return err
	}

	result, err := layout.Clean()
	if err != nil {
		return fmt.Errorf("failed to clean scratch directory: %w", err)
	}

	if !result.Removed {
		logger.Infof("Nothing to clean, %s does not exist", layout.ScratchDir)
		return nil
	}
	_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Removed %s, freed %s\n", layout.ScratchDir, humanize.Bytes(uint64(result.TotalFreed)))
	return nil
}
