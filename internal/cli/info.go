package cli

import (
	"encoding/json"
	"fmt"
	"text/tabwriter"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
)

// NewInfoCmd creates the info command.
func NewInfoCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "info",
		Short: "Show dataset and scratch directory usage",
		Long:  "Display size and file counts of the dataset and scratch directories",
		Args:  cobra.NoArgs,
		RunE:  runInfo,
	}

	return cmd
}

func runInfo(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	info, err := cfg.Settings.Layout().Info()
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if isJSON(cfg) {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(map[string]any{
			"dataset_dir":   info.DatasetDir,
			"dataset_size":  info.DatasetSize,
			"dataset_files": info.DatasetFiles,
			"classes":       info.Classes,
			"scratch_dir":   info.ScratchDir,
			"scratch_size":  info.ScratchSize,
			"scratch_files": info.ScratchFiles,
			"total_size":    info.TotalSize,
		})
	}

	tabWriter := tabwriter.NewWriter(out, 0, 0, TabWidth, ' ', 0)
	_, _ = fmt.Fprintln(tabWriter, "DIRECTORY\tPATH\tSIZE\tFILES")
	_, _ = fmt.Fprintln(tabWriter, "---------\t----\t----\t-----")
	_, _ = fmt.Fprintf(tabWriter, "dataset\t%s\t%s\t%d\n", info.DatasetDir, humanize.Bytes(uint64(info.DatasetSize)), info.DatasetFiles)
	_, _ = fmt.Fprintf(tabWriter, "scratch\t%s\t%s\t%d\n", info.ScratchDir, humanize.Bytes(uint64(info.ScratchSize)), info.ScratchFiles)
	_ = tabWriter.Flush()

	_, _ = fmt.Fprintf(out, "\nClasses: %d\n", info.Classes)
	_, _ = fmt.Fprintf(out, "Total:   %s\n", humanize.Bytes(uint64(info.TotalSize)))
	return nil
}
