package cli

import (
	"encoding/json"
	"fmt"

	"github.com/fatih/color"
	"github.com/glorpus-work/digipathos/pkg/verify"
	"github.com/spf13/cobra"
)

// NewValidateCmd creates the validate command.
func NewValidateCmd() *cobra.Command {
	var expected int

	cmd := &cobra.Command{
		Use:   "validate [DIR]",
		Short: "Check downloaded archives against the catalog",
		Long: `Count the files of DIR (the scratch directory by default) and report
zero-byte files. Without --expected the catalog is fetched to learn the
expected number of archives. Files are never deleted.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(cmd, args, expected)
		},
	}

	cmd.Flags().IntVar(&expected, "expected", expectedFromCatalog, "Expected number of archives")

	return cmd
}

func runValidate(cmd *cobra.Command, args []string, expected int) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	dir := cfg.Settings.ScratchDir
	if len(args) > 0 {
		dir = args[0]
	}

	if expected < 0 {
		entries, err := loadCatalogClient(cfg).Fetch(cmd.Context(), cfg.Settings.NameFilter)
		if err != nil {
			return err
		}
		expected = len(entries)
	}

	report, err := verify.Downloads(expected, dir)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if isJSON(cfg) {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(report)
	}

	_, _ = fmt.Fprintf(out, "%s: %d files, %d expected\n", dir, report.Actual, report.Expected)
	for _, name := range report.ZeroByte {
		_, _ = color.New(color.FgYellow).Fprintf(out, "Warning: %s has a size of 0 bytes.\n", name)
	}
	if report.OK() {
		_, _ = color.New(color.FgGreen).Fprintln(out, "Downloads look complete.")
	} else if report.CountMismatch() {
		_, _ = color.New(color.FgYellow).Fprintln(out, "Warning: the number of files differs from the expected count.")
	}
	return nil
}
