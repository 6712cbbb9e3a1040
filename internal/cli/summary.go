package cli

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/dustin/go-humanize"
	"github.com/fatih/color"
	"github.com/glorpus-work/digipathos/pkg/orchestrator"
)

// runSummary is the JSON form of a pipeline report.
type runSummary struct {
	DatasetDir        string   `json:"dataset_dir"`
	Archives          int      `json:"archives"`
	Extracted         int      `json:"extracted"`
	DatasetSize       int64    `json:"dataset_size"`
	FailedDownloads   []string `json:"failed_downloads"`
	FailedExtractions []string `json:"failed_extractions"`
	ZeroByte          []string `json:"zero_byte,omitempty"`
	CountMismatch     bool     `json:"count_mismatch"`
	HookErrors        []string `json:"hook_errors,omitempty"`
}

func newRunSummary(datasetDir string, size int64, report *orchestrator.Report) runSummary {
	s := runSummary{
		DatasetDir:        datasetDir,
		Archives:          report.CatalogSize,
		Extracted:         len(report.Dirs),
		DatasetSize:       size,
		FailedDownloads:   nonNil(report.FailedDownloads),
		FailedExtractions: nonNil(report.FailedExtractions),
	}
	if report.Validation != nil {
		s.ZeroByte = report.Validation.ZeroByte
		s.CountMismatch = report.Validation.CountMismatch()
	}
	for _, err := range report.HookErrors {
		s.HookErrors = append(s.HookErrors, err.Error())
	}
	return s
}

func nonNil(values []string) []string {
	if values == nil {
		return []string{}
	}
	return values
}

func writeSummaryJSON(w io.Writer, s runSummary) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(s)
}

func writeSummaryText(w io.Writer, s runSummary) {
	bold := color.New(color.Bold)
	red := color.New(color.FgRed)
	yellow := color.New(color.FgYellow)
	green := color.New(color.FgGreen, color.Bold)

	_, _ = bold.Fprintf(w, "\nExtracted %d of %d archives into %s (%s)\n",
		s.Extracted, s.Archives, s.DatasetDir, humanize.Bytes(uint64(s.DatasetSize)))

	if s.CountMismatch {
		_, _ = yellow.Fprintln(w, "Warning: the number of downloaded archives differs from the catalog.")
	}
	for _, name := range s.ZeroByte {
		_, _ = yellow.Fprintf(w, "Warning: %s has a size of 0 bytes.\n", name)
	}

	if len(s.FailedDownloads) > 0 {
		_, _ = red.Fprintf(w, "\nFailed downloads (%d):\n", len(s.FailedDownloads))
		for _, u := range s.FailedDownloads {
			_, _ = fmt.Fprintf(w, "  %s\n", u)
		}
		_, _ = fmt.Fprintln(w, "Please try to download them manually.")
	}
	if len(s.FailedExtractions) > 0 {
		_, _ = red.Fprintf(w, "\nFailed extractions (%d):\n", len(s.FailedExtractions))
		for _, p := range s.FailedExtractions {
			_, _ = fmt.Fprintf(w, "  %s\n", p)
		}
	}
	for _, msg := range s.HookErrors {
		_, _ = yellow.Fprintf(w, "Hook error: %s\n", msg)
	}

	if len(s.FailedDownloads) == 0 && len(s.FailedExtractions) == 0 {
		_, _ = green.Fprintln(w, "All done. Have fun!")
	}
}
