package cli

import (
	"encoding/json"
	"fmt"
	"text/tabwriter"

	"github.com/glorpus-work/digipathos/pkg/download"
	"github.com/spf13/cobra"
)

// NewCatalogCmd creates the catalog command.
func NewCatalogCmd() *cobra.Command {
	var filter string

	cmd := &cobra.Command{
		Use:   "catalog",
		Short: "List the archives of the remote repository",
		Long:  "Fetch the archive listing and print the entries matching the name filter",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runCatalog(cmd, filter)
		},
	}

	cmd.Flags().StringVar(&filter, "filter", "", "Archive name filter: cropped, original or all")

	return cmd
}

func runCatalog(cmd *cobra.Command, filter string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if filter == "" {
		filter = cfg.Settings.NameFilter
	}

	entries, err := loadCatalogClient(cfg).Fetch(cmd.Context(), filter)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if isJSON(cfg) {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(entries)
	}

	tabWriter := tabwriter.NewWriter(out, 0, 0, TabWidth, ' ', 0)
	_, _ = fmt.Fprintln(tabWriter, "NAME\tSIZE\tURL")
	_, _ = fmt.Fprintln(tabWriter, "----\t----\t---")
	for _, e := range entries {
		_, _ = fmt.Fprintf(tabWriter, "%s\t%s\t%s\n",
			truncate(e.Name, MaxNameLength), e.Size, download.ResolveURL(cfg.Settings.BaseURL, e.Link))
	}
	_ = tabWriter.Flush()
	_, _ = fmt.Fprintf(out, "\n%d archives (filter %s)\n", len(entries), filter)
	return nil
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-3]) + "..."
}
