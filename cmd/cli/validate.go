package main

import (
	"encoding/json"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/ferredex/quote-service/internal/catalog"
)

var validateOutput string

// validateCmd represents the validate command
var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Load a catalog file and report what it contains",
	Long: `Load a catalog file (XLSX or CSV) and report how many rows, stores,
categories, and brands it contains, along with data quality warnings such as
stores without coordinates and duplicate store/product pairs.`,
	Example: `  quote-service validate --catalog ./data/catalog.xlsx
  quote-service validate --catalog ./data/precios.csv --output json`,
	RunE: runValidate,
}

func init() {
	rootCmd.AddCommand(validateCmd)

	validateCmd.Flags().StringVar(&validateOutput, "output", "table", "Output format: table or json")
}

func runValidate(cmd *cobra.Command, args []string) error {
	path, err := resolveCatalogPath()
	if err != nil {
		return err
	}

	logger.Info().Str("file", path).Msg("Loading catalog")
	cat, err := catalog.NewLoader().Load(path)
	if err != nil {
		return fmt.Errorf("failed to load catalog: %w", err)
	}

	if validateOutput == "json" {
		summary := map[string]any{
			"rows":                  len(cat.Rows),
			"stores":                len(cat.StoreNames()),
			"categories":            len(cat.Categories()),
			"brands":                len(cat.Brands()),
			"info_entries":          len(cat.Info),
			"stores_without_coords": cat.StoresWithoutCoords,
			"duplicate_pairs":       cat.DuplicatePairs,
		}
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(summary)
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintf(w, "Rows:\t%d\n", len(cat.Rows))
	fmt.Fprintf(w, "Stores:\t%d\n", len(cat.StoreNames()))
	fmt.Fprintf(w, "Categories:\t%d\n", len(cat.Categories()))
	fmt.Fprintf(w, "Brands:\t%d\n", len(cat.Brands()))
	fmt.Fprintf(w, "Info entries:\t%d\n", len(cat.Info))
	fmt.Fprintf(w, "Stores without coordinates:\t%d\n", cat.StoresWithoutCoords)
	fmt.Fprintf(w, "Duplicate store/product pairs:\t%d\n", cat.DuplicatePairs)
	return w.Flush()
}
