package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/ferredex/quote-service/internal/geocode"
)

var (
	geocodeOutput      string
	geocodeConcurrency int
)

// geocodeCmd represents the geocode command
var geocodeCmd = &cobra.Command{
	Use:   "geocode <address>...",
	Short: "Resolve one or more addresses to coordinates via Nominatim",
	Long: `Resolve free-text addresses to coordinates using the configured Nominatim
endpoint. Addresses that fail to resolve directly are retried with regional
suffixes. Multiple addresses are resolved concurrently, subject to the
client's rate limit.`,
	Example: `  quote-service geocode "Av. Arequipa 1234"
  quote-service geocode "Av. Arequipa 1234" "Jr. Puno 500" --output json`,
	Args: cobra.MinimumNArgs(1),
	RunE: runGeocode,
}

func init() {
	rootCmd.AddCommand(geocodeCmd)

	geocodeCmd.Flags().StringVar(&geocodeOutput, "output", "table", "Output format: table or json")
	geocodeCmd.Flags().IntVar(&geocodeConcurrency, "concurrency", 4, "Concurrent lookups")
}

type geocodeResult struct {
	Query  string          `json:"query"`
	Result *geocode.Result `json:"result,omitempty"`
	Error  string          `json:"error,omitempty"`
}

func runGeocode(cmd *cobra.Command, args []string) error {
	gcCfg := geocode.DefaultConfig()
	if cfg != nil {
		gcCfg.BaseURL = cfg.Geocoder.BaseURL
		gcCfg.UserAgent = cfg.Geocoder.UserAgent
		gcCfg.Timeout = cfg.Geocoder.Timeout
		gcCfg.MaxRetries = cfg.Geocoder.MaxRetries
		gcCfg.FallbackSuffixes = cfg.Geocoder.FallbackSuffixes
		gcCfg.RequestsPerSecond = cfg.Geocoder.RequestsPerSecond
	}
	client := geocode.NewClient(gcCfg)

	results := make([]geocodeResult, len(args))
	g, ctx := errgroup.WithContext(cmd.Context())
	g.SetLimit(geocodeConcurrency)
	for i, query := range args {
		i, query := i, query
		g.Go(func() error {
			results[i].Query = query
			res, err := client.Search(ctx, query)
			if err != nil {
				if errors.Is(err, geocode.ErrNoResult) {
					results[i].Error = "no result"
					return nil
				}
				return fmt.Errorf("geocode %q: %w", query, err)
			}
			results[i].Result = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	if geocodeOutput == "json" {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(results)
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "Query\tLatitude\tLongitude\tAddress")
	for _, r := range results {
		if r.Result == nil {
			fmt.Fprintf(w, "%s\t-\t-\t%s\n", r.Query, r.Error)
			continue
		}
		fmt.Fprintf(w, "%s\t%.6f\t%.6f\t%s\n", r.Query, r.Result.Latitude, r.Result.Longitude, r.Result.Address)
	}
	return w.Flush()
}
