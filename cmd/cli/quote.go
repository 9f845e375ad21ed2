package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/ferredex/quote-service/internal/catalog"
	"github.com/ferredex/quote-service/internal/money"
	"github.com/ferredex/quote-service/internal/quote"
)

var (
	quoteItems  []string
	quoteLat    float64
	quoteLon    float64
	quoteRadius float64
	quoteTopN   int
	quoteOutput string
)

// quoteCmd represents the quote command
var quoteCmd = &cobra.Command{
	Use:   "quote",
	Short: "Rank nearby stores by total price for a list of products",
	Long: `Run the quote engine against a catalog file: filter stores within the
search radius of the given location, price each requested product at each
store, and print the cheapest stores first. Items use product=quantity form.`,
	Example: `  quote-service quote --catalog ./data/catalog.xlsx --item "Cemento=2" --item "Arena=1" --lat -12.0675 --lon -77.0333
  quote-service quote --item "Ladrillo=100" --radius 5 --output json`,
	RunE: runQuote,
}

func init() {
	rootCmd.AddCommand(quoteCmd)

	quoteCmd.Flags().StringArrayVar(&quoteItems, "item", nil, "Product and quantity as product=qty (repeatable, required)")
	quoteCmd.Flags().Float64Var(&quoteLat, "lat", 0, "Latitude (defaults to configured location)")
	quoteCmd.Flags().Float64Var(&quoteLon, "lon", 0, "Longitude (defaults to configured location)")
	quoteCmd.Flags().Float64Var(&quoteRadius, "radius", 0, "Search radius in km (defaults to configured radius)")
	quoteCmd.Flags().IntVar(&quoteTopN, "top", 0, "How many stores to return (defaults to configured top_n)")
	quoteCmd.Flags().StringVar(&quoteOutput, "output", "table", "Output format: table or json")
	quoteCmd.MarkFlagRequired("item")
}

func runQuote(cmd *cobra.Command, args []string) error {
	path, err := resolveCatalogPath()
	if err != nil {
		return err
	}

	cart, err := parseCartItems(quoteItems)
	if err != nil {
		return err
	}

	cat, err := catalog.NewLoader().Load(path)
	if err != nil {
		return fmt.Errorf("failed to load catalog: %w", err)
	}

	loc := quote.Location{Latitude: quoteLat, Longitude: quoteLon}
	radius := quoteRadius
	topN := quoteTopN
	if cfg != nil {
		if !cmd.Flags().Changed("lat") && !cmd.Flags().Changed("lon") {
			loc = quote.Location{Latitude: cfg.Quote.DefaultLatitude, Longitude: cfg.Quote.DefaultLongitude}
		}
		if radius == 0 {
			radius = cfg.Quote.DefaultRadiusKm
		}
		if topN == 0 {
			topN = cfg.Quote.TopN
		}
	}

	quotes, err := quote.NewEngine().Quote(cmd.Context(), cat, cart, loc, radius, topN)
	if err != nil {
		return fmt.Errorf("quote failed: %w", err)
	}

	if quoteOutput == "json" {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(quotes)
	}

	if len(quotes) == 0 {
		fmt.Println("No stores matched the request.")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "#\tStore\tDistance\tMatched\tMissing\tTotal")
	for i, q := range quotes {
		fmt.Fprintf(w, "%d\t%s\t%.1f km\t%d\t%d\t%s\n",
			i+1, q.StoreName, q.DistanceKm, len(q.MatchedItems), len(q.MissingItems), money.Format(q.TotalPrice))
	}
	return w.Flush()
}

// parseCartItems converts product=qty flags into a cart.
func parseCartItems(items []string) (quote.Cart, error) {
	cart := quote.Cart{}
	for _, item := range items {
		product, qtyStr, found := strings.Cut(item, "=")
		product = strings.TrimSpace(product)
		if product == "" {
			return nil, fmt.Errorf("invalid item %q: empty product name", item)
		}
		qty := 1
		if found {
			var err error
			qty, err = strconv.Atoi(strings.TrimSpace(qtyStr))
			if err != nil || qty <= 0 {
				return nil, fmt.Errorf("invalid item %q: quantity must be a positive integer", item)
			}
		}
		cart[product] = qty
	}
	return cart, nil
}
