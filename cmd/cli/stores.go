package main

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/ferredex/quote-service/internal/catalog"
	"github.com/ferredex/quote-service/internal/quote"
)

var (
	storesLat    float64
	storesLon    float64
	storesRadius float64
	storesOutput string
)

// storesCmd represents the stores command
var storesCmd = &cobra.Command{
	Use:   "stores",
	Short: "List catalog stores, optionally sorted by distance from a location",
	Example: `  quote-service stores --catalog ./data/catalog.xlsx
  quote-service stores --lat -12.0675 --lon -77.0333 --radius 5`,
	RunE: runStores,
}

func init() {
	rootCmd.AddCommand(storesCmd)

	storesCmd.Flags().Float64Var(&storesLat, "lat", 0, "Latitude for distance calculation")
	storesCmd.Flags().Float64Var(&storesLon, "lon", 0, "Longitude for distance calculation")
	storesCmd.Flags().Float64Var(&storesRadius, "radius", 0, "Only show stores within this many km (0 = all)")
	storesCmd.Flags().StringVar(&storesOutput, "output", "table", "Output format: table or json")
}

type storeListing struct {
	Name       string   `json:"name"`
	Latitude   float64  `json:"latitude,omitempty"`
	Longitude  float64  `json:"longitude,omitempty"`
	HasCoords  bool     `json:"has_coords"`
	DistanceKm *float64 `json:"distance_km,omitempty"`
	Products   int      `json:"products"`
}

func runStores(cmd *cobra.Command, args []string) error {
	path, err := resolveCatalogPath()
	if err != nil {
		return err
	}

	cat, err := catalog.NewLoader().Load(path)
	if err != nil {
		return fmt.Errorf("failed to load catalog: %w", err)
	}

	withLocation := cmd.Flags().Changed("lat") && cmd.Flags().Changed("lon")

	byKey := make(map[string]*storeListing)
	var order []*storeListing
	for _, r := range cat.Rows {
		l, ok := byKey[r.StoreKey]
		if !ok {
			l = &storeListing{Name: r.StoreName, HasCoords: r.HasCoords}
			if r.HasCoords {
				l.Latitude, l.Longitude = r.Latitude, r.Longitude
				if withLocation {
					d := quote.HaversineKm(storesLat, storesLon, r.Latitude, r.Longitude)
					l.DistanceKm = &d
				}
			}
			byKey[r.StoreKey] = l
			order = append(order, l)
		}
		l.Products++
	}

	if storesRadius > 0 {
		var kept []*storeListing
		for _, l := range order {
			if l.DistanceKm != nil && *l.DistanceKm <= storesRadius {
				kept = append(kept, l)
			}
		}
		order = kept
	}

	if withLocation {
		sort.Slice(order, func(i, j int) bool {
			di, dj := order[i].DistanceKm, order[j].DistanceKm
			if di == nil || dj == nil {
				return dj == nil && di != nil
			}
			return *di < *dj
		})
	}

	if storesOutput == "json" {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(order)
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "Store\tProducts\tCoords\tDistance")
	for _, l := range order {
		coords := "-"
		if l.HasCoords {
			coords = fmt.Sprintf("%.4f, %.4f", l.Latitude, l.Longitude)
		}
		dist := "-"
		if l.DistanceKm != nil {
			dist = fmt.Sprintf("%.1f km", *l.DistanceKm)
		}
		fmt.Fprintf(w, "%s\t%d\t%s\t%s\n", l.Name, l.Products, coords, dist)
	}
	return w.Flush()
}
