package quote

import "github.com/ferredex/quote-service/internal/catalog"

// StoresWithinRadius keeps rows whose store lies within radiusKm of the user,
// annotated with the distance. Rows without coordinates are skipped. The
// boundary is inclusive. No ordering is guaranteed.
func StoresWithinRadius(rows []catalog.Row, userLat, userLon, radiusKm float64) ([]RowWithDistance, error) {
	if radiusKm < 0 {
		return nil, ErrInvalidRequest{Field: "radius_km", Reason: "must not be negative"}
	}

	var out []RowWithDistance
	for _, r := range rows {
		if !r.HasCoords {
			continue
		}
		d := HaversineKm(userLat, userLon, r.Latitude, r.Longitude)
		if d <= radiusKm {
			out = append(out, RowWithDistance{Row: r, DistanceKm: d})
		}
	}
	return out, nil
}
