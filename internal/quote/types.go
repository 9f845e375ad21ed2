// Package quote implements the store-matching engine: filter stores by
// radius, resolve the cart against each store's prices, and rank the results
// by total price and distance.
package quote

import (
	"fmt"

	"github.com/ferredex/quote-service/internal/catalog"
	"github.com/ferredex/quote-service/internal/money"
)

// Cart maps product names to requested quantities.
type Cart map[string]int

// Items counts products with a positive quantity.
func (c Cart) Items() int {
	n := 0
	for _, qty := range c {
		if qty > 0 {
			n++
		}
	}
	return n
}

// Location is the user's position, optionally with a display address.
type Location struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Address   string  `json:"address,omitempty"`
}

// RowWithDistance is a catalog row annotated with its store's distance from
// the user.
type RowWithDistance struct {
	catalog.Row
	DistanceKm float64
}

// MatchedItem is one cart line resolved against a store's prices.
type MatchedItem struct {
	Product   string       `json:"product"`
	Quantity  int          `json:"quantity"`
	UnitPrice money.Amount `json:"unit_price"`
	LineTotal money.Amount `json:"line_total"`
}

// StoreQuote is one ranked store result.
type StoreQuote struct {
	StoreName    string             `json:"store_name"`
	Latitude     float64            `json:"latitude"`
	Longitude    float64            `json:"longitude"`
	DistanceKm   float64            `json:"distance_km"`
	MatchedItems []MatchedItem      `json:"matched_items"`
	MissingItems []string           `json:"missing_items,omitempty"`
	TotalPrice   money.Amount       `json:"total_price"`
	Info         *catalog.StoreInfo `json:"info,omitempty"`
}

// ErrInvalidRequest reports a malformed quote request.
type ErrInvalidRequest struct {
	Field  string
	Reason string
}

func (e ErrInvalidRequest) Error() string {
	return fmt.Sprintf("invalid request: %s: %s", e.Field, e.Reason)
}
