package catalog

import (
	"time"

	"github.com/ferredex/quote-service/internal/money"
)

// Row is one store/product price entry.
type Row struct {
	StoreName string
	StoreKey  string
	Category  string
	Brand     string
	Product   string
	Price     money.Amount
	HasPrice  bool
	Latitude  float64
	Longitude float64
	HasCoords bool
}

// StoreInfo carries the contact and payment details shown on a quote.
type StoreInfo struct {
	Name          string `json:"name"`
	Address       string `json:"address,omitempty"`
	PayoutAccount string `json:"payout_account,omitempty"`
	ContactPerson string `json:"contact_person,omitempty"`
	ContactPhone  string `json:"contact_phone,omitempty"`
	WalletCode    string `json:"wallet_code,omitempty"`
}

// Catalog is an immutable snapshot of the loaded price data.
type Catalog struct {
	Rows     []Row
	Info     map[string]StoreInfo
	LoadedAt time.Time

	StoresWithoutCoords int
	DuplicatePairs      int
}

func (c *Catalog) distinct(field func(Row) string) []string {
	seen := make(map[string]struct{})
	var out []string
	for _, r := range c.Rows {
		v := field(r)
		if v == "" {
			continue
		}
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}

// Products lists distinct product names, optionally filtered by category and
// brand. Empty filters match everything.
func (c *Catalog) Products(category, brand string) []string {
	seen := make(map[string]struct{})
	var out []string
	for _, r := range c.Rows {
		if category != "" && r.Category != category {
			continue
		}
		if brand != "" && r.Brand != brand {
			continue
		}
		if r.Product == "" {
			continue
		}
		if _, ok := seen[r.Product]; ok {
			continue
		}
		seen[r.Product] = struct{}{}
		out = append(out, r.Product)
	}
	return out
}

// Categories lists distinct categories in catalog order.
func (c *Catalog) Categories() []string {
	return c.distinct(func(r Row) string { return r.Category })
}

// Brands lists distinct brands in catalog order.
func (c *Catalog) Brands() []string {
	return c.distinct(func(r Row) string { return r.Brand })
}

// StoreNames lists distinct store display names in catalog order.
func (c *Catalog) StoreNames() []string {
	return c.distinct(func(r Row) string { return r.StoreName })
}
