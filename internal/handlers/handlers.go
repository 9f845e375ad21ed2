// Package handlers wires the HTTP API: catalog browsing, quote requests,
// geocoding, session flow, and quote export.
package handlers

import (
	"github.com/ferredex/quote-service/internal/catalog"
	"github.com/ferredex/quote-service/internal/geocode"
	"github.com/ferredex/quote-service/internal/quote"
	"github.com/ferredex/quote-service/internal/session"
)

// QuoteSettings carries the request-level defaults and bounds.
type QuoteSettings struct {
	DefaultRadiusKm float64
	MinRadiusKm     float64
	MaxRadiusKm     float64
	TopN            int
	DefaultLocation quote.Location
}

// Global instances (initialized by the application)
var (
	catalogStore *catalog.Store
	quoteEngine  *quote.Engine
	geocoder     *geocode.Client
	sessions     *session.Manager
	settings     QuoteSettings
)

// Init initializes the handler dependencies.
// This should be called during application startup.
func Init(store *catalog.Store, engine *quote.Engine, gc *geocode.Client, mgr *session.Manager, s QuoteSettings) {
	catalogStore = store
	quoteEngine = engine
	geocoder = gc
	sessions = mgr
	settings = s
}

// clampRadius applies the default and bounds to a requested radius.
func clampRadius(radiusKm float64) float64 {
	if radiusKm == 0 {
		radiusKm = settings.DefaultRadiusKm
	}
	if radiusKm < settings.MinRadiusKm {
		radiusKm = settings.MinRadiusKm
	}
	if radiusKm > settings.MaxRadiusKm {
		radiusKm = settings.MaxRadiusKm
	}
	return radiusKm
}
