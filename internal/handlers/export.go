package handlers

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/ferredex/quote-service/internal/catalog"
	"github.com/ferredex/quote-service/internal/export"
	"github.com/ferredex/quote-service/internal/quote"
)

// ExportRequest represents a quote export request. Store selects which of
// the ranked results to render; empty means the cheapest.
type ExportRequest struct {
	QuoteRequest
	Store string `json:"store,omitempty"`
}

// selectQuote runs the engine for an export request and picks the requested
// store from the results.
func selectQuote(c *gin.Context) (*quote.StoreQuote, bool) {
	var req ExportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return nil, false
	}

	cat, err := catalogStore.Get()
	if err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": err.Error()})
		return nil, false
	}

	loc := settings.DefaultLocation
	if req.Location != nil {
		loc = quote.Location{Latitude: req.Location.Latitude, Longitude: req.Location.Longitude}
	}

	quotes, err := quoteEngine.Quote(c.Request.Context(), cat, quote.Cart(req.Items), loc, clampRadius(req.RadiusKm), settings.TopN)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return nil, false
	}
	if len(quotes) == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "no stores matched the request"})
		return nil, false
	}

	if req.Store == "" {
		return &quotes[0], true
	}
	want := catalog.JoinKey(req.Store)
	for i := range quotes {
		if catalog.JoinKey(quotes[i].StoreName) == want {
			return &quotes[i], true
		}
	}
	c.JSON(http.StatusNotFound, gin.H{"error": "store not in ranked results"})
	return nil, false
}

// ExportPDF handles PDF quote export
// POST /api/quotes/export/pdf
func ExportPDF(c *gin.Context) {
	q, ok := selectQuote(c)
	if !ok {
		return
	}

	data, err := export.QuotePDF(*q, time.Now())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", "cotizacion.pdf"))
	c.Data(http.StatusOK, "application/pdf", data)
}

// ExportCSV handles CSV quote export
// POST /api/quotes/export/csv
func ExportCSV(c *gin.Context) {
	q, ok := selectQuote(c)
	if !ok {
		return
	}

	data, err := export.QuoteCSV(*q)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", "cotizacion.csv"))
	c.Data(http.StatusOK, "text/csv", data)
}
