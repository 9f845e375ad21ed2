package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ferredex/quote-service/internal/quote"
)

// QuoteRequest represents a quote request
type QuoteRequest struct {
	Items    map[string]int `json:"items" binding:"required"`
	Location *LocationBody  `json:"location,omitempty"`
	RadiusKm float64        `json:"radius_km,omitempty"`
	TopN     int            `json:"top_n,omitempty"`
}

// LocationBody represents a geographic location in a request body
type LocationBody struct {
	Latitude  float64 `json:"latitude" binding:"min=-90,max=90"`
	Longitude float64 `json:"longitude" binding:"min=-180,max=180"`
}

// CreateQuote handles quote requests
// POST /api/quotes
func CreateQuote(c *gin.Context) {
	quotes, req, ok := computeQuotes(c)
	if !ok {
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"quotes":    quotes,
		"total":     len(quotes),
		"radius_km": req.RadiusKm,
	})
}

// computeQuotes binds a QuoteRequest and runs the engine. On failure it
// writes the error response and returns ok=false.
func computeQuotes(c *gin.Context) ([]quote.StoreQuote, *QuoteRequest, bool) {
	var req QuoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return nil, nil, false
	}

	cat, err := catalogStore.Get()
	if err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": err.Error()})
		return nil, nil, false
	}

	loc := settings.DefaultLocation
	if req.Location != nil {
		loc = quote.Location{Latitude: req.Location.Latitude, Longitude: req.Location.Longitude}
	}
	req.RadiusKm = clampRadius(req.RadiusKm)
	if req.TopN == 0 {
		req.TopN = settings.TopN
	}

	quotes, err := quoteEngine.Quote(c.Request.Context(), cat, quote.Cart(req.Items), loc, req.RadiusKm, req.TopN)
	if err != nil {
		var invalid quote.ErrInvalidRequest
		if errors.As(err, &invalid) {
			c.JSON(http.StatusBadRequest, gin.H{"error": invalid.Error()})
			return nil, nil, false
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return nil, nil, false
	}
	return quotes, &req, true
}
