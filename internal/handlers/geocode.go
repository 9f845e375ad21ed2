package handlers

import (
	"errors"
	"math"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/ferredex/quote-service/internal/geocode"
)

// GeocodeSearch handles forward geocoding
// GET /api/geocode/search?q=...
func GeocodeSearch(c *gin.Context) {
	query := c.Query("q")
	if query == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing query parameter q"})
		return
	}

	result, err := geocoder.Search(c.Request.Context(), query)
	if err != nil {
		if errors.Is(err, geocode.ErrNoResult) {
			c.JSON(http.StatusNotFound, gin.H{"error": "no result for query"})
			return
		}
		var invalid geocode.ErrInvalidQuery
		if errors.As(err, &invalid) {
			c.JSON(http.StatusBadRequest, gin.H{"error": invalid.Error()})
			return
		}
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, result)
}

// GeocodeReverse handles reverse geocoding
// GET /api/geocode/reverse?lat=...&lon=...
func GeocodeReverse(c *gin.Context) {
	lat, errLat := strconv.ParseFloat(c.Query("lat"), 64)
	lon, errLon := strconv.ParseFloat(c.Query("lon"), 64)
	if errLat != nil || errLon != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid lat/lon parameters"})
		return
	}
	// ParseFloat accepts NaN and Inf, which range comparisons never reject.
	if math.IsNaN(lat) || math.IsNaN(lon) || math.IsInf(lat, 0) || math.IsInf(lon, 0) ||
		lat < -90 || lat > 90 || lon < -180 || lon > 180 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "lat/lon out of range"})
		return
	}

	c.JSON(http.StatusOK, geocoder.Reverse(c.Request.Context(), lat, lon))
}
