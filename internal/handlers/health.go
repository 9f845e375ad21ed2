package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// HealthResponse represents the health check response
type HealthResponse struct {
	Status          string `json:"status"`
	Catalog         string `json:"catalog"`
	CatalogRows     int    `json:"catalog_rows,omitempty"`
	CatalogLoadedAt string `json:"catalog_loaded_at,omitempty"`
}

// HealthCheck handles the health check endpoint
func HealthCheck(c *gin.Context) {
	response := HealthResponse{
		Status: "ok",
	}

	cat, err := catalogStore.Get()
	if err != nil {
		response.Catalog = "not loaded"
		c.JSON(http.StatusServiceUnavailable, response)
		return
	}
	response.Catalog = "loaded"
	response.CatalogRows = len(cat.Rows)
	response.CatalogLoadedAt = cat.LoadedAt.Format(time.RFC3339)

	c.JSON(http.StatusOK, response)
}
