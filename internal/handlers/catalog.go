package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/ferredex/quote-service/internal/catalog"
)

// ListProducts handles product listing with optional category, brand, and
// free-text filters
// GET /api/catalog/products?category=...&brand=...&q=...
func ListProducts(c *gin.Context) {
	cat, err := catalogStore.Get()
	if err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": err.Error()})
		return
	}

	products := cat.Products(c.Query("category"), c.Query("brand"))
	if q := c.Query("q"); q != "" {
		needle := catalog.JoinKey(q)
		var filtered []string
		for _, p := range products {
			if strings.Contains(catalog.JoinKey(p), needle) {
				filtered = append(filtered, p)
			}
		}
		products = filtered
	}
	if products == nil {
		products = []string{}
	}
	c.JSON(http.StatusOK, gin.H{
		"products": products,
		"total":    len(products),
	})
}

// ListCategories handles category listing
// GET /api/catalog/categories
func ListCategories(c *gin.Context) {
	cat, err := catalogStore.Get()
	if err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": err.Error()})
		return
	}

	categories := cat.Categories()
	if categories == nil {
		categories = []string{}
	}
	c.JSON(http.StatusOK, gin.H{"categories": categories})
}

// ListBrands handles brand listing
// GET /api/catalog/brands
func ListBrands(c *gin.Context) {
	cat, err := catalogStore.Get()
	if err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": err.Error()})
		return
	}

	brands := cat.Brands()
	if brands == nil {
		brands = []string{}
	}
	c.JSON(http.StatusOK, gin.H{"brands": brands})
}

// ListStores handles store listing
// GET /api/catalog/stores
func ListStores(c *gin.Context) {
	cat, err := catalogStore.Get()
	if err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": err.Error()})
		return
	}

	stores := cat.StoreNames()
	if stores == nil {
		stores = []string{}
	}
	c.JSON(http.StatusOK, gin.H{
		"stores":                stores,
		"stores_without_coords": cat.StoresWithoutCoords,
	})
}

// ReloadCatalog handles catalog reload from disk
// POST /api/catalog/reload
func ReloadCatalog(c *gin.Context) {
	cat, err := catalogStore.Reload()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"rows":            len(cat.Rows),
		"stores":          len(cat.StoreNames()),
		"duplicate_pairs": cat.DuplicatePairs,
	})
}
