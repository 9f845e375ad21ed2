package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ferredex/quote-service/internal/catalog"
	"github.com/ferredex/quote-service/internal/geocode"
	"github.com/ferredex/quote-service/internal/quote"
	"github.com/ferredex/quote-service/internal/session"
)

const testCatalogCSV = "Ferreteria,Producto,Precio,Categoria,Latitud,Longitud\n" +
	"Tienda A,Cemento,30.00,Construcción,-12.0700,-77.0350\n" +
	"Tienda A,Arena,80.00,Construcción,-12.0700,-77.0350\n" +
	"Tienda B,Cemento,28.00,Construcción,-12.0950,-77.0333\n" +
	"Tienda C,Arena,85.00,Construcción,-12.0690,-77.0340\n"

// setupTestAPI wires the handlers against a temp catalog and a stub
// Nominatim server, and returns a router with the API routes registered.
func setupTestAPI(t *testing.T) *gin.Engine {
	t.Helper()

	path := filepath.Join(t.TempDir(), "catalog.csv")
	require.NoError(t, os.WriteFile(path, []byte(testCatalogCSV), 0o644))

	store := catalog.NewStore(path)
	_, err := store.Reload()
	require.NoError(t, err)

	nominatim := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/search" {
			w.Write([]byte(`[{"lat":"-12.0675","lon":"-77.0333","display_name":"Lima, Perú"}]`))
			return
		}
		w.Write([]byte(`{"display_name":"Av. Lima 100"}`))
	}))
	t.Cleanup(nominatim.Close)

	gcCfg := geocode.DefaultConfig()
	gcCfg.BaseURL = nominatim.URL
	gcCfg.RequestsPerSecond = 1000

	loc := quote.Location{Latitude: -12.0675, Longitude: -77.0333}
	Init(store, quote.NewEngine(), geocode.NewClient(gcCfg),
		session.NewManager(session.Limits{
			DefaultRadiusKm: 3,
			MinRadiusKm:     1,
			MaxRadiusKm:     15,
			DefaultLocation: loc,
		}, time.Hour),
		QuoteSettings{
			DefaultRadiusKm: 3,
			MinRadiusKm:     1,
			MaxRadiusKm:     15,
			TopN:            3,
			DefaultLocation: loc,
		})

	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.GET("/health", HealthCheck)
	router.GET("/api/catalog/products", ListProducts)
	router.GET("/api/catalog/categories", ListCategories)
	router.GET("/api/catalog/stores", ListStores)
	router.POST("/api/quotes", CreateQuote)
	router.POST("/api/quotes/export/csv", ExportCSV)
	router.GET("/api/geocode/search", GeocodeSearch)
	router.GET("/api/geocode/reverse", GeocodeReverse)
	router.POST("/api/sessions", CreateSession)
	router.GET("/api/sessions/:sessionId", GetSession)
	router.PUT("/api/sessions/:sessionId/cart", UpdateCartItem)
	router.PUT("/api/sessions/:sessionId/radius", SetRadius)
	router.POST("/api/sessions/:sessionId/advance", AdvanceSession)
	router.GET("/api/sessions/:sessionId/quotes", SessionQuotes)
	return router
}

func doJSON(t *testing.T, router *gin.Engine, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req, err := http.NewRequest(method, path, &buf)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

// TestHealthCheck tests the health endpoint with a loaded catalog
func TestHealthCheck(t *testing.T) {
	router := setupTestAPI(t)

	w := doJSON(t, router, "GET", "/health", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	var resp HealthResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "ok", resp.Status)
	assert.Equal(t, "loaded", resp.Catalog)
	assert.Equal(t, 4, resp.CatalogRows)
}

// TestListProducts tests product listing with filters
func TestListProducts(t *testing.T) {
	router := setupTestAPI(t)

	w := doJSON(t, router, "GET", "/api/catalog/products", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Products []string `json:"products"`
		Total    int      `json:"total"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.ElementsMatch(t, []string{"Cemento", "Arena"}, resp.Products)
	assert.Equal(t, 2, resp.Total)

	// Free-text filter is accent- and case-insensitive
	w = doJSON(t, router, "GET", "/api/catalog/products?q=cémen", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, []string{"Cemento"}, resp.Products)
}

// TestCreateQuote tests the quote endpoint end to end: B wins on price, C
// beats A on the sand-only total, A matches everything
func TestCreateQuote(t *testing.T) {
	router := setupTestAPI(t)

	w := doJSON(t, router, "POST", "/api/quotes", QuoteRequest{
		Items:    map[string]int{"Cemento": 2, "Arena": 1},
		Location: &LocationBody{Latitude: -12.0675, Longitude: -77.0333},
		RadiusKm: 5,
	})
	assert.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Quotes []quote.StoreQuote `json:"quotes"`
		Total  int                `json:"total"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Equal(t, 3, resp.Total)
	assert.Equal(t, "Tienda B", resp.Quotes[0].StoreName)
	assert.Equal(t, "Tienda C", resp.Quotes[1].StoreName)
	assert.Equal(t, "Tienda A", resp.Quotes[2].StoreName)
}

// TestCreateQuoteBadRequest tests request validation
func TestCreateQuoteBadRequest(t *testing.T) {
	router := setupTestAPI(t)

	w := doJSON(t, router, "POST", "/api/quotes", map[string]any{"location": map[string]float64{"latitude": 0}})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

// TestCreateQuoteRadiusClamped tests that an oversized radius is clamped to
// the configured maximum rather than rejected
func TestCreateQuoteRadiusClamped(t *testing.T) {
	router := setupTestAPI(t)

	w := doJSON(t, router, "POST", "/api/quotes", QuoteRequest{
		Items:    map[string]int{"Cemento": 1},
		RadiusKm: 500,
	})
	assert.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		RadiusKm float64 `json:"radius_km"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, 15.0, resp.RadiusKm)
}

// TestExportCSVEndpoint tests CSV export of the cheapest ranked store
func TestExportCSVEndpoint(t *testing.T) {
	router := setupTestAPI(t)

	w := doJSON(t, router, "POST", "/api/quotes/export/csv", ExportRequest{
		QuoteRequest: QuoteRequest{
			Items:    map[string]int{"Cemento": 1},
			RadiusKm: 5,
		},
	})
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "text/csv", w.Header().Get("Content-Type"))
	assert.Contains(t, w.Body.String(), "Tienda B")
}

// TestGeocodeEndpoints tests the search and reverse endpoints against the
// stub server
func TestGeocodeEndpoints(t *testing.T) {
	router := setupTestAPI(t)

	w := doJSON(t, router, "GET", "/api/geocode/search?q=Lima", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	var res geocode.Result
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &res))
	assert.InDelta(t, -12.0675, res.Latitude, 1e-9)

	w = doJSON(t, router, "GET", "/api/geocode/search", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = doJSON(t, router, "GET", "/api/geocode/reverse?lat=-12.07&lon=-77.03", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = doJSON(t, router, "GET", "/api/geocode/reverse?lat=oops&lon=-77.03", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	// NaN and Inf parse fine but are not coordinates.
	for _, q := range []string{"lat=NaN&lon=-77.03", "lat=-12.07&lon=Inf", "lat=-Inf&lon=-77.03"} {
		w = doJSON(t, router, "GET", "/api/geocode/reverse?"+q, nil)
		assert.Equal(t, http.StatusBadRequest, w.Code, q)
	}
}

// TestSessionFlow tests the full session lifecycle over HTTP
func TestSessionFlow(t *testing.T) {
	router := setupTestAPI(t)

	w := doJSON(t, router, "POST", "/api/sessions", nil)
	require.Equal(t, http.StatusCreated, w.Code)

	var sess SessionResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &sess))
	require.NotEmpty(t, sess.ID)
	base := "/api/sessions/" + sess.ID

	// Empty cart blocks advancing past product selection
	w = doJSON(t, router, "POST", base+"/advance", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	w = doJSON(t, router, "POST", base+"/advance", nil)
	assert.Equal(t, http.StatusConflict, w.Code)

	w = doJSON(t, router, "PUT", base+"/cart", CartItemRequest{Product: "Cemento", Quantity: 2})
	assert.Equal(t, http.StatusOK, w.Code)

	w = doJSON(t, router, "PUT", base+"/radius", RadiusRequest{RadiusKm: 5})
	assert.Equal(t, http.StatusOK, w.Code)

	w = doJSON(t, router, "POST", base+"/advance", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	// Quotes are gated on reaching the results step
	w = doJSON(t, router, "GET", base+"/quotes", nil)
	assert.Equal(t, http.StatusConflict, w.Code)

	w = doJSON(t, router, "POST", base+"/advance", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = doJSON(t, router, "GET", base+"/quotes", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Quotes []quote.StoreQuote `json:"quotes"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.NotEmpty(t, resp.Quotes)
	assert.Equal(t, "Tienda B", resp.Quotes[0].StoreName)

	// Unknown session
	w = doJSON(t, router, "GET", "/api/sessions/missing", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}
