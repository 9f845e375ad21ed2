package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ferredex/quote-service/internal/geocode"
	"github.com/ferredex/quote-service/internal/quote"
	"github.com/ferredex/quote-service/internal/session"
)

// SessionResponse represents a session's current state
type SessionResponse struct {
	ID       string         `json:"id"`
	Step     session.Step   `json:"step"`
	Cart     map[string]int `json:"cart"`
	Location quote.Location `json:"location"`
	RadiusKm float64        `json:"radius_km"`
}

func sessionResponse(s *session.Session) SessionResponse {
	return SessionResponse{
		ID:       s.ID(),
		Step:     s.Step(),
		Cart:     s.Cart(),
		Location: s.Location(),
		RadiusKm: s.RadiusKm(),
	}
}

// lookupSession resolves the :sessionId path parameter. Writes a 404 and
// returns nil when the session does not exist.
func lookupSession(c *gin.Context) *session.Session {
	s, ok := sessions.Get(c.Param("sessionId"))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "session not found"})
		return nil
	}
	return s
}

// CreateSession handles session creation
// POST /api/sessions
func CreateSession(c *gin.Context) {
	s := sessions.Create()
	c.JSON(http.StatusCreated, sessionResponse(s))
}

// GetSession handles session state retrieval
// GET /api/sessions/:sessionId
func GetSession(c *gin.Context) {
	s := lookupSession(c)
	if s == nil {
		return
	}
	c.JSON(http.StatusOK, sessionResponse(s))
}

// CartItemRequest represents a cart quantity update
type CartItemRequest struct {
	Product  string `json:"product" binding:"required"`
	Quantity int    `json:"quantity"`
}

// UpdateCartItem handles cart quantity changes. Quantity zero removes the
// product.
// PUT /api/sessions/:sessionId/cart
func UpdateCartItem(c *gin.Context) {
	s := lookupSession(c)
	if s == nil {
		return
	}

	var req CartItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := s.SetQuantity(req.Product, req.Quantity); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, sessionResponse(s))
}

// ClearCart handles cart reset
// DELETE /api/sessions/:sessionId/cart
func ClearCart(c *gin.Context) {
	s := lookupSession(c)
	if s == nil {
		return
	}
	s.ClearCart()
	c.JSON(http.StatusOK, sessionResponse(s))
}

// LocationRequest represents a session location update. Either coordinates
// or a free-text address to geocode.
type LocationRequest struct {
	Latitude  *float64 `json:"latitude,omitempty"`
	Longitude *float64 `json:"longitude,omitempty"`
	Address   string   `json:"address,omitempty"`
}

// SetLocation handles session location updates
// PUT /api/sessions/:sessionId/location
func SetLocation(c *gin.Context) {
	s := lookupSession(c)
	if s == nil {
		return
	}

	var req LocationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var loc quote.Location
	switch {
	case req.Latitude != nil && req.Longitude != nil:
		loc = quote.Location{Latitude: *req.Latitude, Longitude: *req.Longitude, Address: req.Address}
		if loc.Address == "" {
			loc.Address = geocoder.Reverse(c.Request.Context(), loc.Latitude, loc.Longitude).Address
		}
	case req.Address != "":
		result, err := geocoder.Search(c.Request.Context(), req.Address)
		if err != nil {
			if errors.Is(err, geocode.ErrNoResult) {
				c.JSON(http.StatusNotFound, gin.H{"error": "address not found"})
				return
			}
			c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
			return
		}
		loc = quote.Location{Latitude: result.Latitude, Longitude: result.Longitude, Address: result.Address}
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "coordinates or address required"})
		return
	}

	if err := s.SetLocation(loc); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, sessionResponse(s))
}

// RadiusRequest represents a session radius update
type RadiusRequest struct {
	RadiusKm float64 `json:"radius_km" binding:"required"`
}

// SetRadius handles session radius updates, clamped to the configured bounds
// PUT /api/sessions/:sessionId/radius
func SetRadius(c *gin.Context) {
	s := lookupSession(c)
	if s == nil {
		return
	}

	var req RadiusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := s.SetRadius(req.RadiusKm); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, sessionResponse(s))
}

// AdvanceSession handles moving the session to the next step
// POST /api/sessions/:sessionId/advance
func AdvanceSession(c *gin.Context) {
	s := lookupSession(c)
	if s == nil {
		return
	}

	if err := s.Advance(); err != nil {
		var illegal session.ErrIllegalTransition
		if errors.As(err, &illegal) {
			c.JSON(http.StatusConflict, gin.H{"error": illegal.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, sessionResponse(s))
}

// BackSession handles moving the session to the previous step
// POST /api/sessions/:sessionId/back
func BackSession(c *gin.Context) {
	s := lookupSession(c)
	if s == nil {
		return
	}

	if err := s.Back(); err != nil {
		var illegal session.ErrIllegalTransition
		if errors.As(err, &illegal) {
			c.JSON(http.StatusConflict, gin.H{"error": illegal.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, sessionResponse(s))
}

// SessionQuotes handles running the quote engine with the session's cart,
// location, and radius
// GET /api/sessions/:sessionId/quotes
func SessionQuotes(c *gin.Context) {
	s := lookupSession(c)
	if s == nil {
		return
	}

	if s.Step() != session.StepViewingResults {
		c.JSON(http.StatusConflict, gin.H{"error": "session is not at the results step"})
		return
	}

	cat, err := catalogStore.Get()
	if err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": err.Error()})
		return
	}

	cart := s.Cart()
	if cart.Items() == 0 {
		c.JSON(http.StatusConflict, gin.H{"error": "cart is empty"})
		return
	}

	quotes, err := quoteEngine.Quote(c.Request.Context(), cat, cart, s.Location(), s.RadiusKm(), settings.TopN)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"quotes":    quotes,
		"total":     len(quotes),
		"radius_km": s.RadiusKm(),
	})
}
