// Package session tracks a user's progress through the quote flow: browsing,
// picking products, picking a location, viewing results.
package session

import (
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/ferredex/quote-service/internal/quote"
)

// Step is a stage of the quote flow.
type Step string

const (
	StepBrowsing          Step = "browsing"
	StepSelectingProducts Step = "selecting_products"
	StepSelectingLocation Step = "selecting_location"
	StepViewingResults    Step = "viewing_results"
)

var stepOrder = []Step{StepBrowsing, StepSelectingProducts, StepSelectingLocation, StepViewingResults}

// Limits carries the per-session radius bounds and starting location.
type Limits struct {
	DefaultRadiusKm float64
	MinRadiusKm     float64
	MaxRadiusKm     float64
	DefaultLocation quote.Location
}

// ErrIllegalTransition reports a step change the flow does not allow.
type ErrIllegalTransition struct {
	From   Step
	Reason string
}

func (e ErrIllegalTransition) Error() string {
	return fmt.Sprintf("cannot advance from %s: %s", e.From, e.Reason)
}

// Session is one user's quote flow state.
type Session struct {
	mu         sync.Mutex
	id         string
	step       Step
	cart       quote.Cart
	location   quote.Location
	radiusKm   float64
	limits     Limits
	lastActive time.Time
}

func newSession(limits Limits) *Session {
	return &Session{
		id:         uuid.NewString(),
		step:       StepBrowsing,
		cart:       quote.Cart{},
		location:   limits.DefaultLocation,
		radiusKm:   limits.DefaultRadiusKm,
		limits:     limits,
		lastActive: time.Now(),
	}
}

func (s *Session) touch() {
	s.lastActive = time.Now()
}

func (s *Session) ID() string {
	return s.id
}

func (s *Session) Step() Step {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.step
}

// Cart returns a copy of the cart.
func (s *Session) Cart() quote.Cart {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(quote.Cart, len(s.cart))
	for p, q := range s.cart {
		out[p] = q
	}
	return out
}

func (s *Session) Location() quote.Location {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.location
}

func (s *Session) RadiusKm() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.radiusKm
}

// SetQuantity sets the quantity for a product. Zero or negative removes it.
func (s *Session) SetQuantity(product string, qty int) error {
	if product == "" {
		return fmt.Errorf("empty product name")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.touch()
	if qty <= 0 {
		delete(s.cart, product)
		return nil
	}
	s.cart[product] = qty
	return nil
}

func (s *Session) ClearCart() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.touch()
	s.cart = quote.Cart{}
}

func (s *Session) SetLocation(loc quote.Location) error {
	if loc.Latitude < -90 || loc.Latitude > 90 {
		return fmt.Errorf("latitude %v out of range", loc.Latitude)
	}
	if loc.Longitude < -180 || loc.Longitude > 180 {
		return fmt.Errorf("longitude %v out of range", loc.Longitude)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.touch()
	s.location = loc
	return nil
}

// SetRadius sets the search radius, clamped to the configured bounds.
func (s *Session) SetRadius(radiusKm float64) error {
	if radiusKm < 0 {
		return fmt.Errorf("radius must not be negative")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.touch()
	if radiusKm < s.limits.MinRadiusKm {
		radiusKm = s.limits.MinRadiusKm
	}
	if radiusKm > s.limits.MaxRadiusKm {
		radiusKm = s.limits.MaxRadiusKm
	}
	s.radiusKm = radiusKm
	return nil
}

// Advance moves to the next step. Leaving product selection requires a
// non-empty cart.
func (s *Session) Advance() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.touch()

	idx := stepIndex(s.step)
	if idx == len(stepOrder)-1 {
		return ErrIllegalTransition{From: s.step, Reason: "already at final step"}
	}
	if s.step == StepSelectingProducts && s.cart.Items() == 0 {
		return ErrIllegalTransition{From: s.step, Reason: "cart is empty"}
	}
	s.step = stepOrder[idx+1]
	return nil
}

// Back moves to the previous step.
func (s *Session) Back() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.touch()

	idx := stepIndex(s.step)
	if idx == 0 {
		return ErrIllegalTransition{From: s.step, Reason: "already at first step"}
	}
	s.step = stepOrder[idx-1]
	return nil
}

func stepIndex(step Step) int {
	for i, s := range stepOrder {
		if s == step {
			return i
		}
	}
	return 0
}

// Manager holds live sessions in memory.
type Manager struct {
	mu       sync.RWMutex
	sessions map[string]*Session
	limits   Limits
	idleTTL  time.Duration
}

func NewManager(limits Limits, idleTTL time.Duration) *Manager {
	return &Manager{
		sessions: make(map[string]*Session),
		limits:   limits,
		idleTTL:  idleTTL,
	}
}

func (m *Manager) Create() *Session {
	s := newSession(m.limits)
	m.mu.Lock()
	m.sessions[s.id] = s
	m.mu.Unlock()
	return s
}

func (m *Manager) Get(id string) (*Session, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.sessions[id]
	return s, ok
}

// Sweep drops sessions idle longer than the TTL and returns how many were
// removed.
func (m *Manager) Sweep() int {
	cutoff := time.Now().Add(-m.idleTTL)
	m.mu.Lock()
	defer m.mu.Unlock()

	removed := 0
	for id, s := range m.sessions {
		s.mu.Lock()
		idle := s.lastActive.Before(cutoff)
		s.mu.Unlock()
		if idle {
			delete(m.sessions, id)
			removed++
		}
	}
	return removed
}

func (m *Manager) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}
