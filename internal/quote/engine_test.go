package quote

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ferredex/quote-service/internal/catalog"
	"github.com/ferredex/quote-service/internal/money"
)

func candidate(store, product string, price money.Amount, distKm float64) RowWithDistance {
	return RowWithDistance{
		Row: catalog.Row{
			StoreName: store,
			StoreKey:  catalog.JoinKey(store),
			Product:   product,
			Price:     price,
			HasPrice:  true,
			HasCoords: true,
		},
		DistanceKm: distKm,
	}
}

// testCandidates is the three-store scenario used throughout: partial
// matches rank above full ones when their total is lower.
func testCandidates() []RowWithDistance {
	return []RowWithDistance{
		candidate("Tienda A", "Cemento", 3000, 1.2),
		candidate("Tienda A", "Arena", 8000, 1.2),
		candidate("Tienda B", "Cemento", 2800, 3.5),
		candidate("Tienda C", "Arena", 8500, 0.5),
	}
}

// TestRankOrdersByTotalThenDistance tests the ranking over the three-store
// scenario with a mixed cart
func TestRankOrdersByTotalThenDistance(t *testing.T) {
	cart := Cart{"Cemento": 2, "Arena": 1}

	quotes, err := NewEngine().Rank(context.Background(), testCandidates(), cart, 3)
	require.NoError(t, err)
	require.Len(t, quotes, 3)

	// B matches only cement: 2 x 28.00 = 56.00
	assert.Equal(t, "Tienda B", quotes[0].StoreName)
	assert.Equal(t, money.Amount(5600), quotes[0].TotalPrice)
	assert.Equal(t, []string{"Arena"}, quotes[0].MissingItems)

	// C matches only sand: 85.00
	assert.Equal(t, "Tienda C", quotes[1].StoreName)
	assert.Equal(t, money.Amount(8500), quotes[1].TotalPrice)

	// A matches everything: 2 x 30.00 + 80.00 = 140.00
	assert.Equal(t, "Tienda A", quotes[2].StoreName)
	assert.Equal(t, money.Amount(14000), quotes[2].TotalPrice)
	assert.Empty(t, quotes[2].MissingItems)
	require.Len(t, quotes[2].MatchedItems, 2)
	assert.Equal(t, money.Amount(6000), quotes[2].MatchedItems[1].LineTotal)
}

// TestRankDistanceTieBreak tests that equal totals rank by distance
func TestRankDistanceTieBreak(t *testing.T) {
	cands := []RowWithDistance{
		candidate("Lejos", "Cemento", 3000, 4.0),
		candidate("Cerca", "Cemento", 3000, 1.0),
	}

	quotes, err := NewEngine().Rank(context.Background(), cands, Cart{"Cemento": 1}, 0)
	require.NoError(t, err)
	require.Len(t, quotes, 2)
	assert.Equal(t, "Cerca", quotes[0].StoreName)
	assert.Equal(t, "Lejos", quotes[1].StoreName)
}

// TestRankTruncatesToTopN tests result truncation
func TestRankTruncatesToTopN(t *testing.T) {
	cands := []RowWithDistance{
		candidate("A", "Cemento", 1000, 1),
		candidate("B", "Cemento", 2000, 1),
		candidate("C", "Cemento", 3000, 1),
		candidate("D", "Cemento", 4000, 1),
	}

	quotes, err := NewEngine().Rank(context.Background(), cands, Cart{"Cemento": 1}, 0)
	require.NoError(t, err)
	assert.Len(t, quotes, DefaultTopN)

	quotes, err = NewEngine().Rank(context.Background(), cands, Cart{"Cemento": 1}, 2)
	require.NoError(t, err)
	assert.Len(t, quotes, 2)
}

// TestRankDropsStoresWithNoMatches tests that a store matching nothing in
// the cart is excluded entirely
func TestRankDropsStoresWithNoMatches(t *testing.T) {
	cands := []RowWithDistance{
		candidate("Con Stock", "Cemento", 3000, 1),
		candidate("Sin Stock", "Martillo", 4500, 0.2),
	}

	quotes, err := NewEngine().Rank(context.Background(), cands, Cart{"Cemento": 1}, 3)
	require.NoError(t, err)
	require.Len(t, quotes, 1)
	assert.Equal(t, "Con Stock", quotes[0].StoreName)
}

// TestRankSkipsNonPositiveQuantities tests that zero and negative quantities
// do not contribute
func TestRankSkipsNonPositiveQuantities(t *testing.T) {
	cands := []RowWithDistance{
		candidate("A", "Cemento", 3000, 1),
		candidate("A", "Arena", 8000, 1),
	}

	quotes, err := NewEngine().Rank(context.Background(), cands, Cart{"Cemento": 1, "Arena": 0}, 3)
	require.NoError(t, err)
	require.Len(t, quotes, 1)
	assert.Equal(t, money.Amount(3000), quotes[0].TotalPrice)
	require.Len(t, quotes[0].MatchedItems, 1)
	assert.Empty(t, quotes[0].MissingItems)
}

// TestRankDuplicateProductLastRowWins tests that a repeated product at one
// store uses the later row's price
func TestRankDuplicateProductLastRowWins(t *testing.T) {
	cands := []RowWithDistance{
		candidate("A", "Cemento", 3000, 1),
		candidate("A", "Cemento", 2500, 1),
	}

	quotes, err := NewEngine().Rank(context.Background(), cands, Cart{"Cemento": 1}, 3)
	require.NoError(t, err)
	require.Len(t, quotes, 1)
	assert.Equal(t, money.Amount(2500), quotes[0].TotalPrice)
}

// TestRankSeparatesBranchesAtDifferentCoordinates tests that two branches
// sharing a normalized name but standing at different locations quote
// independently rather than merging into one store
func TestRankSeparatesBranchesAtDifferentCoordinates(t *testing.T) {
	near := candidate("Tienda A", "Cemento", 3000, 1.0)
	near.Latitude, near.Longitude = -12.06, -77.03
	far := candidate("Tienda A", "Arena", 8000, 4.0)
	far.Latitude, far.Longitude = -12.10, -77.10

	quotes, err := NewEngine().Rank(context.Background(), []RowWithDistance{near, far}, Cart{"Cemento": 1, "Arena": 1}, 3)
	require.NoError(t, err)
	require.Len(t, quotes, 2)

	// Each branch matches only its own product and keeps its own
	// coordinates and distance
	assert.Equal(t, money.Amount(3000), quotes[0].TotalPrice)
	assert.Equal(t, []string{"Arena"}, quotes[0].MissingItems)
	assert.InDelta(t, 1.0, quotes[0].DistanceKm, 1e-9)
	assert.InDelta(t, -12.06, quotes[0].Latitude, 1e-9)

	assert.Equal(t, money.Amount(8000), quotes[1].TotalPrice)
	assert.Equal(t, []string{"Cemento"}, quotes[1].MissingItems)
	assert.InDelta(t, 4.0, quotes[1].DistanceKm, 1e-9)
	assert.InDelta(t, -12.10, quotes[1].Latitude, 1e-9)
}

// TestRankUsesMinimumDistance tests that a store spread over several rows
// reports its closest distance
func TestRankUsesMinimumDistance(t *testing.T) {
	cands := []RowWithDistance{
		{Row: catalog.Row{StoreName: "A", StoreKey: "A", Product: "Cemento", Price: 3000, HasPrice: true}, DistanceKm: 2.0},
		{Row: catalog.Row{StoreName: "A", StoreKey: "A", Product: "Arena", Price: 8000, HasPrice: true}, DistanceKm: 1.5},
	}

	quotes, err := NewEngine().Rank(context.Background(), cands, Cart{"Cemento": 1}, 3)
	require.NoError(t, err)
	require.Len(t, quotes, 1)
	assert.InDelta(t, 1.5, quotes[0].DistanceKm, 1e-9)
}

// TestRankUnavailablePriceCountsAsMissing tests that a row without a usable
// price reports the product as missing
func TestRankUnavailablePriceCountsAsMissing(t *testing.T) {
	cands := []RowWithDistance{
		{Row: catalog.Row{StoreName: "A", StoreKey: "A", Product: "Cemento", HasPrice: false}, DistanceKm: 1},
		{Row: catalog.Row{StoreName: "A", StoreKey: "A", Product: "Arena", Price: 8000, HasPrice: true}, DistanceKm: 1},
	}

	quotes, err := NewEngine().Rank(context.Background(), cands, Cart{"Cemento": 1, "Arena": 1}, 3)
	require.NoError(t, err)
	require.Len(t, quotes, 1)
	assert.Equal(t, []string{"Cemento"}, quotes[0].MissingItems)
	assert.Equal(t, money.Amount(8000), quotes[0].TotalPrice)
}

// TestRankEmptyInputs tests the empty-cart and no-candidate cases
func TestRankEmptyInputs(t *testing.T) {
	quotes, err := NewEngine().Rank(context.Background(), nil, Cart{"Cemento": 1}, 3)
	require.NoError(t, err)
	assert.Empty(t, quotes)

	quotes, err = NewEngine().Rank(context.Background(), testCandidates(), Cart{}, 3)
	require.NoError(t, err)
	assert.Empty(t, quotes)
}

// TestRankInvalidInputs tests request validation
func TestRankInvalidInputs(t *testing.T) {
	_, err := NewEngine().Rank(context.Background(), testCandidates(), Cart{"": 1}, 3)
	require.Error(t, err)

	_, err = NewEngine().Rank(context.Background(), testCandidates(), Cart{"Cemento": 1}, -1)
	require.Error(t, err)
}

// TestRankIdempotent tests that ranking the same input twice gives the same
// order
func TestRankIdempotent(t *testing.T) {
	cart := Cart{"Cemento": 2, "Arena": 1}
	engine := NewEngine()

	first, err := engine.Rank(context.Background(), testCandidates(), cart, 3)
	require.NoError(t, err)
	second, err := engine.Rank(context.Background(), testCandidates(), cart, 3)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

// TestRankCanceledContext tests context cancellation during ranking
func TestRankCanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewEngine().Rank(ctx, testCandidates(), Cart{"Cemento": 1}, 3)
	require.ErrorIs(t, err, context.Canceled)
}

// TestQuoteAttachesStoreInfo tests the full path through the engine with a
// catalog snapshot, including contact info attachment and radius filtering
func TestQuoteAttachesStoreInfo(t *testing.T) {
	cat := &catalog.Catalog{
		Rows: []catalog.Row{
			{StoreName: "Ferretería San José", StoreKey: "FERRETERIA SAN JOSE", Product: "Cemento",
				Price: 3000, HasPrice: true, Latitude: -12.0700, Longitude: -77.0350, HasCoords: true},
			{StoreName: "Lejana", StoreKey: "LEJANA", Product: "Cemento",
				Price: 1000, HasPrice: true, Latitude: -12.5, Longitude: -77.0333, HasCoords: true},
		},
		Info: map[string]catalog.StoreInfo{
			"FERRETERIA SAN JOSE": {Name: "Ferretería San José", ContactPhone: "999888777"},
		},
	}
	loc := Location{Latitude: -12.0675, Longitude: -77.0333}

	quotes, err := NewEngine().Quote(context.Background(), cat, Cart{"Cemento": 1}, loc, 3, 3)
	require.NoError(t, err)
	require.Len(t, quotes, 1, "distant cheaper store is outside the radius")
	assert.Equal(t, "Ferretería San José", quotes[0].StoreName)
	require.NotNil(t, quotes[0].Info)
	assert.Equal(t, "999888777", quotes[0].Info.ContactPhone)
}
