package quote

import (
	"context"
	"sort"
	"strconv"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/ferredex/quote-service/internal/catalog"
	"github.com/ferredex/quote-service/internal/money"
)

// DefaultTopN is how many store quotes a request returns when the caller does
// not say otherwise.
const DefaultTopN = 3

// Engine ranks stores for a cart.
type Engine struct {
	metrics *MetricsRecorder
	logger  zerolog.Logger
}

func NewEngine() *Engine {
	return &Engine{
		metrics: NewMetricsRecorder(),
		logger:  log.With().Str("component", "quote_engine").Logger(),
	}
}

// Quote filters the catalog by radius, ranks the candidates, and attaches
// store contact info to the results.
func (e *Engine) Quote(ctx context.Context, cat *catalog.Catalog, cart Cart, loc Location, radiusKm float64, topN int) ([]StoreQuote, error) {
	filtered, err := StoresWithinRadius(cat.Rows, loc.Latitude, loc.Longitude, radiusKm)
	if err != nil {
		return nil, err
	}

	quotes, err := e.Rank(ctx, filtered, cart, topN)
	if err != nil {
		return nil, err
	}

	for i := range quotes {
		if info, ok := cat.Info[catalog.JoinKey(quotes[i].StoreName)]; ok {
			quotes[i].Info = &info
		}
	}
	return quotes, nil
}

type storeGroup struct {
	name     string
	lat, lon float64
	rows     []RowWithDistance
}

type priceEntry struct {
	amount money.Amount
	has    bool
}

// Rank resolves the cart against each candidate store and returns the topN
// cheapest, ties broken by distance.
func (e *Engine) Rank(ctx context.Context, filtered []RowWithDistance, cart Cart, topN int) ([]StoreQuote, error) {
	start := time.Now()
	defer func() {
		e.metrics.RecordRankDuration(time.Since(start))
	}()

	if topN < 0 {
		return nil, ErrInvalidRequest{Field: "top_n", Reason: "must not be negative"}
	}
	if topN == 0 {
		topN = DefaultTopN
	}
	for product := range cart {
		if product == "" {
			return nil, ErrInvalidRequest{Field: "cart", Reason: "empty product name"}
		}
	}

	e.metrics.RecordCartSize(cart.Items())

	if len(filtered) == 0 || cart.Items() == 0 {
		return []StoreQuote{}, nil
	}

	groups := groupByStore(filtered)
	e.metrics.RecordCandidateCount(len(groups))

	var quotes []StoreQuote
	for _, g := range groups {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		q, ok := e.resolveCart(g, cart)
		if !ok {
			continue
		}
		quotes = append(quotes, q)
	}

	sort.Slice(quotes, func(i, j int) bool {
		if quotes[i].TotalPrice != quotes[j].TotalPrice {
			return quotes[i].TotalPrice < quotes[j].TotalPrice
		}
		if quotes[i].DistanceKm != quotes[j].DistanceKm {
			return quotes[i].DistanceKm < quotes[j].DistanceKm
		}
		return quotes[i].StoreName < quotes[j].StoreName
	})

	if len(quotes) > topN {
		quotes = quotes[:topN]
	}
	if quotes == nil {
		quotes = []StoreQuote{}
	}
	e.metrics.RecordResultCount(len(quotes))
	return quotes, nil
}

// groupByStore buckets rows by store identity, preserving first-appearance
// order. Identity is name plus coordinates: branches sharing a name at
// different locations quote separately.
func groupByStore(rows []RowWithDistance) []*storeGroup {
	byKey := make(map[string]*storeGroup)
	var order []*storeGroup
	for _, r := range rows {
		key := r.StoreKey + "|" +
			strconv.FormatFloat(r.Latitude, 'f', -1, 64) + "|" +
			strconv.FormatFloat(r.Longitude, 'f', -1, 64)
		g, ok := byKey[key]
		if !ok {
			g = &storeGroup{name: r.StoreName, lat: r.Latitude, lon: r.Longitude}
			byKey[key] = g
			order = append(order, g)
		}
		g.rows = append(g.rows, r)
	}
	return order
}

// resolveCart prices the cart at one store. Returns false when the store
// matches none of the requested products.
func (e *Engine) resolveCart(g *storeGroup, cart Cart) (StoreQuote, bool) {
	prices := make(map[string]priceEntry)
	minDist := g.rows[0].DistanceKm
	for _, r := range g.rows {
		// Later rows overwrite earlier ones for the same product.
		prices[r.Product] = priceEntry{amount: r.Price, has: r.HasPrice}
		if r.DistanceKm < minDist {
			minDist = r.DistanceKm
		}
	}

	products := make([]string, 0, len(cart))
	for p := range cart {
		products = append(products, p)
	}
	sort.Strings(products)

	q := StoreQuote{
		StoreName:  g.name,
		Latitude:   g.lat,
		Longitude:  g.lon,
		DistanceKm: minDist,
	}
	for _, product := range products {
		qty := cart[product]
		if qty <= 0 {
			continue
		}
		entry, ok := prices[product]
		if !ok || !entry.has {
			q.MissingItems = append(q.MissingItems, product)
			continue
		}
		line := entry.amount.MulQty(qty)
		q.MatchedItems = append(q.MatchedItems, MatchedItem{
			Product:   product,
			Quantity:  qty,
			UnitPrice: entry.amount,
			LineTotal: line,
		})
		q.TotalPrice += line
	}

	if len(q.MatchedItems) == 0 {
		return StoreQuote{}, false
	}
	return q, true
}
