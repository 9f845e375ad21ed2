// Package catalog loads hardware-store price data from XLSX workbooks or CSV
// files, joins price rows with per-store coordinates and contact info, and
// exposes an immutable snapshot for the quote engine.
package catalog

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/ferredex/quote-service/internal/money"
)

// Loader reads and assembles a catalog from disk.
type Loader struct {
	logger zerolog.Logger
}

func NewLoader() *Loader {
	return &Loader{
		logger: log.With().Str("component", "catalog_loader").Logger(),
	}
}

// Load reads the file at path and assembles a catalog snapshot.
func (l *Loader) Load(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog file: %w", err)
	}

	var tables []*table
	if strings.EqualFold(filepath.Ext(path), ".xlsx") {
		tables, err = readWorkbook(data)
	} else {
		var t *table
		t, err = readCSVTable(filepath.Base(path), data)
		if t != nil {
			tables = []*table{t}
		}
	}
	if err != nil {
		return nil, err
	}

	return l.assemble(tables)
}

type coordEntry struct {
	lat, lon float64
}

func (l *Loader) assemble(tables []*table) (*Catalog, error) {
	priceTable, priceCols, err := findTable(tables, nil,
		[]Field{FieldStore, FieldProduct, FieldPrice},
		[]Field{FieldCategory, FieldBrand, FieldLatitude, FieldLongitude, FieldCoordPair})
	if err != nil {
		return nil, fmt.Errorf("no price table found: %w", err)
	}

	coords := l.collectCoords(tables, priceTable)
	info := l.collectInfo(tables, priceTable)

	cat := &Catalog{
		Info:     info,
		LoadedAt: time.Now(),
	}

	index := make(map[string]int)
	for _, rec := range priceTable.rows {
		storeName := priceTable.cell(rec, priceCols[FieldStore])
		product := priceTable.cell(rec, priceCols[FieldProduct])
		if storeName == "" || product == "" {
			continue
		}

		row := Row{
			StoreName: storeName,
			StoreKey:  JoinKey(storeName),
			Product:   product,
		}
		if idx, ok := priceCols[FieldCategory]; ok {
			row.Category = priceTable.cell(rec, idx)
		}
		if idx, ok := priceCols[FieldBrand]; ok {
			row.Brand = priceTable.cell(rec, idx)
		}

		raw := priceTable.cell(rec, priceCols[FieldPrice])
		price, err := money.Parse(raw)
		if err != nil {
			l.logger.Warn().Str("store", storeName).Str("product", product).
				Str("price", raw).Msg("unparseable price, marking unavailable")
		} else {
			row.Price = price
			row.HasPrice = true
		}

		l.applyInlineCoords(&row, priceTable, rec, priceCols)
		if c, ok := coords[row.StoreKey]; ok {
			// A dedicated coordinate sheet wins over inline columns.
			row.Latitude, row.Longitude = c.lat, c.lon
			row.HasCoords = true
		}

		key := row.StoreKey + "\x00" + product
		if prev, ok := index[key]; ok {
			l.logger.Warn().Str("store", storeName).Str("product", product).
				Msg("duplicate store/product pair, keeping last row")
			cat.Rows[prev] = row
			cat.DuplicatePairs++
			continue
		}
		index[key] = len(cat.Rows)
		cat.Rows = append(cat.Rows, row)
	}

	if len(cat.Rows) == 0 {
		return nil, fmt.Errorf("catalog has no usable rows")
	}

	missing := make(map[string]struct{})
	for _, r := range cat.Rows {
		if !r.HasCoords {
			missing[r.StoreKey] = struct{}{}
		}
	}
	cat.StoresWithoutCoords = len(missing)
	for k := range missing {
		l.logger.Warn().Str("store", k).Msg("store has no coordinates, excluded from radius search")
	}

	l.logger.Info().
		Int("rows", len(cat.Rows)).
		Int("stores", len(cat.StoreNames())).
		Int("info_entries", len(cat.Info)).
		Msg("catalog loaded")
	return cat, nil
}

func (l *Loader) applyInlineCoords(row *Row, t *table, rec []string, cols map[Field]int) {
	if idx, ok := cols[FieldCoordPair]; ok {
		if raw := t.cell(rec, idx); raw != "" {
			lat, lon, err := ParseCoordPair(raw)
			if err == nil {
				row.Latitude, row.Longitude = lat, lon
				row.HasCoords = true
				return
			}
			l.logger.Warn().Str("store", row.StoreName).Str("coords", raw).Msg("unparseable coordinates")
		}
	}
	latIdx, okLat := cols[FieldLatitude]
	lonIdx, okLon := cols[FieldLongitude]
	if !okLat || !okLon {
		return
	}
	rawLat, rawLon := t.cell(rec, latIdx), t.cell(rec, lonIdx)
	if rawLat == "" || rawLon == "" {
		return
	}
	lat, errLat := parseCoordNumber(rawLat)
	lon, errLon := parseCoordNumber(rawLon)
	if errLat != nil || errLon != nil || validateCoords(lat, lon) != nil {
		l.logger.Warn().Str("store", row.StoreName).Msg("unparseable coordinates")
		return
	}
	row.Latitude, row.Longitude = lat, lon
	row.HasCoords = true
}

// collectCoords scans the non-price tables for a coordinate sheet.
func (l *Loader) collectCoords(tables []*table, priceTable *table) map[string]coordEntry {
	t, cols, err := findCoordTable(tables, priceTable)
	if err != nil {
		return nil
	}

	out := make(map[string]coordEntry)
	for _, rec := range t.rows {
		name := t.cell(rec, cols[FieldCoordStore])
		if name == "" {
			continue
		}
		key := JoinKey(name)

		if idx, ok := cols[FieldCoordPair]; ok {
			raw := t.cell(rec, idx)
			if raw == "" {
				continue
			}
			lat, lon, err := ParseCoordPair(raw)
			if err != nil {
				l.logger.Warn().Str("store", name).Str("coords", raw).Msg("unparseable coordinates")
				continue
			}
			out[key] = coordEntry{lat: lat, lon: lon}
			continue
		}

		lat, errLat := parseCoordNumber(t.cell(rec, cols[FieldLatitude]))
		lon, errLon := parseCoordNumber(t.cell(rec, cols[FieldLongitude]))
		if errLat != nil || errLon != nil || validateCoords(lat, lon) != nil {
			l.logger.Warn().Str("store", name).Msg("unparseable coordinates")
			continue
		}
		out[key] = coordEntry{lat: lat, lon: lon}
	}
	return out
}

// collectInfo scans for a store-info sheet carrying contact and payment data.
func (l *Loader) collectInfo(tables []*table, priceTable *table) map[string]StoreInfo {
	t, cols, err := findTable(tables, priceTable,
		[]Field{FieldInfoStore, FieldAddress, FieldPayoutAccount, FieldContactPerson, FieldContactPhone, FieldWalletCode},
		nil)
	if err != nil {
		return map[string]StoreInfo{}
	}

	out := make(map[string]StoreInfo)
	for _, rec := range t.rows {
		name := t.cell(rec, cols[FieldInfoStore])
		if name == "" {
			continue
		}
		out[JoinKey(name)] = StoreInfo{
			Name:          name,
			Address:       t.cell(rec, cols[FieldAddress]),
			PayoutAccount: t.cell(rec, cols[FieldPayoutAccount]),
			ContactPerson: t.cell(rec, cols[FieldContactPerson]),
			ContactPhone:  t.cell(rec, cols[FieldContactPhone]),
			WalletCode:    t.cell(rec, cols[FieldWalletCode]),
		}
	}
	return out
}

// findTable returns the first table (other than skip) whose headers resolve
// all required fields.
func findTable(tables []*table, skip *table, required, optional []Field) (*table, map[Field]int, error) {
	var lastErr error
	for _, t := range tables {
		if t == skip {
			continue
		}
		cols, err := resolveColumns(t.headers, required, optional)
		if err != nil {
			lastErr = err
			continue
		}
		return t, cols, nil
	}
	if lastErr == nil {
		lastErr = fmt.Errorf("no candidate tables")
	}
	return nil, nil, lastErr
}

func findCoordTable(tables []*table, priceTable *table) (*table, map[Field]int, error) {
	t, cols, err := findTable(tables, priceTable, []Field{FieldCoordStore, FieldCoordPair}, nil)
	if err == nil {
		return t, cols, nil
	}
	return findTable(tables, priceTable, []Field{FieldCoordStore, FieldLatitude, FieldLongitude}, nil)
}
