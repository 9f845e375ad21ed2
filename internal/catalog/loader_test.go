package catalog

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/ferredex/quote-service/internal/money"
)

func writeTestWorkbook(t *testing.T, sheets map[string][][]string) string {
	t.Helper()

	f := excelize.NewFile()
	first := true
	for name, rows := range sheets {
		if first {
			require.NoError(t, f.SetSheetName("Sheet1", name))
			first = false
		} else {
			_, err := f.NewSheet(name)
			require.NoError(t, err)
		}
		for i, row := range rows {
			cell, err := excelize.CoordinatesToCellName(1, i+1)
			require.NoError(t, err)
			require.NoError(t, f.SetSheetRow(name, cell, &row))
		}
	}

	path := filepath.Join(t.TempDir(), "catalog.xlsx")
	require.NoError(t, f.SaveAs(path))
	require.NoError(t, f.Close())
	return path
}

// TestLoadWorkbook tests loading a three-sheet workbook: prices,
// coordinates, and store info joined by normalized store name
func TestLoadWorkbook(t *testing.T) {
	path := writeTestWorkbook(t, map[string][][]string{
		"Precios": {
			{"Ferreteria", "Producto", "Precio Cliente Final en Soles", "Categoria", "Marca"},
			{"Ferretería San José", "Cemento", "30.50", "Construcción", "Sol"},
			{"Ferretería San José", "Arena", "80", "Construcción", ""},
			{"El Tornillo", "Cemento", "28,00", "Construcción", "Sol"},
		},
		"Coordenadas": {
			{"Nombre del Asociado", "Coordenadas"},
			{"FERRETERIA SAN JOSE", "-12.0675, -77.0333"},
			{"El Tornillo", "-12,0700, -77,0400"},
		},
		"Datos": {
			{"Ferreteria", "Dirección tienda", "Cta de abono para la venta", "Persona de contacto", "Número de Contacto", "Numero o Codigo Yape / Plin"},
			{"Ferreteria San Jose", "Av. Lima 123", "191-12345678", "María", "999888777", "999888777"},
		},
	})

	cat, err := NewLoader().Load(path)
	require.NoError(t, err)

	require.Len(t, cat.Rows, 3)
	assert.Equal(t, 0, cat.StoresWithoutCoords)
	assert.Equal(t, 0, cat.DuplicatePairs)

	byStore := make(map[string][]Row)
	for _, r := range cat.Rows {
		byStore[r.StoreKey] = append(byStore[r.StoreKey], r)
	}

	sanJose := byStore["FERRETERIA SAN JOSE"]
	require.Len(t, sanJose, 2)
	assert.True(t, sanJose[0].HasCoords)
	assert.InDelta(t, -12.0675, sanJose[0].Latitude, 1e-9)
	assert.Equal(t, money.Amount(3050), sanJose[0].Price)

	tornillo := byStore["EL TORNILLO"]
	require.Len(t, tornillo, 1)
	assert.True(t, tornillo[0].HasCoords)
	assert.InDelta(t, -12.07, tornillo[0].Latitude, 1e-9)
	assert.Equal(t, money.Amount(2800), tornillo[0].Price)

	// Info sheet joined despite accent and case differences
	info, ok := cat.Info["FERRETERIA SAN JOSE"]
	require.True(t, ok)
	assert.Equal(t, "Av. Lima 123", info.Address)
	assert.Equal(t, "María", info.ContactPerson)
}

// TestLoadDuplicatePairKeepsLastRow tests that a repeated store/product pair
// keeps the later price
func TestLoadDuplicatePairKeepsLastRow(t *testing.T) {
	path := writeTestWorkbook(t, map[string][][]string{
		"Precios": {
			{"Ferreteria", "Producto", "Precio", "Latitud", "Longitud"},
			{"Tienda A", "Cemento", "30", "-12.0", "-77.0"},
			{"Tienda A", "Cemento", "25", "-12.0", "-77.0"},
		},
	})

	cat, err := NewLoader().Load(path)
	require.NoError(t, err)

	require.Len(t, cat.Rows, 1)
	assert.Equal(t, 1, cat.DuplicatePairs)
	assert.Equal(t, money.Amount(2500), cat.Rows[0].Price)
}

// TestLoadStoresWithoutCoords tests that rows missing coordinates are kept
// but counted
func TestLoadStoresWithoutCoords(t *testing.T) {
	path := writeTestWorkbook(t, map[string][][]string{
		"Precios": {
			{"Ferreteria", "Producto", "Precio", "Latitud", "Longitud"},
			{"Con Coords", "Cemento", "30", "-12.0", "-77.0"},
			{"Sin Coords", "Cemento", "28", "", ""},
		},
	})

	cat, err := NewLoader().Load(path)
	require.NoError(t, err)

	require.Len(t, cat.Rows, 2)
	assert.Equal(t, 1, cat.StoresWithoutCoords)
}

// TestLoadUnparseablePrice tests that bad prices mark the row unavailable
// instead of failing the load
func TestLoadUnparseablePrice(t *testing.T) {
	path := writeTestWorkbook(t, map[string][][]string{
		"Precios": {
			{"Ferreteria", "Producto", "Precio", "Latitud", "Longitud"},
			{"Tienda A", "Cemento", "consultar", "-12.0", "-77.0"},
			{"Tienda A", "Arena", "80", "-12.0", "-77.0"},
		},
	})

	cat, err := NewLoader().Load(path)
	require.NoError(t, err)

	require.Len(t, cat.Rows, 2)
	assert.False(t, cat.Rows[0].HasPrice)
	assert.True(t, cat.Rows[1].HasPrice)
}

// TestLoadCSV tests loading a single-table CSV catalog with semicolon
// delimiters
func TestLoadCSV(t *testing.T) {
	content := "Ferreteria;Producto;Precio;Latitud;Longitud\n" +
		"Tienda A;Cemento;30,50;-12.0675;-77.0333\n" +
		"Tienda A;Arena;80;-12.0675;-77.0333\n"
	path := filepath.Join(t.TempDir(), "catalog.csv")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	cat, err := NewLoader().Load(path)
	require.NoError(t, err)

	require.Len(t, cat.Rows, 2)
	assert.Equal(t, money.Amount(3050), cat.Rows[0].Price)
	assert.True(t, cat.Rows[0].HasCoords)
}

// TestLoadMissingRequiredColumn tests that a table without a price column
// fails
func TestLoadMissingRequiredColumn(t *testing.T) {
	content := "Ferreteria,Producto\nTienda A,Cemento\n"
	path := filepath.Join(t.TempDir(), "catalog.csv")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	_, err := NewLoader().Load(path)
	require.Error(t, err)
}

// TestDetectDelimiter tests delimiter detection on mixed content
func TestDetectDelimiter(t *testing.T) {
	assert.Equal(t, ';', detectDelimiter("a;b;c\n1;2;3\n"))
	assert.Equal(t, ',', detectDelimiter("a,b,c\n1,2,3\n"))
	assert.Equal(t, '\t', detectDelimiter("a\tb\tc\n1\t2\t3\n"))
}

// TestStoreReload tests atomic snapshot replacement and failure behavior
func TestStoreReload(t *testing.T) {
	content := "Ferreteria,Producto,Precio\nTienda A,Cemento,30\n"
	path := filepath.Join(t.TempDir(), "catalog.csv")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	store := NewStore(path)
	_, err := store.Get()
	require.Error(t, err, "snapshot should be unavailable before first reload")

	_, err = store.Reload()
	require.NoError(t, err)

	cat, err := store.Get()
	require.NoError(t, err)
	assert.Len(t, cat.Rows, 1)

	// A broken file leaves the old snapshot in place
	require.NoError(t, os.WriteFile(path, []byte("garbage"), 0o644))
	_, err = store.Reload()
	require.Error(t, err)

	cat2, err := store.Get()
	require.NoError(t, err)
	assert.Equal(t, cat, cat2)
}

// TestCatalogDistinctListings tests product, category, and brand listings
func TestCatalogDistinctListings(t *testing.T) {
	cat := &Catalog{Rows: []Row{
		{StoreName: "A", Product: "Cemento", Category: "Construcción", Brand: "Sol"},
		{StoreName: "B", Product: "Cemento", Category: "Construcción", Brand: "Inka"},
		{StoreName: "A", Product: "Arena", Category: "Construcción"},
		{StoreName: "A", Product: "Martillo", Category: "Herramientas", Brand: "Stanley"},
	}}

	assert.Equal(t, []string{"Cemento", "Arena", "Martillo"}, cat.Products("", ""))
	assert.Equal(t, []string{"Martillo"}, cat.Products("Herramientas", ""))
	assert.Equal(t, []string{"Cemento"}, cat.Products("", "Sol"))
	assert.Equal(t, []string{"Construcción", "Herramientas"}, cat.Categories())
	assert.Equal(t, []string{"Sol", "Inka", "Stanley"}, cat.Brands())
	assert.Equal(t, []string{"A", "B"}, cat.StoreNames())
}
