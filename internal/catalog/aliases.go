package catalog

import (
	"fmt"
	"strings"
)

// Field identifies a logical column the loader looks for in input tables.
type Field string

const (
	FieldStore    Field = "store"
	FieldProduct  Field = "product"
	FieldPrice    Field = "price"
	FieldCategory Field = "category"
	FieldBrand    Field = "brand"

	FieldCoordStore Field = "coord_store"
	FieldCoordPair  Field = "coord_pair"
	FieldLatitude   Field = "latitude"
	FieldLongitude  Field = "longitude"

	FieldInfoStore     Field = "info_store"
	FieldAddress       Field = "address"
	FieldPayoutAccount Field = "payout_account"
	FieldContactPerson Field = "contact_person"
	FieldContactPhone  Field = "contact_phone"
	FieldWalletCode    Field = "wallet_code"
)

// fieldAliases maps each logical field to the header spellings seen in the
// source files. Matching happens on normalized headers.
var fieldAliases = map[Field][]string{
	FieldStore:    {"Ferreteria", "Ferretería", "Tienda", "Store"},
	FieldProduct:  {"Producto", "Product", "Articulo", "Artículo"},
	FieldPrice:    {"Precio Cliente Final en Soles", "Precio", "Price", "Precio Final"},
	FieldCategory: {"Categoria", "Categoría", "Category"},
	FieldBrand:    {"Marca", "Brand"},

	FieldCoordStore: {"Nombre del Asociado", "Ferreteria", "Tienda"},
	FieldCoordPair:  {"Coordenadas", "Coordinates", "Ubicacion", "Ubicación"},
	FieldLatitude:   {"Latitud", "Latitude", "Lat"},
	FieldLongitude:  {"Longitud", "Longitude", "Lon", "Lng"},

	FieldInfoStore:     {"Ferreteria", "Nombre del Asociado", "Tienda"},
	FieldAddress:       {"Direccion tienda", "Dirección tienda", "Direccion"},
	FieldPayoutAccount: {"Cta de abono para la venta", "Cta de abono", "Cuenta de abono"},
	FieldContactPerson: {"Persona de contacto", "Contacto"},
	FieldContactPhone:  {"Numero de Contacto", "Número de Contacto", "Telefono", "Teléfono"},
	FieldWalletCode:    {"Numero o Codigo Yape / Plin", "Yape / Plin", "Yape", "Plin"},
}

// ErrColumnNotFound reports a required field missing from a table's headers.
type ErrColumnNotFound struct {
	Field   Field
	Headers []string
}

func (e ErrColumnNotFound) Error() string {
	return fmt.Sprintf("column for %q not found in headers %v", e.Field, e.Headers)
}

// resolveColumns maps fields to header indexes. Required fields missing from
// the headers produce an error; optional ones are simply absent from the map.
func resolveColumns(headers []string, required, optional []Field) (map[Field]int, error) {
	normalized := make([]string, len(headers))
	for i, h := range headers {
		normalized[i] = NormalizeHeader(h)
	}

	find := func(f Field) (int, bool) {
		aliases := fieldAliases[f]
		// Exact normalized match first.
		for _, alias := range aliases {
			want := NormalizeHeader(alias)
			for i, h := range normalized {
				if h == want {
					return i, true
				}
			}
		}
		// Then substring fallback, for headers carrying extra annotation.
		for _, alias := range aliases {
			want := NormalizeHeader(alias)
			if len(want) < 4 {
				continue
			}
			for i, h := range normalized {
				if strings.Contains(h, want) {
					return i, true
				}
			}
		}
		return 0, false
	}

	cols := make(map[Field]int)
	for _, f := range required {
		idx, ok := find(f)
		if !ok {
			return nil, ErrColumnNotFound{Field: f, Headers: headers}
		}
		cols[f] = idx
	}
	for _, f := range optional {
		if idx, ok := find(f); ok {
			cols[f] = idx
		}
	}
	return cols, nil
}
