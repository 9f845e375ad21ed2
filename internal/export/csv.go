package export

import (
	"bytes"
	"encoding/csv"
	"fmt"

	"github.com/ferredex/quote-service/internal/quote"
)

// QuoteCSV renders one store quote as CSV.
func QuoteCSV(q quote.StoreQuote) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	records := [][]string{
		{"store", "product", "quantity", "unit_price", "line_total"},
	}
	for _, item := range q.MatchedItems {
		records = append(records, []string{
			q.StoreName,
			item.Product,
			fmt.Sprintf("%d", item.Quantity),
			item.UnitPrice.Decimal().StringFixed(2),
			item.LineTotal.Decimal().StringFixed(2),
		})
	}
	records = append(records, []string{q.StoreName, "TOTAL", "", "", q.TotalPrice.Decimal().StringFixed(2)})
	for _, p := range q.MissingItems {
		records = append(records, []string{q.StoreName, p, "", "MISSING", ""})
	}

	if err := w.WriteAll(records); err != nil {
		return nil, fmt.Errorf("write csv: %w", err)
	}
	return buf.Bytes(), nil
}
