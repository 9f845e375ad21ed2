package catalog

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"
)

// readWorkbook parses every sheet of an XLSX workbook into tables. Sheets
// with no header row are skipped.
func readWorkbook(data []byte) ([]*table, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close()

	var tables []*table
	for _, sheet := range f.GetSheetList() {
		rows, err := f.GetRows(sheet)
		if err != nil {
			return nil, fmt.Errorf("read sheet %q: %w", sheet, err)
		}

		t := &table{name: sheet}
		for _, rec := range rows {
			empty := true
			for i := range rec {
				rec[i] = strings.TrimSpace(rec[i])
				if rec[i] != "" {
					empty = false
				}
			}
			if empty {
				continue
			}
			if t.headers == nil {
				t.headers = rec
				continue
			}
			t.rows = append(t.rows, rec)
		}
		if t.headers == nil {
			continue
		}
		tables = append(tables, t)
	}
	if len(tables) == 0 {
		return nil, fmt.Errorf("workbook has no usable sheets")
	}
	return tables, nil
}
