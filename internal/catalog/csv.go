package catalog

import (
	"encoding/csv"
	"fmt"
	"strings"
)

// table is a parsed sheet or CSV file: a header row plus data rows, all cells
// trimmed.
type table struct {
	name    string
	headers []string
	rows    [][]string
}

func (t *table) cell(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return row[idx]
}

// detectDelimiter picks the delimiter whose count is most consistent across
// the first lines of the file.
func detectDelimiter(content string) rune {
	lines := strings.Split(content, "\n")
	var sample []string
	for _, ln := range lines {
		if strings.TrimSpace(ln) == "" {
			continue
		}
		sample = append(sample, ln)
		if len(sample) == 5 {
			break
		}
	}
	if len(sample) == 0 {
		return ','
	}

	best := ','
	bestScore := -1.0
	for _, cand := range []rune{',', ';', '\t'} {
		counts := make([]float64, len(sample))
		total := 0.0
		for i, ln := range sample {
			c := float64(strings.Count(ln, string(cand)))
			counts[i] = c
			total += c
		}
		avg := total / float64(len(sample))
		if avg == 0 {
			continue
		}
		variance := 0.0
		for _, c := range counts {
			variance += (c - avg) * (c - avg)
		}
		variance /= float64(len(sample))
		score := avg / (1 + variance)
		if score > bestScore {
			bestScore = score
			best = cand
		}
	}
	return best
}

// readCSVTable parses one delimited file into a table. The first non-empty
// row becomes the headers.
func readCSVTable(name string, data []byte) (*table, error) {
	content, err := decodeToUTF8(data)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", name, err)
	}
	content = normalizeLineEndings(content)

	r := csv.NewReader(strings.NewReader(content))
	r.Comma = detectDelimiter(content)
	r.FieldsPerRecord = -1
	r.LazyQuotes = true

	records, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", name, err)
	}

	t := &table{name: name}
	for _, rec := range records {
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
		return nil, fmt.Errorf("%s: no header row", name)
	}
	return t, nil
}
