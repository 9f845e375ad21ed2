// Package money provides a fixed-point amount type for catalog prices and
// quote totals. Amounts are integer minor units (céntimos); formatting to the
// Peruvian convention happens only at the presentation boundary.
package money

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/shopspring/decimal"
)

// Amount is a price or total in minor units (céntimos de sol).
type Amount int64

var currencyTextRe = regexp.MustCompile(`(?i)^\s*(S/\.?|PEN|SOLES?)\s*|\s*(S/\.?|PEN|SOLES?)\s*$`)

// Parse parses a price string into minor units.
// Handles "30", "30.50", "30,50", "1.234,56", "1,234.56" and an optional
// currency marker ("S/ 30.50", "30.50 soles").
func Parse(value string) (Amount, error) {
	cleaned := strings.TrimSpace(value)
	if cleaned == "" {
		return 0, fmt.Errorf("empty amount")
	}

	cleaned = currencyTextRe.ReplaceAllString(cleaned, "")
	cleaned = strings.Map(func(r rune) rune {
		if r == ' ' || r == '\u00a0' {
			return -1
		}
		return r
	}, cleaned)
	if cleaned == "" {
		return 0, fmt.Errorf("no numeric value in %q", value)
	}

	// Decide the decimal separator by whichever comes last.
	lastDot := strings.LastIndex(cleaned, ".")
	lastComma := strings.LastIndex(cleaned, ",")
	if lastComma > lastDot {
		// European style: 1.234,56
		cleaned = strings.ReplaceAll(cleaned, ".", "")
		cleaned = strings.Replace(cleaned, ",", ".", 1)
	} else if lastDot > lastComma {
		// US style: 1,234.56
		cleaned = strings.ReplaceAll(cleaned, ",", "")
	}

	d, err := decimal.NewFromString(cleaned)
	if err != nil {
		return 0, fmt.Errorf("invalid amount %q: %w", value, err)
	}
	if d.IsNegative() {
		return 0, fmt.Errorf("negative amount %q", value)
	}

	return Amount(d.Shift(2).Round(0).IntPart()), nil
}

// MulQty returns the line total for qty units at this unit price.
func (a Amount) MulQty(qty int) Amount {
	return a * Amount(qty)
}

// Decimal returns the amount as an exact decimal in major units.
func (a Amount) Decimal() decimal.Decimal {
	return decimal.New(int64(a), -2)
}

// Format renders the amount in the Peruvian convention: "S/ 1.234,56".
func Format(a Amount) string {
	negative := a < 0
	if negative {
		a = -a
	}
	whole := int64(a) / 100
	cents := int64(a) % 100

	digits := fmt.Sprintf("%d", whole)
	var b strings.Builder
	for i, r := range digits {
		if i > 0 && (len(digits)-i)%3 == 0 {
			b.WriteByte('.')
		}
		b.WriteRune(r)
	}

	sign := ""
	if negative {
		sign = "-"
	}
	return fmt.Sprintf("S/ %s%s,%02d", sign, b.String(), cents)
}
