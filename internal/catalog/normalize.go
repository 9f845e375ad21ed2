package catalog

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var diacriticStripper = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// RemoveDiacritics strips combining marks so "Ferretería" matches "Ferreteria".
func RemoveDiacritics(s string) string {
	out, _, err := transform.String(diacriticStripper, s)
	if err != nil {
		return s
	}
	return out
}

// JoinKey normalizes a store name into the key used to match rows across
// sheets: diacritics removed, whitespace collapsed, upper-cased.
func JoinKey(s string) string {
	s = RemoveDiacritics(s)
	s = strings.Join(strings.Fields(s), " ")
	return strings.ToUpper(s)
}

var headerPunctRe = regexp.MustCompile(`[:;,.\-–—]+`)

// NormalizeHeader canonicalizes a column header for alias matching.
func NormalizeHeader(s string) string {
	s = RemoveDiacritics(s)
	s = headerPunctRe.ReplaceAllString(s, " ")
	s = strings.Join(strings.Fields(s), " ")
	return strings.ToUpper(s)
}
