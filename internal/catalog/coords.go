package catalog

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

var wktPointRe = regexp.MustCompile(`(?i)^POINT\s*\(\s*(-?[\d.,]+)\s+(-?[\d.,]+)\s*\)$`)

// ParseCoordPair parses a combined coordinate cell. Accepts "lat, lon",
// "lat; lon", decimal-comma variants like "-12,0675, -77,0333", and WKT
// "POINT(lon lat)".
func ParseCoordPair(s string) (lat, lon float64, err error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, 0, fmt.Errorf("empty coordinates")
	}

	if m := wktPointRe.FindStringSubmatch(s); m != nil {
		// WKT puts longitude first.
		lon, err = parseCoordNumber(m[1])
		if err != nil {
			return 0, 0, fmt.Errorf("invalid coordinates %q: %w", s, err)
		}
		lat, err = parseCoordNumber(m[2])
		if err != nil {
			return 0, 0, fmt.Errorf("invalid coordinates %q: %w", s, err)
		}
		return lat, lon, validateCoords(lat, lon)
	}

	first, second, err := splitCoordPair(s)
	if err != nil {
		return 0, 0, fmt.Errorf("invalid coordinates %q: %w", s, err)
	}
	lat, err = parseCoordNumber(first)
	if err != nil {
		return 0, 0, fmt.Errorf("invalid coordinates %q: %w", s, err)
	}
	lon, err = parseCoordNumber(second)
	if err != nil {
		return 0, 0, fmt.Errorf("invalid coordinates %q: %w", s, err)
	}
	return lat, lon, validateCoords(lat, lon)
}

// splitCoordPair separates a "lat<sep>lon" cell into its two halves,
// disambiguating commas used as decimal separators.
func splitCoordPair(s string) (string, string, error) {
	if i := strings.Index(s, ";"); i >= 0 {
		return s[:i], s[i+1:], nil
	}

	commas := strings.Count(s, ",")
	switch {
	case strings.Contains(s, ".") && commas >= 1:
		// Dots are the decimal separators, so the first comma splits.
		i := strings.Index(s, ",")
		return s[:i], s[i+1:], nil
	case commas == 1:
		i := strings.Index(s, ",")
		return s[:i], s[i+1:], nil
	case commas == 3:
		// "-12,0675, -77,0333": the middle comma splits.
		parts := strings.SplitN(s, ",", 4)
		return parts[0] + "," + parts[1], parts[2] + "," + parts[3], nil
	}

	fields := strings.Fields(s)
	if len(fields) == 2 {
		return fields[0], fields[1], nil
	}
	return "", "", fmt.Errorf("cannot split pair")
}

// parseCoordNumber parses a single coordinate, accepting a decimal comma.
func parseCoordNumber(s string) (float64, error) {
	s = strings.TrimSpace(s)
	if strings.Count(s, ",") == 1 && !strings.Contains(s, ".") {
		s = strings.Replace(s, ",", ".", 1)
	}
	return strconv.ParseFloat(s, 64)
}

func validateCoords(lat, lon float64) error {
	if lat < -90 || lat > 90 {
		return fmt.Errorf("latitude %v out of range", lat)
	}
	if lon < -180 || lon > 180 {
		return fmt.Errorf("longitude %v out of range", lon)
	}
	return nil
}
