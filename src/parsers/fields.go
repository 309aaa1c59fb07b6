// backend/src/parsers/fields.go
package parsers

import (
	"math"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"
)

// lookup returns the first non-empty value among the alias names. Exact header matches
// win; a case-insensitive, whitespace-insensitive match is the fallback.
func lookup(row RawRow, names []string) (string, bool) {
	for _, name := range names {
		if value := row[name]; value != "" {
			return value, true
		}
	}
	headers := make([]string, 0, len(row))
	for header := range row {
		headers = append(headers, header)
	}
	sort.Strings(headers)
	for _, name := range names {
		want := foldHeader(name)
		for _, header := range headers {
			if value := row[header]; value != "" && foldHeader(header) == want {
				return value, true
			}
		}
	}
	return "", false
}

func foldHeader(s string) string {
	return strings.ToLower(strings.Join(strings.Fields(s), " "))
}

var (
	numberPrefixRe  = regexp.MustCompile(`^[+-]?(\d+\.?\d*|\.\d+)([eE][+-]?\d+)?`)
	amountCleanerRe = regexp.MustCompile(`[$€£,\s]`)
)

// parseAmount coerces a broker number cell ("$1,070.00", "(12.5)", "10S") to a float.
// It reports false for empty, unparseable, non-finite or zero values.
func parseAmount(s string) (float64, bool) {
	cleaned := strings.TrimSpace(s)
	negative := false
	if strings.HasPrefix(cleaned, "(") && strings.HasSuffix(cleaned, ")") {
		negative = true
		cleaned = cleaned[1 : len(cleaned)-1]
	}
	cleaned = amountCleanerRe.ReplaceAllString(cleaned, "")

	match := numberPrefixRe.FindString(cleaned)
	if match == "" {
		return 0, false
	}
	value, err := strconv.ParseFloat(match, 64)
	if err != nil || math.IsNaN(value) || math.IsInf(value, 0) || value == 0 {
		return 0, false
	}
	if negative {
		value = -value
	}
	return value, true
}

// ISOTimestampFormat is the layout trade dates are emitted in.
const ISOTimestampFormat = "2006-01-02T15:04:05.000Z"

var tradeDateLayouts = []string{
	"1/2/2006",
	"01/02/2006",
	"1/2/06",
	"2006-01-02",
	time.RFC3339,
	time.RFC3339Nano,
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04",
	"2006-01-02 3:04:05 PM",
	"1/2/2006 15:04:05",
	"1/2/2006 15:04",
	"1/2/2006 3:04:05 PM",
	"1/2/2006 3:04 PM",
	"2006/01/02",
	"Jan 2, 2006",
	"Jan 2 2006",
	"January 2, 2006",
	"02-Jan-2006",
	"2 Jan 2006",
}

// ParseTradeDate parses a statement date and re-emits it as an ISO-8601 UTC timestamp.
// Dates without a zone are taken as UTC.
func ParseTradeDate(s string) (string, bool) {
	value := strings.TrimSpace(s)
	if value == "" {
		return "", false
	}
	for _, layout := range tradeDateLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t.UTC().Format(ISOTimestampFormat), true
		}
	}
	return "", false
}
