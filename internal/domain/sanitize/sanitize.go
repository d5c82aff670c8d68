// Package sanitize normalizes raw provider values into the types the
// aggregation engine merges. Providers hand back strings, numbers or
// mixed JSON types depending on the upstream wire format; everything is
// coerced here so the merge only ever sees clean values.
package sanitize

import (
	"strings"
	"unicode"

	"github.com/spf13/cast"
)

// Coordinate parses a latitude or longitude value of any raw type into
// a float. Returns nil if the value is absent or unparseable.
func Coordinate(v any) *float64 {
	if v == nil {
		return nil
	}
	if s, ok := v.(string); ok && strings.TrimSpace(s) == "" {
		return nil
	}
	f, err := cast.ToFloat64E(v)
	if err != nil {
		return nil
	}
	return &f
}

// ASN parses an autonomous system number, accepting numeric types and
// strings with or without the "AS" prefix. Negative or unparseable
// values are rejected.
func ASN(v any) *int64 {
	if v == nil {
		return nil
	}
	if s, ok := v.(string); ok {
		s = strings.TrimSpace(strings.TrimPrefix(strings.ToUpper(strings.TrimSpace(s)), "AS"))
		if s == "" {
			return nil
		}
		v = s
	}
	n, err := cast.ToInt64E(v)
	if err != nil || n < 0 {
		return nil
	}
	return &n
}

// CountryCode upper-cases and trims a 2-letter ISO country code.
// Anything that is not exactly two letters comes back empty.
func CountryCode(s string) string {
	s = strings.ToUpper(strings.TrimSpace(s))
	if len(s) != 2 {
		return ""
	}
	for _, r := range s {
		if r < 'A' || r > 'Z' {
			return ""
		}
	}
	return s
}

// RegionCode upper-cases and trims a subdivision code.
func RegionCode(s string) string {
	return strings.ToUpper(strings.TrimSpace(s))
}

// PostalCode strips everything that is not a letter or digit.
func PostalCode(s string) string {
	var b strings.Builder
	for _, r := range s {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// Text trims free-text fields.
func Text(s string) string {
	return strings.TrimSpace(s)
}
