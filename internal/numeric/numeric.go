// Package numeric normalizes loosely typed values coming out of
// document extraction into optional float64s.
package numeric

import (
	"math"
	"strconv"
	"strings"
)

var absentWords = map[string]bool{
	"":        true,
	"null":    true,
	"none":    true,
	"n/a":     true,
	"na":      true,
	"unknown": true,
	"-":       true,
	"tbd":     true,
}

var suffixScale = map[byte]float64{
	'k': 1e3,
	'm': 1e6,
	'b': 1e9,
}

// Float returns a pointer to v.
func Float(v float64) *float64 {
	return &v
}

// Parse coerces an arbitrary JSON-decoded value into an optional
// float64. Values that are absent, boolean, or unparseable yield nil.
func Parse(v any) *float64 {
	switch n := v.(type) {
	case nil:
		return nil
	case float64:
		return Float(n)
	case float32:
		return Float(float64(n))
	case int:
		return Float(float64(n))
	case int64:
		return Float(float64(n))
	case string:
		return ParseString(n)
	default:
		return nil
	}
}

// ParseString parses a human-formatted number: currency symbols,
// thousands separators, percent signs, and k/M/B magnitude suffixes
// are all tolerated. Unparseable input yields nil.
func ParseString(s string) *float64 {
	s = strings.TrimSpace(s)
	if absentWords[strings.ToLower(s)] {
		return nil
	}

	for _, sym := range []string{"$", "€", "£", "USD", "usd"} {
		s = strings.ReplaceAll(s, sym, "")
	}
	s = strings.ReplaceAll(s, ",", "")
	s = strings.TrimSuffix(s, "%")
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}

	scale := 1.0
	if last := strings.ToLower(s)[len(s)-1]; suffixScale[last] != 0 {
		scale = suffixScale[last]
		s = strings.TrimSpace(s[:len(s)-1])
	}

	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil
	}
	return Float(f * scale)
}

// Clamp bounds v to [lo, hi].
func Clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// Round1 rounds to one decimal place.
func Round1(v float64) float64 {
	return math.Round(v*10) / 10
}

// Round2 rounds to two decimal places.
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}
