// Package numparse converts heterogeneous numeric cells (currency strings,
// accounting negatives, magnitude suffixes) into float64 values.
package numparse

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

var suffixMultipliers = map[byte]int64{
	'k': 1_000,
	'm': 1_000_000,
	'b': 1_000_000_000,
	't': 1_000_000_000_000,
}

var stripper = strings.NewReplacer(",", "", "$", "", "%", "", ")", "")

// Parse returns the numeric value of v. The boolean is false for nil, blank
// or unparseable input; Parse never fails loudly.
func Parse(v any) (float64, bool) {
	switch x := v.(type) {
	case nil:
		return 0, false
	case float64:
		return finite(x)
	case float32:
		return finite(float64(x))
	case int:
		return float64(x), true
	case int64:
		return float64(x), true
	case int32:
		return float64(x), true
	case json.Number:
		return ParseString(x.String())
	case string:
		return ParseString(x)
	default:
		return 0, false
	}
}

// ParseString applies the text rules of Parse.
func ParseString(s string) (float64, bool) {
	text := strings.TrimSpace(s)
	if text == "" {
		return 0, false
	}
	text = stripper.Replace(text)
	text = strings.ReplaceAll(text, "(", "-")

	mult := int64(1)
	if n := len(text); n > 0 {
		if m, ok := suffixMultipliers[lower(text[n-1])]; ok {
			mult = m
			text = text[:n-1]
		}
	}

	d, err := decimal.NewFromString(strings.TrimSpace(text))
	if err != nil {
		return 0, false
	}
	f, _ := d.Mul(decimal.NewFromInt(mult)).Float64()
	return finite(f)
}

// Format renders f in the shortest form ParseString reads back exactly.
func Format(f float64) string {
	return strconv.FormatFloat(f, 'g', -1, 64)
}

func finite(f float64) (float64, bool) {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

func lower(c byte) byte {
	if c >= 'A' && c <= 'Z' {
		return c + ('a' - 'A')
	}
	return c
}
