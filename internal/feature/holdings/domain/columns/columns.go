// Package columns maps source column headers onto the canonical holding fields.
// Alias priorities are plain data so a new source only needs a new entry.
package columns

import "strings"

// Canonical field names.
const (
	Ticker      = "ticker"
	Name        = "name"
	Shares      = "shares"
	MarketValue = "market_value"
	Weight      = "weight"

	// Secondary columns consulted when the primary value is an invalid marker.
	TickerFallback = "__ticker_fallback"
	NameFallback   = "__name_fallback"
)

// Aliases lists, per canonical field, the normalized header keys in priority order.
var Aliases = map[string][]string{
	Ticker:         {"ticker", "symbol", "holdingticker", "stockticker"},
	TickerFallback: {"cusip"},
	Name:           {"name", "issuername", "holding", "holdingname", "security", "securityname"},
	NameFallback:   {"securitytypename"},
	Shares:         {"shares", "units", "shs", "sharesparvalue"},
	MarketValue:    {"marketvalue", "marketvaluebase", "marketvalueusd"},
	Weight: {
		"weight", "weighting", "weightings", "percentofnav", "weightofnav",
		"percentofnetassets", "percentageoftotalnetassets", "pctofnav", "percentmarketvalue",
	},
}

// Required are the canonical fields a source must provide. Weight is
// synthesized from market values when absent.
var Required = []string{Ticker, Name, Shares, MarketValue}

// resolveOrder fixes the order in which fields claim columns.
var resolveOrder = []string{Ticker, Name, NameFallback, Shares, TickerFallback, MarketValue, Weight}

// TickerLike are the keys that identify a holdings table among many.
var TickerLike = []string{"ticker", "symbol", "stockticker", "holdingticker"}

// AsOfKeys are the keys of columns carrying the source's as-of date.
var AsOfKeys = []string{"date", "asofdate", "asof"}

// AssetLabels are first-column labels of a profile table row holding total assets.
var AssetLabels = []string{"assets", "net assets", "aum", "total assets"}

// NormalizeKey lower-cases a header and strips everything but letters and
// digits. A percent sign reads as "percent" so "% of NAV" and "Percent of
// NAV" share a key.
func NormalizeKey(header string) string {
	s := strings.ToLower(strings.TrimSpace(header))
	s = strings.ReplaceAll(s, "%", "percent")
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// Index maps normalized keys to column positions. When two headers share a
// key the later one wins.
func Index(headers []string) map[string]int {
	idx := make(map[string]int, len(headers))
	for i, h := range headers {
		idx[NormalizeKey(h)] = i
	}
	return idx
}

// Resolve assigns a source column position to each canonical field (and the
// two fallback fields) it can find. Fields without a match are absent from
// the result.
func Resolve(headers []string) map[string]int {
	idx := Index(headers)
	out := make(map[string]int, len(resolveOrder))
	used := make(map[int]bool)
	for _, field := range resolveOrder {
		for _, alias := range Aliases[field] {
			if i, ok := idx[alias]; ok && !used[i] {
				out[field] = i
				used[i] = true
				break
			}
		}
	}
	if _, ok := out[Weight]; !ok {
		for i, h := range headers {
			key := NormalizeKey(h)
			if used[i] || idx[key] != i {
				continue
			}
			if strings.Contains(key, "weight") && !strings.Contains(key, "average") && !strings.Contains(key, "avg") {
				out[Weight] = i
				break
			}
		}
	}
	return out
}

// HasAny reports whether any header normalizes to one of keys.
func HasAny(headers []string, keys []string) bool {
	idx := Index(headers)
	for _, k := range keys {
		if _, ok := idx[k]; ok {
			return true
		}
	}
	return false
}

// Find returns the position of the first key present in headers, or -1.
func Find(headers []string, keys ...string) int {
	idx := Index(headers)
	for _, k := range keys {
		if i, ok := idx[k]; ok {
			return i
		}
	}
	return -1
}
