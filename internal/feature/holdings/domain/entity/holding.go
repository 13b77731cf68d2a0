// Package entity defines the domain models for the holdings feature.
package entity

import "time"

// Sentinel tickers written by the normalizer and the scraped source.
const (
	TickerUninvestedCash = "UNINVESTED_CASH" // identified cash placeholder
	TickerUninvested     = "UNINVESTED"      // position without any usable identifier
	TickerOther          = "OTHER"           // synthetic bucket for source-limited snapshots

	NameUninvestedCash = "Uninvested Cash"
	NameUnspecified    = "Unspecified Position"
	NameOther          = "Other holdings (source-limited)"
)

// DateLayout is the canonical text form of a snapshot date.
const DateLayout = "2006-01-02"

// Holding represents one position in one fund on one as-of date.
// (Date, Fund, Ticker) is unique within a snapshot.
type Holding struct {
	Date        time.Time // Snapshot as-of date (UTC midnight)
	Fund        string    // Upper-case fund ticker (e.g., "YYY")
	Ticker      string    // Upper-case security identifier or a sentinel ticker
	Name        string    // Human-readable security name
	Shares      float64   // Quantity held; 0 for synthetic rows
	MarketValue float64   // Value in fund currency
	Weight      float64   // Percentage of fund net assets, nominally 0-100
}

// Day truncates t to a UTC calendar date.
func Day(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// ParseDay parses a YYYY-MM-DD string into a UTC calendar date.
func ParseDay(s string) (time.Time, error) {
	return time.Parse(DateLayout, s)
}

// Totals is the aggregate view of one snapshot.
type Totals struct {
	TotalAUM      float64
	HoldingsCount int
}
