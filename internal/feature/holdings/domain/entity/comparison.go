package entity

// Status classifies a joined row of a snapshot comparison.
type Status string

const (
	StatusAdded   Status = "added"
	StatusRemoved Status = "removed"
	StatusChanged Status = "changed"
)

// ComparisonRow is one ticker of the full outer join between two snapshots.
// Start* fields are nil when the ticker is absent from the start snapshot,
// End* fields are nil when it is absent from the end snapshot.
type ComparisonRow struct {
	Ticker           string
	Name             string
	StartShares      *float64
	EndShares        *float64
	StartMarketValue *float64
	EndMarketValue   *float64
	StartWeight      *float64
	EndWeight        *float64
	Status           Status
	SharesDelta      float64
	MarketValueDelta float64
}

// Comparison holds the classified and sorted views of a snapshot diff.
type Comparison struct {
	Added   []ComparisonRow // market value delta, descending
	Removed []ComparisonRow // market value delta, ascending
	Changed []ComparisonRow // nonzero shares delta only, market value delta descending
	All     []ComparisonRow // every joined row, ticker ascending
}

// EmptyComparison returns a comparison with four empty, non-nil views.
func EmptyComparison() Comparison {
	return Comparison{
		Added:   []ComparisonRow{},
		Removed: []ComparisonRow{},
		Changed: []ComparisonRow{},
		All:     []ComparisonRow{},
	}
}
