package tabular

import (
	"fmt"
	"strconv"
	"strings"

	"holdings_backend/internal/feature/holdings/domain/columns"
	"holdings_backend/internal/feature/holdings/domain/entity"
	"holdings_backend/internal/shared/numparse"
)

// PickHoldingsTable returns the first table with a ticker-like column, or the
// first table when none qualifies. It returns nil for an empty slice.
func PickHoldingsTable(tables []*entity.Table) *entity.Table {
	if len(tables) == 0 {
		return nil
	}
	for _, t := range tables {
		if columns.HasAny(t.Columns, columns.TickerLike) {
			return t
		}
	}
	return tables[0]
}

// ExtractTotalAssets scans two-column label/value tables for a total assets
// row such as "Net Assets | $1.2B".
func ExtractTotalAssets(tables []*entity.Table) (float64, bool) {
	labels := make(map[string]bool, len(columns.AssetLabels))
	for _, l := range columns.AssetLabels {
		labels[l] = true
	}
	for _, t := range tables {
		if len(t.Columns) < 2 {
			continue
		}
		for r := range t.Rows {
			label, ok := t.Cell(r, 0).(string)
			if !ok || !labels[strings.ToLower(strings.TrimSpace(label))] {
				continue
			}
			if v, ok := numparse.Parse(t.Cell(r, 1)); ok {
				return v, true
			}
		}
	}
	return 0, false
}

// CellString renders a cell for matching and filtering. Blank cells yield "".
func CellString(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(x)
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	default:
		return strings.TrimSpace(fmt.Sprint(x))
	}
}
