package tabular

import (
	"fmt"
	"sort"

	"holdings_backend/internal/feature/holdings/domain"
	"holdings_backend/internal/feature/holdings/domain/entity"
)

// FromRecords builds a table from a decoded JSON array of objects. Columns
// are the union of object keys in sorted order. Nested objects and arrays are
// left blank.
func FromRecords(items []any) (*entity.Table, error) {
	keys := make(map[string]struct{})
	records := make([]map[string]any, 0, len(items))
	for i, it := range items {
		rec, ok := it.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("%w: record %d is %T, want object", domain.ErrParse, i, it)
		}
		for k := range rec {
			keys[k] = struct{}{}
		}
		records = append(records, rec)
	}

	cols := make([]string, 0, len(keys))
	for k := range keys {
		cols = append(cols, k)
	}
	sort.Strings(cols)

	t := entity.NewTable(cols...)
	for _, rec := range records {
		row := make([]any, len(cols))
		for i, c := range cols {
			switch v := rec[c].(type) {
			case map[string]any, []any:
			default:
				row[i] = v
			}
		}
		t.Rows = append(t.Rows, row)
	}
	return t, nil
}
