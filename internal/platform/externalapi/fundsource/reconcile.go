package fundsource

import (
	"holdings_backend/internal/feature/holdings/domain"
	"holdings_backend/internal/feature/holdings/domain/columns"
	"holdings_backend/internal/feature/holdings/domain/entity"
	"holdings_backend/internal/shared/numparse"
)

// MarketValueColumn is the column written by Reconcile.
const MarketValueColumn = "Market Value"

// Reconcile rebuilds market values from the weight column of a weights-only
// holdings table. With positive totalAssets each value becomes
// weight/100*totalAssets, and when the visible weights sum to more than zero
// but less than threshold an OTHER row carrying the missing weight is added.
// Without a total the weights themselves stand in for market values.
func Reconcile(base *entity.Table, totalAssets, threshold float64) (*entity.Table, error) {
	resolved := columns.Resolve(base.Columns)
	weightCol, ok := resolved[columns.Weight]
	if !ok {
		return nil, &domain.MissingColumnsError{Fields: []string{columns.Weight}}
	}

	out := base.Clone()
	mvCol := out.EnsureColumn(MarketValueColumn)

	var weightSum float64
	for r := range out.Rows {
		w, ok := numparse.Parse(out.Cell(r, weightCol))
		if !ok {
			out.SetCell(r, mvCol, nil)
			continue
		}
		weightSum += w
		if totalAssets > 0 {
			out.SetCell(r, mvCol, w/100*totalAssets)
		} else {
			out.SetCell(r, mvCol, w)
		}
	}

	if totalAssets <= 0 || weightSum <= 0 || weightSum >= threshold {
		return out, nil
	}

	missingWeight := max(0, 100-weightSum)
	synthetic := map[string]any{
		out.Columns[weightCol]: missingWeight,
		MarketValueColumn:      totalAssets * missingWeight / 100,
	}
	if i, ok := resolved[columns.Ticker]; ok {
		synthetic[out.Columns[i]] = entity.TickerOther
	}
	if i, ok := resolved[columns.Name]; ok {
		synthetic[out.Columns[i]] = entity.NameOther
	}
	if i, ok := resolved[columns.Shares]; ok {
		synthetic[out.Columns[i]] = 0.0
	}
	out.AppendRecord(synthetic)
	return out, nil
}
