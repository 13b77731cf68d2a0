package usecase

import (
	"fmt"
	"strings"
	"time"

	"holdings_backend/internal/feature/holdings/domain"
	"holdings_backend/internal/feature/holdings/domain/entity"
	"holdings_backend/internal/shared/numparse"
)

// Validate は正規化済みの行を HoldingRecord に変換します。
//
// 基準日は asOf、ソース内の基準日、now の順に決定します。weight が欠けている行は
// market_value の構成比から補完し、数値が揃わない行は除外します。
// (date, fund, ticker) の重複はソース順で後の行を残します。
func Validate(n Normalized, asOf time.Time, fund string, now time.Time) ([]entity.Holding, error) {
	date := asOf
	if date.IsZero() {
		date = n.SourceAsOf
	}
	if date.IsZero() {
		date = now
	}
	date = entity.Day(date)

	fund = strings.ToUpper(strings.TrimSpace(fund))
	if fund == "" {
		return nil, fmt.Errorf("%w: fund must not be empty", domain.ErrInvalidRecord)
	}

	type parsed struct {
		row                         CanonicalRow
		shares, mv, weight          float64
		hasShares, hasMV, hasWeight bool
	}

	rows := make([]parsed, 0, len(n.Rows))
	var totalMV float64
	missingWeight := false
	for _, r := range n.Rows {
		p := parsed{row: r}
		p.shares, p.hasShares = numparse.Parse(r.Shares)
		p.mv, p.hasMV = numparse.Parse(r.MarketValue)
		p.weight, p.hasWeight = numparse.Parse(r.Weight)
		if p.hasMV {
			totalMV += p.mv
		}
		if !p.hasWeight {
			missingWeight = true
		}
		rows = append(rows, p)
	}

	if missingWeight && totalMV != 0 {
		for i := range rows {
			if !rows[i].hasWeight && rows[i].hasMV {
				rows[i].weight = rows[i].mv / totalMV * 100
				rows[i].hasWeight = true
			}
		}
	}

	out := make([]entity.Holding, 0, len(rows))
	for _, p := range rows {
		if !p.hasShares || !p.hasMV || !p.hasWeight {
			continue
		}
		ticker := strings.ToUpper(strings.TrimSpace(p.row.Ticker))
		name := strings.TrimSpace(p.row.Name)
		if ticker == "" || name == "" {
			continue
		}
		out = append(out, entity.Holding{
			Date:        date,
			Fund:        fund,
			Ticker:      ticker,
			Name:        name,
			Shares:      p.shares,
			MarketValue: p.mv,
			Weight:      p.weight,
		})
	}
	return dedupeLast(out), nil
}

// dedupeLast は (date, fund, ticker) ごとに最後の出現のみを残します。
func dedupeLast(hs []entity.Holding) []entity.Holding {
	type key struct {
		date         time.Time
		fund, ticker string
	}
	last := make(map[key]int, len(hs))
	for i, h := range hs {
		last[key{h.Date, h.Fund, h.Ticker}] = i
	}
	out := make([]entity.Holding, 0, len(last))
	for i, h := range hs {
		if last[key{h.Date, h.Fund, h.Ticker}] == i {
			out = append(out, h)
		}
	}
	return out
}
