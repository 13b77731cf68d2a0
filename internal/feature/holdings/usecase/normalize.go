package usecase

import (
	"sort"
	"strconv"
	"strings"
	"time"

	"holdings_backend/internal/feature/holdings/domain"
	"holdings_backend/internal/feature/holdings/domain/columns"
	"holdings_backend/internal/feature/holdings/domain/entity"
)

// invalidMarkers は識別子として扱わない値です（大文字比較）。
var invalidMarkers = map[string]bool{
	"": true, "NAN": true, "NONE": true, "NULL": true, "-": true, "--": true, "N/A": true, "NA": true,
}

// cashTickers / cashNames はソースが返す内部の現金プレースホルダーです。
var (
	cashTickers = map[string]bool{"BNYMLEND": true}
	cashNames   = map[string]bool{"UNINVESTIBLE CASH": true}
)

// droppedTickers は最終的なティッカーがこれらの値の行を除外します（小文字比較）。
var droppedTickers = map[string]bool{"": true, "nan": true, "total": true}

// asOfLayouts はソースの基準日列で受け付ける書式です。
var asOfLayouts = []string{
	"2006-01-02",
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"01/02/2006",
	"1/2/2006",
	"2006/01/02",
	"January 2, 2006",
	"Jan 2, 2006",
	"02-Jan-2006",
}

// CanonicalRow は正規化後の1行です。数値はまだ変換前のセル値です。
type CanonicalRow struct {
	Ticker      string
	Name        string
	Shares      any
	MarketValue any
	Weight      any
}

// Normalized は Normalize の結果です。
type Normalized struct {
	Rows []CanonicalRow
	// SourceAsOf はソースデータ内の基準日です（見つからない場合はゼロ値）。
	SourceAsOf time.Time
}

// Normalize は任意の列名を持つ表を正規スキーマに写像します。
// ticker / name / shares / market_value のいずれかが解決できない場合は
// *domain.MissingColumnsError を返します。
func Normalize(t *entity.Table) (Normalized, error) {
	resolved := columns.Resolve(t.Columns)

	var missing []string
	for _, f := range columns.Required {
		if _, ok := resolved[f]; !ok {
			missing = append(missing, f)
		}
	}
	if len(missing) > 0 {
		sort.Strings(missing)
		return Normalized{}, &domain.MissingColumnsError{Fields: missing}
	}

	col := func(field string) int {
		if i, ok := resolved[field]; ok {
			return i
		}
		return -1
	}
	tickerCol, nameCol := col(columns.Ticker), col(columns.Name)
	tickerFB, nameFB := col(columns.TickerFallback), col(columns.NameFallback)
	sharesCol, mvCol, weightCol := col(columns.Shares), col(columns.MarketValue), col(columns.Weight)

	out := Normalized{Rows: make([]CanonicalRow, 0, t.Len())}
	out.SourceAsOf, _ = ExtractAsOfDate(t)

	for i := range t.Rows {
		ticker := strings.ToUpper(cellText(t.Cell(i, tickerCol)))
		if invalidMarkers[ticker] || ticker == "TOTAL" {
			fb := strings.ToUpper(cellText(t.Cell(i, tickerFB)))
			if invalidMarkers[fb] || fb == "TOTAL" {
				fb = entity.TickerUninvested
			}
			ticker = fb
		}

		name := cellText(t.Cell(i, nameCol))
		if invalidMarkers[strings.ToUpper(name)] {
			fb := cellText(t.Cell(i, nameFB))
			if invalidMarkers[strings.ToUpper(fb)] {
				fb = entity.NameUnspecified
			}
			name = fb
		}

		if cashTickers[ticker] || cashNames[strings.ToUpper(name)] {
			ticker, name = entity.TickerUninvestedCash, entity.NameUninvestedCash
		}

		ticker = strings.ToUpper(strings.TrimSpace(ticker))
		if droppedTickers[strings.ToLower(ticker)] {
			continue
		}

		out.Rows = append(out.Rows, CanonicalRow{
			Ticker:      ticker,
			Name:        strings.TrimSpace(name),
			Shares:      t.Cell(i, sharesCol),
			MarketValue: t.Cell(i, mvCol),
			Weight:      t.Cell(i, weightCol),
		})
	}
	return out, nil
}

// ExtractAsOfDate は date / asofdate / asof 列の最初の解釈可能な値を返します。
func ExtractAsOfDate(t *entity.Table) (time.Time, bool) {
	if t.Empty() {
		return time.Time{}, false
	}
	idx := columns.Index(t.Columns)
	for _, key := range columns.AsOfKeys {
		c, ok := idx[key]
		if !ok {
			continue
		}
		for i := range t.Rows {
			text := cellText(t.Cell(i, c))
			if text == "" {
				continue
			}
			// 最初の非空値のみを評価する
			if d, ok := parseDate(text); ok {
				return d, true
			}
			break
		}
	}
	return time.Time{}, false
}

func parseDate(s string) (time.Time, bool) {
	for _, layout := range asOfLayouts {
		if d, err := time.Parse(layout, s); err == nil {
			return entity.Day(d), true
		}
	}
	return time.Time{}, false
}

// cellText はセル値を前後の空白を除いた文字列に変換します。
func cellText(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(x)
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(x)
	default:
		return ""
	}
}
