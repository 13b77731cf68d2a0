package usecase

import (
	"context"
	"sort"
	"strings"
	"time"

	"holdings_backend/internal/feature/holdings/domain/entity"
)

// CompareUsecase は保存済みスナップショットに対する読み取り専用の問い合わせを提供します。
type CompareUsecase struct {
	store SnapshotReader
}

// NewCompareUsecase は新しい CompareUsecase を作成します。
func NewCompareUsecase(store SnapshotReader) *CompareUsecase {
	return &CompareUsecase{store: store}
}

// ListFunds はデータが存在するファンドを返します。
func (cu *CompareUsecase) ListFunds(ctx context.Context) ([]string, error) {
	return cu.store.ListFunds(ctx)
}

// ListDates は fund のスナップショット日付を昇順で返します。
func (cu *CompareUsecase) ListDates(ctx context.Context, fund string) ([]time.Time, error) {
	return cu.store.ListDates(ctx, normalizeFund(fund))
}

// Totals は fund の date 時点の総資産と保有銘柄数を返します。
func (cu *CompareUsecase) Totals(ctx context.Context, date time.Time, fund string) (entity.Totals, error) {
	return cu.store.Totals(ctx, entity.Day(date), normalizeFund(fund))
}

// Compare は start と end のスナップショットをティッカーで完全外部結合し、
// 追加・削除・変更に分類します。どちらのスナップショットも存在しない場合は
// 空の結果を返します。
func (cu *CompareUsecase) Compare(ctx context.Context, start, end time.Time, fund string) (entity.Comparison, error) {
	fund = normalizeFund(fund)

	startRows, err := cu.store.FindSnapshot(ctx, entity.Day(start), fund)
	if err != nil {
		return entity.Comparison{}, err
	}
	endRows, err := cu.store.FindSnapshot(ctx, entity.Day(end), fund)
	if err != nil {
		return entity.Comparison{}, err
	}
	return Diff(startRows, endRows), nil
}

// Diff joins two snapshots by ticker. Name prefers the end snapshot. All is
// ordered by ticker and the filtered views keep ticker order among equal
// deltas.
func Diff(start, end []entity.Holding) entity.Comparison {
	out := entity.EmptyComparison()

	rows := make(map[string]*entity.ComparisonRow, len(start)+len(end))
	for _, h := range start {
		r := joinedRow(rows, h.Ticker)
		r.Name = h.Name
		r.StartShares = ptr(h.Shares)
		r.StartMarketValue = ptr(h.MarketValue)
		r.StartWeight = ptr(h.Weight)
	}
	for _, h := range end {
		r := joinedRow(rows, h.Ticker)
		r.Name = h.Name
		r.EndShares = ptr(h.Shares)
		r.EndMarketValue = ptr(h.MarketValue)
		r.EndWeight = ptr(h.Weight)
	}

	for _, r := range rows {
		switch {
		case r.StartShares == nil:
			r.Status = entity.StatusAdded
		case r.EndShares == nil:
			r.Status = entity.StatusRemoved
		default:
			r.Status = entity.StatusChanged
		}
		r.SharesDelta = deref(r.EndShares) - deref(r.StartShares)
		r.MarketValueDelta = deref(r.EndMarketValue) - deref(r.StartMarketValue)
		out.All = append(out.All, *r)
	}
	sort.Slice(out.All, func(i, j int) bool { return out.All[i].Ticker < out.All[j].Ticker })

	for _, r := range out.All {
		switch {
		case r.Status == entity.StatusAdded:
			out.Added = append(out.Added, r)
		case r.Status == entity.StatusRemoved:
			out.Removed = append(out.Removed, r)
		case r.SharesDelta != 0:
			out.Changed = append(out.Changed, r)
		}
	}

	sort.SliceStable(out.Added, func(i, j int) bool {
		return out.Added[i].MarketValueDelta > out.Added[j].MarketValueDelta
	})
	sort.SliceStable(out.Removed, func(i, j int) bool {
		return out.Removed[i].MarketValueDelta < out.Removed[j].MarketValueDelta
	})
	sort.SliceStable(out.Changed, func(i, j int) bool {
		return out.Changed[i].MarketValueDelta > out.Changed[j].MarketValueDelta
	})
	return out
}

func joinedRow(rows map[string]*entity.ComparisonRow, ticker string) *entity.ComparisonRow {
	r, ok := rows[ticker]
	if !ok {
		r = &entity.ComparisonRow{Ticker: ticker}
		rows[ticker] = r
	}
	return r
}

func normalizeFund(fund string) string {
	return strings.ToUpper(strings.TrimSpace(fund))
}

func ptr(f float64) *float64 { return &f }

func deref(f *float64) float64 {
	if f == nil {
		return 0
	}
	return *f
}
