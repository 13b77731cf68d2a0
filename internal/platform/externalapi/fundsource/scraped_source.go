package fundsource

import (
	"context"
	"fmt"
	"log/slog"
	"regexp"
	"strings"

	"holdings_backend/internal/feature/holdings/domain"
	"holdings_backend/internal/feature/holdings/domain/entity"
	"holdings_backend/internal/feature/holdings/registry"
	"holdings_backend/internal/feature/holdings/usecase"
	"holdings_backend/internal/platform/tabular"
)

// fundMarker matches the fund identifier embedded in a holdings page script.
var fundMarker = regexp.MustCompile(`AmplifyFundName\s*=\s*['"]([^'"]+)['"]`)

// feedAccountColumns identify the fund of each row in a multi-fund CSV feed.
var feedAccountColumns = []string{"Account", "Account Ticker", "Fund Ticker"}

// ScrapedSource は保有銘柄ページ・CSVフィードから取得するファンドの取得戦略です。
// 取得元を決まった優先順で試し、失敗や空の結果は次の取得元へフォールバックします。
type ScrapedSource struct {
	cfg     Config
	fetcher Fetcher
}

// ScrapedSourceがHoldingsSourceを実装していることをコンパイル時に検証します。
var _ usecase.HoldingsSource = (*ScrapedSource)(nil)

// NewScrapedSource は指定された設定とFetcherでScrapedSourceを生成します。
func NewScrapedSource(cfg Config, fetcher Fetcher) *ScrapedSource {
	return &ScrapedSource{cfg: cfg, fetcher: fetcher}
}

// Acquire は以下の順で保有銘柄表を取得します。
//  1. プロフィールページが設定されていれば、総資産で補正した保有銘柄表
//  2. 直接CSV
//  3. 保有銘柄ページ（CSVを返す場合）
//  4. ページ内の .csv リンク
//  5. ファンドで絞り込んだCSVフィード
//  6. ページ内のHTML表
//
// 途中の失敗はログに残して次へ進み、最終的な失敗のみを返します。
func (s *ScrapedSource) Acquire(ctx context.Context, fund registry.FundConfig) (*entity.Table, error) {
	headers := map[string]string{"User-Agent": s.cfg.UserAgent}
	ticker := strings.ToUpper(fund.Ticker)

	if fund.ProfileURL != "" && fund.HoldingsURL != "" {
		t, err := s.reconciled(ctx, fund, headers)
		if err == nil {
			return t, nil
		}
		slog.Debug("profile reconciliation skipped", "fund", ticker, "error", err)
	}

	if t, ok := s.csv(ctx, fund.DirectCSVURL, headers); ok {
		return t, nil
	}

	var page []byte
	pageURL := fund.HoldingsURL
	if pageURL != "" {
		res, err := s.fetcher.Get(ctx, pageURL, headers)
		switch {
		case err != nil:
			slog.Debug("holdings page fetch failed", "fund", ticker, "url", pageURL, "error", err)
		case isCSV(res.ContentType, pageURL):
			t, err := tabular.ParseCSV(res.Body)
			if err == nil && !t.Empty() {
				return t, nil
			}
			slog.Debug("holdings page csv unusable", "fund", ticker, "error", err)
		default:
			page = res.Body
			pageURL = res.URL
			if m := fundMarker.FindSubmatch(page); m != nil {
				if marked := strings.ToUpper(strings.TrimSpace(string(m[1]))); marked != "" {
					ticker = marked
				}
			}
		}
	}

	if page != nil {
		if link, ok := tabular.FindCSVLink(page, pageURL); ok {
			if t, ok := s.csv(ctx, link, headers); ok {
				return t, nil
			}
		}
	}

	if t, ok := s.feed(ctx, fund.FeedURL, ticker, headers); ok {
		return t, nil
	}

	if page != nil {
		tables, err := tabular.ParseHTMLTables(page)
		if err != nil {
			return nil, err
		}
		return tabular.PickHoldingsTable(tables), nil
	}

	return nil, fmt.Errorf("%w for %s", domain.ErrNoHoldingsData, ticker)
}

// reconciled は保有銘柄ページの表をプロフィールページの総資産で補正します。
func (s *ScrapedSource) reconciled(ctx context.Context, fund registry.FundConfig, headers map[string]string) (*entity.Table, error) {
	res, err := s.fetcher.Get(ctx, fund.HoldingsURL, headers)
	if err != nil {
		return nil, err
	}
	tables, err := tabular.ParseHTMLTables(res.Body)
	if err != nil {
		return nil, err
	}
	base := tabular.PickHoldingsTable(tables)
	if base.Empty() {
		return nil, domain.ErrNoHoldingsData
	}

	var total float64
	if pres, err := s.fetcher.Get(ctx, fund.ProfileURL, headers); err != nil {
		slog.Debug("profile page fetch failed", "fund", fund.Ticker, "error", err)
	} else if ptables, err := tabular.ParseHTMLTables(pres.Body); err == nil {
		total, _ = tabular.ExtractTotalAssets(ptables)
	}
	return Reconcile(base, total, s.cfg.OtherThreshold)
}

// csv は CSV を取得して解析します。空の結果や失敗は ok=false です。
func (s *ScrapedSource) csv(ctx context.Context, url string, headers map[string]string) (*entity.Table, bool) {
	if url == "" {
		return nil, false
	}
	res, err := s.fetcher.Get(ctx, url, headers)
	if err != nil {
		slog.Debug("csv fetch failed", "url", url, "error", err)
		return nil, false
	}
	t, err := tabular.ParseCSV(res.Body)
	if err != nil {
		slog.Debug("csv parse failed", "url", url, "error", err)
		return nil, false
	}
	return t, !t.Empty()
}

// feed は複数ファンドを含むCSVフィードから ticker の行だけを取り出します。
func (s *ScrapedSource) feed(ctx context.Context, url, ticker string, headers map[string]string) (*entity.Table, bool) {
	t, ok := s.csv(ctx, url, headers)
	if !ok {
		return nil, false
	}
	for _, name := range feedAccountColumns {
		col := t.ColumnIndex(name)
		if col < 0 {
			continue
		}
		t = t.Filter(func(row []any) bool {
			var v any
			if col < len(row) {
				v = row[col]
			}
			return strings.ToUpper(tabular.CellString(v)) == ticker
		})
		break
	}
	return t, !t.Empty()
}

func isCSV(contentType, url string) bool {
	return strings.Contains(strings.ToLower(contentType), "text/csv") ||
		strings.HasSuffix(strings.ToLower(url), ".csv")
}
