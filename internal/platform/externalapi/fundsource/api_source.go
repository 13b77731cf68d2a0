package fundsource

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"html"
	"log/slog"
	"net/url"
	"strconv"
	"time"

	"github.com/PaesslerAG/jsonpath"

	"holdings_backend/internal/feature/holdings/domain"
	"holdings_backend/internal/feature/holdings/domain/entity"
	"holdings_backend/internal/feature/holdings/registry"
	"holdings_backend/internal/feature/holdings/usecase"
	"holdings_backend/internal/platform/tabular"
)

const (
	holdingsPath      = "$.holdings"
	effectiveDatePath = "$.effectiveDate"

	issuerNameColumn = "issuerName"
	asOfDateColumn   = "as_of_date"
)

var errEmptyHoldings = errors.New("holdings list is empty")

// APISource は JSON 保有銘柄APIを正とするファンドの取得戦略です。
// APIが失敗した場合に他の取得元へフォールバックすることはありません。
type APISource struct {
	cfg     Config
	fetcher Fetcher
	now     func() time.Time
	sleep   func(ctx context.Context, d time.Duration) error
}

// APISourceがHoldingsSourceを実装していることをコンパイル時に検証します。
var _ usecase.HoldingsSource = (*APISource)(nil)

// NewAPISource は指定された設定とFetcherでAPISourceを生成します。
func NewAPISource(cfg Config, fetcher Fetcher) *APISource {
	return &APISource{cfg: cfg, fetcher: fetcher, now: time.Now, sleep: sleepContext}
}

// Acquire はキャッシュバスター付きのURLで最大 APIAttempts 回APIを呼び出し、
// 空でない holdings 配列を最初に返した応答を表形式に変換して返します。
//
// 各試行ではまずヘッダなし、次に User-Agent のみで要求します
// （ブラウザ風ヘッダを 406 で拒否するAPIがあるため）。
func (s *APISource) Acquire(ctx context.Context, fund registry.FundConfig) (*entity.Table, error) {
	if fund.APIURL == "" {
		return nil, fmt.Errorf("%w: no api url configured for %s", domain.ErrAPIUnavailable, fund.Ticker)
	}

	variants := []map[string]string{
		{},
		{"User-Agent": s.cfg.UserAgent},
	}
	attempts := max(s.cfg.APIAttempts, 1)

	for attempt := 0; attempt < attempts; attempt++ {
		reqURL, err := withCacheBuster(fund.APIURL, s.now().UnixMilli()+int64(attempt))
		if err != nil {
			return nil, fmt.Errorf("%w: %v", domain.ErrAPIUnavailable, err)
		}
		for _, headers := range variants {
			t, err := s.try(ctx, reqURL, headers)
			if err == nil {
				return t, nil
			}
			slog.Debug("holdings api attempt failed",
				"fund", fund.Ticker, "attempt", attempt+1, "headers", len(headers), "error", err)
		}
		if attempt < attempts-1 {
			if err := s.sleep(ctx, s.cfg.RetryBackoff); err != nil {
				return nil, fmt.Errorf("%w: %v", domain.ErrAPIUnavailable, err)
			}
		}
	}
	return nil, fmt.Errorf("%w: unable to fetch full %s holdings after %d attempts",
		domain.ErrAPIUnavailable, fund.Ticker, attempts)
}

func (s *APISource) try(ctx context.Context, reqURL string, headers map[string]string) (*entity.Table, error) {
	res, err := s.fetcher.Get(ctx, reqURL, headers)
	if err != nil {
		return nil, err
	}

	var payload any
	if err := json.Unmarshal(res.Body, &payload); err != nil {
		return nil, fmt.Errorf("%w: json: %v", domain.ErrParse, err)
	}

	raw, err := jsonpath.Get(holdingsPath, payload)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrParse, err)
	}
	items, ok := raw.([]any)
	if !ok {
		return nil, fmt.Errorf("%w: holdings is %T, want array", domain.ErrParse, raw)
	}
	if len(items) == 0 {
		return nil, errEmptyHoldings
	}

	t, err := tabular.FromRecords(items)
	if err != nil {
		return nil, err
	}

	if col := t.ColumnIndex(issuerNameColumn); col >= 0 {
		for r := range t.Rows {
			if v, ok := t.Cell(r, col).(string); ok {
				t.SetCell(r, col, html.UnescapeString(v))
			}
		}
	}

	if v, err := jsonpath.Get(effectiveDatePath, payload); err == nil {
		if date, ok := v.(string); ok && date != "" {
			col := t.EnsureColumn(asOfDateColumn)
			for r := range t.Rows {
				t.SetCell(r, col, date)
			}
		}
	}
	return t, nil
}

func withCacheBuster(raw string, stamp int64) (string, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return "", err
	}
	q := u.Query()
	q.Set("cb", strconv.FormatInt(stamp, 10))
	u.RawQuery = q.Encode()
	return u.String(), nil
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
