// Package registry はファンドごとの取得元設定（Source Registry）を提供します。
package registry

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"holdings_backend/internal/feature/holdings/domain"
)

// SourceKind は取得戦略の種類です。
type SourceKind string

const (
	// SourceAPI はJSON保有銘柄APIを正とするファンドです。フォールバックはありません。
	SourceAPI SourceKind = "api"
	// SourceScraped は保有銘柄ページ・CSVフィードから取得するファンドです。
	SourceScraped SourceKind = "scraped"
)

// FundConfig はファンド1件分の取得元設定です。Ticker 以外は任意です。
type FundConfig struct {
	Ticker       string     `yaml:"ticker"`
	Name         string     `yaml:"name"`
	HoldingsURL  string     `yaml:"holdings_url"`
	FeedURL      string     `yaml:"feed_url"`
	DirectCSVURL string     `yaml:"download_csv_url"`
	ProfileURL   string     `yaml:"profile_url"`
	APIURL       string     `yaml:"api_url"`
	SourceLabel  string     `yaml:"source_label"`
	Kind         SourceKind `yaml:"kind"`
	// SourceLimited はソース側の制限で "OTHER" 合成行を含むスナップショットを
	// 生成しうるファンドを示します。
	SourceLimited bool `yaml:"source_limited"`
}

// Registry はファンドティッカーから設定への対応表です。
type Registry struct {
	funds map[string]FundConfig
}

// Defaults は組み込みのファンド設定を返します。
func Defaults() []FundConfig {
	return []FundConfig{
		{
			Ticker:      "YYY",
			Name:        "Amplify High Income ETF",
			HoldingsURL: "https://amplifyetfs.com/yyy-holdings/",
			FeedURL:     "https://amplifyetfs.com/wp-content/uploads/feeds/AmplifyWeb.40XL.XL_Holdings.csv",
			SourceLabel: "Amplify holdings feed",
			Kind:        SourceScraped,
		},
		{
			Ticker:        "PCEF",
			Name:          "Invesco CEF Income Composite ETF",
			HoldingsURL:   "https://www.invesco.com/us/en/financial-products/etfs/invesco-cef-income-composite-etf.html#Portfolio",
			APIURL:        "https://dng-api.invesco.com/cache/v1/accounts/en_US/shareclasses/46138E404/holdings/fund?idType=cusip&productType=ETF",
			SourceLabel:   "Invesco holdings API",
			Kind:          SourceAPI,
			SourceLimited: true,
		},
	}
}

// New は与えられた設定から Registry を生成します。Kind が未指定の場合は
// APIURL の有無から推定します。
func New(funds []FundConfig) *Registry {
	r := &Registry{funds: make(map[string]FundConfig, len(funds))}
	for _, f := range funds {
		f.Ticker = strings.ToUpper(strings.TrimSpace(f.Ticker))
		if f.Ticker == "" {
			continue
		}
		if f.Kind == "" {
			f.Kind = SourceScraped
			if f.APIURL != "" {
				f.Kind = SourceAPI
			}
		}
		r.funds[f.Ticker] = f
	}
	return r
}

// fileFormat はYAMLファイルの構造です。
type fileFormat struct {
	Funds []FundConfig `yaml:"funds"`
}

// Load は組み込み設定に path のYAMLを重ねた Registry を返します。
// path が空の場合は組み込み設定のみを使用します。
func Load(path string) (*Registry, error) {
	funds := Defaults()
	if path == "" {
		return New(funds), nil
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read fund registry %s: %w", path, err)
	}
	extra, err := Parse(b)
	if err != nil {
		return nil, fmt.Errorf("parse fund registry %s: %w", path, err)
	}
	return New(append(funds, extra...)), nil
}

// Parse はYAMLのファンド定義を読み込みます。
func Parse(b []byte) ([]FundConfig, error) {
	var f fileFormat
	if err := yaml.Unmarshal(b, &f); err != nil {
		return nil, err
	}
	return f.Funds, nil
}

// Tickers はサポートするファンドティッカーを昇順で返します。
func (r *Registry) Tickers() []string {
	out := make([]string, 0, len(r.funds))
	for t := range r.funds {
		out = append(out, t)
	}
	sort.Strings(out)
	return out
}

// Get は大文字小文字を区別せずにファンド設定を返します。
func (r *Registry) Get(ticker string) (FundConfig, error) {
	key := strings.ToUpper(strings.TrimSpace(ticker))
	f, ok := r.funds[key]
	if !ok {
		return FundConfig{}, fmt.Errorf("%w '%s'. Supported values: %s",
			domain.ErrUnsupportedFund, ticker, strings.Join(r.Tickers(), ", "))
	}
	return f, nil
}

// SourceLimited は "OTHER" 合成行を生成しうるファンドの集合を返します。
func (r *Registry) SourceLimited() []string {
	var out []string
	for _, t := range r.Tickers() {
		if r.funds[t].SourceLimited {
			out = append(out, t)
		}
	}
	return out
}
