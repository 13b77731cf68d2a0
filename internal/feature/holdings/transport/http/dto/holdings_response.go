package dto

// ErrorResponse はエラー時のレスポンスDTOです。
type ErrorResponse struct {
	Error string `json:"error"`
}

// FundsResponse は保存済みファンド一覧のレスポンスDTOです。
type FundsResponse struct {
	Funds []string `json:"funds"`
}

// DatesResponse はファンドの基準日一覧のレスポンスDTOです。
type DatesResponse struct {
	Fund  string   `json:"fund"`
	Dates []string `json:"dates"` // YYYY-MM-DD, 昇順
}

// TotalsResponse は1スナップショットの集計のレスポンスDTOです。
type TotalsResponse struct {
	Fund          string  `json:"fund"`
	Date          string  `json:"date"`
	TotalAUM      float64 `json:"total_aum"`
	HoldingsCount int     `json:"holdings_count"`
}

// ComparisonRowResponse は比較結果1行のDTOです。片方にしか存在しない銘柄の値は null になります。
type ComparisonRowResponse struct {
	Ticker           string   `json:"ticker"`
	Name             string   `json:"name"`
	StartShares      *float64 `json:"start_shares"`
	EndShares        *float64 `json:"end_shares"`
	StartMarketValue *float64 `json:"start_market_value"`
	EndMarketValue   *float64 `json:"end_market_value"`
	StartWeight      *float64 `json:"start_weight"`
	EndWeight        *float64 `json:"end_weight"`
	Status           string   `json:"status"`
	SharesDelta      float64  `json:"shares_delta"`
	MarketValueDelta float64  `json:"market_value_delta"`
}

// ComparisonResponse は2つのスナップショットの比較結果DTOです。
type ComparisonResponse struct {
	Fund    string                  `json:"fund"`
	Start   string                  `json:"start"`
	End     string                  `json:"end"`
	Added   []ComparisonRowResponse `json:"added"`
	Removed []ComparisonRowResponse `json:"removed"`
	Changed []ComparisonRowResponse `json:"changed"`
	All     []ComparisonRowResponse `json:"all"`
}
