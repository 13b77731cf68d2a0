package handler_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"holdings_backend/internal/feature/holdings/domain/entity"
	"holdings_backend/internal/feature/holdings/registry"
	"holdings_backend/internal/feature/holdings/transport/handler"
)

// mockHoldingsUsecase はHoldingsUsecaseインターフェースのモック実装です。
type mockHoldingsUsecase struct {
	ListFundsFunc func(ctx context.Context) ([]string, error)
	ListDatesFunc func(ctx context.Context, fund string) ([]time.Time, error)
	TotalsFunc    func(ctx context.Context, date time.Time, fund string) (entity.Totals, error)
	CompareFunc   func(ctx context.Context, start, end time.Time, fund string) (entity.Comparison, error)
	calls         int
}

func (m *mockHoldingsUsecase) ListFunds(ctx context.Context) ([]string, error) {
	m.calls++
	return m.ListFundsFunc(ctx)
}

func (m *mockHoldingsUsecase) ListDates(ctx context.Context, fund string) ([]time.Time, error) {
	m.calls++
	return m.ListDatesFunc(ctx, fund)
}

func (m *mockHoldingsUsecase) Totals(ctx context.Context, date time.Time, fund string) (entity.Totals, error) {
	m.calls++
	return m.TotalsFunc(ctx, date, fund)
}

func (m *mockHoldingsUsecase) Compare(ctx context.Context, start, end time.Time, fund string) (entity.Comparison, error) {
	m.calls++
	return m.CompareFunc(ctx, start, end, fund)
}

var (
	day1 = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	day2 = time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)
)

func f(v float64) *float64 { return &v }

func newRouter(uc *mockHoldingsUsecase) *gin.Engine {
	gin.SetMode(gin.TestMode)
	h := handler.NewHoldingsHandler(uc, registry.New(registry.Defaults()))

	r := gin.New()
	r.GET("/funds", h.ListFunds)
	r.GET("/funds/:fund/dates", h.ListDates)
	r.GET("/funds/:fund/totals", h.Totals)
	r.GET("/funds/:fund/compare", h.Compare)
	return r
}

func serve(r *gin.Engine, url string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, url, nil)
	r.ServeHTTP(w, req)
	return w
}

func TestHoldingsHandler_ListFunds(t *testing.T) {
	tests := []struct {
		name           string
		fn             func(ctx context.Context) ([]string, error)
		expectedStatus int
		expectedBody   string
	}{
		{
			name:           "success",
			fn:             func(ctx context.Context) ([]string, error) { return []string{"PCEF", "YYY"}, nil },
			expectedStatus: http.StatusOK,
			expectedBody:   `{"funds":["PCEF","YYY"]}`,
		},
		{
			name:           "empty store",
			fn:             func(ctx context.Context) ([]string, error) { return nil, nil },
			expectedStatus: http.StatusOK,
			expectedBody:   `{"funds":[]}`,
		},
		{
			name:           "store error",
			fn:             func(ctx context.Context) ([]string, error) { return nil, errors.New("db down") },
			expectedStatus: http.StatusInternalServerError,
			expectedBody:   `{"error":"internal server error"}`,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			w := serve(newRouter(&mockHoldingsUsecase{ListFundsFunc: tt.fn}), "/funds")

			assert.Equal(t, tt.expectedStatus, w.Code)
			assert.JSONEq(t, tt.expectedBody, w.Body.String())
		})
	}
}

func TestHoldingsHandler_ListDates(t *testing.T) {
	uc := &mockHoldingsUsecase{
		ListDatesFunc: func(ctx context.Context, fund string) ([]time.Time, error) {
			assert.Equal(t, "YYY", fund)
			return []time.Time{day1, day2}, nil
		},
	}

	w := serve(newRouter(uc), "/funds/yyy/dates")

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"fund":"YYY","dates":["2024-01-01","2024-01-02"]}`, w.Body.String())
}

func TestHoldingsHandler_Totals(t *testing.T) {
	tests := []struct {
		name           string
		url            string
		expectedStatus int
		expectedBody   string
		expectedCalls  int
	}{
		{
			name:           "success",
			url:            "/funds/PCEF/totals?date=2024-01-02",
			expectedStatus: http.StatusOK,
			expectedBody:   `{"fund":"PCEF","date":"2024-01-02","total_aum":1500.5,"holdings_count":3}`,
			expectedCalls:  1,
		},
		{
			name:           "missing date",
			url:            "/funds/PCEF/totals",
			expectedStatus: http.StatusBadRequest,
			expectedBody:   `{"error":"date is required (YYYY-MM-DD)"}`,
		},
		{
			name:           "invalid date",
			url:            "/funds/PCEF/totals?date=01/02/2024",
			expectedStatus: http.StatusBadRequest,
			expectedBody:   `{"error":"invalid date: 01/02/2024"}`,
		},
		{
			name:           "unsupported fund",
			url:            "/funds/XYZ/totals?date=2024-01-02",
			expectedStatus: http.StatusNotFound,
			expectedBody:   `{"error":"unsupported fund ticker 'XYZ'. Supported values: PCEF, YYY"}`,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			uc := &mockHoldingsUsecase{
				TotalsFunc: func(ctx context.Context, date time.Time, fund string) (entity.Totals, error) {
					assert.Equal(t, day2, date)
					assert.Equal(t, "PCEF", fund)
					return entity.Totals{TotalAUM: 1500.5, HoldingsCount: 3}, nil
				},
			}

			w := serve(newRouter(uc), tt.url)

			assert.Equal(t, tt.expectedStatus, w.Code)
			assert.JSONEq(t, tt.expectedBody, w.Body.String())
			assert.Equal(t, tt.expectedCalls, uc.calls)
		})
	}
}

func TestHoldingsHandler_Compare(t *testing.T) {
	bbb := entity.ComparisonRow{
		Ticker: "BBB", Name: "Beta",
		EndShares: f(5), EndMarketValue: f(50), EndWeight: f(10),
		Status: entity.StatusAdded, SharesDelta: 5, MarketValueDelta: 50,
	}
	aaa := entity.ComparisonRow{
		Ticker: "AAA", Name: "Alpha",
		StartShares: f(10), EndShares: f(15), StartMarketValue: f(100), EndMarketValue: f(150),
		StartWeight: f(100), EndWeight: f(90),
		Status: entity.StatusChanged, SharesDelta: 5, MarketValueDelta: 50,
	}

	uc := &mockHoldingsUsecase{
		CompareFunc: func(ctx context.Context, start, end time.Time, fund string) (entity.Comparison, error) {
			assert.Equal(t, day1, start)
			assert.Equal(t, day2, end)
			assert.Equal(t, "YYY", fund)
			return entity.Comparison{
				Added:   []entity.ComparisonRow{bbb},
				Removed: []entity.ComparisonRow{},
				Changed: []entity.ComparisonRow{aaa},
				All:     []entity.ComparisonRow{aaa, bbb},
			}, nil
		},
	}

	w := serve(newRouter(uc), "/funds/YYY/compare?start=2024-01-01&end=2024-01-02")

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{
		"fund":"YYY","start":"2024-01-01","end":"2024-01-02",
		"added":[{"ticker":"BBB","name":"Beta","start_shares":null,"end_shares":5,"start_market_value":null,"end_market_value":50,"start_weight":null,"end_weight":10,"status":"added","shares_delta":5,"market_value_delta":50}],
		"removed":[],
		"changed":[{"ticker":"AAA","name":"Alpha","start_shares":10,"end_shares":15,"start_market_value":100,"end_market_value":150,"start_weight":100,"end_weight":90,"status":"changed","shares_delta":5,"market_value_delta":50}],
		"all":[
			{"ticker":"AAA","name":"Alpha","start_shares":10,"end_shares":15,"start_market_value":100,"end_market_value":150,"start_weight":100,"end_weight":90,"status":"changed","shares_delta":5,"market_value_delta":50},
			{"ticker":"BBB","name":"Beta","start_shares":null,"end_shares":5,"start_market_value":null,"end_market_value":50,"start_weight":null,"end_weight":10,"status":"added","shares_delta":5,"market_value_delta":50}
		]
	}`, w.Body.String())
}

func TestHoldingsHandler_Compare_BadInput(t *testing.T) {
	tests := []struct {
		name string
		url  string
	}{
		{"missing start", "/funds/YYY/compare?end=2024-01-02"},
		{"missing end", "/funds/YYY/compare?start=2024-01-01"},
		{"invalid end", "/funds/YYY/compare?start=2024-01-01&end=tomorrow"},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			uc := &mockHoldingsUsecase{}

			w := serve(newRouter(uc), tt.url)

			assert.Equal(t, http.StatusBadRequest, w.Code)
			assert.Zero(t, uc.calls)
		})
	}
}
