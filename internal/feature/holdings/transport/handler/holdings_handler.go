// Package handler はholdingsフィーチャーのHTTPハンドラーを提供します。
package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"holdings_backend/internal/feature/holdings/domain"
	"holdings_backend/internal/feature/holdings/domain/entity"
	"holdings_backend/internal/feature/holdings/registry"
	"holdings_backend/internal/feature/holdings/transport/http/dto"
)

// HoldingsUsecase は保有銘柄照会のユースケースインターフェースです。
// Goの慣例に従い、インターフェースは利用者（handler）側で定義します。
type HoldingsUsecase interface {
	ListFunds(ctx context.Context) ([]string, error)
	ListDates(ctx context.Context, fund string) ([]time.Time, error)
	Totals(ctx context.Context, date time.Time, fund string) (entity.Totals, error)
	Compare(ctx context.Context, start, end time.Time, fund string) (entity.Comparison, error)
}

// FundLookup は設定済みファンドを解決します。
type FundLookup interface {
	Get(ticker string) (registry.FundConfig, error)
}

// HoldingsHandler は保有銘柄照会のHTTPリクエストを処理します。
type HoldingsHandler struct {
	uc    HoldingsUsecase
	funds FundLookup
}

// NewHoldingsHandler は新しい HoldingsHandler を生成します。
func NewHoldingsHandler(uc HoldingsUsecase, funds FundLookup) *HoldingsHandler {
	return &HoldingsHandler{uc: uc, funds: funds}
}

// ListFunds は保存済みのファンド一覧を返します。
//
// GET /funds
func (h *HoldingsHandler) ListFunds(c *gin.Context) {
	funds, err := h.uc.ListFunds(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	if funds == nil {
		funds = []string{}
	}
	c.JSON(http.StatusOK, dto.FundsResponse{Funds: funds})
}

// ListDates はファンドの基準日を昇順で返します。
//
// GET /funds/:fund/dates
func (h *HoldingsHandler) ListDates(c *gin.Context) {
	fund, ok := h.fund(c)
	if !ok {
		return
	}
	dates, err := h.uc.ListDates(c.Request.Context(), fund)
	if err != nil {
		respondError(c, err)
		return
	}
	out := make([]string, 0, len(dates))
	for _, d := range dates {
		out = append(out, d.Format(entity.DateLayout))
	}
	c.JSON(http.StatusOK, dto.DatesResponse{Fund: fund, Dates: out})
}

// Totals は1スナップショットの総額と銘柄数を返します。
//
// GET /funds/:fund/totals?date=2024-01-02
func (h *HoldingsHandler) Totals(c *gin.Context) {
	fund, ok := h.fund(c)
	if !ok {
		return
	}
	date, ok := queryDate(c, "date")
	if !ok {
		return
	}
	totals, err := h.uc.Totals(c.Request.Context(), date, fund)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.TotalsResponse{
		Fund:          fund,
		Date:          date.Format(entity.DateLayout),
		TotalAUM:      totals.TotalAUM,
		HoldingsCount: totals.HoldingsCount,
	})
}

// Compare は2つの基準日のスナップショットを比較します。
//
// GET /funds/:fund/compare?start=2024-01-01&end=2024-01-02
func (h *HoldingsHandler) Compare(c *gin.Context) {
	fund, ok := h.fund(c)
	if !ok {
		return
	}
	start, ok := queryDate(c, "start")
	if !ok {
		return
	}
	end, ok := queryDate(c, "end")
	if !ok {
		return
	}

	cmp, err := h.uc.Compare(c.Request.Context(), start, end, fund)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.ComparisonResponse{
		Fund:    fund,
		Start:   start.Format(entity.DateLayout),
		End:     end.Format(entity.DateLayout),
		Added:   toRows(cmp.Added),
		Removed: toRows(cmp.Removed),
		Changed: toRows(cmp.Changed),
		All:     toRows(cmp.All),
	})
}

// fund はパスのファンドを解決します。未対応のファンドは404です。
func (h *HoldingsHandler) fund(c *gin.Context) (string, bool) {
	cfg, err := h.funds.Get(c.Param("fund"))
	if err != nil {
		respondError(c, err)
		return "", false
	}
	return cfg.Ticker, true
}

func queryDate(c *gin.Context, key string) (time.Time, bool) {
	raw := strings.TrimSpace(c.Query(key))
	if raw == "" {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: key + " is required (YYYY-MM-DD)"})
		return time.Time{}, false
	}
	d, err := entity.ParseDay(raw)
	if err != nil {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "invalid " + key + ": " + raw})
		return time.Time{}, false
	}
	return d, true
}

func respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, domain.ErrUnsupportedFund):
		c.JSON(http.StatusNotFound, dto.ErrorResponse{Error: err.Error()})
	default:
		slog.Error("holdings query failed", "path", c.FullPath(), "error", err)
		c.JSON(http.StatusInternalServerError, dto.ErrorResponse{Error: "internal server error"})
	}
}

func toRows(rows []entity.ComparisonRow) []dto.ComparisonRowResponse {
	out := make([]dto.ComparisonRowResponse, 0, len(rows))
	for _, r := range rows {
		out = append(out, dto.ComparisonRowResponse{
			Ticker:           r.Ticker,
			Name:             r.Name,
			StartShares:      r.StartShares,
			EndShares:        r.EndShares,
			StartMarketValue: r.StartMarketValue,
			EndMarketValue:   r.EndMarketValue,
			StartWeight:      r.StartWeight,
			EndWeight:        r.EndWeight,
			Status:           string(r.Status),
			SharesDelta:      r.SharesDelta,
			MarketValueDelta: r.MarketValueDelta,
		})
	}
	return out
}
