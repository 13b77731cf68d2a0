package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"holdings_backend/internal/feature/holdings/domain"
	"holdings_backend/internal/shared/ratelimiter"
)

// IngestRequest は1ファンド分の取り込み要求です。
type IngestRequest struct {
	Fund string
	// AsOf が零値の場合はソースの基準日、なければ当日を使用します。
	AsOf time.Time
	// URL は保有銘柄ページのURLを上書きします（任意）。
	URL string
}

// IngestResult は取り込み1回分の結果です。
type IngestResult struct {
	RunID  string
	Fund   string
	Date   time.Time
	Count  int
	Source string
}

// IngestUsecase は取得・正規化・検証・保存のパイプラインを実行するユースケースです。
type IngestUsecase struct {
	registry    FundRegistry
	source      HoldingsSource
	store       SnapshotWriter
	rateLimiter ratelimiter.RateLimiterInterface
	now         func() time.Time
}

// NewIngestUsecase は新しい IngestUsecase を作成します。
func NewIngestUsecase(registry FundRegistry, source HoldingsSource, store SnapshotWriter, rateLimiter ratelimiter.RateLimiterInterface) *IngestUsecase {
	return &IngestUsecase{
		registry:    registry,
		source:      source,
		store:       store,
		rateLimiter: rateLimiter,
		now:         time.Now,
	}
}

// Ingest は1ファンドの保有銘柄を取得し、スナップショットとして保存します。
// 未対応のファンドや必須列の欠落は即座にエラーになります。
func (iu *IngestUsecase) Ingest(ctx context.Context, req IngestRequest) (IngestResult, error) {
	fund, err := iu.registry.Get(req.Fund)
	if err != nil {
		return IngestResult{}, err
	}
	if req.URL != "" {
		fund.HoldingsURL = req.URL
	}

	runID := uuid.NewString()
	log := slog.With("run_id", runID, "fund", fund.Ticker)
	log.Debug("ingest started", "kind", fund.Kind)

	table, err := iu.source.Acquire(ctx, fund)
	if err != nil {
		return IngestResult{}, fmt.Errorf("acquire %s holdings: %w", fund.Ticker, err)
	}

	normalized, err := Normalize(table)
	if err != nil {
		return IngestResult{}, fmt.Errorf("normalize %s holdings: %w", fund.Ticker, err)
	}

	holdings, err := Validate(normalized, req.AsOf, fund.Ticker, iu.now())
	if err != nil {
		return IngestResult{}, fmt.Errorf("validate %s holdings: %w", fund.Ticker, err)
	}
	if len(holdings) == 0 {
		return IngestResult{}, fmt.Errorf("%s: %w", fund.Ticker, domain.ErrNoRows)
	}

	if err := iu.store.Upsert(ctx, holdings); err != nil {
		return IngestResult{}, fmt.Errorf("store %s holdings: %w", fund.Ticker, err)
	}

	res := IngestResult{
		RunID:  runID,
		Fund:   fund.Ticker,
		Date:   holdings[0].Date,
		Count:  len(holdings),
		Source: fund.SourceLabel,
	}
	log.Info("ingested holdings", "date", res.Date.Format("2006-01-02"), "rows", res.Count, "source", res.Source)
	return res, nil
}

// IngestAll は登録済みの全ファンドを順番に取り込みます。
// 1つのファンドで失敗しても、他のファンドの処理は続行し、保存済みのデータには影響しません。
// 失敗したファンドのエラーはまとめて返します。
func (iu *IngestUsecase) IngestAll(ctx context.Context, asOf time.Time) ([]IngestResult, error) {
	var (
		results []IngestResult
		errs    []error
	)
	for _, ticker := range iu.registry.Tickers() {
		if err := iu.rateLimiter.Wait(ctx); err != nil {
			errs = append(errs, err)
			break
		}
		res, err := iu.Ingest(ctx, IngestRequest{Fund: ticker, AsOf: asOf})
		if err != nil {
			// 1つのファンドでエラーが発生しても処理を止めずにログに出力し、次のファンドへ進む
			slog.Error("failed to ingest fund", "fund", ticker, "error", err)
			errs = append(errs, err)
			continue
		}
		results = append(results, res)
	}
	return results, errors.Join(errs...)
}
