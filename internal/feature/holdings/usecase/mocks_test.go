package usecase

import (
	"context"
	"errors"
	"time"

	"holdings_backend/internal/feature/holdings/domain/entity"
	"holdings_backend/internal/feature/holdings/registry"
)

// mockSource is a mock implementation of the HoldingsSource interface.
type mockSource struct {
	AcquireFunc  func(ctx context.Context, fund registry.FundConfig) (*entity.Table, error)
	AcquireCalls int
	LastFund     registry.FundConfig
}

func (m *mockSource) Acquire(ctx context.Context, fund registry.FundConfig) (*entity.Table, error) {
	m.AcquireCalls++
	m.LastFund = fund
	if m.AcquireFunc != nil {
		return m.AcquireFunc(ctx, fund)
	}
	return nil, errors.New("AcquireFunc is not implemented")
}

// mockStore is a mock implementation of the SnapshotRepository interface.
type mockStore struct {
	UpsertFunc       func(ctx context.Context, holdings []entity.Holding) error
	UpsertCalls      int
	Upserted         [][]entity.Holding
	ListFundsFunc    func(ctx context.Context) ([]string, error)
	ListDatesFunc    func(ctx context.Context, fund string) ([]time.Time, error)
	TotalsFunc       func(ctx context.Context, date time.Time, fund string) (entity.Totals, error)
	FindSnapshotFunc func(ctx context.Context, date time.Time, fund string) ([]entity.Holding, error)
}

func (m *mockStore) Upsert(ctx context.Context, holdings []entity.Holding) error {
	m.UpsertCalls++
	m.Upserted = append(m.Upserted, holdings)
	if m.UpsertFunc != nil {
		return m.UpsertFunc(ctx, holdings)
	}
	return nil
}

func (m *mockStore) ListFunds(ctx context.Context) ([]string, error) {
	if m.ListFundsFunc != nil {
		return m.ListFundsFunc(ctx)
	}
	return nil, errors.New("ListFundsFunc is not implemented")
}

func (m *mockStore) ListDates(ctx context.Context, fund string) ([]time.Time, error) {
	if m.ListDatesFunc != nil {
		return m.ListDatesFunc(ctx, fund)
	}
	return nil, errors.New("ListDatesFunc is not implemented")
}

func (m *mockStore) Totals(ctx context.Context, date time.Time, fund string) (entity.Totals, error) {
	if m.TotalsFunc != nil {
		return m.TotalsFunc(ctx, date, fund)
	}
	return entity.Totals{}, errors.New("TotalsFunc is not implemented")
}

func (m *mockStore) FindSnapshot(ctx context.Context, date time.Time, fund string) ([]entity.Holding, error) {
	if m.FindSnapshotFunc != nil {
		return m.FindSnapshotFunc(ctx, date, fund)
	}
	return nil, errors.New("FindSnapshotFunc is not implemented")
}

// mockRateLimiter is a mock implementation of the RateLimiterInterface.
type mockRateLimiter struct {
	WaitCalls int
}

func (m *mockRateLimiter) Wait(ctx context.Context) error {
	m.WaitCalls++
	// For testing purposes, return immediately without waiting
	return ctx.Err()
}
