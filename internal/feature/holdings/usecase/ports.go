package usecase

import (
	"context"
	"time"

	"holdings_backend/internal/feature/holdings/domain/entity"
	"holdings_backend/internal/feature/holdings/registry"
)

// HoldingsSource acquires the raw holdings table of one fund.
// Following Go convention: interfaces are defined by the consumer (usecase), not the provider (adapters).
type HoldingsSource interface {
	// Acquire returns a non-empty table or the terminal failure of the source.
	Acquire(ctx context.Context, fund registry.FundConfig) (*entity.Table, error)
}

// SnapshotWriter persists validated snapshots.
type SnapshotWriter interface {
	// Upsert replaces the snapshot of every (date, fund) present in holdings.
	Upsert(ctx context.Context, holdings []entity.Holding) error
}

// SnapshotReader answers read-only queries over stored snapshots.
type SnapshotReader interface {
	// ListFunds returns the upper-case tickers of funds with stored data.
	ListFunds(ctx context.Context) ([]string, error)

	// ListDates returns the snapshot dates of fund in ascending order.
	ListDates(ctx context.Context, fund string) ([]time.Time, error)

	// Totals returns the summed market value and row count of one snapshot.
	Totals(ctx context.Context, date time.Time, fund string) (entity.Totals, error)

	// FindSnapshot returns the rows of one snapshot.
	FindSnapshot(ctx context.Context, date time.Time, fund string) ([]entity.Holding, error)
}

// SnapshotRepository is the full Snapshot Store.
type SnapshotRepository interface {
	SnapshotWriter
	SnapshotReader
}

// FundRegistry resolves configured funds.
type FundRegistry interface {
	Get(ticker string) (registry.FundConfig, error)
	Tickers() []string
}
