package fundsource

import (
	"context"
	"fmt"

	"holdings_backend/internal/feature/holdings/domain/entity"
	"holdings_backend/internal/feature/holdings/registry"
	"holdings_backend/internal/feature/holdings/usecase"
)

// Selector dispatches each fund to the source strategy named by its Kind.
type Selector struct {
	api     usecase.HoldingsSource
	scraped usecase.HoldingsSource
}

var _ usecase.HoldingsSource = (*Selector)(nil)

// NewSelector builds a Selector over the two strategies.
func NewSelector(api, scraped usecase.HoldingsSource) *Selector {
	return &Selector{api: api, scraped: scraped}
}

// New wires both strategies over one Fetcher.
func New(cfg Config, fetcher Fetcher) *Selector {
	return NewSelector(NewAPISource(cfg, fetcher), NewScrapedSource(cfg, fetcher))
}

// Acquire implements usecase.HoldingsSource.
func (s *Selector) Acquire(ctx context.Context, fund registry.FundConfig) (*entity.Table, error) {
	switch fund.Kind {
	case registry.SourceAPI:
		return s.api.Acquire(ctx, fund)
	case registry.SourceScraped, "":
		return s.scraped.Acquire(ctx, fund)
	default:
		return nil, fmt.Errorf("unknown source kind %q for %s", fund.Kind, fund.Ticker)
	}
}
