// Package cli implements the operator commands of the holdings binary.
package cli

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/Rhymond/go-money"
	"github.com/google/subcommands"
	"github.com/shopspring/decimal"

	"holdings_backend/internal/app/config"
	"holdings_backend/internal/app/di"
	"holdings_backend/internal/feature/holdings/domain/entity"
	"holdings_backend/internal/feature/holdings/usecase"
)

// Ingester runs ingestion.
type Ingester interface {
	Ingest(ctx context.Context, req usecase.IngestRequest) (usecase.IngestResult, error)
	IngestAll(ctx context.Context, asOf time.Time) ([]usecase.IngestResult, error)
}

// Querier answers read-only queries.
type Querier interface {
	ListFunds(ctx context.Context) ([]string, error)
	ListDates(ctx context.Context, fund string) ([]time.Time, error)
	Totals(ctx context.Context, date time.Time, fund string) (entity.Totals, error)
	Compare(ctx context.Context, start, end time.Time, fund string) (entity.Comparison, error)
}

// Services is what a command needs from the wired application.
type Services struct {
	Ingest   Ingester
	Query    Querier
	Location string
	Close    func() error
}

// Builder wires Services for one command invocation.
type Builder func(ctx context.Context, cfg config.Config) (*Services, error)

// Build wires the real application.
func Build(ctx context.Context, cfg config.Config) (*Services, error) {
	app, err := di.Build(ctx, cfg)
	if err != nil {
		return nil, err
	}
	return &Services{Ingest: app.Ingest, Query: app.Compare, Location: app.Location, Close: app.Close}, nil
}

// Runtime is shared by every command.
type Runtime struct {
	Config config.Config
	Build  Builder
	Out    io.Writer
	Err    io.Writer
}

// Register adds every command to c.
func Register(c *subcommands.Commander, rt *Runtime) {
	c.Register(c.HelpCommand(), "")
	c.Register(c.FlagsCommand(), "")
	c.Register(&ingestCmd{rt: rt}, "ingestion")
	c.Register(&fundsCmd{rt: rt}, "queries")
	c.Register(&datesCmd{rt: rt}, "queries")
	c.Register(&totalsCmd{rt: rt}, "queries")
	c.Register(&compareCmd{rt: rt}, "queries")
	c.Register(&tokenCmd{rt: rt}, "api")
}

// open builds the services, reporting failures on rt.Err.
func (rt *Runtime) open(ctx context.Context, cfg config.Config) (*Services, func(), bool) {
	svc, err := rt.Build(ctx, cfg)
	if err != nil {
		fmt.Fprintf(rt.Err, "Error: %v\n", err)
		return nil, nil, false
	}
	return svc, func() {
		if svc.Close == nil {
			return
		}
		if err := svc.Close(); err != nil {
			fmt.Fprintf(rt.Err, "Warning: close: %v\n", err)
		}
	}, true
}

func (rt *Runtime) fail(err error) subcommands.ExitStatus {
	fmt.Fprintf(rt.Err, "Error: %v\n", err)
	return subcommands.ExitFailure
}

func (rt *Runtime) usage(format string, args ...any) subcommands.ExitStatus {
	fmt.Fprintf(rt.Err, format+"\n", args...)
	return subcommands.ExitUsageError
}

// parseDate parses a YYYY-MM-DD flag. An empty value is the zero time.
func parseDate(name, v string) (time.Time, error) {
	v = strings.TrimSpace(v)
	if v == "" {
		return time.Time{}, nil
	}
	d, err := entity.ParseDay(v)
	if err != nil {
		return time.Time{}, fmt.Errorf("-%s must be YYYY-MM-DD, got %q", name, v)
	}
	return d, nil
}

// formatUSD renders v in dollars with cent precision.
func formatUSD(v float64) string {
	cents := decimal.NewFromFloat(v).Shift(2).Round(0).IntPart()
	return money.New(cents, money.USD).Display()
}

func formatQty(v float64) string {
	return decimal.NewFromFloat(v).Round(4).String()
}
