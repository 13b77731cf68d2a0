package cli

import (
	"bytes"
	"context"
	"errors"
	"flag"
	"testing"
	"time"

	"github.com/google/subcommands"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"holdings_backend/internal/app/config"
	"holdings_backend/internal/feature/holdings/domain/entity"
	"holdings_backend/internal/feature/holdings/usecase"
	"holdings_backend/internal/platform/db"
)

var (
	day1 = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	day2 = time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)
)

// mockIngester はIngesterインターフェースのモック実装です。
type mockIngester struct {
	IngestFunc    func(ctx context.Context, req usecase.IngestRequest) (usecase.IngestResult, error)
	IngestAllFunc func(ctx context.Context, asOf time.Time) ([]usecase.IngestResult, error)
	calls         int
}

func (m *mockIngester) Ingest(ctx context.Context, req usecase.IngestRequest) (usecase.IngestResult, error) {
	m.calls++
	return m.IngestFunc(ctx, req)
}

func (m *mockIngester) IngestAll(ctx context.Context, asOf time.Time) ([]usecase.IngestResult, error) {
	m.calls++
	return m.IngestAllFunc(ctx, asOf)
}

// mockQuerier はQuerierインターフェースのモック実装です。
type mockQuerier struct {
	ListFundsFunc func(ctx context.Context) ([]string, error)
	ListDatesFunc func(ctx context.Context, fund string) ([]time.Time, error)
	TotalsFunc    func(ctx context.Context, date time.Time, fund string) (entity.Totals, error)
	CompareFunc   func(ctx context.Context, start, end time.Time, fund string) (entity.Comparison, error)
}

func (m *mockQuerier) ListFunds(ctx context.Context) ([]string, error) { return m.ListFundsFunc(ctx) }
func (m *mockQuerier) ListDates(ctx context.Context, fund string) ([]time.Time, error) {
	return m.ListDatesFunc(ctx, fund)
}
func (m *mockQuerier) Totals(ctx context.Context, date time.Time, fund string) (entity.Totals, error) {
	return m.TotalsFunc(ctx, date, fund)
}
func (m *mockQuerier) Compare(ctx context.Context, start, end time.Time, fund string) (entity.Comparison, error) {
	return m.CompareFunc(ctx, start, end, fund)
}

type harness struct {
	rt       *Runtime
	out, err *bytes.Buffer
	builtCfg config.Config
	builds   int
	closed   int
}

func newHarness(ing *mockIngester, q *mockQuerier) *harness {
	h := &harness{out: &bytes.Buffer{}, err: &bytes.Buffer{}}
	h.rt = &Runtime{
		Config: config.Config{
			DefaultFund: "YYY",
			DB:          db.Config{Driver: db.DriverPostgres, Host: "db"},
			JWTSecret:   "cli-secret",
		},
		Out: h.out,
		Err: h.err,
		Build: func(ctx context.Context, cfg config.Config) (*Services, error) {
			h.builds++
			h.builtCfg = cfg
			return &Services{
				Ingest:   ing,
				Query:    q,
				Location: "test.db",
				Close:    func() error { h.closed++; return nil },
			}, nil
		},
	}
	return h
}

func (h *harness) run(t *testing.T, args ...string) subcommands.ExitStatus {
	t.Helper()
	fs := flag.NewFlagSet("holdings", flag.ContinueOnError)
	cmdr := subcommands.NewCommander(fs, "holdings")
	cmdr.Output = h.err
	cmdr.Error = h.err
	Register(cmdr, h.rt)
	require.NoError(t, fs.Parse(args))
	return cmdr.Execute(context.Background())
}

func TestIngest_DefaultFund(t *testing.T) {
	ing := &mockIngester{
		IngestFunc: func(ctx context.Context, req usecase.IngestRequest) (usecase.IngestResult, error) {
			assert.Equal(t, usecase.IngestRequest{Fund: "YYY"}, req)
			return usecase.IngestResult{Fund: "YYY", Date: day2, Count: 42}, nil
		},
	}
	h := newHarness(ing, nil)

	status := h.run(t, "ingest")

	assert.Equal(t, subcommands.ExitSuccess, status)
	assert.Equal(t, "Ingested 42 holdings for YYY on 2024-01-02 into test.db.\n", h.out.String())
	assert.Equal(t, 1, h.closed)
}

func TestIngest_Overrides(t *testing.T) {
	ing := &mockIngester{
		IngestFunc: func(ctx context.Context, req usecase.IngestRequest) (usecase.IngestResult, error) {
			assert.Equal(t, "pcef", req.Fund)
			assert.Equal(t, day1, req.AsOf)
			assert.Equal(t, "https://example.com/holdings", req.URL)
			return usecase.IngestResult{Fund: "PCEF", Date: day1, Count: 3}, nil
		},
	}
	h := newHarness(ing, nil)

	status := h.run(t, "ingest", "-fund", "pcef", "-date", "2024-01-01", "-db", "/tmp/h.db", "-url", "https://example.com/holdings")

	assert.Equal(t, subcommands.ExitSuccess, status)
	assert.Equal(t, db.DriverSQLite, h.builtCfg.DB.Driver)
	assert.Equal(t, "/tmp/h.db", h.builtCfg.DB.Path)
}

func TestIngest_AllFunds(t *testing.T) {
	ing := &mockIngester{
		IngestAllFunc: func(ctx context.Context, asOf time.Time) ([]usecase.IngestResult, error) {
			assert.True(t, asOf.IsZero())
			return []usecase.IngestResult{{Fund: "PCEF", Date: day2, Count: 3}}, errors.New("YYY: no holdings data found")
		},
	}
	h := newHarness(ing, nil)

	status := h.run(t, "ingest", "-all-funds")

	assert.Equal(t, subcommands.ExitFailure, status)
	assert.Equal(t, "Ingested 3 holdings for PCEF on 2024-01-02 into test.db.\n", h.out.String())
	assert.Contains(t, h.err.String(), "no holdings data found")
}

func TestIngest_UsageErrors(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{"url with all funds", []string{"ingest", "-all-funds", "-url", "https://example.com"}},
		{"bad date", []string{"ingest", "-date", "01/02/2024"}},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			ing := &mockIngester{}
			h := newHarness(ing, nil)

			status := h.run(t, tt.args...)

			assert.Equal(t, subcommands.ExitUsageError, status)
			assert.Zero(t, h.builds)
			assert.Zero(t, ing.calls)
		})
	}
}

func TestIngest_Failure(t *testing.T) {
	ing := &mockIngester{
		IngestFunc: func(ctx context.Context, req usecase.IngestRequest) (usecase.IngestResult, error) {
			return usecase.IngestResult{}, errors.New("unsupported fund ticker 'XYZ'")
		},
	}
	h := newHarness(ing, nil)

	status := h.run(t, "ingest", "-fund", "XYZ")

	assert.Equal(t, subcommands.ExitFailure, status)
	assert.Equal(t, "Error: unsupported fund ticker 'XYZ'\n", h.err.String())
	assert.Empty(t, h.out.String())
}

func TestBuildFailure(t *testing.T) {
	h := newHarness(nil, nil)
	h.rt.Build = func(ctx context.Context, cfg config.Config) (*Services, error) {
		return nil, errors.New("open store: disk full")
	}

	status := h.run(t, "funds")

	assert.Equal(t, subcommands.ExitFailure, status)
	assert.Contains(t, h.err.String(), "disk full")
}

func TestQueries(t *testing.T) {
	q := &mockQuerier{
		ListFundsFunc: func(ctx context.Context) ([]string, error) { return []string{"PCEF", "YYY"}, nil },
		ListDatesFunc: func(ctx context.Context, fund string) ([]time.Time, error) {
			assert.Equal(t, "YYY", fund)
			return []time.Time{day1, day2}, nil
		},
		TotalsFunc: func(ctx context.Context, date time.Time, fund string) (entity.Totals, error) {
			assert.Equal(t, day2, date)
			return entity.Totals{TotalAUM: 1234567.891, HoldingsCount: 12}, nil
		},
	}

	tests := []struct {
		name     string
		args     []string
		expected string
	}{
		{"funds", []string{"funds"}, "PCEF\nYYY\n"},
		{"dates", []string{"dates"}, "2024-01-01\n2024-01-02\n"},
		{"totals", []string{"totals", "-fund", "yyy", "-date", "2024-01-02"}, "YYY 2024-01-02: 12 holdings, AUM $1,234,567.89\n"},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness(nil, q)

			status := h.run(t, tt.args...)

			assert.Equal(t, subcommands.ExitSuccess, status)
			assert.Equal(t, tt.expected, h.out.String())
		})
	}
}

func TestTotals_RequiresDate(t *testing.T) {
	h := newHarness(nil, &mockQuerier{})

	assert.Equal(t, subcommands.ExitUsageError, h.run(t, "totals"))
	assert.Zero(t, h.builds)
}

func TestCompare(t *testing.T) {
	v := func(f float64) *float64 { return &f }
	q := &mockQuerier{
		CompareFunc: func(ctx context.Context, start, end time.Time, fund string) (entity.Comparison, error) {
			assert.Equal(t, day1, start)
			assert.Equal(t, day2, end)
			assert.Equal(t, "YYY", fund)
			bbb := entity.ComparisonRow{Ticker: "BBB", Name: "Beta", EndShares: v(5), EndMarketValue: v(50),
				Status: entity.StatusAdded, SharesDelta: 5, MarketValueDelta: 50}
			aaa := entity.ComparisonRow{Ticker: "AAA", Name: "Alpha", StartShares: v(10), EndShares: v(15),
				Status: entity.StatusChanged, SharesDelta: 5, MarketValueDelta: -12.5}
			return entity.Comparison{
				Added:   []entity.ComparisonRow{bbb},
				Removed: []entity.ComparisonRow{},
				Changed: []entity.ComparisonRow{aaa},
				All:     []entity.ComparisonRow{aaa, bbb},
			}, nil
		},
	}
	h := newHarness(nil, q)

	status := h.run(t, "compare", "-start", "2024-01-01", "-end", "2024-01-02")

	require.Equal(t, subcommands.ExitSuccess, status)
	out := h.out.String()
	assert.Contains(t, out, "YYY 2024-01-01 to 2024-01-02\n")
	assert.Contains(t, out, "Added (1)")
	assert.Contains(t, out, "Removed (0)")
	assert.Contains(t, out, "Changed (1)")
	assert.NotContains(t, out, "All (2)")
	assert.Contains(t, out, "$50.00")
	assert.Contains(t, out, "-$12.50")
}

func TestCompare_RequiresDates(t *testing.T) {
	h := newHarness(nil, &mockQuerier{})

	assert.Equal(t, subcommands.ExitUsageError, h.run(t, "compare", "-start", "2024-01-01"))
	assert.Zero(t, h.builds)
}

func TestToken(t *testing.T) {
	h := newHarness(nil, nil)

	status := h.run(t, "token", "-subject", "dashboard", "-ttl", "1h")

	assert.Equal(t, subcommands.ExitSuccess, status)
	assert.Regexp(t, `^[\w-]+\.[\w-]+\.[\w-]+\n$`, h.out.String())
	assert.Zero(t, h.builds)
}

func TestToken_Errors(t *testing.T) {
	h := newHarness(nil, nil)
	assert.Equal(t, subcommands.ExitUsageError, h.run(t, "token"))

	h = newHarness(nil, nil)
	h.rt.Config.JWTSecret = ""
	assert.Equal(t, subcommands.ExitFailure, h.run(t, "token", "-subject", "ops"))
	assert.Contains(t, h.err.String(), "JWT_SECRET is not set")
}

func TestFormatUSD(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   float64
		want string
	}{
		{0, "$0.00"},
		{1234.5, "$1,234.50"},
		{0.005, "$0.01"},
		{-500, "-$500.00"},
	}

	for _, tt := range tests {
		tt := tt
		assert.Equal(t, tt.want, formatUSD(tt.in))
	}
}
