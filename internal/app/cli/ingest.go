package cli

import (
	"context"
	"flag"
	"fmt"

	"github.com/google/subcommands"

	"holdings_backend/internal/feature/holdings/domain/entity"
	"holdings_backend/internal/feature/holdings/usecase"
	"holdings_backend/internal/platform/db"
)

// ingestCmd implements the "ingest" command.
type ingestCmd struct {
	rt *Runtime

	fund   string
	all    bool
	date   string
	dbPath string
	url    string
}

func (*ingestCmd) Name() string     { return "ingest" }
func (*ingestCmd) Synopsis() string { return "fetch fund holdings and store them as a dated snapshot" }
func (*ingestCmd) Usage() string {
	return `ingest [-fund F | -all-funds] [-date YYYY-MM-DD] [-db PATH] [-url URL]

Fetches the current holdings of one fund (or every configured fund) and
replaces the stored snapshot for the resolved as-of date.
`
}

func (c *ingestCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.fund, "fund", c.rt.Config.DefaultFund, "fund ticker to ingest")
	f.BoolVar(&c.all, "all-funds", false, "ingest every configured fund")
	f.StringVar(&c.date, "date", "", "override the as-of date (YYYY-MM-DD)")
	f.StringVar(&c.dbPath, "db", "", "sqlite file to store snapshots in (overrides DB_DRIVER/DB_PATH)")
	f.StringVar(&c.url, "url", "", "override the holdings page URL of the selected fund")
}

func (c *ingestCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if c.all && c.url != "" {
		return c.rt.usage("-url cannot be used with -all-funds")
	}
	asOf, err := parseDate("date", c.date)
	if err != nil {
		return c.rt.usage("%v", err)
	}

	cfg := c.rt.Config
	if c.dbPath != "" {
		cfg.DB.Driver = db.DriverSQLite
		cfg.DB.Path = c.dbPath
	}

	svc, closeFn, ok := c.rt.open(ctx, cfg)
	if !ok {
		return subcommands.ExitFailure
	}
	defer closeFn()

	if c.all {
		results, err := svc.Ingest.IngestAll(ctx, asOf)
		for _, res := range results {
			c.report(res, svc.Location)
		}
		if err != nil {
			return c.rt.fail(err)
		}
		return subcommands.ExitSuccess
	}

	res, err := svc.Ingest.Ingest(ctx, usecase.IngestRequest{Fund: c.fund, AsOf: asOf, URL: c.url})
	if err != nil {
		return c.rt.fail(err)
	}
	c.report(res, svc.Location)
	return subcommands.ExitSuccess
}

func (c *ingestCmd) report(res usecase.IngestResult, location string) {
	fmt.Fprintf(c.rt.Out, "Ingested %d holdings for %s on %s into %s.\n",
		res.Count, res.Fund, res.Date.Format(entity.DateLayout), location)
}
