package cli

import (
	"context"
	"flag"
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/google/subcommands"

	"holdings_backend/internal/feature/holdings/domain/entity"
)

// fundsCmd implements the "funds" command.
type fundsCmd struct {
	rt *Runtime
}

func (*fundsCmd) Name() string           { return "funds" }
func (*fundsCmd) Synopsis() string       { return "list funds with stored snapshots" }
func (*fundsCmd) Usage() string          { return "funds\n" }
func (*fundsCmd) SetFlags(*flag.FlagSet) {}

func (c *fundsCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	svc, closeFn, ok := c.rt.open(ctx, c.rt.Config)
	if !ok {
		return subcommands.ExitFailure
	}
	defer closeFn()

	funds, err := svc.Query.ListFunds(ctx)
	if err != nil {
		return c.rt.fail(err)
	}
	for _, f := range funds {
		fmt.Fprintln(c.rt.Out, f)
	}
	return subcommands.ExitSuccess
}

// datesCmd implements the "dates" command.
type datesCmd struct {
	rt   *Runtime
	fund string
}

func (*datesCmd) Name() string     { return "dates" }
func (*datesCmd) Synopsis() string { return "list the snapshot dates of a fund" }
func (*datesCmd) Usage() string    { return "dates [-fund F]\n" }
func (c *datesCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.fund, "fund", c.rt.Config.DefaultFund, "fund ticker")
}

func (c *datesCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	svc, closeFn, ok := c.rt.open(ctx, c.rt.Config)
	if !ok {
		return subcommands.ExitFailure
	}
	defer closeFn()

	dates, err := svc.Query.ListDates(ctx, c.fund)
	if err != nil {
		return c.rt.fail(err)
	}
	for _, d := range dates {
		fmt.Fprintln(c.rt.Out, d.Format(entity.DateLayout))
	}
	return subcommands.ExitSuccess
}

// totalsCmd implements the "totals" command.
type totalsCmd struct {
	rt   *Runtime
	fund string
	date string
}

func (*totalsCmd) Name() string     { return "totals" }
func (*totalsCmd) Synopsis() string { return "show AUM and holding count of one snapshot" }
func (*totalsCmd) Usage() string    { return "totals [-fund F] -date YYYY-MM-DD\n" }
func (c *totalsCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.fund, "fund", c.rt.Config.DefaultFund, "fund ticker")
	f.StringVar(&c.date, "date", "", "snapshot date (YYYY-MM-DD)")
}

func (c *totalsCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	date, err := parseDate("date", c.date)
	if err != nil {
		return c.rt.usage("%v", err)
	}
	if date.IsZero() {
		return c.rt.usage("-date is required")
	}

	svc, closeFn, ok := c.rt.open(ctx, c.rt.Config)
	if !ok {
		return subcommands.ExitFailure
	}
	defer closeFn()

	totals, err := svc.Query.Totals(ctx, date, c.fund)
	if err != nil {
		return c.rt.fail(err)
	}
	fmt.Fprintf(c.rt.Out, "%s %s: %d holdings, AUM %s\n",
		strings.ToUpper(c.fund), date.Format(entity.DateLayout), totals.HoldingsCount, formatUSD(totals.TotalAUM))
	return subcommands.ExitSuccess
}

// compareCmd implements the "compare" command.
type compareCmd struct {
	rt    *Runtime
	fund  string
	start string
	end   string
	all   bool
}

func (*compareCmd) Name() string     { return "compare" }
func (*compareCmd) Synopsis() string { return "compare two snapshots of a fund" }
func (*compareCmd) Usage() string {
	return `compare [-fund F] -start YYYY-MM-DD -end YYYY-MM-DD [-all]

Prints the holdings added, removed and changed between two snapshots.
`
}
func (c *compareCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.fund, "fund", c.rt.Config.DefaultFund, "fund ticker")
	f.StringVar(&c.start, "start", "", "start snapshot date (YYYY-MM-DD)")
	f.StringVar(&c.end, "end", "", "end snapshot date (YYYY-MM-DD)")
	f.BoolVar(&c.all, "all", false, "also print every joined row")
}

func (c *compareCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	start, err := parseDate("start", c.start)
	if err != nil {
		return c.rt.usage("%v", err)
	}
	end, err := parseDate("end", c.end)
	if err != nil {
		return c.rt.usage("%v", err)
	}
	if start.IsZero() || end.IsZero() {
		return c.rt.usage("-start and -end are required")
	}

	svc, closeFn, ok := c.rt.open(ctx, c.rt.Config)
	if !ok {
		return subcommands.ExitFailure
	}
	defer closeFn()

	cmp, err := svc.Query.Compare(ctx, start, end, c.fund)
	if err != nil {
		return c.rt.fail(err)
	}

	fmt.Fprintf(c.rt.Out, "%s %s to %s\n", strings.ToUpper(c.fund),
		start.Format(entity.DateLayout), end.Format(entity.DateLayout))
	c.section("Added", cmp.Added)
	c.section("Removed", cmp.Removed)
	c.section("Changed", cmp.Changed)
	if c.all {
		c.section("All", cmp.All)
	}
	return subcommands.ExitSuccess
}

func (c *compareCmd) section(title string, rows []entity.ComparisonRow) {
	fmt.Fprintf(c.rt.Out, "\n%s (%d)\n", title, len(rows))
	if len(rows) == 0 {
		return
	}
	tw := tabwriter.NewWriter(c.rt.Out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "TICKER\tNAME\tSTATUS\tSHARES Δ\tVALUE Δ")
	for _, r := range rows {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n",
			r.Ticker, r.Name, r.Status, formatQty(r.SharesDelta), formatUSD(r.MarketValueDelta))
	}
	_ = tw.Flush()
}
