package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/google/subcommands"

	"github.com/dgpessoa/ledger"
	"github.com/dgpessoa/ledger/renderer"
)

// summaryCmd holds the flags for the 'summary' subcommand.
type summaryCmd struct {
	date     string
	period   string
	account  string
	category string
}

func (*summaryCmd) Name() string     { return "summary" }
func (*summaryCmd) Synopsis() string { return "display a period summary by category" }
func (*summaryCmd) Usage() string {
	return `flc summary [-d <date>] [-p <period>] [-account <name>] [-category <name>]

  Summarizes the period containing the date, grouped by category and
  flow direction.
`
}

func (c *summaryCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.date, "d", ledger.Today().String(), "Date inside the period to summarize.")
	f.StringVar(&c.period, "p", "month", "Period: day, week, month, quarter or year.")
	f.StringVar(&c.account, "account", "", "Restrict to one account.")
	f.StringVar(&c.category, "category", "", "Restrict to one category.")
}

// summarizeOptions translates the account/category flags into filters.
func summarizeOptions(s *ledger.Store, account, category string) ([]ledger.SummarizeOption, error) {
	var opts []ledger.SummarizeOption
	if account != "" {
		a, err := findAccount(s, account)
		if err != nil {
			return nil, err
		}
		opts = append(opts, ledger.ByAccount(a.ID))
	}
	if category != "" {
		id, err := findCategory(s, category)
		if err != nil {
			return nil, err
		}
		opts = append(opts, ledger.ByCategory(id))
	}
	return opts, nil
}

func (c *summaryCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	on, err := ledger.ParseDate(c.date)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error parsing date: %v\n", err)
		return subcommands.ExitUsageError
	}
	period, err := ledger.ParsePeriod(c.period)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error parsing period: %v\n", err)
		return subcommands.ExitUsageError
	}
	return withStore(func(s *ledger.Store) (bool, error) {
		opts, err := summarizeOptions(s, c.account, c.category)
		if err != nil {
			return false, err
		}
		printMarkdown(renderer.RenderSummary(renderer.NewSummaryReport(s, period.Range(on), opts...)))
		return false, nil
	})
}

// compareCmd holds the flags for the 'compare' subcommand.
type compareCmd struct {
	date     string
	period   string
	account  string
	category string
}

func (*compareCmd) Name() string     { return "compare" }
func (*compareCmd) Synopsis() string { return "compare a period against the previous one" }
func (*compareCmd) Usage() string {
	return `flc compare [-d <date>] [-p <period>] [-account <name>] [-category <name>]

  Compares the period containing the date against the adjacent period
  of the same length before it, showing the delta and the percentage
  variation. A variation against an empty period displays as n/a.
`
}

func (c *compareCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.date, "d", ledger.Today().String(), "Date inside the current period.")
	f.StringVar(&c.period, "p", "month", "Period: day, week, month, quarter or year.")
	f.StringVar(&c.account, "account", "", "Restrict to one account.")
	f.StringVar(&c.category, "category", "", "Restrict to one category.")
}

func (c *compareCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	on, err := ledger.ParseDate(c.date)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error parsing date: %v\n", err)
		return subcommands.ExitUsageError
	}
	period, err := ledger.ParsePeriod(c.period)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error parsing period: %v\n", err)
		return subcommands.ExitUsageError
	}
	return withStore(func(s *ledger.Store) (bool, error) {
		opts, err := summarizeOptions(s, c.account, c.category)
		if err != nil {
			return false, err
		}
		current := period.Range(on)
		report := renderer.NewComparisonReport(s, current, current.Previous(), opts...)
		printMarkdown(renderer.RenderComparison(report))
		return false, nil
	})
}
