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

// balanceCmd holds the flags for the 'balance' subcommand.
type balanceCmd struct {
	date string
}

func (*balanceCmd) Name() string     { return "balance" }
func (*balanceCmd) Synopsis() string { return "display account balances as of a date" }
func (*balanceCmd) Usage() string {
	return `flc balance [-d <date>]

  Replays every account up to the given date and displays the
  balances, the investment total and the net worth.
`
}

func (c *balanceCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.date, "d", ledger.Today().String(), "Date for the balances.")
}

func (c *balanceCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	on, err := ledger.ParseDate(c.date)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error parsing date: %v\n", err)
		return subcommands.ExitUsageError
	}
	return withStore(func(s *ledger.Store) (bool, error) {
		printMarkdown(renderer.RenderBalances(renderer.NewBalanceReport(s, on)))
		return false, nil
	})
}
