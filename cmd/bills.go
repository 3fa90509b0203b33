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

// billsCmd holds the flags for the 'bills' subcommand.
type billsCmd struct {
	date      string
	match     bool
	confirm   string
	dismiss   string
	tolerance float64
}

func (*billsCmd) Name() string     { return "bills" }
func (*billsCmd) Synopsis() string { return "track recurring bills and detect new ones" }
func (*billsCmd) Usage() string {
	return `flc bills [-d <date>] [-match] [-confirm <signature>] [-dismiss <signature>]

  Displays every tracker with its status for the period containing the
  date, plus the recurrence candidates detected in the history.
  -match links this period's transactions to unpaid trackers,
  -confirm turns a candidate into a tracker, -dismiss rejects it for
  good.
`
}

func (c *billsCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.date, "d", ledger.Today().String(), "Date for the status view.")
	f.BoolVar(&c.match, "match", false, "Link matching transactions to unpaid trackers.")
	f.StringVar(&c.confirm, "confirm", "", "Signature of a candidate to confirm.")
	f.StringVar(&c.dismiss, "dismiss", "", "Signature of a candidate to dismiss.")
	f.Float64Var(&c.tolerance, "tolerance", 15, "Amount tolerance in percent for payment matching.")
}

func (c *billsCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	on, err := ledger.ParseDate(c.date)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error parsing date: %v\n", err)
		return subcommands.ExitUsageError
	}
	cfg := ledger.DefaultDetectorConfig()

	return withStore(func(s *ledger.Store) (bool, error) {
		mutated := false

		if c.dismiss != "" {
			s.DismissBill(c.dismiss)
			fmt.Printf("Dismissed %q\n", c.dismiss)
			mutated = true
		}
		if c.confirm != "" {
			var confirmed bool
			for _, p := range s.DetectRecurringBills(cfg) {
				if p.Signature == c.confirm {
					b, err := s.ConfirmBill(p)
					if err != nil {
						return mutated, err
					}
					fmt.Printf("Confirmed %q as tracker %s\n", b.Name, b.ID)
					confirmed, mutated = true, true
					break
				}
			}
			if !confirmed {
				return mutated, fmt.Errorf("no candidate with signature %q", c.confirm)
			}
		}
		if c.match {
			for _, b := range s.MatchBillPayments(on, c.tolerance) {
				fmt.Printf("Matched payment for %q\n", b.Name)
				mutated = true
			}
		}

		printMarkdown(renderer.RenderBills(renderer.NewBillsReport(s, on, cfg)))
		return mutated, nil
	})
}
