package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/google/subcommands"

	"github.com/dgpessoa/ledger"
	"github.com/dgpessoa/ledger/renderer"
)

// goalsCmd holds the flags for the 'goals' subcommand.
type goalsCmd struct {
	date     string
	name     string
	target   string
	by       string
	accounts string
}

func (*goalsCmd) Name() string     { return "goals" }
func (*goalsCmd) Synopsis() string { return "display goal progress, optionally creating a goal" }
func (*goalsCmd) Usage() string {
	return `flc goals [-d <date>] [-new <name> -target <amount> -accounts <a,b>]

  Displays every goal with its progress derived from the replayed
  balances of its linked accounts.
`
}

func (c *goalsCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.date, "d", ledger.Today().String(), "Date for the progress view.")
	f.StringVar(&c.name, "new", "", "Create a goal with this name first.")
	f.StringVar(&c.target, "target", "", "Target amount for the new goal.")
	f.StringVar(&c.by, "by", "", "Target date for the new goal.")
	f.StringVar(&c.accounts, "accounts", "", "Comma-separated accounts feeding the new goal.")
}

func (c *goalsCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	on, err := ledger.ParseDate(c.date)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error parsing date: %v\n", err)
		return subcommands.ExitUsageError
	}
	return withStore(func(s *ledger.Store) (bool, error) {
		mutated := false
		if c.name != "" {
			goal := ledger.Goal{Name: c.name}
			if goal.Target, err = ledger.ParseMoney(c.target); err != nil {
				return false, err
			}
			if c.by != "" {
				if goal.TargetDate, err = ledger.ParseDate(c.by); err != nil {
					return false, err
				}
			}
			for _, name := range strings.Split(c.accounts, ",") {
				a, err := findAccount(s, strings.TrimSpace(name))
				if err != nil {
					return false, err
				}
				goal.Accounts = append(goal.Accounts, a.ID)
			}
			created, err := s.CreateGoal(goal)
			if err != nil {
				return false, err
			}
			fmt.Printf("Created goal %q (%s)\n", created.Name, created.ID)
			mutated = true
		}
		printMarkdown(renderer.RenderGoals(renderer.NewGoalsReport(s, on)))
		return mutated, nil
	})
}
