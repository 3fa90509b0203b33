package cmd

import (
	"context"
	"flag"
	"fmt"

	"github.com/google/subcommands"

	"github.com/dgpessoa/ledger"
)

// newAccountCmd holds the flags for the 'new-account' subcommand.
type newAccountCmd struct {
	name     string
	kind     string
	opening  string
	currency string
}

func (*newAccountCmd) Name() string     { return "new-account" }
func (*newAccountCmd) Synopsis() string { return "create an account" }
func (*newAccountCmd) Usage() string {
	return `flc new-account -name <name> [-type <type>] [-opening <amount>]

  Creates an account. The opening balance is the replay baseline.
`
}

func (c *newAccountCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.name, "name", "", "Account name.")
	f.StringVar(&c.kind, "type", "checking", "Account type: checking, savings, investment, credit or other.")
	f.StringVar(&c.opening, "opening", "0", "Opening balance.")
	f.StringVar(&c.currency, "currency", ledger.DefaultCurrency, "Account currency code.")
}

func (c *newAccountCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	return withStore(func(s *ledger.Store) (bool, error) {
		opening, err := ledger.ParseMoney(c.opening)
		if err != nil {
			return false, err
		}
		// a bare amount adopts the account currency
		if opening.Currency() == ledger.DefaultCurrency && c.currency != ledger.DefaultCurrency {
			opening = ledger.M(opening.Decimal(), c.currency)
		}
		kind, err := ledger.ParseAccountType(c.kind)
		if err != nil {
			return false, err
		}
		a, err := s.CreateAccount(ledger.Account{
			Name:           c.name,
			Type:           kind,
			OpeningBalance: opening,
			Currency:       c.currency,
		})
		if err != nil {
			return false, err
		}
		fmt.Printf("Created account %q (%s)\n", a.Name, a.ID)
		return true, nil
	})
}

// newCategoryCmd holds the flags for the 'new-category' subcommand.
type newCategoryCmd struct {
	name string
	flow string
}

func (*newCategoryCmd) Name() string     { return "new-category" }
func (*newCategoryCmd) Synopsis() string { return "create a transaction category" }
func (*newCategoryCmd) Usage() string {
	return `flc new-category -name <name> [-flow income|expense|neutral]

  Creates a category. The flow direction must agree with the
  operations that will use it.
`
}

func (c *newCategoryCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.name, "name", "", "Category name.")
	f.StringVar(&c.flow, "flow", "expense", "Flow direction: income, expense or neutral.")
}

func (c *newCategoryCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	return withStore(func(s *ledger.Store) (bool, error) {
		flow, err := ledger.ParseFlowDirection(c.flow)
		if err != nil {
			return false, err
		}
		cat, err := s.CreateCategory(ledger.Category{Name: c.name, Flow: flow})
		if err != nil {
			return false, err
		}
		fmt.Printf("Created category %q (%s)\n", cat.Name, cat.ID)
		return true, nil
	})
}
