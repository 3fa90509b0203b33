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

// newLoanCmd holds the flags for the 'new-loan' subcommand.
type newLoanCmd struct {
	name      string
	account   string
	principal string
	rate      float64
	months    int
	firstDue  string
}

func (*newLoanCmd) Name() string     { return "new-loan" }
func (*newLoanCmd) Synopsis() string { return "create a loan with an amortization schedule" }
func (*newLoanCmd) Usage() string {
	return `flc new-loan -name <name> -account <name> -principal <amount> -rate <pct> -months <n> -first-due <date>

  Creates a fixed-rate loan amortized in equal monthly installments
  on the given account.
`
}

func (c *newLoanCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.name, "name", "", "Loan name.")
	f.StringVar(&c.account, "account", "", "Account the installments are paid from.")
	f.StringVar(&c.principal, "principal", "", "Borrowed amount.")
	f.Float64Var(&c.rate, "rate", 0, "Annual interest rate in percent.")
	f.IntVar(&c.months, "months", 0, "Number of monthly installments.")
	f.StringVar(&c.firstDue, "first-due", "", "Due date of the first installment.")
}

func (c *newLoanCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	return withStore(func(s *ledger.Store) (bool, error) {
		account, err := findAccount(s, c.account)
		if err != nil {
			return false, err
		}
		principal, err := ledger.ParseMoney(c.principal)
		if err != nil {
			return false, err
		}
		firstDue, err := ledger.ParseDate(c.firstDue)
		if err != nil {
			return false, err
		}
		l, err := s.CreateLoan(ledger.Loan{
			Name:          c.name,
			Account:       account.ID,
			Principal:     principal,
			AnnualRatePct: c.rate,
			TermMonths:    c.months,
			FirstDueDate:  firstDue,
		})
		if err != nil {
			return false, err
		}
		fmt.Printf("Created loan %q with %d installments (%s)\n", l.Name, len(l.Installments), l.ID)
		return true, nil
	})
}

// payLoanCmd holds the flags for the 'pay-loan' subcommand.
type payLoanCmd struct {
	loan     string
	number   int
	date     string
	category string
}

func (*payLoanCmd) Name() string     { return "pay-loan" }
func (*payLoanCmd) Synopsis() string { return "pay a loan installment" }
func (*payLoanCmd) Usage() string {
	return `flc pay-loan -loan <name> -n <installment> [-d <date>] [-category <name>]

  Records a loan-payment transaction on the loan's account and marks
  the installment paid.
`
}

func (c *payLoanCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.loan, "loan", "", "Loan name or id.")
	f.IntVar(&c.number, "n", 0, "Installment number.")
	f.StringVar(&c.date, "d", ledger.Today().String(), "Payment date.")
	f.StringVar(&c.category, "category", "", "Category for the payment transaction.")
}

func (c *payLoanCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	return withStore(func(s *ledger.Store) (bool, error) {
		l, err := findLoan(s, c.loan)
		if err != nil {
			return false, err
		}
		on, err := ledger.ParseDate(c.date)
		if err != nil {
			return false, err
		}
		category, err := findCategory(s, c.category)
		if err != nil {
			return false, err
		}
		tx, err := s.PayInstallment(l.ID, c.number, on, category)
		if err != nil {
			return false, err
		}
		fmt.Printf("Paid installment %d of %q with %s (%s)\n", c.number, l.Name, tx.Amount.Abs(), tx.ID)
		return true, nil
	})
}

// loanCmd holds the flags for the 'loan' subcommand.
type loanCmd struct {
	loan string
	date string
}

func (*loanCmd) Name() string     { return "loan" }
func (*loanCmd) Synopsis() string { return "display a loan schedule" }
func (*loanCmd) Usage() string {
	return `flc loan -loan <name> [-d <date>]

  Displays the amortization schedule and the outstanding principal as
  of the given date.
`
}

func (c *loanCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.loan, "loan", "", "Loan name or id.")
	f.StringVar(&c.date, "d", ledger.Today().String(), "Date for the outstanding principal.")
}

func (c *loanCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	on, err := ledger.ParseDate(c.date)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error parsing date: %v\n", err)
		return subcommands.ExitUsageError
	}
	return withStore(func(s *ledger.Store) (bool, error) {
		l, err := findLoan(s, c.loan)
		if err != nil {
			return false, err
		}
		report, err := renderer.NewLoanReport(s, l.ID, on)
		if err != nil {
			return false, err
		}
		printMarkdown(renderer.RenderLoan(report))
		return false, nil
	})
}
