package cmd

import (
	"context"
	"flag"
	"fmt"

	"github.com/google/subcommands"

	"github.com/dgpessoa/ledger"
)

// txCmd holds the flags for the 'tx' subcommand.
type txCmd struct {
	account     string
	date        string
	amount      string
	operation   string
	category    string
	description string
}

func (*txCmd) Name() string     { return "tx" }
func (*txCmd) Synopsis() string { return "record a transaction" }
func (*txCmd) Usage() string {
	return `flc tx -account <name> -amount <amount> [-op <operation>] [-category <name>] [-d <date>] [-desc <text>]

  Records a single transaction. The amount is signed: negative for
  outflow, positive for inflow.
`
}

func (c *txCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.account, "account", "", "Account name or id.")
	f.StringVar(&c.date, "d", ledger.Today().String(), "Transaction date.")
	f.StringVar(&c.amount, "amount", "", "Signed amount.")
	f.StringVar(&c.operation, "op", "", "Operation type; inferred from the sign when omitted.")
	f.StringVar(&c.category, "category", "", "Category name or id.")
	f.StringVar(&c.description, "desc", "", "Free-form description.")
}

func (c *txCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	return withStore(func(s *ledger.Store) (bool, error) {
		account, err := findAccount(s, c.account)
		if err != nil {
			return false, err
		}
		on, err := ledger.ParseDate(c.date)
		if err != nil {
			return false, err
		}
		amount, err := ledger.ParseMoney(c.amount)
		if err != nil {
			return false, err
		}
		op := ledger.OperationForSign(amount)
		if c.operation != "" {
			if op, err = ledger.ParseOperation(c.operation); err != nil {
				return false, err
			}
		}
		category, err := findCategory(s, c.category)
		if err != nil {
			return false, err
		}
		tx, err := s.CreateTransaction(ledger.Transaction{
			Account:     account.ID,
			Date:        on,
			Amount:      amount,
			Operation:   op,
			Category:    category,
			Description: c.description,
		})
		if err != nil {
			return false, err
		}
		fmt.Printf("Recorded %s on %q (%s)\n", tx.Amount.SignedString(), account.Name, tx.ID)
		return true, nil
	})
}

// deleteTxCmd holds the flags for the 'delete-tx' subcommand.
type deleteTxCmd struct {
	id string
}

func (*deleteTxCmd) Name() string     { return "delete-tx" }
func (*deleteTxCmd) Synopsis() string { return "delete a transaction" }
func (*deleteTxCmd) Usage() string {
	return `flc delete-tx -id <transaction-id>

  Deletes a transaction. A paired transfer leg, a paid loan
  installment or a paid bill pointing at it is unlinked.
`
}

func (c *deleteTxCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.id, "id", "", "Transaction id.")
}

func (c *deleteTxCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	return withStore(func(s *ledger.Store) (bool, error) {
		id, err := ledger.ParseID(c.id)
		if err != nil {
			return false, err
		}
		if err := s.DeleteTransaction(id); err != nil {
			return false, err
		}
		fmt.Printf("Deleted transaction %s\n", id)
		return true, nil
	})
}

// transferCmd holds the flags for the 'transfer' subcommand.
type transferCmd struct {
	from        string
	to          string
	date        string
	amount      string
	description string
}

func (*transferCmd) Name() string     { return "transfer" }
func (*transferCmd) Synopsis() string { return "record a transfer between two accounts" }
func (*transferCmd) Usage() string {
	return `flc transfer -from <account> -to <account> -amount <amount> [-d <date>]

  Records a transfer as two linked transactions, an outflow on the
  source and an inflow on the destination.
`
}

func (c *transferCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.from, "from", "", "Source account name or id.")
	f.StringVar(&c.to, "to", "", "Destination account name or id.")
	f.StringVar(&c.date, "d", ledger.Today().String(), "Transfer date.")
	f.StringVar(&c.amount, "amount", "", "Positive amount to move.")
	f.StringVar(&c.description, "desc", "", "Free-form description.")
}

func (c *transferCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	return withStore(func(s *ledger.Store) (bool, error) {
		from, err := findAccount(s, c.from)
		if err != nil {
			return false, err
		}
		to, err := findAccount(s, c.to)
		if err != nil {
			return false, err
		}
		on, err := ledger.ParseDate(c.date)
		if err != nil {
			return false, err
		}
		amount, err := ledger.ParseMoney(c.amount)
		if err != nil {
			return false, err
		}
		out, in, err := s.CreateTransfer(from.ID, to.ID, on, amount, c.description)
		if err != nil {
			return false, err
		}
		fmt.Printf("Moved %s from %q (%s) to %q (%s)\n", amount, from.Name, out.ID, to.Name, in.ID)
		return true, nil
	})
}
