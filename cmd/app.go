// Package cmd implements the CLI application to manage the family ledger.
package cmd

import (
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"log"
	"os"

	"github.com/charmbracelet/glamour"
	"github.com/google/subcommands"

	"github.com/dgpessoa/ledger"
)

// Commands is the full list of subcommands; a main package registers
// them and executes the user-selected one.
var Commands = []subcommands.Command{
	&newAccountCmd{},
	&newCategoryCmd{},
	&txCmd{},
	&deleteTxCmd{},
	&transferCmd{},
	&balanceCmd{},
	&summaryCmd{},
	&compareCmd{},
	&importCmd{},
	&newRuleCmd{},
	&billsCmd{},
	&goalsCmd{},
	&newLoanCmd{},
	&payLoanCmd{},
	&loanCmd{},
}

// as a CLI application, it has a very short lived lifecycle, so it is ok to use global variables.

var ledgerFile = flag.String("ledger-file", "ledger.jsonl", "Path to the ledger file (JSONL format)")

// decodeStore loads the ledger file into a store. A missing file is
// not an error: it yields an empty store.
func decodeStore(bus *ledger.EventBus) (*ledger.Store, error) {
	f, err := os.Open(*ledgerFile)
	if errors.Is(err, fs.ErrNotExist) {
		log.Println("warning, ledger file does not exist, starting from an empty ledger")
		return ledger.NewStore(bus), nil
	}
	if err != nil {
		return nil, fmt.Errorf("cannot open ledger file %q: %w", *ledgerFile, err)
	}
	defer f.Close()
	return ledger.DecodeStore(f, bus)
}

// encodeStore persists the store back to the ledger file.
func encodeStore(s *ledger.Store) error {
	f, err := os.Create(*ledgerFile)
	if err != nil {
		return fmt.Errorf("cannot create ledger file %q: %w", *ledgerFile, err)
	}
	defer f.Close()
	return ledger.EncodeStore(f, s)
}

// withStore runs fn on the loaded store and persists it when fn
// reports a mutation.
func withStore(fn func(s *ledger.Store) (mutated bool, err error)) subcommands.ExitStatus {
	s, err := decodeStore(ledger.NewEventBus())
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading ledger: %v\n", err)
		return subcommands.ExitFailure
	}
	mutated, err := fn(s)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	if mutated {
		if err := encodeStore(s); err != nil {
			fmt.Fprintf(os.Stderr, "Error saving ledger: %v\n", err)
			return subcommands.ExitFailure
		}
	}
	return subcommands.ExitSuccess
}

// printMarkdown renders markdown for the terminal. If styling fails
// the raw markdown is still printed.
func printMarkdown(md string) {
	out, err := glamour.Render(md, "auto")
	if err != nil {
		fmt.Print(md)
		return
	}
	fmt.Print(out)
}

// findAccount resolves an account by name or id.
func findAccount(s *ledger.Store, nameOrID string) (ledger.Account, error) {
	for _, a := range s.Accounts() {
		if a.Name == nameOrID || string(a.ID) == nameOrID {
			return a, nil
		}
	}
	return ledger.Account{}, fmt.Errorf("no account named %q", nameOrID)
}

// findCategory resolves a category by name or id. An empty string
// resolves to the zero id.
func findCategory(s *ledger.Store, nameOrID string) (ledger.ID, error) {
	if nameOrID == "" {
		return "", nil
	}
	for _, c := range s.Categories() {
		if c.Name == nameOrID || string(c.ID) == nameOrID {
			return c.ID, nil
		}
	}
	return "", fmt.Errorf("no category named %q", nameOrID)
}

// findLoan resolves a loan by name or id.
func findLoan(s *ledger.Store, nameOrID string) (ledger.Loan, error) {
	for _, l := range s.Loans() {
		if l.Name == nameOrID || string(l.ID) == nameOrID {
			return l, nil
		}
	}
	return ledger.Loan{}, fmt.Errorf("no loan named %q", nameOrID)
}
