package cmd

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/google/subcommands"

	"github.com/dgpessoa/ledger"
)

// importCmd holds the flags for the 'import' subcommand.
type importCmd struct {
	file      string
	account   string
	format    string
	tolerance int
	rowsPath  string
}

func (*importCmd) Name() string     { return "import" }
func (*importCmd) Synopsis() string { return "import a bank statement into an account" }
func (*importCmd) Usage() string {
	return `flc import -file <statement> -account <name> [-format csv|json] [-tolerance <days>]

  Parses a bank export, standardizes each row through the rule list,
  flags duplicates against the existing ledger and commits the rest.
  Re-importing the same file commits nothing.
`
}

func (c *importCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.file, "file", "", "Statement file to import.")
	f.StringVar(&c.account, "account", "", "Target account name or id.")
	f.StringVar(&c.format, "format", "csv", "Statement format: csv or json.")
	f.IntVar(&c.tolerance, "tolerance", 0, "Duplicate matching date tolerance in days.")
	f.StringVar(&c.rowsPath, "rows", "", "For json, the jsonpath selecting the row array.")
}

func (c *importCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	file, err := os.Open(c.file)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error opening statement %q: %v\n", c.file, err)
		return subcommands.ExitFailure
	}
	defer file.Close()

	var rows []ledger.StatementRow
	switch c.format {
	case "csv":
		rows, err = ledger.ParseCSVStatement(file, ledger.DefaultCSVLayout())
	case "json":
		layout := ledger.DefaultJSONLayout()
		if c.rowsPath != "" {
			layout.Rows = c.rowsPath
		}
		rows, err = ledger.ParseJSONStatement(file, layout)
	default:
		err = fmt.Errorf("unknown statement format %q", c.format)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error parsing statement: %v\n", err)
		return subcommands.ExitFailure
	}

	bus := ledger.NewEventBus()
	bus.Subscribe(ledger.EventTransactionCreated, func(e ledger.Event) {
		if tx, ok := e.Payload.(ledger.Transaction); ok {
			log.Printf("imported %s %s %q", tx.Date, tx.Amount.SignedString(), tx.Description)
		}
	})

	s, err := decodeStore(bus)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading ledger: %v\n", err)
		return subcommands.ExitFailure
	}
	account, err := findAccount(s, c.account)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}

	cfg := ledger.ImportConfig{DateToleranceDays: c.tolerance}
	result, err := s.ImportStatement(ctx, rows, account.ID, cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error importing statement: %v\n", err)
		return subcommands.ExitFailure
	}
	for _, rowErr := range result.Errors {
		fmt.Fprintf(os.Stderr, "warning: %v\n", rowErr)
	}

	if err := encodeStore(s); err != nil {
		fmt.Fprintf(os.Stderr, "Error saving ledger: %v\n", err)
		return subcommands.ExitFailure
	}
	fmt.Printf("Imported %d rows: %d committed, %d duplicates, %d ignored, %d failed\n",
		len(rows), result.Committed, result.Duplicates, result.Ignored, result.Failed)
	return subcommands.ExitSuccess
}

// newRuleCmd holds the flags for the 'new-rule' subcommand.
type newRuleCmd struct {
	match       string
	regex       bool
	account     string
	description string
	category    string
	operation   string
}

func (*newRuleCmd) Name() string     { return "new-rule" }
func (*newRuleCmd) Synopsis() string { return "create a statement standardization rule" }
func (*newRuleCmd) Usage() string {
	return `flc new-rule -match <text> [-regex] [-account <name>] [-set-desc <text>] [-set-category <name>] [-set-op <operation>]

  Appends a rule to the evaluation order. During import the first
  matching rule rewrites the row's description, category and
  operation.
`
}

func (c *newRuleCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.match, "match", "", "Substring to match, or a pattern with -regex.")
	f.BoolVar(&c.regex, "regex", false, "Treat -match as a regular expression.")
	f.StringVar(&c.account, "account", "", "Restrict the rule to one account.")
	f.StringVar(&c.description, "set-desc", "", "Replacement description.")
	f.StringVar(&c.category, "set-category", "", "Category to assign.")
	f.StringVar(&c.operation, "set-op", "", "Operation type to assign.")
}

func (c *newRuleCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	return withStore(func(s *ledger.Store) (bool, error) {
		rule := ledger.Rule{
			Match:          c.match,
			IsRegex:        c.regex,
			SetDescription: c.description,
			SetOperation:   ledger.Operation(c.operation),
		}
		if c.account != "" {
			a, err := findAccount(s, c.account)
			if err != nil {
				return false, err
			}
			rule.Account = a.ID
		}
		if c.category != "" {
			id, err := findCategory(s, c.category)
			if err != nil {
				return false, err
			}
			rule.SetCategory = id
		}
		created, err := s.CreateRule(rule)
		if err != nil {
			return false, err
		}
		for _, conflict := range s.RuleConflicts() {
			fmt.Fprintf(os.Stderr, "warning: rules %s and %s share the predicate %q; the first one wins\n",
				conflict.First, conflict.Second, conflict.Match)
		}
		fmt.Printf("Created rule %s matching %q\n", created.ID, created.Match)
		return true, nil
	})
}
