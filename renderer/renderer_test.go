package renderer

import (
	"strings"
	"testing"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"

	"github.com/dgpessoa/ledger"
)

// fixtureStore builds a small ledger covering every report.
func fixtureStore(t *testing.T) *ledger.Store {
	t.Helper()
	s := ledger.NewStore(ledger.NewEventBus())

	checking, err := s.CreateAccount(ledger.Account{Name: "Checking", Type: ledger.AccountChecking, OpeningBalance: ledger.BRL(1000)})
	if err != nil {
		t.Fatal(err)
	}
	if _, err := s.CreateAccount(ledger.Account{Name: "Reserve", Type: ledger.AccountInvestment, OpeningBalance: ledger.BRL(500)}); err != nil {
		t.Fatal(err)
	}
	groceries, err := s.CreateCategory(ledger.Category{Name: "Groceries", Flow: ledger.FlowExpense})
	if err != nil {
		t.Fatal(err)
	}
	_, err = s.CreateTransaction(ledger.Transaction{
		Account:     checking.ID,
		Date:        ledger.MustParseDate("2024-03-05"),
		Amount:      ledger.BRL(-200),
		Operation:   ledger.OpPurchase,
		Category:    groceries.ID,
		Description: "market",
	})
	if err != nil {
		t.Fatal(err)
	}
	if _, err := s.CreateGoal(ledger.Goal{Name: "Trip", Target: ledger.BRL(2000), Accounts: []ledger.ID{checking.ID}}); err != nil {
		t.Fatal(err)
	}
	if _, err := s.CreateBillTracker(ledger.BillTracker{Name: "internet", ExpectedAmount: ledger.BRL(100), DueDay: 10}); err != nil {
		t.Fatal(err)
	}
	return s
}

// headings parses markdown and returns the text of every heading.
func headings(t *testing.T, source string) []string {
	t.Helper()
	content := []byte(source)
	root := goldmark.DefaultParser().Parse(text.NewReader(content))

	var out []string
	ast.Walk(root, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		if h, ok := n.(*ast.Heading); ok {
			var b strings.Builder
			for i := 0; i < h.Lines().Len(); i++ {
				line := h.Lines().At(i)
				b.Write(line.Value(content))
			}
			out = append(out, b.String())
		}
		return ast.WalkContinue, nil
	})
	return out
}

func requireHeading(t *testing.T, got []string, want string) {
	t.Helper()
	for _, h := range got {
		if strings.Contains(h, want) {
			return
		}
	}
	t.Errorf("missing heading containing %q, got %v", want, got)
}

func TestRenderBalances(t *testing.T) {
	s := fixtureStore(t)
	report := NewBalanceReport(s, ledger.MustParseDate("2024-03-31"))
	out := RenderBalances(report)

	requireHeading(t, headings(t, out), "Balances as of 2024-03-31")
	for _, want := range []string{"Checking", "Reserve", "Net worth"} {
		if !strings.Contains(out, want) {
			t.Errorf("missing %q in:\n%s", want, out)
		}
	}
}

func TestRenderSummary(t *testing.T) {
	s := fixtureStore(t)
	r := ledger.NewRange(ledger.MustParseDate("2024-03-01"), ledger.MustParseDate("2024-03-31"))
	out := RenderSummary(NewSummaryReport(s, r))

	requireHeading(t, headings(t, out), "Summary 2024-03-01 to 2024-03-31")
	if !strings.Contains(out, "Groceries") {
		t.Errorf("missing category row in:\n%s", out)
	}
}

func TestRenderComparison(t *testing.T) {
	s := fixtureStore(t)
	current := ledger.NewRange(ledger.MustParseDate("2024-03-01"), ledger.MustParseDate("2024-03-31"))
	out := RenderComparison(NewComparisonReport(s, current, current.Previous()))

	got := headings(t, out)
	requireHeading(t, got, "Comparison")
	requireHeading(t, got, "Current")
	requireHeading(t, got, "Previous")
	requireHeading(t, got, "Change")
	// previous period is empty, the variation must show the sentinel
	if !strings.Contains(out, "n/a") {
		t.Errorf("expected undefined variation in:\n%s", out)
	}
}

func TestRenderBills(t *testing.T) {
	s := fixtureStore(t)
	out := RenderBills(NewBillsReport(s, ledger.MustParseDate("2024-03-08"), ledger.DefaultDetectorConfig()))

	requireHeading(t, headings(t, out), "Bills on 2024-03-08")
	if !strings.Contains(out, "internet") {
		t.Errorf("missing tracker row in:\n%s", out)
	}
	if !strings.Contains(out, string(ledger.BillDue)) {
		t.Errorf("expected a due tracker in:\n%s", out)
	}
}

func TestRenderGoals(t *testing.T) {
	s := fixtureStore(t)
	out := RenderGoals(NewGoalsReport(s, ledger.MustParseDate("2024-03-31")))

	requireHeading(t, headings(t, out), "Goals as of 2024-03-31")
	if !strings.Contains(out, "Trip") {
		t.Errorf("missing goal row in:\n%s", out)
	}
}

func TestRenderLoan(t *testing.T) {
	s := fixtureStore(t)
	accounts := s.Accounts()
	loan, err := s.CreateLoan(ledger.Loan{
		Name:         "car",
		Account:      accounts[0].ID,
		Principal:    ledger.BRL(10000),
		TermMonths:   12,
		FirstDueDate: ledger.MustParseDate("2024-04-10"),
	})
	if err != nil {
		t.Fatal(err)
	}
	report, err := NewLoanReport(s, loan.ID, ledger.MustParseDate("2024-04-30"))
	if err != nil {
		t.Fatal(err)
	}
	out := RenderLoan(report)

	requireHeading(t, headings(t, out), "Loan car")
	if got := strings.Count(out, "| no |"); got != 12 {
		t.Errorf("expected 12 unpaid installments, got %d in:\n%s", got, out)
	}
}
