package ledger

import (
	"bytes"
	"context"
	"strings"
	"testing"
)

// fullStore populates one of everything the file format carries.
func fullStore(t *testing.T) *Store {
	t.Helper()
	s, a := newTestStore(t)
	savings, err := s.CreateAccount(Account{Name: "Savings", Type: AccountSavings})
	if err != nil {
		t.Fatal(err)
	}
	groceries, err := s.CreateCategory(Category{Name: "Groceries", Flow: FlowExpense})
	if err != nil {
		t.Fatal(err)
	}

	mustTx(t, s, Transaction{Account: a.ID, Date: MustParseDate("2024-01-05"), Amount: BRL(-80), Operation: OpPurchase, Category: groceries.ID, Description: "market"})
	if _, _, err := s.CreateTransfer(a.ID, savings.ID, MustParseDate("2024-01-10"), BRL(300), "monthly savings"); err != nil {
		t.Fatal(err)
	}

	v, err := s.CreateVehicle(Vehicle{Name: "Car", Value: BRL(30000)})
	if err != nil {
		t.Fatal(err)
	}
	if _, err := s.CreateInsurancePolicy(InsurancePolicy{Vehicle: v.ID, Insurer: "Acme", Premium: BRL(120), DueDay: 10, ValidTo: MustParseDate("2025-01-01")}); err != nil {
		t.Fatal(err)
	}
	if _, err := s.CreateGoal(Goal{Name: "Trip", Target: BRL(2000), Accounts: []ID{savings.ID}}); err != nil {
		t.Fatal(err)
	}
	if _, err := s.CreateRule(Rule{Match: "netflix", SetDescription: "Netflix"}); err != nil {
		t.Fatal(err)
	}

	loan, err := s.CreateLoan(Loan{Name: "car loan", Account: a.ID, Principal: BRL(1200), TermMonths: 12, FirstDueDate: MustParseDate("2024-02-01")})
	if err != nil {
		t.Fatal(err)
	}
	if _, err := s.PayInstallment(loan.ID, 1, MustParseDate("2024-02-01"), ""); err != nil {
		t.Fatal(err)
	}

	bill, err := s.CreateBillTracker(BillTracker{Name: "Energy", ExpectedAmount: BRL(180), DueDay: 10})
	if err != nil {
		t.Fatal(err)
	}
	paid := mustTx(t, s, Transaction{Account: a.ID, Date: MustParseDate("2024-02-08"), Amount: BRL(-182), Operation: OpPurchase, Description: "CEMIG"})
	if _, err := s.LinkBillPayment(bill.ID, paid.ID); err != nil {
		t.Fatal(err)
	}
	s.DismissBill("spotify|")

	// a prepared but uncommitted statement survives a reload too
	s.PrepareStatement([]StatementRow{
		{Date: MustParseDate("2024-02-12"), Amount: BRL(-55), Description: "pending row"},
	}, a.ID, DefaultImportConfig())
	return s
}

func TestEncodeDecodeRoundTrip(t *testing.T) {
	s := fullStore(t)

	var first bytes.Buffer
	if err := EncodeStore(&first, s); err != nil {
		t.Fatal(err)
	}

	decoded, err := DecodeStore(bytes.NewReader(first.Bytes()), NewEventBus())
	if err != nil {
		t.Fatal(err)
	}

	var second bytes.Buffer
	if err := EncodeStore(&second, decoded); err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(first.Bytes(), second.Bytes()) {
		t.Error("decode then encode does not reproduce the file")
	}
}

func TestDecodePreservesReplay(t *testing.T) {
	s := fullStore(t)
	var buf bytes.Buffer
	if err := EncodeStore(&buf, s); err != nil {
		t.Fatal(err)
	}
	decoded, err := DecodeStore(&buf, NewEventBus())
	if err != nil {
		t.Fatal(err)
	}

	want := s.Transactions()
	got := decoded.Transactions()
	if len(got) != len(want) {
		t.Fatalf("got %d transactions, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i].ID != want[i].ID {
			t.Fatalf("replay order diverges at %d: %s vs %s", i, got[i].ID, want[i].ID)
		}
	}

	for _, a := range s.Accounts() {
		asOf := MustParseDate("2024-03-01")
		wantBalance, err := s.BalanceAt(a.ID, asOf)
		if err != nil {
			t.Fatal(err)
		}
		gotBalance, err := decoded.BalanceAt(a.ID, asOf)
		if err != nil {
			t.Fatal(err)
		}
		if !gotBalance.Equal(wantBalance) {
			t.Errorf("%s: balance = %s, want %s", a.Name, gotBalance, wantBalance)
		}
	}
}

func TestDecodedStoreStaysMutable(t *testing.T) {
	s := fullStore(t)
	var buf bytes.Buffer
	if err := EncodeStore(&buf, s); err != nil {
		t.Fatal(err)
	}
	decoded, err := DecodeStore(&buf, NewEventBus())
	if err != nil {
		t.Fatal(err)
	}

	// the reloaded statement can still be committed
	stmts := decoded.Statements()
	if len(stmts) != 1 {
		t.Fatalf("got %d statements, want 1", len(stmts))
	}
	result, err := decoded.CommitStatement(context.Background(), stmts[0].ID)
	if err != nil {
		t.Fatal(err)
	}
	if result.Committed != 1 {
		t.Errorf("committed %d rows, want 1", result.Committed)
	}

	// the dismissed signature still suppresses detection
	a := decoded.Accounts()[0]
	for _, d := range []string{"2024-01-03", "2024-02-03", "2024-03-03"} {
		mustTx(t, decoded, Transaction{Account: a.ID, Date: MustParseDate(d), Amount: BRL(-21.90), Operation: OpPurchase, Description: "SPOTIFY"})
	}
	for _, p := range decoded.DetectRecurringBills(DefaultDetectorConfig()) {
		if p.Signature == "spotify|" {
			t.Error("dismissed signature was proposed after reload")
		}
	}
}

func TestDecodeRejectsUnknownKind(t *testing.T) {
	_, err := DecodeStore(strings.NewReader(`{"kind":"widget","id":"x"}`+"\n"), NewEventBus())
	if err == nil || !strings.Contains(err.Error(), "widget") {
		t.Errorf("got %v, want an unknown kind error", err)
	}
}
