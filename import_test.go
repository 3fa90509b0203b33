package ledger

import (
	"context"
	"errors"
	"testing"
)

func importFixture(t *testing.T) (*Store, Account, Category) {
	t.Helper()
	s, a := newTestStore(t)
	streaming, err := s.CreateCategory(Category{Name: "Streaming", Flow: FlowExpense})
	if err != nil {
		t.Fatal(err)
	}
	return s, a, streaming
}

func TestImportAppliesRules(t *testing.T) {
	s, a, streaming := importFixture(t)
	if _, err := s.CreateRule(Rule{Match: "netflix", SetDescription: "Netflix", SetCategory: streaming.ID}); err != nil {
		t.Fatal(err)
	}

	rows := []StatementRow{
		{Date: MustParseDate("2024-01-10"), Amount: BRL(-39.90), Description: "NETFLIX.COM 8412"},
		{Date: MustParseDate("2024-01-12"), Amount: BRL(-55), Description: "some market"},
	}
	result, err := s.ImportStatement(context.Background(), rows, a.ID, DefaultImportConfig())
	if err != nil {
		t.Fatal(err)
	}
	if result.Committed != 2 {
		t.Fatalf("committed %d, want 2", result.Committed)
	}

	matched := result.Statement.Rows[0]
	if matched.Description != "Netflix" || matched.Category != streaming.ID {
		t.Errorf("rule not applied: %+v", matched)
	}
	tx, err := s.Transaction(matched.Transaction)
	if err != nil {
		t.Fatal(err)
	}
	if tx.Description != "Netflix" || tx.Category != streaming.ID {
		t.Errorf("committed transaction not standardized: %+v", tx)
	}

	// unmatched row keeps its raw description and stays uncategorized
	raw := result.Statement.Rows[1]
	if raw.Description != "some market" || !raw.Category.IsZero() {
		t.Errorf("unmatched row was altered: %+v", raw)
	}
	if raw.Operation != OpPurchase {
		t.Errorf("operation = %s, want purchase inferred from the sign", raw.Operation)
	}
}

func TestImportFlagsDuplicates(t *testing.T) {
	s, a, _ := importFixture(t)
	mustTx(t, s, Transaction{Account: a.ID, Date: MustParseDate("2024-01-10"), Amount: BRL(-39.90), Operation: OpPurchase, Description: "Netflix"})

	rows := []StatementRow{
		{Date: MustParseDate("2024-01-10"), Amount: BRL(-39.90), Description: "NETFLIX.COM"},
		{Date: MustParseDate("2024-01-11"), Amount: BRL(-20), Description: "parking"},
	}
	result, err := s.ImportStatement(context.Background(), rows, a.ID, DefaultImportConfig())
	if err != nil {
		t.Fatal(err)
	}
	if result.Duplicates != 1 || result.Committed != 1 {
		t.Fatalf("committed %d duplicates %d, want 1 and 1", result.Committed, result.Duplicates)
	}
	dup := result.Statement.Rows[0]
	if dup.State != RowDuplicate || dup.DuplicateOf.IsZero() {
		t.Errorf("duplicate row not flagged: %+v", dup)
	}
}

func TestImportDateTolerance(t *testing.T) {
	s, a, _ := importFixture(t)
	mustTx(t, s, Transaction{Account: a.ID, Date: MustParseDate("2024-01-10"), Amount: BRL(-39.90), Operation: OpPurchase})

	rows := []StatementRow{{Date: MustParseDate("2024-01-12"), Amount: BRL(-39.90), Description: "posted two days late"}}

	// exact matching does not see it
	result, err := s.ImportStatement(context.Background(), rows, a.ID, DefaultImportConfig())
	if err != nil {
		t.Fatal(err)
	}
	if result.Duplicates != 0 {
		t.Fatal("exact matching should not flag a two-day gap")
	}

	// a two-day window does
	result, err = s.ImportStatement(context.Background(), rows, a.ID, ImportConfig{DateToleranceDays: 2})
	if err != nil {
		t.Fatal(err)
	}
	if result.Duplicates != 1 {
		t.Error("tolerant matching should flag the row")
	}
}

func TestImportIsIdempotent(t *testing.T) {
	s, a, _ := importFixture(t)
	rows := []StatementRow{
		{Date: MustParseDate("2024-01-10"), Amount: BRL(-39.90), Description: "netflix"},
		{Date: MustParseDate("2024-01-15"), Amount: BRL(-120), Description: "energy"},
	}

	first, err := s.ImportStatement(context.Background(), rows, a.ID, DefaultImportConfig())
	if err != nil {
		t.Fatal(err)
	}
	if first.Committed != 2 {
		t.Fatalf("first import committed %d, want 2", first.Committed)
	}

	second, err := s.ImportStatement(context.Background(), rows, a.ID, DefaultImportConfig())
	if err != nil {
		t.Fatal(err)
	}
	if second.Committed != 0 || second.Duplicates != 2 {
		t.Errorf("second import committed %d duplicates %d, want 0 and 2", second.Committed, second.Duplicates)
	}
}

func TestImportRowErrorDoesNotAbortBatch(t *testing.T) {
	s, a, _ := importFixture(t)
	rows := []StatementRow{
		{Date: MustParseDate("2024-01-10"), Amount: BRL(-10), Description: "ok"},
		{Date: MustParseDate("2024-01-11"), Description: "zero amount"},
		{Date: MustParseDate("2024-01-12"), Amount: BRL(-30), Description: "also ok"},
	}
	result, err := s.ImportStatement(context.Background(), rows, a.ID, DefaultImportConfig())
	if err != nil {
		t.Fatal(err)
	}
	if result.Committed != 2 || result.Failed != 1 {
		t.Fatalf("committed %d failed %d, want 2 and 1", result.Committed, result.Failed)
	}
	if !errors.Is(result.Err(), ErrConstraint) {
		t.Errorf("joined error = %v, want a constraint", result.Err())
	}
	var rowErr *RowError
	if !errors.As(result.Err(), &rowErr) {
		t.Fatal("expected a RowError in the joined error")
	}
	if rowErr.Index != 1 {
		t.Errorf("failed row index = %d, want 1", rowErr.Index)
	}
}

func TestImportIgnoreRow(t *testing.T) {
	s, a, _ := importFixture(t)
	rows := []StatementRow{
		{Date: MustParseDate("2024-01-10"), Amount: BRL(-10), Description: "keep"},
		{Date: MustParseDate("2024-01-11"), Amount: BRL(-20), Description: "skip"},
	}
	stmt := s.PrepareStatement(rows, a.ID, DefaultImportConfig())
	if err := s.IgnoreRow(stmt.ID, 1); err != nil {
		t.Fatal(err)
	}

	result, err := s.CommitStatement(context.Background(), stmt.ID)
	if err != nil {
		t.Fatal(err)
	}
	if result.Committed != 1 || result.Ignored != 1 {
		t.Errorf("committed %d ignored %d, want 1 and 1", result.Committed, result.Ignored)
	}
}

func TestStatementAccessIsCopyOnRead(t *testing.T) {
	s, a, _ := importFixture(t)
	rows := []StatementRow{
		{Date: MustParseDate("2024-01-10"), Amount: BRL(-10), Description: "first"},
		{Date: MustParseDate("2024-01-11"), Amount: BRL(-20), Description: "second"},
	}
	stmt := s.PrepareStatement(rows, a.ID, DefaultImportConfig())

	// writing through the returned views must not change the stored rows
	stmt.Rows[0].State = RowIgnored
	view, err := s.Statement(stmt.ID)
	if err != nil {
		t.Fatal(err)
	}
	view.Rows[1].State = RowIgnored

	result, err := s.CommitStatement(context.Background(), stmt.ID)
	if err != nil {
		t.Fatal(err)
	}
	if result.Committed != 2 || result.Ignored != 0 {
		t.Errorf("committed %d ignored %d, want 2 and 0", result.Committed, result.Ignored)
	}
}

func TestImportCancelledContext(t *testing.T) {
	s, a, _ := importFixture(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	rows := []StatementRow{{Date: MustParseDate("2024-01-10"), Amount: BRL(-10), Description: "never lands"}}
	result, err := s.ImportStatement(ctx, rows, a.ID, DefaultImportConfig())
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("got %v, want context.Canceled", err)
	}
	if result.Committed != 0 {
		t.Errorf("committed %d rows on a cancelled context", result.Committed)
	}
}

func TestAccountScopedRule(t *testing.T) {
	s, a, streaming := importFixture(t)
	other, err := s.CreateAccount(Account{Name: "Wallet", Type: AccountOther})
	if err != nil {
		t.Fatal(err)
	}
	if _, err := s.CreateRule(Rule{Match: "netflix", Account: other.ID, SetCategory: streaming.ID}); err != nil {
		t.Fatal(err)
	}

	rows := []StatementRow{{Date: MustParseDate("2024-01-10"), Amount: BRL(-39.90), Description: "netflix"}}
	stmt := s.PrepareStatement(rows, a.ID, DefaultImportConfig())
	if stmt.Rows[0].State != RowUnmatched {
		t.Errorf("rule scoped to another account matched: %+v", stmt.Rows[0])
	}
}
