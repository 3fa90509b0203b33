package ledger

import "testing"

func analyticsFixture(t *testing.T) (*Store, Account, Category, Category) {
	t.Helper()
	s, a := newTestStore(t)
	groceries, err := s.CreateCategory(Category{Name: "Groceries", Flow: FlowExpense})
	if err != nil {
		t.Fatal(err)
	}
	salary, err := s.CreateCategory(Category{Name: "Salary", Flow: FlowIncome})
	if err != nil {
		t.Fatal(err)
	}
	mustTx(t, s, Transaction{Account: a.ID, Date: MustParseDate("2024-02-05"), Amount: BRL(-100), Operation: OpPurchase, Category: groceries.ID})
	mustTx(t, s, Transaction{Account: a.ID, Date: MustParseDate("2024-03-01"), Amount: BRL(-200), Operation: OpPurchase, Category: groceries.ID})
	mustTx(t, s, Transaction{Account: a.ID, Date: MustParseDate("2024-03-31"), Amount: BRL(-50), Operation: OpPurchase, Category: groceries.ID})
	mustTx(t, s, Transaction{Account: a.ID, Date: MustParseDate("2024-03-10"), Amount: BRL(3000), Operation: OpIncome, Category: salary.ID})
	return s, a, groceries, salary
}

func TestSummarizeRange(t *testing.T) {
	s, _, groceries, salary := analyticsFixture(t)
	march := Monthly.Range(MustParseDate("2024-03-15"))

	sum := s.Summarize(march)
	// both boundary transactions belong to march, february's does not
	if !sum.ByCategory[groceries.ID].Equal(BRL(-250)) {
		t.Errorf("groceries = %s, want -250", sum.ByCategory[groceries.ID])
	}
	if !sum.ByCategory[salary.ID].Equal(BRL(3000)) {
		t.Errorf("salary = %s, want 3000", sum.ByCategory[salary.ID])
	}
	if !sum.ByFlow[FlowExpense].Equal(BRL(-250)) {
		t.Errorf("expenses = %s, want -250", sum.ByFlow[FlowExpense])
	}
	if !sum.ByFlow[FlowIncome].Equal(BRL(3000)) {
		t.Errorf("income = %s, want 3000", sum.ByFlow[FlowIncome])
	}
	if !sum.Total.Equal(BRL(2750)) {
		t.Errorf("total = %s, want 2750", sum.Total)
	}
}

func TestSummarizeAdjacentRangesNeverDoubleCount(t *testing.T) {
	s, _, groceries, _ := analyticsFixture(t)
	february := Monthly.Range(MustParseDate("2024-02-15"))
	march := Monthly.Range(MustParseDate("2024-03-15"))

	feb := s.Summarize(february, ByCategory(groceries.ID))
	mar := s.Summarize(march, ByCategory(groceries.ID))
	if !feb.Total.Add(mar.Total).Equal(BRL(-350)) {
		t.Errorf("feb %s + mar %s should cover every transaction exactly once", feb.Total, mar.Total)
	}
}

func TestSummarizeByAccount(t *testing.T) {
	s, _, groceries, _ := analyticsFixture(t)
	other, err := s.CreateAccount(Account{Name: "Wallet", Type: AccountOther})
	if err != nil {
		t.Fatal(err)
	}
	mustTx(t, s, Transaction{Account: other.ID, Date: MustParseDate("2024-03-20"), Amount: BRL(-30), Operation: OpPurchase, Category: groceries.ID})

	march := Monthly.Range(MustParseDate("2024-03-15"))
	sum := s.Summarize(march, ByAccount(other.ID))
	if !sum.Total.Equal(BRL(-30)) {
		t.Errorf("wallet total = %s, want -30", sum.Total)
	}
}

func TestCompare(t *testing.T) {
	s, _, groceries, _ := analyticsFixture(t)
	february := Monthly.Range(MustParseDate("2024-02-15"))
	march := Monthly.Range(MustParseDate("2024-03-15"))

	c := s.Compare(march, february, ByCategory(groceries.ID))
	if !c.Delta.Equal(BRL(-150)) {
		t.Errorf("delta = %s, want -150", c.Delta)
	}
	pct, ok := c.Variation.Percent()
	if !ok {
		t.Fatal("variation should be defined")
	}
	// spending went from -100 to -250: 150 more against a 100 baseline
	if !pct.Equal(Percent(-150)) {
		t.Errorf("variation = %s, want -150%%", pct)
	}
}

func TestCompareIdenticalRanges(t *testing.T) {
	s, _, _, _ := analyticsFixture(t)
	march := Monthly.Range(MustParseDate("2024-03-15"))

	c := s.Compare(march, march)
	if !c.Delta.IsZero() {
		t.Errorf("delta = %s, want zero", c.Delta)
	}
	pct, ok := c.Variation.Percent()
	if !ok {
		t.Fatal("variation should be defined against a non-zero baseline")
	}
	if !pct.Equal(Percent(0)) {
		t.Errorf("variation = %s, want 0%%", pct)
	}
}

func TestCompareUndefinedVariation(t *testing.T) {
	s, _, _, _ := analyticsFixture(t)
	march := Monthly.Range(MustParseDate("2024-03-15"))
	empty := Monthly.Range(MustParseDate("2023-06-15"))

	c := s.Compare(march, empty)
	if c.Variation.Defined() {
		t.Error("variation against an empty period must be undefined")
	}
	if got := c.Variation.String(); got != "n/a" {
		t.Errorf("undefined variation renders as %q, want n/a", got)
	}
}

func TestCompareWithPrevious(t *testing.T) {
	s, _, _, _ := analyticsFixture(t)
	march := Monthly.Range(MustParseDate("2024-03-15"))

	c := s.CompareWithPrevious(march)
	if c.Previous.Range.To.String() != "2024-02-29" {
		t.Errorf("previous range = %s", c.Previous.Range)
	}
}
