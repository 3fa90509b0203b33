package ledger

import (
	"regexp"
	"slices"
	"strings"
	"sync"
)

// Store owns the canonical collections of the ledger. All mutations go
// through its methods, run to completion under the write lock, and
// publish a domain event on success. Reads (replay, analytics,
// detection) take the read lock for their full duration so they
// observe a consistent snapshot.
type Store struct {
	mu  sync.RWMutex
	bus *EventBus

	accounts     map[ID]Account
	categories   map[ID]Category
	transactions map[ID]Transaction
	loans        map[ID]*Loan
	vehicles     map[ID]Vehicle
	policies     map[ID]InsurancePolicy
	goals        map[ID]Goal
	bills        map[ID]*BillTracker
	rules        []Rule
	statements   map[ID]*ImportedStatement

	// dismissed holds recurrence signatures the user rejected, so
	// re-detection never proposes them again.
	dismissed map[string]bool

	// txSeq is the insertion counter used to break same-day ties
	// during replay.
	txSeq int
}

// NewStore creates an empty store publishing on the given bus.
func NewStore(bus *EventBus) *Store {
	return &Store{
		bus:          bus,
		accounts:     make(map[ID]Account),
		categories:   make(map[ID]Category),
		transactions: make(map[ID]Transaction),
		loans:        make(map[ID]*Loan),
		vehicles:     make(map[ID]Vehicle),
		policies:     make(map[ID]InsurancePolicy),
		goals:        make(map[ID]Goal),
		bills:        make(map[ID]*BillTracker),
		statements:   make(map[ID]*ImportedStatement),
		dismissed:    make(map[string]bool),
	}
}

// eventQueue defers publication until after the store lock is
// released, so a subscriber can safely re-query the store from its
// handler.
type eventQueue struct {
	bus    *EventBus
	events []Event
}

func (s *Store) queueEvents() *eventQueue { return &eventQueue{bus: s.bus} }

func (q *eventQueue) add(t EventType, payload any) {
	q.events = append(q.events, Event{Type: t, Payload: payload})
}

func (q *eventQueue) flush() {
	if q.bus == nil {
		return
	}
	for _, e := range q.events {
		q.bus.Publish(e)
	}
}

// --- Accounts ---

// CreateAccount mints an id for the account and stores it.
func (s *Store) CreateAccount(a Account) (Account, error) {
	events := s.queueEvents()
	defer events.flush()
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := ParseAccountType(string(a.Type)); err != nil {
		return Account{}, constraint("account %q: %v", a.Name, err)
	}
	if a.Currency == "" {
		a.Currency = DefaultCurrency
	}
	if !a.OpeningBalance.IsZero() && a.OpeningBalance.Currency() != a.Currency {
		return Account{}, constraint("opening balance is in %s but account %q holds %s",
			a.OpeningBalance.Currency(), a.Name, a.Currency)
	}
	a.ID = NewID()
	s.accounts[a.ID] = a
	events.add(EventAccountCreated, a)
	return a, nil
}

// UpdateAccount replaces the stored account. The id must resolve.
func (s *Store) UpdateAccount(a Account) (Account, error) {
	events := s.queueEvents()
	defer events.flush()
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.accounts[a.ID]; !ok {
		return Account{}, notFound("account", a.ID)
	}
	if _, err := ParseAccountType(string(a.Type)); err != nil {
		return Account{}, constraint("account %q: %v", a.Name, err)
	}
	if a.Currency == "" {
		a.Currency = DefaultCurrency
	}
	if !a.OpeningBalance.IsZero() && a.OpeningBalance.Currency() != a.Currency {
		return Account{}, constraint("opening balance is in %s but account %q holds %s",
			a.OpeningBalance.Currency(), a.Name, a.Currency)
	}
	s.accounts[a.ID] = a
	events.add(EventAccountUpdated, a)
	return a, nil
}

// DeleteAccount removes an account. Without cascade it refuses when
// transactions still reference the account; with cascade it deletes
// them first, through the same unlinking path as a direct delete.
// References from goals, account-scoped rules and bill trackers are
// cleared so no dangling id survives; a loan keeps the account alive
// until the loan itself is deleted.
func (s *Store) DeleteAccount(id ID, cascade bool) error {
	events := s.queueEvents()
	defer events.flush()
	s.mu.Lock()
	defer s.mu.Unlock()

	a, ok := s.accounts[id]
	if !ok {
		return notFound("account", id)
	}
	for _, l := range s.loans {
		if l.Account == id {
			return constraint("account %q is the payment account of loan %q", a.Name, l.Name)
		}
	}
	var owned []ID
	for txID, tx := range s.transactions {
		if tx.Account == id {
			owned = append(owned, txID)
		}
	}
	if len(owned) > 0 && !cascade {
		return constraint("account %q still has %d transactions", a.Name, len(owned))
	}
	for _, txID := range owned {
		s.deleteTransactionLocked(txID, events)
	}
	for gid, g := range s.goals {
		if i := slices.Index(g.Accounts, id); i >= 0 {
			g.Accounts = slices.Delete(slices.Clone(g.Accounts), i, i+1)
			s.goals[gid] = g
			events.add(EventGoalUpdated, g)
		}
	}
	for i := len(s.rules) - 1; i >= 0; i-- {
		if s.rules[i].Account == id {
			events.add(EventRuleDeleted, s.rules[i])
			s.rules = slices.Delete(s.rules, i, i+1)
		}
	}
	for _, b := range s.bills {
		if b.Account == id {
			b.Account = ""
			events.add(EventBillUpdated, *b)
		}
	}
	delete(s.accounts, id)
	events.add(EventAccountDeleted, a)
	return nil
}

// Account returns the account with the given id.
func (s *Store) Account(id ID) (Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	a, ok := s.accounts[id]
	if !ok {
		return Account{}, notFound("account", id)
	}
	return a, nil
}

// Accounts returns all accounts sorted by name.
func (s *Store) Accounts() []Account {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Account, 0, len(s.accounts))
	for _, a := range s.accounts {
		out = append(out, a)
	}
	slices.SortFunc(out, func(a, b Account) int { return strings.Compare(a.Name, b.Name) })
	return out
}

// --- Categories ---

// CreateCategory mints an id for the category and stores it.
func (s *Store) CreateCategory(c Category) (Category, error) {
	events := s.queueEvents()
	defer events.flush()
	s.mu.Lock()
	defer s.mu.Unlock()

	if c.Name == "" {
		return Category{}, constraint("category name is required")
	}
	c.ID = NewID()
	s.categories[c.ID] = c
	events.add(EventCategoryCreated, c)
	return c, nil
}

// UpdateCategory replaces the stored category.
func (s *Store) UpdateCategory(c Category) (Category, error) {
	events := s.queueEvents()
	defer events.flush()
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.categories[c.ID]; !ok {
		return Category{}, notFound("category", c.ID)
	}
	s.categories[c.ID] = c
	events.add(EventCategoryUpdated, c)
	return c, nil
}

// DeleteCategory removes a category that no transaction references.
func (s *Store) DeleteCategory(id ID) error {
	events := s.queueEvents()
	defer events.flush()
	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.categories[id]
	if !ok {
		return notFound("category", id)
	}
	for _, tx := range s.transactions {
		if tx.Category == id {
			return constraint("category %q is still used by transactions", c.Name)
		}
	}
	delete(s.categories, id)
	events.add(EventCategoryDeleted, c)
	return nil
}

// Category returns the category with the given id.
func (s *Store) Category(id ID) (Category, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.categories[id]
	if !ok {
		return Category{}, notFound("category", id)
	}
	return c, nil
}

// Categories returns all categories sorted by name.
func (s *Store) Categories() []Category {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Category, 0, len(s.categories))
	for _, c := range s.categories {
		out = append(out, c)
	}
	slices.SortFunc(out, func(a, b Category) int { return strings.Compare(a.Name, b.Name) })
	return out
}

// --- Transactions ---

// validateTransactionLocked checks the foreign keys, the amount
// currency against the account and the category's flow against the
// fixed operation → flow table.
func (s *Store) validateTransactionLocked(t Transaction) error {
	acct, ok := s.accounts[t.Account]
	if !ok {
		return invalidReference("transaction account", "account", t.Account)
	}
	// accounts decoded from older files may miss the currency field
	cur := acct.Currency
	if cur == "" {
		cur = DefaultCurrency
	}
	if t.Amount.Currency() != cur {
		return constraint("amount is in %s but account %q holds %s",
			t.Amount.Currency(), acct.Name, cur)
	}
	if _, err := ParseOperation(string(t.Operation)); err != nil {
		return constraint("transaction: %v", err)
	}
	if !t.Category.IsZero() {
		cat, ok := s.categories[t.Category]
		if !ok {
			return invalidReference("transaction category", "category", t.Category)
		}
		opFlow := FlowOf(t.Operation)
		if opFlow != FlowNeutral && cat.Flow != FlowNeutral && cat.Flow != opFlow {
			return constraint("category %q is %s but operation %q is %s",
				cat.Name, cat.Flow, t.Operation, opFlow)
		}
	}
	if t.Amount.IsZero() {
		return constraint("transaction amount cannot be zero")
	}
	return nil
}

func (s *Store) createTransactionLocked(t Transaction) (Transaction, error) {
	if err := s.validateTransactionLocked(t); err != nil {
		return Transaction{}, err
	}
	if t.Date.IsZero() {
		t.Date = Today()
	}
	t.ID = NewID()
	s.txSeq++
	t.seq = s.txSeq
	s.transactions[t.ID] = t
	return t, nil
}

// CreateTransaction validates and stores a transaction, minting its id
// and insertion sequence.
func (s *Store) CreateTransaction(t Transaction) (Transaction, error) {
	events := s.queueEvents()
	defer events.flush()
	s.mu.Lock()
	defer s.mu.Unlock()

	created, err := s.createTransactionLocked(t)
	if err != nil {
		return Transaction{}, err
	}
	events.add(EventTransactionCreated, created)
	return created, nil
}

// UpdateTransaction replaces the stored transaction, keeping its
// insertion sequence so replay ordering is unaffected.
func (s *Store) UpdateTransaction(t Transaction) (Transaction, error) {
	events := s.queueEvents()
	defer events.flush()
	s.mu.Lock()
	defer s.mu.Unlock()

	old, ok := s.transactions[t.ID]
	if !ok {
		return Transaction{}, notFound("transaction", t.ID)
	}
	if err := s.validateTransactionLocked(t); err != nil {
		return Transaction{}, err
	}
	t.seq = old.seq
	s.transactions[t.ID] = t
	events.add(EventTransactionUpdated, t)
	return t, nil
}

// deleteTransactionLocked removes the transaction and clears every
// reference pointing at it: the paired transfer leg's link, loan
// installments it paid, bill occurrences it satisfied. A dangling link
// is a correctness violation, not a cosmetic one.
func (s *Store) deleteTransactionLocked(id ID, events *eventQueue) {
	tx, ok := s.transactions[id]
	if !ok {
		return
	}
	if pair, ok := tx.LinkTo(LinkTransferPair); ok {
		if other, ok := s.transactions[pair.Target]; ok {
			other.Links = withoutLink(other.Links, LinkTransferPair, id)
			s.transactions[other.ID] = other
		}
	}
	for _, loan := range s.loans {
		for i := range loan.Installments {
			if loan.Installments[i].PaidBy == id {
				loan.Installments[i].PaidBy = ""
			}
		}
	}
	for _, bill := range s.bills {
		if bill.PaidBy == id {
			bill.PaidBy = ""
			bill.PaidPeriod = ""
		}
	}
	delete(s.transactions, id)
	events.add(EventTransactionDeleted, tx)
}

// DeleteTransaction removes a transaction and unlinks its paired
// transfer leg and any bill or loan reference that pointed at it.
func (s *Store) DeleteTransaction(id ID) error {
	events := s.queueEvents()
	defer events.flush()
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.transactions[id]; !ok {
		return notFound("transaction", id)
	}
	s.deleteTransactionLocked(id, events)
	return nil
}

// Transaction returns the transaction with the given id.
func (s *Store) Transaction(id ID) (Transaction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	t, ok := s.transactions[id]
	if !ok {
		return Transaction{}, notFound("transaction", id)
	}
	return t, nil
}

// sortedTransactionsLocked returns transactions accepted by the
// predicate in replay order: chronological, same-day ties broken by
// insertion sequence, never by amount.
func (s *Store) sortedTransactionsLocked(accept func(Transaction) bool) []Transaction {
	out := make([]Transaction, 0, len(s.transactions))
	for _, tx := range s.transactions {
		if accept == nil || accept(tx) {
			out = append(out, tx)
		}
	}
	slices.SortFunc(out, func(a, b Transaction) int {
		if a.Date.Before(b.Date) {
			return -1
		}
		if a.Date.After(b.Date) {
			return 1
		}
		return a.seq - b.seq
	})
	return out
}

// Transactions returns all transactions in replay order.
func (s *Store) Transactions() []Transaction {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.sortedTransactionsLocked(nil)
}

// AccountTransactions returns the account's transactions in replay order.
func (s *Store) AccountTransactions(account ID) []Transaction {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.sortedTransactionsLocked(func(t Transaction) bool { return t.Account == account })
}

// --- Transfers ---

// CreateTransfer records a transfer as two linked transactions whose
// amounts are negatives of each other. The legs must reference
// different accounts.
func (s *Store) CreateTransfer(from, to ID, on Date, amount Money, description string) (out, in Transaction, err error) {
	events := s.queueEvents()
	defer events.flush()
	s.mu.Lock()
	defer s.mu.Unlock()

	if from == to {
		return out, in, constraint("transfer legs reference the same account %q", from)
	}
	if !amount.IsPositive() {
		return out, in, constraint("transfer amount must be positive, got %s", amount)
	}
	if _, ok := s.accounts[from]; !ok {
		return out, in, invalidReference("transfer source", "account", from)
	}
	if _, ok := s.accounts[to]; !ok {
		return out, in, invalidReference("transfer destination", "account", to)
	}

	out, err = s.createTransactionLocked(Transaction{
		Account:     from,
		Date:        on,
		Amount:      amount.Neg(),
		Operation:   OpTransferOut,
		Description: description,
	})
	if err != nil {
		return Transaction{}, Transaction{}, err
	}
	in, err = s.createTransactionLocked(Transaction{
		Account:     to,
		Date:        on,
		Amount:      amount,
		Operation:   OpTransferIn,
		Description: description,
	})
	if err != nil {
		// roll the first leg back so no partial transfer is visible
		delete(s.transactions, out.ID)
		return Transaction{}, Transaction{}, err
	}

	out.Links = append(out.Links, Link{Kind: LinkTransferPair, Target: in.ID})
	in.Links = append(in.Links, Link{Kind: LinkTransferPair, Target: out.ID})
	s.transactions[out.ID] = out
	s.transactions[in.ID] = in

	events.add(EventTransactionCreated, out)
	events.add(EventTransactionCreated, in)
	events.add(EventTransferCreated, [2]Transaction{out, in})
	return out, in, nil
}

// LinkInvestment marks a transaction as an investment movement into
// the given investment account.
func (s *Store) LinkInvestment(txID, investmentAccount ID) (Transaction, error) {
	events := s.queueEvents()
	defer events.flush()
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, ok := s.transactions[txID]
	if !ok {
		return Transaction{}, notFound("transaction", txID)
	}
	acct, ok := s.accounts[investmentAccount]
	if !ok {
		return Transaction{}, invalidReference("investment link", "account", investmentAccount)
	}
	if acct.Type != AccountInvestment {
		return Transaction{}, constraint("account %q is %s, not an investment account", acct.Name, acct.Type)
	}
	tx.Links = append(withoutLink(tx.Links, LinkInvestmentMovement, investmentAccount),
		Link{Kind: LinkInvestmentMovement, Target: investmentAccount})
	s.transactions[txID] = tx
	events.add(EventInvestmentLinked, tx)
	return tx, nil
}

// --- Loans ---

// CreateLoan validates the linked account, builds the amortization
// schedule and stores the loan.
func (s *Store) CreateLoan(l Loan) (Loan, error) {
	events := s.queueEvents()
	defer events.flush()
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.accounts[l.Account]; !ok {
		return Loan{}, invalidReference("loan account", "account", l.Account)
	}
	if !l.Principal.IsPositive() {
		return Loan{}, constraint("loan principal must be positive, got %s", l.Principal)
	}
	if l.TermMonths <= 0 {
		return Loan{}, constraint("loan term must be positive, got %d months", l.TermMonths)
	}
	l.ID = NewID()
	l.buildSchedule()
	stored := cloneLoan(&l)
	s.loans[l.ID] = &stored
	events.add(EventLoanCreated, l)
	return l, nil
}

// DeleteLoan removes a loan with no paid installments.
func (s *Store) DeleteLoan(id ID) error {
	events := s.queueEvents()
	defer events.flush()
	s.mu.Lock()
	defer s.mu.Unlock()

	l, ok := s.loans[id]
	if !ok {
		return notFound("loan", id)
	}
	for _, inst := range l.Installments {
		if !inst.PaidBy.IsZero() {
			return constraint("loan %q has paid installments; delete their transactions first", l.Name)
		}
	}
	delete(s.loans, id)
	events.add(EventLoanDeleted, *l)
	return nil
}

// Loan returns a copy of the loan with the given id.
func (s *Store) Loan(id ID) (Loan, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	l, ok := s.loans[id]
	if !ok {
		return Loan{}, notFound("loan", id)
	}
	return cloneLoan(l), nil
}

// Loans returns all loans sorted by name.
func (s *Store) Loans() []Loan {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Loan, 0, len(s.loans))
	for _, l := range s.loans {
		out = append(out, cloneLoan(l))
	}
	slices.SortFunc(out, func(a, b Loan) int { return strings.Compare(a.Name, b.Name) })
	return out
}

// LoanOutstandingAt returns the principal still owed on the loan as of
// the given date, based on the dates of its payment transactions.
func (s *Store) LoanOutstandingAt(loanID ID, asOf Date) Money {
	s.mu.RLock()
	defer s.mu.RUnlock()
	l, ok := s.loans[loanID]
	if !ok {
		return Money{}
	}
	return l.OutstandingAt(asOf, func(txID ID) (Date, bool) {
		tx, ok := s.transactions[txID]
		return tx.Date, ok
	})
}

func cloneLoan(l *Loan) Loan {
	c := *l
	c.Installments = slices.Clone(l.Installments)
	return c
}

// PayInstallment realizes an installment payment as a loan-payment
// transaction on the loan's account, linked back to the loan, and
// marks the installment paid.
func (s *Store) PayInstallment(loanID ID, number int, on Date, category ID) (Transaction, error) {
	events := s.queueEvents()
	defer events.flush()
	s.mu.Lock()
	defer s.mu.Unlock()

	l, ok := s.loans[loanID]
	if !ok {
		return Transaction{}, notFound("loan", loanID)
	}
	idx := -1
	for i, inst := range l.Installments {
		if inst.Number == number {
			idx = i
			break
		}
	}
	if idx < 0 {
		return Transaction{}, constraint("loan %q has no installment %d", l.Name, number)
	}
	if !l.Installments[idx].PaidBy.IsZero() {
		return Transaction{}, constraint("installment %d of loan %q is already paid", number, l.Name)
	}

	tx, err := s.createTransactionLocked(Transaction{
		Account:     l.Account,
		Date:        on,
		Amount:      l.Installments[idx].Amount.Neg(),
		Operation:   OpLoanPayment,
		Category:    category,
		Description: l.Name,
		Links:       []Link{{Kind: LinkLoanInstallment, Target: loanID, Seq: number}},
	})
	if err != nil {
		return Transaction{}, err
	}
	l.Installments[idx].PaidBy = tx.ID
	events.add(EventTransactionCreated, tx)
	events.add(EventLoanPayment, tx)
	return tx, nil
}

// --- Vehicles and insurance ---

// CreateVehicle mints an id for the vehicle and stores it.
func (s *Store) CreateVehicle(v Vehicle) (Vehicle, error) {
	events := s.queueEvents()
	defer events.flush()
	s.mu.Lock()
	defer s.mu.Unlock()

	if v.Name == "" {
		return Vehicle{}, constraint("vehicle name is required")
	}
	v.ID = NewID()
	s.vehicles[v.ID] = v
	events.add(EventVehicleCreated, v)
	return v, nil
}

// UpdateVehicle replaces the stored vehicle.
func (s *Store) UpdateVehicle(v Vehicle) (Vehicle, error) {
	events := s.queueEvents()
	defer events.flush()
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.vehicles[v.ID]; !ok {
		return Vehicle{}, notFound("vehicle", v.ID)
	}
	s.vehicles[v.ID] = v
	events.add(EventVehicleUpdated, v)
	return v, nil
}

// DeleteVehicle removes a vehicle that no insurance policy references.
func (s *Store) DeleteVehicle(id ID) error {
	events := s.queueEvents()
	defer events.flush()
	s.mu.Lock()
	defer s.mu.Unlock()

	v, ok := s.vehicles[id]
	if !ok {
		return notFound("vehicle", id)
	}
	for _, p := range s.policies {
		if p.Vehicle == id {
			return constraint("vehicle %q still has insurance policies", v.Name)
		}
	}
	delete(s.vehicles, id)
	events.add(EventVehicleDeleted, v)
	return nil
}

// Vehicles returns all vehicles sorted by name.
func (s *Store) Vehicles() []Vehicle {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Vehicle, 0, len(s.vehicles))
	for _, v := range s.vehicles {
		out = append(out, v)
	}
	slices.SortFunc(out, func(a, b Vehicle) int { return strings.Compare(a.Name, b.Name) })
	return out
}

// CreateInsurancePolicy validates the vehicle reference and stores the policy.
func (s *Store) CreateInsurancePolicy(p InsurancePolicy) (InsurancePolicy, error) {
	events := s.queueEvents()
	defer events.flush()
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.vehicles[p.Vehicle]; !ok {
		return InsurancePolicy{}, invalidReference("policy vehicle", "vehicle", p.Vehicle)
	}
	if !p.Category.IsZero() {
		if _, ok := s.categories[p.Category]; !ok {
			return InsurancePolicy{}, invalidReference("policy category", "category", p.Category)
		}
	}
	p.ID = NewID()
	s.policies[p.ID] = p
	events.add(EventInsuranceCreated, p)
	return p, nil
}

// UpdateInsurancePolicy replaces the stored policy.
func (s *Store) UpdateInsurancePolicy(p InsurancePolicy) (InsurancePolicy, error) {
	events := s.queueEvents()
	defer events.flush()
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.policies[p.ID]; !ok {
		return InsurancePolicy{}, notFound("insurance policy", p.ID)
	}
	if _, ok := s.vehicles[p.Vehicle]; !ok {
		return InsurancePolicy{}, invalidReference("policy vehicle", "vehicle", p.Vehicle)
	}
	s.policies[p.ID] = p
	events.add(EventInsuranceUpdated, p)
	return p, nil
}

// DeleteInsurancePolicy removes a policy.
func (s *Store) DeleteInsurancePolicy(id ID) error {
	events := s.queueEvents()
	defer events.flush()
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.policies[id]
	if !ok {
		return notFound("insurance policy", id)
	}
	delete(s.policies, id)
	events.add(EventInsuranceDeleted, p)
	return nil
}

// InsurancePolicies returns all policies sorted by insurer.
func (s *Store) InsurancePolicies() []InsurancePolicy {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]InsurancePolicy, 0, len(s.policies))
	for _, p := range s.policies {
		out = append(out, p)
	}
	slices.SortFunc(out, func(a, b InsurancePolicy) int { return strings.Compare(a.Insurer, b.Insurer) })
	return out
}

// --- Goals ---

// CreateGoal validates the linked accounts and stores the goal.
func (s *Store) CreateGoal(g Goal) (Goal, error) {
	events := s.queueEvents()
	defer events.flush()
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, acct := range g.Accounts {
		if _, ok := s.accounts[acct]; !ok {
			return Goal{}, invalidReference("goal account", "account", acct)
		}
	}
	if !g.Target.IsPositive() {
		return Goal{}, constraint("goal target must be positive, got %s", g.Target)
	}
	g.ID = NewID()
	s.goals[g.ID] = g
	events.add(EventGoalCreated, g)
	return g, nil
}

// UpdateGoal replaces the stored goal.
func (s *Store) UpdateGoal(g Goal) (Goal, error) {
	events := s.queueEvents()
	defer events.flush()
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.goals[g.ID]; !ok {
		return Goal{}, notFound("goal", g.ID)
	}
	for _, acct := range g.Accounts {
		if _, ok := s.accounts[acct]; !ok {
			return Goal{}, invalidReference("goal account", "account", acct)
		}
	}
	s.goals[g.ID] = g
	events.add(EventGoalUpdated, g)
	return g, nil
}

// Goal returns the goal with the given id.
func (s *Store) Goal(id ID) (Goal, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	g, ok := s.goals[id]
	if !ok {
		return Goal{}, notFound("goal", id)
	}
	return g, nil
}

// DeleteGoal removes a goal.
func (s *Store) DeleteGoal(id ID) error {
	events := s.queueEvents()
	defer events.flush()
	s.mu.Lock()
	defer s.mu.Unlock()

	g, ok := s.goals[id]
	if !ok {
		return notFound("goal", id)
	}
	delete(s.goals, id)
	events.add(EventGoalDeleted, g)
	return nil
}

// Goals returns all goals sorted by name.
func (s *Store) Goals() []Goal {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Goal, 0, len(s.goals))
	for _, g := range s.goals {
		out = append(out, g)
	}
	slices.SortFunc(out, func(a, b Goal) int { return strings.Compare(a.Name, b.Name) })
	return out
}

// --- Rules ---

// CreateRule appends a standardization rule at the end of the
// evaluation order. The predicate must compile when marked as a
// regular expression, and transform references must resolve.
func (s *Store) CreateRule(r Rule) (Rule, error) {
	events := s.queueEvents()
	defer events.flush()
	s.mu.Lock()
	defer s.mu.Unlock()

	if r.Match == "" {
		return Rule{}, constraint("rule match predicate is required")
	}
	if r.IsRegex {
		if _, err := regexp.Compile(r.Match); err != nil {
			return Rule{}, constraint("rule pattern %q: %v", r.Match, err)
		}
	}
	if !r.Account.IsZero() {
		if _, ok := s.accounts[r.Account]; !ok {
			return Rule{}, invalidReference("rule account scope", "account", r.Account)
		}
	}
	if !r.SetCategory.IsZero() {
		if _, ok := s.categories[r.SetCategory]; !ok {
			return Rule{}, invalidReference("rule category", "category", r.SetCategory)
		}
	}
	if r.SetOperation != "" {
		if _, err := ParseOperation(string(r.SetOperation)); err != nil {
			return Rule{}, constraint("rule: %v", err)
		}
	}
	r.ID = NewID()
	s.rules = append(s.rules, r)
	events.add(EventRuleCreated, r)
	return r, nil
}

// DeleteRule removes a rule, preserving the order of the rest.
func (s *Store) DeleteRule(id ID) error {
	events := s.queueEvents()
	defer events.flush()
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, r := range s.rules {
		if r.ID == id {
			s.rules = slices.Delete(s.rules, i, i+1)
			events.add(EventRuleDeleted, r)
			return nil
		}
	}
	return notFound("rule", id)
}

// Rules returns the rules in evaluation order.
func (s *Store) Rules() []Rule {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.rules)
}

// RuleConflicts reports pairs of rules with identical predicates and
// scope. The first-defined rule wins; conflicts are warnings.
func (s *Store) RuleConflicts() []RuleConflict {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []RuleConflict
	for i, a := range s.rules {
		for _, b := range s.rules[i+1:] {
			if a.Match == b.Match && a.IsRegex == b.IsRegex && a.Account == b.Account {
				out = append(out, RuleConflict{First: a.ID, Second: b.ID, Match: a.Match})
			}
		}
	}
	return out
}

// --- Statements ---

// cloneStatement copies a statement and its rows, so callers can only
// change row states through IgnoreRow and CommitStatement.
func cloneStatement(st *ImportedStatement) *ImportedStatement {
	c := *st
	c.Rows = make([]*ImportedRow, len(st.Rows))
	for i, r := range st.Rows {
		row := *r
		c.Rows[i] = &row
	}
	return &c
}

// Statement returns a copy of the imported statement with the given id.
func (s *Store) Statement(id ID) (*ImportedStatement, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	st, ok := s.statements[id]
	if !ok {
		return nil, notFound("statement", id)
	}
	return cloneStatement(st), nil
}

// Statements returns copies of all imported statements, newest first.
func (s *Store) Statements() []*ImportedStatement {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*ImportedStatement, 0, len(s.statements))
	for _, st := range s.statements {
		out = append(out, cloneStatement(st))
	}
	slices.SortFunc(out, func(a, b *ImportedStatement) int {
		if a.ImportedAt.After(b.ImportedAt) {
			return -1
		}
		if a.ImportedAt.Before(b.ImportedAt) {
			return 1
		}
		return strings.Compare(string(a.ID), string(b.ID))
	})
	return out
}
