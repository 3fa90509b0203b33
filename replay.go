package ledger

// This file is the replay engine: balances are reconstructed from the
// opening balance plus the chronological sum of signed amounts, never
// read from a stored field. Replay is a pure function of the store
// contents and the requested date, so chart components can sample
// twelve month-end dates and get consistent answers.

// BalanceAt replays all transactions of the account with date ≤ asOf,
// in chronological order with insertion-sequence tie-break, onto the
// opening balance. A date before any transaction returns the opening
// balance unchanged; future-dated transactions are excluded.
func (s *Store) BalanceAt(account ID, asOf Date) (Money, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.balanceAtLocked(account, asOf)
}

func (s *Store) balanceAtLocked(account ID, asOf Date) (Money, error) {
	acct, ok := s.accounts[account]
	if !ok {
		return Money{}, notFound("account", account)
	}
	balance := acct.OpeningBalance
	for _, tx := range s.sortedTransactionsLocked(func(t Transaction) bool {
		return t.Account == account
	}) {
		if tx.Date.After(asOf) {
			break
		}
		balance = balance.Add(tx.Amount)
	}
	return balance, nil
}

// TotalInvestmentBalanceAt aggregates BalanceAt over every
// investment-typed account.
func (s *Store) TotalInvestmentBalanceAt(asOf Date) Money {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var total Money
	for id, acct := range s.accounts {
		if acct.Type != AccountInvestment {
			continue
		}
		balance, err := s.balanceAtLocked(id, asOf)
		if err != nil {
			continue // cannot happen, the id comes from the map
		}
		total = total.Add(balance)
	}
	return total
}

// NetWorthAt is the dashboard headline number: every account balance
// plus declared vehicle values, minus outstanding loan principal.
func (s *Store) NetWorthAt(asOf Date) Money {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var total Money
	for id := range s.accounts {
		balance, _ := s.balanceAtLocked(id, asOf)
		total = total.Add(balance)
	}
	for _, v := range s.vehicles {
		total = total.Add(v.Value)
	}
	paidOn := func(txID ID) (Date, bool) {
		tx, ok := s.transactions[txID]
		return tx.Date, ok
	}
	for _, l := range s.loans {
		total = total.Sub(l.OutstandingAt(asOf, paidOn))
	}
	return total
}

// GoalProgressAt derives a goal's progress from the replayed balances
// of its linked accounts.
func (s *Store) GoalProgressAt(goalID ID, asOf Date) (GoalProgress, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	g, ok := s.goals[goalID]
	if !ok {
		return GoalProgress{}, notFound("goal", goalID)
	}
	var saved Money
	for _, acct := range g.Accounts {
		balance, err := s.balanceAtLocked(acct, asOf)
		if err != nil {
			return GoalProgress{}, err
		}
		saved = saved.Add(balance)
	}
	progress := GoalProgress{
		Goal:   goalID,
		AsOf:   asOf,
		Saved:  saved,
		Target: g.Target,
	}
	if !g.Target.IsZero() {
		progress.Completed = Percent(100 * saved.InexactFloat64() / g.Target.InexactFloat64())
		progress.Achieved = !saved.LessThan(g.Target)
	}
	return progress, nil
}
