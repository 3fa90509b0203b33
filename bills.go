package ledger

import (
	"fmt"
	"slices"
	"strings"
)

// BillSource says how a tracker came to exist.
type BillSource string

const (
	BillManual   BillSource = "manual"
	BillDetected BillSource = "detected"
)

// BillStatus is the lifecycle of a tracker's current period.
type BillStatus string

const (
	BillUpcoming BillStatus = "upcoming"
	BillDue      BillStatus = "due"
	BillOverdue  BillStatus = "overdue"
	BillPaid     BillStatus = "paid"
)

// dueSoonDays is how many days before the due date a bill turns "due".
const dueSoonDays = 3

// BillTracker follows a recurring monthly bill. The expected
// occurrence of each period transitions upcoming → due → overdue
// purely as a function of (today, due day), and to paid when a
// transaction is linked to the period.
type BillTracker struct {
	ID             ID         `json:"id"`
	Name           string     `json:"name"`
	Category       ID         `json:"category,omitempty"`
	Account        ID         `json:"account,omitempty"`
	ExpectedAmount Money      `json:"expectedAmount"`
	DueDay         int        `json:"dueDay"`
	Source         BillSource `json:"source"`

	// Signature is the (normalized description, category) key the
	// detector groups by. Confirmed and dismissed signatures are never
	// proposed again.
	Signature string `json:"signature,omitempty"`

	// PaidBy is the transaction that satisfied the occurrence of
	// PaidPeriod; both are zero when the current period is unpaid.
	PaidBy     ID     `json:"paidBy,omitempty"`
	PaidPeriod string `json:"paidPeriod,omitempty"`
}

// periodKey identifies the monthly occurrence a date belongs to.
func periodKey(d Date) string {
	return fmt.Sprintf("%04d-%02d", d.Year(), int(d.Month()))
}

// Status derives the tracker state for the period containing today.
// Paid applies to the linked period only: a payment recorded last
// month leaves this month upcoming/due/overdue.
func (b *BillTracker) Status(today Date) BillStatus {
	if !b.PaidBy.IsZero() && b.PaidPeriod == periodKey(today) {
		return BillPaid
	}
	due := b.dueDayIn(today)
	switch {
	case today.Day() > due:
		return BillOverdue
	case due-today.Day() <= dueSoonDays:
		return BillDue
	default:
		return BillUpcoming
	}
}

// DueDateIn returns the occurrence due date for the period containing d.
func (b *BillTracker) DueDateIn(d Date) Date {
	return NewDate(d.Year(), d.Month(), b.dueDayIn(d))
}

// dueDayIn clamps the due day to the last day of d's month, so a bill
// due on the 31st falls due on Feb 29 rather than never.
func (b *BillTracker) dueDayIn(d Date) int {
	if last := NewDate(d.Year(), d.Month()+1, 0).Day(); b.DueDay > last {
		return last
	}
	return b.DueDay
}

// recurrenceSignature builds the grouping key for detection.
func recurrenceSignature(description string, category ID) string {
	return NormalizeDescription(description) + "|" + category.String()
}

// PotentialFixedBill is a recurrence candidate proposed by the
// detector. The caller confirms it into a BillTracker or dismisses it.
type PotentialFixedBill struct {
	Signature      string
	Description    string
	Category       ID
	Account        ID
	ExpectedAmount Money
	DueDay         int
	Occurrences    int
	LastSeen       Date
}

// DetectorConfig carries the recurrence tolerances. The bands are
// deliberately configuration, not constants baked into the scan.
type DetectorConfig struct {
	// MinOccurrences is how many hits a signature needs before it is a
	// candidate.
	MinOccurrences int
	// MinIntervalDays/MaxIntervalDays bound the gap between successive
	// occurrences of a monthly bill.
	MinIntervalDays int
	MaxIntervalDays int
	// AmountTolerancePct is the allowed variance around the mean amount.
	AmountTolerancePct float64
}

// DefaultDetectorConfig returns the monthly band 28–31 ±3 days with
// 15% amount variance.
func DefaultDetectorConfig() DetectorConfig {
	return DetectorConfig{
		MinOccurrences:     3,
		MinIntervalDays:    25,
		MaxIntervalDays:    34,
		AmountTolerancePct: 15,
	}
}

// DetectRecurringBills scans the transaction history for periodic
// patterns. It groups expenses by recurrence signature and proposes a
// PotentialFixedBill for every group with enough occurrences, monthly
// spacing and stable amounts. Signatures already confirmed or
// dismissed are skipped, so re-detection never duplicates a tracker.
func (s *Store) DetectRecurringBills(cfg DetectorConfig) []PotentialFixedBill {
	s.mu.RLock()
	defer s.mu.RUnlock()

	taken := make(map[string]bool, len(s.bills)+len(s.dismissed))
	for sig := range s.dismissed {
		taken[sig] = true
	}
	for _, b := range s.bills {
		if b.Signature != "" {
			taken[b.Signature] = true
		}
	}

	groups := make(map[string][]Transaction)
	for _, tx := range s.sortedTransactionsLocked(func(t Transaction) bool {
		return t.Flow() == FlowExpense
	}) {
		sig := recurrenceSignature(tx.Description, tx.Category)
		groups[sig] = append(groups[sig], tx)
	}

	var out []PotentialFixedBill
	for sig, txs := range groups {
		if taken[sig] || len(txs) < cfg.MinOccurrences {
			continue
		}
		if !monthlySpaced(txs, cfg) || !stableAmounts(txs, cfg) {
			continue
		}
		last := txs[len(txs)-1]
		out = append(out, PotentialFixedBill{
			Signature:      sig,
			Description:    NormalizeDescription(last.Description),
			Category:       last.Category,
			Account:        last.Account,
			ExpectedAmount: meanAmount(txs).Abs(),
			DueDay:         mostCommonDay(txs),
			Occurrences:    len(txs),
			LastSeen:       last.Date,
		})
	}
	slices.SortFunc(out, func(a, b PotentialFixedBill) int {
		return strings.Compare(a.Signature, b.Signature)
	})
	return out
}

// monthlySpaced reports whether every gap between successive
// occurrences falls inside the configured band. txs must be in replay
// order.
func monthlySpaced(txs []Transaction, cfg DetectorConfig) bool {
	for i := 1; i < len(txs); i++ {
		gap := txs[i-1].Date.DaysUntil(txs[i].Date)
		if gap < cfg.MinIntervalDays || gap > cfg.MaxIntervalDays {
			return false
		}
	}
	return true
}

// stableAmounts reports whether every amount stays within the
// tolerance band around the group mean.
func stableAmounts(txs []Transaction, cfg DetectorConfig) bool {
	mean := meanAmount(txs)
	for _, tx := range txs {
		if !mean.WithinPercent(tx.Amount, cfg.AmountTolerancePct) {
			return false
		}
	}
	return true
}

func meanAmount(txs []Transaction) Money {
	var sum Money
	for _, tx := range txs {
		sum = sum.Add(tx.Amount)
	}
	return sum.Div(int64(len(txs)))
}

func mostCommonDay(txs []Transaction) int {
	counts := make(map[int]int)
	best, bestCount := txs[len(txs)-1].Date.Day(), 0
	for _, tx := range txs {
		d := tx.Date.Day()
		counts[d]++
		if counts[d] > bestCount || (counts[d] == bestCount && d < best) {
			best, bestCount = d, counts[d]
		}
	}
	return best
}

// --- Store mutations for trackers ---

// CreateBillTracker stores a manually defined tracker.
func (s *Store) CreateBillTracker(b BillTracker) (BillTracker, error) {
	events := s.queueEvents()
	defer events.flush()
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.validateBillLocked(&b); err != nil {
		return BillTracker{}, err
	}
	b.ID = NewID()
	b.Source = BillManual
	stored := b
	s.bills[b.ID] = &stored
	events.add(EventBillCreated, b)
	return b, nil
}

func (s *Store) validateBillLocked(b *BillTracker) error {
	if b.Name == "" {
		return constraint("bill name is required")
	}
	if b.DueDay < 1 || b.DueDay > 31 {
		return constraint("bill due day %d is out of range", b.DueDay)
	}
	if !b.Category.IsZero() {
		if _, ok := s.categories[b.Category]; !ok {
			return invalidReference("bill category", "category", b.Category)
		}
	}
	if !b.Account.IsZero() {
		if _, ok := s.accounts[b.Account]; !ok {
			return invalidReference("bill account", "account", b.Account)
		}
	}
	return nil
}

// ConfirmBill turns a detector suggestion into an auto-detected
// tracker. The signature is recorded so the detector never proposes it
// again.
func (s *Store) ConfirmBill(p PotentialFixedBill) (BillTracker, error) {
	events := s.queueEvents()
	defer events.flush()
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, b := range s.bills {
		if b.Signature == p.Signature {
			return BillTracker{}, constraint("bill for signature %q already exists", p.Signature)
		}
	}
	b := BillTracker{
		ID:             NewID(),
		Name:           p.Description,
		Category:       p.Category,
		Account:        p.Account,
		ExpectedAmount: p.ExpectedAmount,
		DueDay:         p.DueDay,
		Source:         BillDetected,
		Signature:      p.Signature,
	}
	if err := s.validateBillLocked(&b); err != nil {
		return BillTracker{}, err
	}
	stored := b
	s.bills[b.ID] = &stored
	events.add(EventBillCreated, b)
	return b, nil
}

// DismissBill records that the user rejected a suggestion for this
// signature.
func (s *Store) DismissBill(signature string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.dismissed[signature] = true
}

// DeleteBillTracker removes a tracker. Its signature stays dismissed
// so detection does not immediately resurface it.
func (s *Store) DeleteBillTracker(id ID) error {
	events := s.queueEvents()
	defer events.flush()
	s.mu.Lock()
	defer s.mu.Unlock()

	b, ok := s.bills[id]
	if !ok {
		return notFound("bill", id)
	}
	if b.Signature != "" {
		s.dismissed[b.Signature] = true
	}
	delete(s.bills, id)
	events.add(EventBillDeleted, *b)
	return nil
}

// Bill returns a copy of the tracker with the given id.
func (s *Store) Bill(id ID) (BillTracker, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	b, ok := s.bills[id]
	if !ok {
		return BillTracker{}, notFound("bill", id)
	}
	return *b, nil
}

// Bills returns all trackers sorted by name.
func (s *Store) Bills() []BillTracker {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]BillTracker, 0, len(s.bills))
	for _, b := range s.bills {
		out = append(out, *b)
	}
	slices.SortFunc(out, func(a, b BillTracker) int { return strings.Compare(a.Name, b.Name) })
	return out
}

// LinkBillPayment marks the transaction as satisfying the tracker's
// occurrence for the period containing the transaction date. The link
// is recorded on both sides.
func (s *Store) LinkBillPayment(billID, txID ID) (BillTracker, error) {
	events := s.queueEvents()
	defer events.flush()
	s.mu.Lock()
	defer s.mu.Unlock()

	b, ok := s.bills[billID]
	if !ok {
		return BillTracker{}, notFound("bill", billID)
	}
	tx, ok := s.transactions[txID]
	if !ok {
		return BillTracker{}, invalidReference("bill payment", "transaction", txID)
	}
	b.PaidBy = txID
	b.PaidPeriod = periodKey(tx.Date)
	tx.Links = append(withoutLink(tx.Links, LinkBillOccurrence, billID),
		Link{Kind: LinkBillOccurrence, Target: billID})
	s.transactions[txID] = tx
	events.add(EventBillUpdated, *b)
	return *b, nil
}

// MatchBillPayments looks for a transaction in today's period that
// matches each unpaid tracker (same normalized description, amount
// within tolerance, date inside the period) and links it. Returns the
// trackers that became paid.
func (s *Store) MatchBillPayments(today Date, amountTolerancePct float64) []BillTracker {
	events := s.queueEvents()
	defer events.flush()
	s.mu.Lock()
	defer s.mu.Unlock()

	period := periodKey(today)
	var paid []BillTracker
	for _, b := range s.bills {
		if b.PaidPeriod == period && !b.PaidBy.IsZero() {
			continue
		}
		want := NormalizeDescription(b.Name)
		for _, tx := range s.sortedTransactionsLocked(func(t Transaction) bool {
			return periodKey(t.Date) == period && t.Flow() == FlowExpense
		}) {
			if NormalizeDescription(tx.Description) != want {
				continue
			}
			if !b.ExpectedAmount.WithinPercent(tx.Amount.Abs(), amountTolerancePct) {
				continue
			}
			b.PaidBy = tx.ID
			b.PaidPeriod = period
			tx.Links = append(withoutLink(tx.Links, LinkBillOccurrence, b.ID),
				Link{Kind: LinkBillOccurrence, Target: b.ID})
			s.transactions[tx.ID] = tx
			events.add(EventBillUpdated, *b)
			paid = append(paid, *b)
			break
		}
	}
	slices.SortFunc(paid, func(a, b BillTracker) int { return strings.Compare(a.Name, b.Name) })
	return paid
}
