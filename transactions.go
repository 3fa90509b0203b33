package ledger

import "strings"

// LinkKind is the closed set of typed associations a transaction can
// carry toward other entities.
type LinkKind string

const (
	LinkTransferPair       LinkKind = "transfer-pair"
	LinkLoanInstallment    LinkKind = "loan-installment"
	LinkInvestmentMovement LinkKind = "investment-movement"
	LinkBillOccurrence     LinkKind = "bill-occurrence"
)

// Link is a typed association recorded on a transaction so that replay
// and the detectors can traverse relationships without re-deriving
// them. Target is the id of the linked entity (the paired transaction,
// the loan, the investment account, the bill tracker).
type Link struct {
	Kind   LinkKind `json:"kind"`
	Target ID       `json:"target"`
	// Seq disambiguates repeated links to the same target, e.g. the
	// installment number of a loan payment or the period key of a bill
	// occurrence.
	Seq int `json:"seq,omitempty"`
}

// Transaction is a single ledger movement on exactly one account.
//
// The amount is signed: positive for inflow, negative for outflow.
// Transfers are represented as two linked transactions whose amounts
// are negatives of each other and whose accounts differ.
type Transaction struct {
	ID          ID        `json:"id"`
	Account     ID        `json:"account"`
	Date        Date      `json:"date"`
	Amount      Money     `json:"amount"`
	Operation   Operation `json:"operation"`
	Category    ID        `json:"category,omitempty"`
	Description string    `json:"description,omitempty"`
	Links       []Link    `json:"links,omitempty"`

	// seq is the insertion order assigned by the store; it breaks
	// same-day ties during replay so results are replayable.
	seq int
}

// Seq returns the store-assigned insertion sequence.
func (t Transaction) Seq() int { return t.seq }

// Flow returns the flow direction of the transaction's operation.
func (t Transaction) Flow() FlowDirection { return FlowOf(t.Operation) }

// LinkTo returns the first link of the given kind, if any.
func (t Transaction) LinkTo(kind LinkKind) (Link, bool) {
	for _, l := range t.Links {
		if l.Kind == kind {
			return l, true
		}
	}
	return Link{}, false
}

// withoutLink returns a copy of the links slice with every link of the
// given kind and target removed.
func withoutLink(links []Link, kind LinkKind, target ID) []Link {
	out := links[:0:0]
	for _, l := range links {
		if l.Kind == kind && l.Target == target {
			continue
		}
		out = append(out, l)
	}
	return out
}

// NormalizeDescription folds a raw statement description into the form
// used for recurrence signatures and payment matching: lower case,
// collapsed whitespace, trailing reference digits dropped.
func NormalizeDescription(s string) string {
	fields := strings.Fields(strings.ToLower(s))
	// Drop trailing tokens that are purely numeric: bank rows commonly
	// carry a per-occurrence reference number after the merchant name.
	for len(fields) > 0 && isDigits(fields[len(fields)-1]) {
		fields = fields[:len(fields)-1]
	}
	return strings.Join(fields, " ")
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
