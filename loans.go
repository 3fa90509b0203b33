package ledger

import (
	"math"

	"github.com/shopspring/decimal"
)

// Installment is one scheduled payment of a loan.
type Installment struct {
	Number        int   `json:"number"`
	DueDate       Date  `json:"dueDate"`
	Amount        Money `json:"amount"`
	PrincipalPart Money `json:"principalPart"`
	InterestPart  Money `json:"interestPart"`
	// PaidBy is the id of the transaction that settled this
	// installment, zero while unpaid.
	PaidBy ID `json:"paidBy,omitempty"`
}

// Loan is a fixed-rate loan amortized in equal monthly installments.
// Each installment payment is realized as a loan-payment transaction
// on the linked account, linked back to the loan.
type Loan struct {
	ID            ID      `json:"id"`
	Name          string  `json:"name"`
	Account       ID      `json:"account"`
	Principal     Money   `json:"principal"`
	AnnualRatePct float64 `json:"annualRatePct"`
	TermMonths    int     `json:"termMonths"`
	FirstDueDate  Date    `json:"firstDueDate"`

	Installments []Installment `json:"installments"`
}

// buildSchedule computes the equal-installment amortization schedule.
// Called once by the store when the loan is created.
func (l *Loan) buildSchedule() {
	n := l.TermMonths
	if n <= 0 {
		return
	}
	monthlyRate := l.AnnualRatePct / 100 / 12
	principal := l.Principal.InexactFloat64()

	var payment float64
	if monthlyRate == 0 {
		payment = principal / float64(n)
	} else {
		payment = principal * monthlyRate / (1 - math.Pow(1+monthlyRate, float64(-n)))
	}

	cur := l.Principal.Currency()
	round := func(v float64) Money {
		return M(decimal.NewFromFloat(v).Round(2), cur)
	}

	balance := principal
	l.Installments = make([]Installment, 0, n)
	for i := 1; i <= n; i++ {
		interest := balance * monthlyRate
		principalPart := payment - interest
		if i == n {
			// Absorb rounding drift into the last installment.
			principalPart = balance
			payment = principalPart + interest
		}
		balance -= principalPart
		l.Installments = append(l.Installments, Installment{
			Number:        i,
			DueDate:       l.FirstDueDate.AddMonth(i - 1),
			Amount:        round(payment),
			PrincipalPart: round(principalPart),
			InterestPart:  round(interest),
		})
	}
}

// Installment returns the installment with the given number.
func (l *Loan) Installment(number int) (Installment, bool) {
	for _, inst := range l.Installments {
		if inst.Number == number {
			return inst, true
		}
	}
	return Installment{}, false
}

// OutstandingAt returns the principal still owed as of the given date:
// the original principal minus the principal part of every installment
// paid by a transaction dated on or before asOf.
func (l *Loan) OutstandingAt(asOf Date, paidOn func(txID ID) (Date, bool)) Money {
	outstanding := l.Principal
	for _, inst := range l.Installments {
		if inst.PaidBy.IsZero() {
			continue
		}
		if on, ok := paidOn(inst.PaidBy); ok && !on.After(asOf) {
			outstanding = outstanding.Sub(inst.PrincipalPart)
		}
	}
	return outstanding
}
