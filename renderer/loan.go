package renderer

import (
	"github.com/dgpessoa/ledger"
)

// InstallmentRow is one scheduled payment line of the loan report.
type InstallmentRow struct {
	Number    int
	DueDate   string
	Amount    string
	Principal string
	Interest  string
	Paid      bool
}

// LoanReport shows a loan's amortization schedule and how much
// principal is still owed.
type LoanReport struct {
	Name        string
	Principal   string
	Rate        string
	Outstanding string
	Rows        []InstallmentRow
}

// NewLoanReport builds the schedule view for one loan as of the given date.
func NewLoanReport(s *ledger.Store, loanID ledger.ID, asOf ledger.Date) (*LoanReport, error) {
	l, err := s.Loan(loanID)
	if err != nil {
		return nil, err
	}
	r := &LoanReport{
		Name:        l.Name,
		Principal:   l.Principal.String(),
		Rate:        ledger.Percent(l.AnnualRatePct).String(),
		Outstanding: s.LoanOutstandingAt(loanID, asOf).String(),
	}
	for _, inst := range l.Installments {
		r.Rows = append(r.Rows, InstallmentRow{
			Number:    inst.Number,
			DueDate:   inst.DueDate.String(),
			Amount:    inst.Amount.String(),
			Principal: inst.PrincipalPart.String(),
			Interest:  inst.InterestPart.String(),
			Paid:      !inst.PaidBy.IsZero(),
		})
	}
	return r, nil
}

// RenderLoan renders the loan schedule to markdown.
func RenderLoan(r *LoanReport) string {
	return renderTemplate("loan", "loan.md", r)
}
