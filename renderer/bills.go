package renderer

import (
	"fmt"

	"github.com/dgpessoa/ledger"
)

// BillRow is one tracker line of the bills report.
type BillRow struct {
	Name     string
	Expected string
	DueDay   int
	Status   string
}

// BillsReport lists every tracker with its status for the period
// containing Today.
type BillsReport struct {
	Today      string
	Rows       []BillRow
	Candidates []CandidateRow
}

// CandidateRow is one detector suggestion awaiting confirmation.
type CandidateRow struct {
	Description string
	Expected    string
	DueDay      int
	Occurrences int
}

// NewBillsReport derives each tracker's status for today and lists the
// detector's pending suggestions.
func NewBillsReport(s *ledger.Store, today ledger.Date, cfg ledger.DetectorConfig) *BillsReport {
	r := &BillsReport{Today: today.String()}
	for _, b := range s.Bills() {
		r.Rows = append(r.Rows, BillRow{
			Name:     b.Name,
			Expected: b.ExpectedAmount.String(),
			DueDay:   b.DueDay,
			Status:   string(b.Status(today)),
		})
	}
	for _, p := range s.DetectRecurringBills(cfg) {
		r.Candidates = append(r.Candidates, CandidateRow{
			Description: p.Description,
			Expected:    p.ExpectedAmount.String(),
			DueDay:      p.DueDay,
			Occurrences: p.Occurrences,
		})
	}
	return r
}

// RenderBills renders the bills report to markdown.
func RenderBills(r *BillsReport) string {
	return renderTemplate("bills", "bills.md", r)
}

// Candidate formats a suggestion as a list item.
func (c CandidateRow) String() string {
	return fmt.Sprintf("%s, %s around day %d, seen %d times", c.Description, c.Expected, c.DueDay, c.Occurrences)
}
