package renderer

import (
	"slices"
	"strings"

	"github.com/dgpessoa/ledger"
)

// CategoryRow is one category line of a period summary.
type CategoryRow struct {
	Name  string
	Total string
}

// SummaryReport aggregates a period by category and flow direction.
type SummaryReport struct {
	From       string
	To         string
	Categories []CategoryRow
	Income     string
	Expenses   string
	Total      string
}

// NewSummaryReport summarizes the given range, resolving category ids
// to names. Uncategorized transactions are grouped under "(none)".
func NewSummaryReport(s *ledger.Store, r ledger.Range, opts ...ledger.SummarizeOption) *SummaryReport {
	sum := s.Summarize(r, opts...)

	report := &SummaryReport{
		From:     r.From.String(),
		To:       r.To.String(),
		Income:   sum.ByFlow[ledger.FlowIncome].String(),
		Expenses: sum.ByFlow[ledger.FlowExpense].String(),
		Total:    sum.Total.SignedString(),
	}
	for id, total := range sum.ByCategory {
		name := "(none)"
		if cat, err := s.Category(id); err == nil {
			name = cat.Name
		}
		report.Categories = append(report.Categories, CategoryRow{Name: name, Total: total.String()})
	}
	slices.SortFunc(report.Categories, func(a, b CategoryRow) int {
		return strings.Compare(a.Name, b.Name)
	})
	return report
}

// RenderSummary renders the period summary to markdown.
func RenderSummary(r *SummaryReport) string {
	return renderTemplate("summary", "summary.md", r)
}
