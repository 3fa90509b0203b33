package renderer

import (
	"github.com/dgpessoa/ledger"
)

// ComparisonReport shows a period against the one before it.
type ComparisonReport struct {
	Current   *SummaryReport
	Previous  *SummaryReport
	Delta     string
	Variation string
}

// NewComparisonReport compares two ranges with the same filters.
func NewComparisonReport(s *ledger.Store, current, previous ledger.Range, opts ...ledger.SummarizeOption) *ComparisonReport {
	c := s.Compare(current, previous, opts...)
	return &ComparisonReport{
		Current:   NewSummaryReport(s, current, opts...),
		Previous:  NewSummaryReport(s, previous, opts...),
		Delta:     c.Delta.SignedString(),
		Variation: c.Variation.String(),
	}
}

// RenderComparison renders the comparison report to markdown.
func RenderComparison(r *ComparisonReport) string {
	return renderTemplate("comparison", "comparison.md", r)
}
