package ledger

import (
	"fmt"
	"iter"
)

// Range represents an inclusive range of dates [From, To].
//
// Ranges are always whole days, so a transaction dated exactly on a
// boundary belongs to exactly one of two adjacent ranges.
type Range struct{ From, To Date }

// NewRange creates a new date range. If 'from' is after 'to', they are swapped.
func NewRange(from, to Date) Range {
	if from.After(to) {
		from, to = to, from
	}
	return Range{From: from, To: to}
}

// Contains returns true if date is included in the range (boundaries included).
func (r Range) Contains(date Date) bool { return !date.Before(r.From) && !date.After(r.To) }

// Days returns the number of days in the range, boundaries included.
func (r Range) Days() int { return r.From.DaysUntil(r.To) + 1 }

// Previous returns the adjacent range of the same length immediately
// before r. Used for "vs previous period" comparisons.
func (r Range) Previous() Range {
	days := r.Days()
	return Range{From: r.From.Add(-days), To: r.From.Add(-1)}
}

// Dates returns an iterator that yields each date within the range, inclusive.
func (r Range) Dates() iter.Seq[Date] {
	return func(yield func(Date) bool) {
		for d := r.From; !d.After(r.To); d = d.Add(1) {
			if !yield(d) {
				return
			}
		}
	}
}

// Periods yields each sequential range of period 'p' that overlaps r.
func (r Range) Periods(p Period) iter.Seq[Range] {
	return func(yield func(Range) bool) {
		for current := r.From; !current.After(r.To); {
			periodRange := p.Range(current)
			if !yield(periodRange) {
				return
			}
			current = periodRange.To.Add(1)
		}
	}
}

func (r Range) String() string {
	return fmt.Sprintf("%s..%s", r.From, r.To)
}
