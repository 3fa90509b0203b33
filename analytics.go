package ledger

// Summary is the aggregation of transactions strictly within a range,
// grouped by category and by flow direction.
type Summary struct {
	Range      Range
	ByCategory map[ID]Money
	ByFlow     map[FlowDirection]Money
	// Total is the signed grand total over the range.
	Total Money
}

// SummarizeOption narrows a summary to a subset of transactions.
type SummarizeOption func(*summarizeFilter)

type summarizeFilter struct {
	account  ID
	category ID
}

// ByAccount restricts the summary to one account.
func ByAccount(id ID) SummarizeOption {
	return func(f *summarizeFilter) { f.account = id }
}

// ByCategory restricts the summary to one category.
func ByCategory(id ID) SummarizeOption {
	return func(f *summarizeFilter) { f.category = id }
}

// Summarize sums transactions dated within [r.From, r.To] inclusive.
// Boundaries belong to exactly one range, so adjacent ranges never
// double-count a transaction.
func (s *Store) Summarize(r Range, opts ...SummarizeOption) Summary {
	var f summarizeFilter
	for _, opt := range opts {
		opt(&f)
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	sum := Summary{
		Range:      r,
		ByCategory: make(map[ID]Money),
		ByFlow:     make(map[FlowDirection]Money),
	}
	for _, tx := range s.sortedTransactionsLocked(func(t Transaction) bool {
		if !r.Contains(t.Date) {
			return false
		}
		if !f.account.IsZero() && t.Account != f.account {
			return false
		}
		if !f.category.IsZero() && t.Category != f.category {
			return false
		}
		return true
	}) {
		sum.ByCategory[tx.Category] = sum.ByCategory[tx.Category].Add(tx.Amount)
		sum.ByFlow[tx.Flow()] = sum.ByFlow[tx.Flow()].Add(tx.Amount)
		sum.Total = sum.Total.Add(tx.Amount)
	}
	return sum
}

// Comparison is the outcome of comparing two period summaries.
type Comparison struct {
	Current  Summary
	Previous Summary
	// Delta is current total minus previous total.
	Delta Money
	// Variation is the percentage change; undefined (not NaN) when the
	// previous total is zero.
	Variation Variation
}

// Compare summarizes both ranges with the same filters and derives the
// absolute delta and percentage variation between them.
func (s *Store) Compare(current, previous Range, opts ...SummarizeOption) Comparison {
	cur := s.Summarize(current, opts...)
	prev := s.Summarize(previous, opts...)

	c := Comparison{
		Current:  cur,
		Previous: prev,
		Delta:    cur.Total.Sub(prev.Total),
	}
	if prev.Total.IsZero() {
		c.Variation = UndefinedVariation()
	} else {
		pct := 100 * c.Delta.InexactFloat64() / prev.Total.Abs().InexactFloat64()
		c.Variation = NewVariation(Percent(pct))
	}
	return c
}

// CompareWithPrevious compares a range against the adjacent range of
// the same length immediately before it.
func (s *Store) CompareWithPrevious(r Range, opts ...SummarizeOption) Comparison {
	return s.Compare(r, r.Previous(), opts...)
}
