package ledger

import "testing"

func TestRangeContainsBoundaries(t *testing.T) {
	r := NewRange(MustParseDate("2024-01-01"), MustParseDate("2024-01-31"))

	tests := []struct {
		d    string
		want bool
	}{
		{"2024-01-01", true},
		{"2024-01-31", true},
		{"2024-01-15", true},
		{"2023-12-31", false},
		{"2024-02-01", false},
	}
	for _, tc := range tests {
		if got := r.Contains(MustParseDate(tc.d)); got != tc.want {
			t.Errorf("Contains(%s) = %v, want %v", tc.d, got, tc.want)
		}
	}
}

func TestNewRangeSwaps(t *testing.T) {
	r := NewRange(MustParseDate("2024-01-31"), MustParseDate("2024-01-01"))
	if r.From.String() != "2024-01-01" || r.To.String() != "2024-01-31" {
		t.Errorf("got %s, want 2024-01-01..2024-01-31", r)
	}
}

func TestRangePrevious(t *testing.T) {
	tests := []struct {
		from, to         string
		prevFrom, prevTo string
	}{
		// a month against the same number of days before it
		{"2024-03-01", "2024-03-31", "2024-01-30", "2024-02-29"},
		// a single day against the day before
		{"2024-03-15", "2024-03-15", "2024-03-14", "2024-03-14"},
		// a week against the previous week
		{"2024-03-11", "2024-03-17", "2024-03-04", "2024-03-10"},
	}
	for _, tc := range tests {
		r := NewRange(MustParseDate(tc.from), MustParseDate(tc.to))
		prev := r.Previous()
		if prev.From.String() != tc.prevFrom || prev.To.String() != tc.prevTo {
			t.Errorf("%s Previous() = %s, want %s..%s", r, prev, tc.prevFrom, tc.prevTo)
		}
		if prev.Days() != r.Days() {
			t.Errorf("%s Previous() has %d days, want %d", r, prev.Days(), r.Days())
		}
		// adjacency: the previous range ends the day before the current starts
		if prev.To.Add(1) != r.From {
			t.Errorf("%s Previous() = %s is not adjacent", r, prev)
		}
	}
}

func TestRangeDates(t *testing.T) {
	r := NewRange(MustParseDate("2024-01-30"), MustParseDate("2024-02-02"))
	var got []string
	for d := range r.Dates() {
		got = append(got, d.String())
	}
	want := []string{"2024-01-30", "2024-01-31", "2024-02-01", "2024-02-02"}
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("date %d = %s, want %s", i, got[i], want[i])
		}
	}
}

func TestRangePeriods(t *testing.T) {
	r := NewRange(MustParseDate("2024-01-15"), MustParseDate("2024-03-15"))
	var months []Range
	for m := range r.Periods(Monthly) {
		months = append(months, m)
	}
	if len(months) != 3 {
		t.Fatalf("got %d months, want 3: %v", len(months), months)
	}
	if months[0].From.String() != "2024-01-01" || months[2].To.String() != "2024-03-31" {
		t.Errorf("unexpected month boundaries: %v", months)
	}
}
