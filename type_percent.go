package ledger

import "fmt"

type Percent float64

func (p Percent) Equal(q Percent) bool {
	// it has to be compared with some precision
	const precision = 0.0001
	diff := p - q
	if diff < 0 {
		diff = -diff
	}
	return diff < precision
}

func (p Percent) String() string {
	return fmt.Sprintf("%.2f%%", p)
}

func (p Percent) SignedString() string {
	res := fmt.Sprintf("%+.2f%%", p)
	if res == "+0.00%" {
		return "-"
	}
	return res
}

// Variation is a percentage change that may be undefined (comparing
// against a zero baseline). The undefined case is an explicit state,
// never a numeric NaN.
type Variation struct {
	pct     Percent
	defined bool
}

// NewVariation returns a defined variation.
func NewVariation(pct Percent) Variation { return Variation{pct: pct, defined: true} }

// UndefinedVariation returns the sentinel for an undefined variation.
func UndefinedVariation() Variation { return Variation{} }

// Defined reports whether the variation has a numeric value.
func (v Variation) Defined() bool { return v.defined }

// Percent returns the numeric value; the boolean is false when undefined.
func (v Variation) Percent() (Percent, bool) { return v.pct, v.defined }

func (v Variation) String() string {
	if !v.defined {
		return "n/a"
	}
	return v.pct.SignedString()
}
