package ledger

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/Rhymond/go-money"
	"github.com/shopspring/decimal"
)

// DefaultCurrency is used when a Money value carries no explicit currency.
const DefaultCurrency = "BRL"

// Money represents a signed monetary value in a single currency.
//
// Transaction amounts are signed: the sign encodes inflow (positive)
// versus outflow (negative), and replay is a plain sum of signed
// amounts.
type Money struct {
	value decimal.Decimal // in major units
	cur   string
}

// M builds a Money from any numeric value and a currency code.
func M[T float32 | float64 | int | int32 | int64 | decimal.Decimal](value T, currency string) Money {
	return Money{value: newDecimal(value), cur: currency}
}

// BRL builds a Money in the default currency.
func BRL[T float32 | float64 | int | int32 | int64 | decimal.Decimal](value T) Money {
	return M(value, DefaultCurrency)
}

func newDecimal(v any) decimal.Decimal {
	switch n := v.(type) {
	case decimal.Decimal:
		return n
	case float32:
		return decimal.NewFromFloat32(n)
	case float64:
		return decimal.NewFromFloat(n)
	case int:
		return decimal.NewFromInt(int64(n))
	case int32:
		return decimal.NewFromInt32(n)
	case int64:
		return decimal.NewFromInt(n)
	default:
		panic("unsupported numeric type")
	}
}

// currency returns the full currency metadata, defaulting to BRL.
func (m Money) currency() money.Currency {
	cur := m.cur
	if cur == "" {
		cur = DefaultCurrency
	}
	return *money.New(0, cur).Currency()
}

// String formats the value with its currency symbol and grouping, e.g. "R$1.300,00".
func (m Money) String() string {
	cur := m.currency()
	dec := m.value.Shift(int32(cur.Fraction))
	return cur.Formatter().Format(dec.IntPart())
}

// SignedString is String with an explicit leading sign; zero renders as "-".
func (m Money) SignedString() string {
	if m.value.IsZero() {
		return "-"
	}
	if m.value.IsPositive() {
		return "+" + m.String()
	}
	return m.String()
}

func (m Money) Currency() string {
	if m.cur == "" {
		return DefaultCurrency
	}
	return m.cur
}

func (m Money) Equal(n Money) bool           { return m.value.Equal(n.value) && m.Currency() == n.Currency() }
func (m Money) IsZero() bool                 { return m.value.IsZero() }
func (m Money) IsPositive() bool             { return m.value.IsPositive() }
func (m Money) IsNegative() bool             { return m.value.IsNegative() }
func (m Money) LessThan(n Money) bool        { return m.value.LessThan(n.value) }
func (m Money) GreaterThan(n Money) bool     { return m.value.GreaterThan(n.value) }
func (m Money) Neg() Money                   { return Money{value: m.value.Neg(), cur: m.cur} }
func (m Money) Abs() Money                   { return Money{value: m.value.Abs(), cur: m.cur} }
func (m Money) Decimal() decimal.Decimal     { return m.value }
func (m Money) InexactFloat64() float64      { return m.value.InexactFloat64() }
func (m Money) Div(n int64) Money            { return Money{value: m.value.Div(decimal.NewFromInt(n)), cur: m.cur} }
func (m Money) MulDecimal(d decimal.Decimal) Money {
	return Money{value: m.value.Mul(d), cur: m.cur}
}

// Add returns m+n. The empty currency is weak and adopts the other side's.
func (m Money) Add(n Money) Money { return Money{value: m.value.Add(n.value), cur: cur(m, n)} }

// Sub returns m-n. The empty currency is weak and adopts the other side's.
func (m Money) Sub(n Money) Money { return Money{value: m.value.Sub(n.value), cur: cur(m, n)} }

func cur(a, b Money) string {
	if a.cur == "" {
		return b.cur
	}
	if b.cur == "" {
		return a.cur
	}
	if a.cur != b.cur {
		panic("currency mismatch " + a.cur + " != " + b.cur)
	}
	return a.cur
}

// ParseMoney reads "123.45" or "123.45 BRL". Bank exports use a comma
// decimal separator, so "1.234,56" is accepted too.
func ParseMoney(s string) (Money, error) {
	s = strings.TrimSpace(s)
	cur := ""
	if i := strings.LastIndexByte(s, ' '); i >= 0 {
		cur = strings.ToUpper(s[i+1:])
		s = strings.TrimSpace(s[:i])
	}
	if strings.Contains(s, ",") {
		s = strings.ReplaceAll(s, ".", "")
		s = strings.ReplaceAll(s, ",", ".")
	}
	value, err := decimal.NewFromString(s)
	if err != nil {
		return Money{}, fmt.Errorf("cannot parse amount %q: %w", s, err)
	}
	return Money{value: value, cur: cur}, nil
}

// MarshalJSON encodes as "123.45 BRL".
func (m Money) MarshalJSON() ([]byte, error) {
	return json.Marshal(m.value.String() + " " + m.Currency())
}

// UnmarshalJSON accepts anything ParseMoney does.
func (m *Money) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	parsed, err := ParseMoney(s)
	if err != nil {
		return err
	}
	*m = parsed
	return nil
}

// WithinPercent reports whether n deviates from m by at most pct percent
// of m's absolute value. Used by duplicate and recurrence matching.
func (m Money) WithinPercent(n Money, pct float64) bool {
	if m.IsZero() {
		return n.IsZero()
	}
	diff := m.value.Sub(n.value).Abs()
	limit := m.value.Abs().Mul(decimal.NewFromFloat(pct / 100))
	return diff.LessThanOrEqual(limit)
}
