package money

import (
	"database/sql/driver"
	"fmt"

	"github.com/shopspring/decimal"
)

// Scale is the working scale for currency amounts: two fractional digits,
// i.e. the minimal unit is one cent. Intermediate arithmetic keeps full
// decimal precision; only share computation and display round to Scale.
const Scale = 2

// Money is an exact decimal amount of currency. All arithmetic is performed
// on the decimal representation; a Money value never passes through binary
// floating point.
type Money struct {
	d decimal.Decimal
}

// Zero returns the zero amount.
func Zero() Money {
	return Money{}
}

// Unit returns one minimal currency unit (0.01 at the working scale).
func Unit() Money {
	return Money{d: decimal.New(1, -Scale)}
}

// FromDecimal wraps a decimal value as Money.
func FromDecimal(d decimal.Decimal) Money {
	return Money{d: d}
}

// FromString parses a decimal string such as "100.00" or "0.05".
func FromString(s string) (Money, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return Money{}, fmt.Errorf("invalid money amount %q: %w", s, err)
	}
	return Money{d: d}, nil
}

// MustFromString is FromString that panics on malformed input. For constants
// in wiring and tests only.
func MustFromString(s string) Money {
	m, err := FromString(s)
	if err != nil {
		panic(err)
	}
	return m
}

// FromCents builds a Money from a count of minimal units.
func FromCents(cents int64) Money {
	return Money{d: decimal.New(cents, -Scale)}
}

// Decimal returns the underlying decimal value.
func (m Money) Decimal() decimal.Decimal {
	return m.d
}

func (m Money) Add(o Money) Money {
	return Money{d: m.d.Add(o.d)}
}

func (m Money) Sub(o Money) Money {
	return Money{d: m.d.Sub(o.d)}
}

func (m Money) Neg() Money {
	return Money{d: m.d.Neg()}
}

// MulInt returns m multiplied by an integer count.
func (m Money) MulInt(n int64) Money {
	return Money{d: m.d.Mul(decimal.NewFromInt(n))}
}

// DivFloor returns m divided by n, truncated toward zero at the working
// scale. The caller is responsible for distributing the residual.
func (m Money) DivFloor(n int64) Money {
	return Money{d: m.d.Div(decimal.NewFromInt(n)).RoundDown(Scale)}
}

// Percent returns p percent of m, truncated toward zero at the working
// scale. The caller is responsible for distributing the residual.
func (m Money) Percent(p decimal.Decimal) Money {
	return Money{d: m.d.Mul(p).Div(decimal.NewFromInt(100)).RoundDown(Scale)}
}

// Cmp compares m to o: -1 if m < o, 0 if equal, +1 if m > o.
func (m Money) Cmp(o Money) int {
	return m.d.Cmp(o.d)
}

func (m Money) Equal(o Money) bool {
	return m.d.Equal(o.d)
}

func (m Money) GreaterThan(o Money) bool {
	return m.d.GreaterThan(o.d)
}

func (m Money) LessThan(o Money) bool {
	return m.d.LessThan(o.d)
}

func (m Money) IsZero() bool {
	return m.d.IsZero()
}

func (m Money) IsPositive() bool {
	return m.d.IsPositive()
}

func (m Money) IsNegative() bool {
	return m.d.IsNegative()
}

// Sum adds a sequence of amounts.
func Sum(amounts ...Money) Money {
	total := Money{}
	for _, a := range amounts {
		total = total.Add(a)
	}
	return total
}

// String renders the amount fixed at the working scale, e.g. "50.00".
func (m Money) String() string {
	return m.d.StringFixed(Scale)
}

// MarshalJSON renders the amount as a JSON string so clients never receive
// a binary float.
func (m Money) MarshalJSON() ([]byte, error) {
	return []byte(`"` + m.d.String() + `"`), nil
}

func (m *Money) UnmarshalJSON(data []byte) error {
	var d decimal.Decimal
	if err := d.UnmarshalJSON(data); err != nil {
		return fmt.Errorf("invalid money amount: %w", err)
	}
	m.d = d
	return nil
}

// Scan implements sql.Scanner for NUMERIC columns.
func (m *Money) Scan(value interface{}) error {
	return m.d.Scan(value)
}

// Value implements driver.Valuer.
func (m Money) Value() (driver.Value, error) {
	return m.d.Value()
}
