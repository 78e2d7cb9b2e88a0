package pricing

import (
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// Money is an amount in minor currency units (grosz, cents).
// All arithmetic stays on integers; Decimal and Format exist for display only.
type Money int64

// Abs returns the magnitude of m.
func (m Money) Abs() Money {
	if m < 0 {
		return -m
	}
	return m
}

// Decimal renders m in major units, e.g. 1230 -> 12.30.
func (m Money) Decimal() decimal.Decimal {
	return decimal.New(int64(m), -2)
}

// String renders m with two decimals and a dot separator.
func (m Money) String() string {
	return m.Decimal().StringFixed(2)
}

// Format renders m with two decimals using sep as the decimal separator.
func (m Money) Format(sep string) string {
	s := m.String()
	if sep == "" || sep == "." {
		return s
	}
	return strings.Replace(s, ".", sep, 1)
}

// RoundDiv returns num/den rounded to the nearest integer, halves away from zero.
// den must be positive.
func RoundDiv(num, den int64) int64 {
	if den <= 0 {
		panic("pricing: RoundDiv with non-positive divisor")
	}
	q := num / den
	r := num % den
	if r < 0 {
		r = -r
	}
	if 2*r >= den {
		if num < 0 {
			q--
		} else {
			q++
		}
	}
	return q
}

// MaxAmount is the largest base price or adjustment amount accepted:
// ten billion in major units.
const MaxAmount Money = 1_000_000_000_000

// ErrAmountOutOfRange is returned for a base price outside [0, MaxAmount].
var ErrAmountOutOfRange = errors.New("amount out of range")

// ValidateBase checks that m is a usable base net price.
func ValidateBase(m Money) error {
	if m < 0 || m > MaxAmount {
		return fmt.Errorf("%w: %d not in [0, %d]", ErrAmountOutOfRange, int64(m), int64(MaxAmount))
	}
	return nil
}

// PercentOf returns pct percent of m, rounded per RoundDiv.
func PercentOf(m Money, pct int64) Money {
	return Money(RoundDiv(int64(m)*pct, 100))
}

func abs64(v int64) int64 {
	if v < 0 {
		return -v
	}
	return v
}
