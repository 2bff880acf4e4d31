package extend

import (
	"github.com/shopspring/decimal"
)

// Cents is an amount in minor currency units.
type Cents int64

// Decimal returns the amount in major units.
func (c Cents) Decimal() decimal.Decimal {
	return decimal.New(int64(c), -2)
}

// String formats the amount as dollars, e.g. "$12.34".
func (c Cents) String() string {
	d := c.Decimal()
	if d.IsNegative() {
		return "-$" + d.Neg().StringFixed(2)
	}

	return "$" + d.StringFixed(2)
}

// CentsFromDecimal converts an amount in major units to cents,
// rounding half away from zero.
func CentsFromDecimal(d decimal.Decimal) Cents {
	return Cents(d.Shift(2).Round(0).IntPart())
}

// ParseCents parses a decimal amount such as "12.34" into cents.
func ParseCents(s string) (Cents, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return 0, err
	}

	return CentsFromDecimal(d), nil
}
