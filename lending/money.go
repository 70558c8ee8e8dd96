package lending

import "fmt"

// Money is a monetary amount in cents. Integer cents avoid the rounding
// surprises of float arithmetic in fee calculations.
type Money int64

// MoneyFromCents builds a Money value from an amount of cents.
func MoneyFromCents(cents int64) Money {
	return Money(cents)
}

// Cents returns the raw amount in cents.
func (m Money) Cents() int64 {
	return int64(m)
}

// IsNegative reports whether the amount is below zero.
func (m Money) IsNegative() bool {
	return m < 0
}

// String renders the amount as a decimal string, e.g. "5.00" for 500 cents.
func (m Money) String() string {
	sign := ""
	cents := int64(m)
	if cents < 0 {
		sign = "-"
		cents = -cents
	}

	return fmt.Sprintf("%s%d.%02d", sign, cents/100, cents%100)
}
