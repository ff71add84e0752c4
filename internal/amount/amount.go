package amount

import (
	"errors"
	"fmt"
	"math"

	"github.com/shopspring/decimal"
)

// Sentinel errors for amount arithmetic. Overflow is always a rejection,
// never a wrap or clamp.
var (
	ErrOverflow  = errors.New("amount arithmetic overflow")
	ErrUnderflow = errors.New("amount arithmetic underflow")
	ErrInvalid   = errors.New("invalid amount")
)

// Amount is a monetary value in unsigned minor units (cents).
// Values are capped at MaxInt64 so they round-trip through SQLite INTEGER
// columns and decimal conversion without loss.
type Amount uint64

const Max = Amount(math.MaxInt64)

// New validates that v fits within the supported range.
func New(v uint64) (Amount, error) {
	if v > uint64(Max) {
		return 0, fmt.Errorf("%w: %d exceeds maximum", ErrOverflow, v)
	}
	return Amount(v), nil
}

// Parse converts a decimal string of major units (e.g. "1234.56") into minor units.
func Parse(s string) (Amount, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalid, s)
	}
	if d.IsNegative() {
		return 0, fmt.Errorf("%w: %q is negative", ErrInvalid, s)
	}
	minor := d.Shift(2)
	if !minor.IsInteger() {
		return 0, fmt.Errorf("%w: %q has sub-cent precision", ErrInvalid, s)
	}
	if minor.GreaterThan(decimal.NewFromInt(math.MaxInt64)) {
		return 0, fmt.Errorf("%w: %q exceeds maximum", ErrOverflow, s)
	}
	return Amount(minor.IntPart()), nil
}

// Add returns a+b, rejecting overflow past the supported range.
func (a Amount) Add(b Amount) (Amount, error) {
	sum := uint64(a) + uint64(b)
	if sum < uint64(a) || sum > uint64(Max) {
		return 0, fmt.Errorf("%w: %s + %s", ErrOverflow, a, b)
	}
	return Amount(sum), nil
}

// Sub returns a-b, rejecting underflow below zero.
func (a Amount) Sub(b Amount) (Amount, error) {
	if b > a {
		return 0, fmt.Errorf("%w: %s - %s", ErrUnderflow, a, b)
	}
	return a - b, nil
}

// Percent returns a*pct/100 using fixed multiply-then-divide order with
// round-down division. The intermediate product is overflow-checked.
func (a Amount) Percent(pct uint) (Amount, error) {
	if pct == 0 || a == 0 {
		return 0, nil
	}
	if uint64(a) > math.MaxUint64/uint64(pct) {
		return 0, fmt.Errorf("%w: %s * %d%%", ErrOverflow, a, pct)
	}
	return Amount(uint64(a) * uint64(pct) / 100), nil
}

func (a Amount) IsZero() bool {
	return a == 0
}

// Decimal returns the value in major units.
func (a Amount) Decimal() decimal.Decimal {
	return decimal.New(int64(a), -2)
}

// String formats the value in major units with two decimal places.
func (a Amount) String() string {
	return a.Decimal().StringFixed(2)
}
