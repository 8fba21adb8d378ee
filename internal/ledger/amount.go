package ledger

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// AmountScale is the number of fractional digits carried by every amount.
const AmountScale = 2

// BalanceEpsilon is the tolerance used when comparing statement totals.
var BalanceEpsilon = decimal.New(5, -3)

// ParseAmount converts a decimal string like "-10.50" to a fixed-point amount.
// More than AmountScale fractional digits are rejected rather than rounded.
func ParseAmount(s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return decimal.Zero, fmt.Errorf("%w: empty", ErrInvalidAmount)
	}
	d, err := decimal.NewFromString(strings.TrimPrefix(s, "+"))
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: %q", ErrInvalidAmount, s)
	}
	if !d.Equal(d.Truncate(AmountScale)) {
		return decimal.Zero, fmt.Errorf("%w: %q has more than %d decimal places", ErrInvalidAmount, s, AmountScale)
	}
	if err := CheckMinor(d); err != nil {
		return decimal.Zero, err
	}
	return d, nil
}

// FormatAmount renders an amount as a fixed-point string, e.g. "1000.00".
func FormatAmount(d decimal.Decimal) string {
	return d.StringFixed(AmountScale)
}

// Normalize converts a raw ledger amount (debit positive, credit negative)
// into the classification's natural sign, so that increases are positive.
func Normalize(c Classification, raw decimal.Decimal) decimal.Decimal {
	if c.DebitNormal() {
		return raw
	}
	return raw.Neg()
}

// CheckMinor reports ErrInvalidAmount when d does not fit in int64 minor
// units and so cannot be stored exactly.
func CheckMinor(d decimal.Decimal) error {
	if !d.Shift(AmountScale).BigInt().IsInt64() {
		return fmt.Errorf("%w: %s is out of range", ErrInvalidAmount, d)
	}
	return nil
}

// ToMinor converts an amount to integer minor units (cents). Amounts are
// validated to AmountScale digits and int64 range before they reach storage.
func ToMinor(d decimal.Decimal) int64 {
	return d.Shift(AmountScale).IntPart()
}

func FromMinor(n int64) decimal.Decimal {
	return decimal.New(n, -AmountScale)
}
