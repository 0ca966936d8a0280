package catalog

import (
	"fmt"
	"math/big"
	"strings"

	"github.com/shopspring/decimal"
)

// ToAtomic scales a human token amount ("5.00") to the token's smallest unit
// ("5000000" for 6 decimals). The conversion is exact: amounts with more
// fractional digits than the token supports are rejected instead of being
// truncated.
func ToAtomic(amount string, decimals int32) (string, error) {
	d, err := decimal.NewFromString(strings.TrimSpace(amount))
	if err != nil {
		return "", fmt.Errorf("invalid amount %q", amount)
	}
	if !d.IsPositive() {
		return "", fmt.Errorf("amount must be positive")
	}
	scaled := d.Shift(decimals)
	if !scaled.Equal(scaled.Truncate(0)) {
		return "", fmt.Errorf("amount %s has more than %d decimal places", amount, decimals)
	}
	return scaled.BigInt().String(), nil
}

// FromAtomic renders an atomic integer string as a decimal token amount.
func FromAtomic(atomic string, decimals int32) (decimal.Decimal, error) {
	n, ok := new(big.Int).SetString(strings.TrimSpace(atomic), 10)
	if !ok {
		return decimal.Zero, fmt.Errorf("invalid atomic amount %q", atomic)
	}
	return decimal.NewFromBigInt(n, -decimals), nil
}

// FromBig is FromAtomic for a big.Int balance.
func FromBig(n *big.Int, decimals int32) decimal.Decimal {
	if n == nil {
		return decimal.Zero
	}
	return decimal.NewFromBigInt(n, -decimals)
}

// IsPositiveAtomic reports whether s is a base-10 integer greater than zero.
func IsPositiveAtomic(s string) bool {
	n, ok := new(big.Int).SetString(strings.TrimSpace(s), 10)
	return ok && n.Sign() > 0
}
