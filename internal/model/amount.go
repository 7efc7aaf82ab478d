package model

import (
	"fmt"
	"math/big"
	"strings"

	"github.com/shopspring/decimal"
)

// TokenDecimals is the fixed-point scale of every monetary figure on chain.
const TokenDecimals = 18

// FromRaw converts a raw 10^18-scaled integer into a decimal value for display.
func FromRaw(raw *big.Int) decimal.Decimal {
	if raw == nil {
		return decimal.Zero
	}
	return decimal.NewFromBigInt(raw, -TokenDecimals)
}

// ToRaw scales a decimal amount back to the chain's integer representation.
// Amounts with more fractional digits than the token supports are rejected.
func ToRaw(amount decimal.Decimal) (*big.Int, error) {
	shifted := amount.Shift(TokenDecimals)
	if !shifted.Equal(shifted.Truncate(0)) {
		return nil, fmt.Errorf("%w: more than %d decimals", ErrInvalidAmount, TokenDecimals)
	}
	return shifted.BigInt(), nil
}

// ParseAmount parses raw user input into a decimal amount.
func ParseAmount(input string) (decimal.Decimal, error) {
	input = strings.TrimSpace(input)
	if input == "" {
		return decimal.Zero, fmt.Errorf("%w: empty", ErrInvalidAmount)
	}
	amount, err := decimal.NewFromString(input)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: %s", ErrInvalidAmount, input)
	}
	return amount, nil
}

// Units returns n whole tokens in raw form.
func Units(n int64) *big.Int {
	return decimal.NewFromInt(n).Shift(TokenDecimals).BigInt()
}
