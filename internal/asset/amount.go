package asset

import (
	"math/big"

	"github.com/shopspring/decimal"
)

// UnitAmount returns one whole token in raw units, 10^decimals.
func UnitAmount(decimals uint8) *big.Int {
	return new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(decimals)), nil)
}

// FormatUnits scales a raw on-chain integer down by decimals. Nil is zero.
func FormatUnits(raw *big.Int, decimals uint8) decimal.Decimal {
	if raw == nil {
		return decimal.Zero
	}
	return decimal.NewFromBigInt(raw, -int32(decimals))
}
