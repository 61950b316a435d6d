package domain

import (
	"fmt"
	"math"

	"github.com/ethereum/go-ethereum/common"
)

// FeeTier is a concentrated-liquidity fee tier in hundredths of a basis
// point, the unit the factory's getPool expects.
type FeeTier uint32

const (
	FeeTier1   FeeTier = 100   // 0.01%
	FeeTier5   FeeTier = 500   // 0.05%
	FeeTier25  FeeTier = 2500  // 0.25%
	FeeTier100 FeeTier = 10000 // 1.00%
)

// FeeTiers is the probe order. Probing stops at the first tier that resolves.
var FeeTiers = []FeeTier{FeeTier1, FeeTier5, FeeTier25, FeeTier100}

// BasisPoints returns the tier in bps (1, 5, 25, 100).
func (f FeeTier) BasisPoints() uint32 {
	return uint32(f) / 100
}

// String returns the tier as a percentage (e.g. "0.25%").
func (f FeeTier) String() string {
	return fmt.Sprintf("%.2f%%", float64(f)/10000.0)
}

// PoolState is a pool snapshot read once per discovery.
type PoolState struct {
	Pool   common.Address
	Token0 common.Address
	Token1 common.Address
	Tick   int64
}

// PriceOf returns the price of input expressed in the other pool token.
func (s PoolState) PriceOf(input common.Address) float64 {
	return PriceFromTick(s.Tick, input == s.Token1)
}

const tickBase = 1.0001

// PriceFromTick converts a tick to token1-per-token0. With invert the
// result is token0-per-token1.
func PriceFromTick(tick int64, invert bool) float64 {
	raw := math.Pow(tickBase, float64(tick))
	if invert {
		return 1 / raw
	}
	return raw
}
