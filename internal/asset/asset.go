// Package asset models ERC-20 tokens and their on-chain amounts.
// Raw amounts are big.Int in the token's smallest unit; decimal.Decimal is
// only used at the boundaries (formatting, parsing).
package asset

import "github.com/ethereum/go-ethereum/common"

// Placeholder metadata used when a token's ERC-20 reads fail.
const (
	UnknownSymbol   = "UNKNOWN"
	UnknownName     = "Unknown Token"
	DefaultDecimals = 18
)

// Asset describes a token: its contract address plus the metadata read from
// it. An Asset is immutable once constructed.
type Asset struct {
	address     common.Address
	symbol      string
	name        string
	decimals    uint8
	placeholder bool
}

// NewAsset creates a token descriptor.
func NewAsset(address common.Address, symbol, name string, decimals uint8) *Asset {
	return &Asset{
		address:  address,
		symbol:   symbol,
		name:     name,
		decimals: decimals,
	}
}

// Unknown returns the placeholder descriptor for a token whose metadata
// could not be read.
func Unknown(address common.Address) *Asset {
	return &Asset{
		address:     address,
		symbol:      UnknownSymbol,
		name:        UnknownName,
		decimals:    DefaultDecimals,
		placeholder: true,
	}
}

// Address returns the token contract address.
func (a *Asset) Address() common.Address {
	return a.address
}

// Symbol returns the ticker symbol (e.g., "WBNB", "USDT").
func (a *Asset) Symbol() string {
	return a.symbol
}

// Name returns the human-readable name, falling back to the symbol.
func (a *Asset) Name() string {
	if a.name == "" {
		return a.symbol
	}
	return a.name
}

// Decimals returns the number of decimal places.
func (a *Asset) Decimals() uint8 {
	return a.decimals
}

// IsPlaceholder reports whether this descriptor is the fallback used after a
// metadata read failure.
func (a *Asset) IsPlaceholder() bool {
	return a.placeholder
}

// String returns the symbol.
func (a *Asset) String() string {
	return a.symbol
}

// Equals compares two Assets by address.
func (a *Asset) Equals(other *Asset) bool {
	if a == nil || other == nil {
		return a == other
	}
	return a.address == other.address
}
