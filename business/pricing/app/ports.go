// Package app contains application services and port definitions for the pricing context.
package app

import (
	"context"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/shopspring/decimal"

	"github.com/fd1az/tokenprice/business/pricing/domain"
	"github.com/fd1az/tokenprice/internal/asset"
)

// MetadataResolver fetches token metadata.
type MetadataResolver interface {
	// Resolve never fails: on any read error it returns asset.Unknown(addr).
	Resolve(ctx context.Context, addr common.Address) *asset.Asset
}

// V2Prober probes AMM-v2 router paths for liquidity.
type V2Prober interface {
	// FindLiquidPath returns the first candidate path that quotes one unit
	// (10^decimals) of input, along with the quoted output.
	FindLiquidPath(ctx context.Context, input, quote common.Address, decimals uint8) (domain.Path, *big.Int, error)

	// QuotePath quotes amountIn along a single fixed path.
	QuotePath(ctx context.Context, path domain.Path, amountIn *big.Int) (*big.Int, error)
}

// V3PriceResolver prices tokenIn in units of tokenOut on a
// concentrated-liquidity exchange. Callers pass resolved descriptors so
// decimals are never re-read.
type V3PriceResolver interface {
	ResolvePrice(ctx context.Context, tokenIn, tokenOut *asset.Asset) (decimal.Decimal, error)
}

// AggregatorClient queries a third-party price aggregator.
type AggregatorClient interface {
	// FetchBestPrice returns the price string of the most liquid pair,
	// verbatim as reported by the aggregator.
	FetchBestPrice(ctx context.Context, addr common.Address, quote domain.QuoteCurrency) (string, error)
}
