// Package pricing implements the token price resolution bounded context.
package pricing

import (
	"context"

	"github.com/ethereum/go-ethereum/common"

	"github.com/fd1az/tokenprice/business/pricing/app"
	"github.com/fd1az/tokenprice/business/pricing/infra/dexscreener"
	"github.com/fd1az/tokenprice/business/pricing/infra/erc20"
	"github.com/fd1az/tokenprice/business/pricing/infra/pancakev2"
	"github.com/fd1az/tokenprice/business/pricing/infra/pancakev3"
	"github.com/fd1az/tokenprice/internal/apperror"
	"github.com/fd1az/tokenprice/internal/monolith"
)

// Module implements the pricing bounded context.
type Module struct {
	service *app.PriceService
}

var _ monolith.Module = (*Module)(nil)

// Startup builds the price service from the container.
func (m *Module) Startup(ctx context.Context, mono monolith.Monolith) error {
	service, err := NewPriceService(mono)
	if err != nil {
		return err
	}
	m.service = service

	cfg := mono.Config()
	mono.Logger().Info(ctx, "pricing module started",
		"native", cfg.Tokens.Native.Symbol,
		"stable", cfg.Tokens.Stable.Symbol,
		"v3_enabled", cfg.Dex.V3Enabled,
		"v3_strategy", cfg.Dex.V3Strategy,
	)
	return nil
}

// Service returns the price service. Nil before Startup.
func (m *Module) Service() *app.PriceService {
	return m.service
}

// NewPriceService wires every pricing tier from the container.
func NewPriceService(mono monolith.Monolith) (*app.PriceService, error) {
	cfg := mono.Config()
	log := mono.Logger()
	caller := mono.Caller()

	native := cfg.Tokens.Native.Asset()
	stable := cfg.Tokens.Stable.Asset()

	metadata := erc20.NewMetadataResolver(caller, log)

	prober, err := pancakev2.NewProber(caller, pancakev2.Config{
		Router:  cfg.Dex.RouterAddressHex(),
		Native:  native.Address(),
		PeggedA: cfg.Tokens.PeggedA.Asset().Address(),
		PeggedB: cfg.Tokens.PeggedB.Asset().Address(),
	}, log)
	if err != nil {
		return nil, apperror.Internal(apperror.CodeInternalError, "pancakev2 prober", err)
	}

	var v3 app.V3PriceResolver
	if cfg.Dex.V3Enabled {
		strategy, err := pancakev3.ParseStrategy(cfg.Dex.V3Strategy)
		if err != nil {
			return nil, err
		}

		known := make([]pancakev3.KnownPool, 0, len(cfg.Dex.KnownPools))
		for _, p := range cfg.Dex.KnownPools {
			known = append(known, pancakev3.KnownPool{
				TokenA: common.HexToAddress(p.TokenA),
				TokenB: common.HexToAddress(p.TokenB),
				Pool:   common.HexToAddress(p.Pool),
			})
		}

		v3, err = pancakev3.NewResolver(caller, pancakev3.ResolverConfig{
			Strategy:   strategy,
			Factory:    cfg.Dex.FactoryAddressHex(),
			Quoter:     cfg.Dex.QuoterAddressHex(),
			KnownPools: known,
		}, log)
		if err != nil {
			return nil, err
		}
	}

	aggregator, err := dexscreener.NewClient(dexscreener.Config{
		BaseURL: cfg.Aggregator.BaseURL,
		ChainID: cfg.Aggregator.ChainID,

		RequestsPerMinute: cfg.Aggregator.RequestsPerMinute,
	}, log)
	if err != nil {
		return nil, apperror.Internal(apperror.CodeInternalError, "dexscreener client", err)
	}

	return app.NewPriceService(app.ServiceConfig{
		Quotes:    app.QuoteTokens{Native: native, Stable: stable},
		Symbols:   mono.AssetRegistry(),
		V3Enabled: cfg.Dex.V3Enabled,
	}, metadata, prober, v3, aggregator, log)
}
