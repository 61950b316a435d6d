package pancakev3

import (
	"strings"

	"github.com/ethereum/go-ethereum/common"

	"github.com/fd1az/tokenprice/business/pricing/app"
	"github.com/fd1az/tokenprice/internal/apperror"
	"github.com/fd1az/tokenprice/internal/chain"
	"github.com/fd1az/tokenprice/internal/logger"
)

// Strategy selects how V3 prices are derived.
type Strategy string

const (
	StrategyPoolState Strategy = "pool_state"
	StrategyQuoter    Strategy = "quoter"
)

// ParseStrategy parses s; empty means StrategyPoolState.
func ParseStrategy(s string) (Strategy, error) {
	switch st := Strategy(strings.ToLower(strings.TrimSpace(s))); st {
	case "", StrategyPoolState:
		return StrategyPoolState, nil
	case StrategyQuoter:
		return StrategyQuoter, nil
	default:
		return "", apperror.New(apperror.CodeConfigurationError,
			apperror.WithContext("unknown v3 strategy: "+s))
	}
}

// ResolverConfig configures NewResolver.
type ResolverConfig struct {
	Strategy   Strategy
	Factory    common.Address
	Quoter     common.Address
	KnownPools []KnownPool
}

// NewResolver builds the V3PriceResolver for cfg.Strategy.
func NewResolver(caller chain.Caller, cfg ResolverConfig, log logger.LoggerInterface) (app.V3PriceResolver, error) {
	switch cfg.Strategy {
	case StrategyQuoter:
		r, err := NewQuoterResolver(caller, cfg.Quoter, log)
		if err != nil {
			return nil, err
		}
		return r, nil
	case StrategyPoolState, "":
		r, err := NewPoolStateResolver(caller, cfg.Factory, NewPoolRegistry(cfg.KnownPools...), log)
		if err != nil {
			return nil, err
		}
		return r, nil
	default:
		return nil, apperror.New(apperror.CodeConfigurationError,
			apperror.WithContext("unknown v3 strategy: "+string(cfg.Strategy)))
	}
}
