// Package monolith provides the application container and module interface.
package monolith

import (
	"context"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/ethclient"

	"github.com/fd1az/tokenprice/internal/asset"
	"github.com/fd1az/tokenprice/internal/chain"
	"github.com/fd1az/tokenprice/internal/circuitbreaker"
	"github.com/fd1az/tokenprice/internal/config"
	"github.com/fd1az/tokenprice/internal/logger"
)

// Monolith is the main application container providing access to shared
// infrastructure. Everything it hands out is read-only after New returns.
type Monolith interface {
	Config() *config.Config
	Logger() logger.LoggerInterface
	Caller() chain.Caller
	AssetRegistry() *asset.Registry
}

// Module represents a bounded context module started against the container.
type Module interface {
	Startup(context.Context, Monolith) error
}

type chainIDReader interface {
	ChainID(ctx context.Context) (*big.Int, error)
}

// app implements the Monolith interface.
type app struct {
	config        *config.Config
	logger        logger.LoggerInterface
	ethClient     *ethclient.Client
	caller        chain.Caller
	chainID       chainIDReader
	assetRegistry *asset.Registry
}

// New dials the configured RPC endpoint and builds the container.
func New(ctx context.Context, cfg *config.Config, log logger.LoggerInterface) (*app, error) {
	ethClient, err := chain.Dial(ctx, cfg.Ethereum.HTTPURL)
	if err != nil {
		return nil, err
	}

	a := NewWithCaller(cfg, log, ethClient)
	a.ethClient = ethClient
	a.chainID = ethClient
	return a, nil
}

// NewWithCaller builds the container around an existing caller. The
// circuit breaker from cfg is applied on top of it.
func NewWithCaller(cfg *config.Config, log logger.LoggerInterface, caller chain.Caller) *app {
	if cb := cfg.Ethereum.CircuitBreaker; cb.Enabled {
		cbCfg := circuitbreaker.DefaultConfig("rpc")
		if cb.ConsecutiveFailures > 0 {
			cbCfg.ConsecutiveFailures = cb.ConsecutiveFailures
		}
		if cb.Timeout > 0 {
			cbCfg.Timeout = cb.Timeout
		}
		if cb.Interval > 0 {
			cbCfg.Interval = cb.Interval
		}
		caller = chain.NewBreakerCaller(caller, cbCfg, log)
	}

	return &app{
		config:        cfg,
		logger:        log,
		caller:        caller,
		assetRegistry: buildRegistry(cfg),
	}
}

// buildRegistry starts from the well-known tokens and lets the configured
// quote and pegged tokens override them.
func buildRegistry(cfg *config.Config) *asset.Registry {
	registry := asset.DefaultRegistry()
	for _, t := range cfg.Tokens.All() {
		registry.Upsert(t.Asset())
	}
	return registry
}

func (a *app) Config() *config.Config {
	return a.config
}

func (a *app) Logger() logger.LoggerInterface {
	return a.logger
}

func (a *app) Caller() chain.Caller {
	return a.caller
}

func (a *app) AssetRegistry() *asset.Registry {
	return a.assetRegistry
}

// CheckRPC reports whether the node answers eth_chainId with the
// configured chain. It matches health.CheckFunc.
func (a *app) CheckRPC(ctx context.Context) (bool, string) {
	if a.chainID == nil {
		return false, "no rpc client"
	}
	id, err := a.chainID.ChainID(ctx)
	if err != nil {
		return false, err.Error()
	}
	if want := a.config.Ethereum.ChainID; want != 0 && id.Uint64() != want {
		return false, fmt.Sprintf("chain id %s, want %d", id, want)
	}
	return true, "chain " + id.String()
}

// StartModules starts all provided modules.
func (a *app) StartModules(ctx context.Context, modules ...Module) error {
	for _, m := range modules {
		if err := m.Startup(ctx, a); err != nil {
			return err
		}
	}
	return nil
}

// Close closes all resources.
func (a *app) Close() error {
	if a.ethClient != nil {
		a.ethClient.Close()
	}
	return nil
}
