package monolith

import (
	"context"
	"errors"
	"math/big"
	"testing"

	"github.com/fd1az/tokenprice/internal/asset"
	"github.com/fd1az/tokenprice/internal/chain"
	"github.com/fd1az/tokenprice/internal/chain/chaintest"
	"github.com/fd1az/tokenprice/internal/config"
	"github.com/fd1az/tokenprice/internal/logger"
)

func testConfig() *config.Config {
	cfg := &config.Config{}
	cfg.Ethereum.ChainID = asset.ChainIDBSC
	cfg.Tokens = config.TokensConfig{
		Native:  config.TokenConfig{Address: asset.AddrWBNB.Hex(), Symbol: "WBNB", Decimals: 18},
		Stable:  config.TokenConfig{Address: asset.AddrUSDT.Hex(), Symbol: "USDT", Decimals: 18},
		PeggedA: config.TokenConfig{Address: asset.AddrBUSD.Hex(), Symbol: "BUSD", Decimals: 18},
		PeggedB: config.TokenConfig{Address: asset.AddrUSDC.Hex(), Symbol: "USDC.e", Decimals: 18},
	}
	return cfg
}

func TestNewWithCaller(t *testing.T) {
	t.Run("breaker_disabled", func(t *testing.T) {
		fake := chaintest.NewCaller()
		a := NewWithCaller(testConfig(), logger.NewNop(), fake)

		if a.Caller() != chain.Caller(fake) {
			t.Error("expected the caller to be used as is")
		}
	})

	t.Run("breaker_enabled", func(t *testing.T) {
		cfg := testConfig()
		cfg.Ethereum.CircuitBreaker.Enabled = true
		a := NewWithCaller(cfg, logger.NewNop(), chaintest.NewCaller())

		if _, ok := a.Caller().(*chain.BreakerCaller); !ok {
			t.Errorf("caller = %T, want *chain.BreakerCaller", a.Caller())
		}
	})
}

func TestRegistryOverrides(t *testing.T) {
	a := NewWithCaller(testConfig(), logger.NewNop(), chaintest.NewCaller())

	if got := a.AssetRegistry().SymbolOf(asset.AddrUSDC); got != "USDC.e" {
		t.Errorf("USDC symbol = %q, want configured USDC.e", got)
	}
	if !a.AssetRegistry().Has(asset.AddrCAKE) {
		t.Error("well-known tokens should stay registered")
	}
}

type fakeChainID struct {
	id  int64
	err error
}

func (f fakeChainID) ChainID(context.Context) (*big.Int, error) {
	if f.err != nil {
		return nil, f.err
	}
	return big.NewInt(f.id), nil
}

func TestCheckRPC(t *testing.T) {
	tests := []struct {
		name   string
		reader chainIDReader
		want   bool
	}{
		{"healthy", fakeChainID{id: asset.ChainIDBSC}, true},
		{"wrong_chain", fakeChainID{id: asset.ChainIDEthereum}, false},
		{"unreachable", fakeChainID{err: errors.New("dial tcp: refused")}, false},
		{"no_client", nil, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := NewWithCaller(testConfig(), logger.NewNop(), chaintest.NewCaller())
			a.chainID = tt.reader

			if ok, msg := a.CheckRPC(context.Background()); ok != tt.want {
				t.Errorf("CheckRPC = %v (%s), want %v", ok, msg, tt.want)
			}
		})
	}
}
