package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/fd1az/tokenprice/internal/apperror"
	"github.com/fd1az/tokenprice/internal/asset"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load(writeConfig(t, "app:\n  name: tokenprice\n"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.Ethereum.ChainID != asset.ChainIDBSC {
		t.Errorf("chain_id = %d, want %d", cfg.Ethereum.ChainID, asset.ChainIDBSC)
	}
	if got := cfg.Tokens.Native.Asset(); got.Address() != asset.AddrWBNB || got.Symbol() != "WBNB" || got.Decimals() != 18 {
		t.Errorf("native = %s (%d decimals)", got, got.Decimals())
	}
	if got := cfg.Tokens.Stable.Asset(); got.Address() != asset.AddrUSDT {
		t.Errorf("stable = %s", got)
	}
	if cfg.Aggregator.RequestsPerMinute != 300 {
		t.Errorf("aggregator.requests_per_minute = %d, want 300", cfg.Aggregator.RequestsPerMinute)
	}
	if cfg.Dex.V3Strategy != "pool_state" || !cfg.Dex.V3Enabled {
		t.Errorf("dex v3 = %q enabled=%v", cfg.Dex.V3Strategy, cfg.Dex.V3Enabled)
	}
	if len(cfg.Dex.KnownPools) != 1 {
		t.Fatalf("known_pools = %d, want 1", len(cfg.Dex.KnownPools))
	}
	if !cfg.Ethereum.CircuitBreaker.Enabled || cfg.Ethereum.CircuitBreaker.ConsecutiveFailures != 5 {
		t.Errorf("circuit_breaker = %+v", cfg.Ethereum.CircuitBreaker)
	}
}

func TestLoad_FileAndEnv(t *testing.T) {
	path := writeConfig(t, `
ethereum:
  http_url: https://rpc.example.org
tokens:
  stable:
    address: "0xe9e7cea3dedca5984780bafc599bd69add087d56"
    symbol: BUSD
    decimals: 18
dex:
  v3_strategy: quoter
  known_pools: []
aggregator:
  chain_id: bsc
`)
	t.Setenv("TP_SERVER_PORT", "9999")
	t.Setenv("LOG_LEVEL", "debug")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.Ethereum.HTTPURL != "https://rpc.example.org" {
		t.Errorf("http_url = %q", cfg.Ethereum.HTTPURL)
	}
	if cfg.Tokens.Stable.Asset().Address() != asset.AddrBUSD {
		t.Errorf("stable = %s", cfg.Tokens.Stable.Address)
	}
	if cfg.Dex.V3Strategy != "quoter" {
		t.Errorf("v3_strategy = %q", cfg.Dex.V3Strategy)
	}
	if len(cfg.Dex.KnownPools) != 0 {
		t.Errorf("known_pools = %v, want empty", cfg.Dex.KnownPools)
	}
	if cfg.Aggregator.ChainID != "bsc" {
		t.Errorf("aggregator = %+v", cfg.Aggregator)
	}
	if cfg.Server.Port != 9999 {
		t.Errorf("server.port = %d, want env override 9999", cfg.Server.Port)
	}
	if cfg.App.LogLevel != "debug" {
		t.Errorf("log_level = %q, want debug", cfg.App.LogLevel)
	}
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"bad_router", "dex:\n  router_address: \"0x1234\"\n"},
		{"bad_native", "tokens:\n  native:\n    address: nope\n"},
		{"bad_known_pool", "dex:\n  known_pools:\n    - token_a: \"0xbb4CdB9CBd36B01bD1cBaEBF2De08d9173bc095c\"\n      token_b: \"0x55d398326f99059fF775485246999027B3197955\"\n      pool: \"0xzz\"\n"},
		{"same_quotes", "tokens:\n  stable:\n    address: \"0xbb4cdb9cbd36b01bd1cbaebf2de08d9173bc095c\"\n    symbol: WBNB\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tt.body))
			if !apperror.HasCode(err, apperror.CodeConfigurationError) {
				t.Errorf("expected CodeConfigurationError, got %v", err)
			}
		})
	}
}
