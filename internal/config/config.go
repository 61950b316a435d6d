// Package config provides configuration loading and validation.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/spf13/viper"

	"github.com/fd1az/tokenprice/internal/apperror"
	"github.com/fd1az/tokenprice/internal/asset"
)

// EnvPrefix namespaces every environment override (TP_ETHEREUM_HTTP_URL, ...).
const EnvPrefix = "TP"

// Config holds all application configuration.
type Config struct {
	App        AppConfig        `mapstructure:"app"`
	Ethereum   EthereumConfig   `mapstructure:"ethereum"`
	Tokens     TokensConfig     `mapstructure:"tokens"`
	Dex        DexConfig        `mapstructure:"dex"`
	Aggregator AggregatorConfig `mapstructure:"aggregator"`
	Server     ServerConfig     `mapstructure:"server"`
	Telemetry  TelemetryConfig  `mapstructure:"telemetry"`
}

// AppConfig holds general application settings.
type AppConfig struct {
	Name        string `mapstructure:"name"`
	Environment string `mapstructure:"environment"`
	LogLevel    string `mapstructure:"log_level"`
}

// EthereumConfig holds JSON-RPC node configuration.
type EthereumConfig struct {
	HTTPURL        string               `mapstructure:"http_url"`
	ChainID        uint64               `mapstructure:"chain_id"`
	CircuitBreaker CircuitBreakerConfig `mapstructure:"circuit_breaker"`
}

// CircuitBreakerConfig guards the RPC endpoint against outages.
type CircuitBreakerConfig struct {
	Enabled             bool          `mapstructure:"enabled"`
	ConsecutiveFailures uint32        `mapstructure:"consecutive_failures"`
	Timeout             time.Duration `mapstructure:"timeout"`
	Interval            time.Duration `mapstructure:"interval"`
}

// TokenConfig describes a well-known token.
type TokenConfig struct {
	Address  string `mapstructure:"address"`
	Symbol   string `mapstructure:"symbol"`
	Name     string `mapstructure:"name"`
	Decimals uint8  `mapstructure:"decimals"`
}

// Asset returns the token as an asset. Call after Validate.
func (t TokenConfig) Asset() *asset.Asset {
	return asset.NewAsset(common.HexToAddress(t.Address), t.Symbol, t.Name, t.Decimals)
}

// TokensConfig holds the quote tokens and the pegged stables used as
// intermediate hops.
type TokensConfig struct {
	Native  TokenConfig `mapstructure:"native"`
	Stable  TokenConfig `mapstructure:"stable"`
	PeggedA TokenConfig `mapstructure:"pegged_a"`
	PeggedB TokenConfig `mapstructure:"pegged_b"`
}

// All returns the tokens in native, stable, pegged A, pegged B order.
func (t TokensConfig) All() []TokenConfig {
	return []TokenConfig{t.Native, t.Stable, t.PeggedA, t.PeggedB}
}

// DexConfig holds PancakeSwap contract addresses and V3 settings.
type DexConfig struct {
	RouterAddress  string            `mapstructure:"router_address"`
	FactoryAddress string            `mapstructure:"factory_address"`
	QuoterAddress  string            `mapstructure:"quoter_address"`
	V3Strategy     string            `mapstructure:"v3_strategy"`
	V3Enabled      bool              `mapstructure:"v3_enabled"`
	KnownPools     []KnownPoolConfig `mapstructure:"known_pools"`
}

// KnownPoolConfig pins a V3 pool for a token pair.
type KnownPoolConfig struct {
	TokenA string `mapstructure:"token_a"`
	TokenB string `mapstructure:"token_b"`
	Pool   string `mapstructure:"pool"`
}

// RouterAddressHex returns the router address as common.Address.
func (c *DexConfig) RouterAddressHex() common.Address {
	return common.HexToAddress(c.RouterAddress)
}

// FactoryAddressHex returns the factory address as common.Address.
func (c *DexConfig) FactoryAddressHex() common.Address {
	return common.HexToAddress(c.FactoryAddress)
}

// QuoterAddressHex returns the quoter address as common.Address.
func (c *DexConfig) QuoterAddressHex() common.Address {
	return common.HexToAddress(c.QuoterAddress)
}

// AggregatorConfig configures the third-party price aggregator.
type AggregatorConfig struct {
	BaseURL string `mapstructure:"base_url"`
	ChainID string `mapstructure:"chain_id"`

	// RequestsPerMinute throttles lookups; negative disables throttling.
	RequestsPerMinute int `mapstructure:"requests_per_minute"`
}

// ServerConfig configures serve mode.
type ServerConfig struct {
	Port int `mapstructure:"port"`
}

// TelemetryConfig holds observability configuration.
type TelemetryConfig struct {
	Enabled        bool   `mapstructure:"enabled"`
	ServiceName    string `mapstructure:"service_name"`
	TraceProvider  string `mapstructure:"trace_provider"`
	OTLPEndpoint   string `mapstructure:"otlp_endpoint"`
	OTLPHeaders    string `mapstructure:"otlp_headers"`
	PrometheusPort int    `mapstructure:"prometheus_port"`
}

// Load loads configuration from file and environment variables.
func Load(configPath string) (*Config, error) {
	v := viper.New()

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	bindEnvVars(v)
	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, apperror.New(apperror.CodeConfigurationError,
				apperror.WithCause(err),
				apperror.WithContext("read config"))
		}
		// Config file not found is OK, use env vars
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, apperror.New(apperror.CodeConfigurationError,
			apperror.WithCause(err),
			apperror.WithContext("unmarshal config"))
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func bindEnvVars(v *viper.Viper) {
	// Conventional names accepted besides the TP_ prefixed ones.
	_ = v.BindEnv("app.log_level", "TP_APP_LOG_LEVEL", "LOG_LEVEL")
	_ = v.BindEnv("app.environment", "TP_APP_ENVIRONMENT", "ENVIRONMENT")
	_ = v.BindEnv("ethereum.http_url", "TP_ETHEREUM_HTTP_URL", "BSC_RPC_URL")
	_ = v.BindEnv("telemetry.service_name", "TP_TELEMETRY_SERVICE_NAME", "OTEL_SERVICE_NAME")
	_ = v.BindEnv("telemetry.otlp_endpoint", "TP_TELEMETRY_OTLP_ENDPOINT", "OTEL_EXPORTER_OTLP_ENDPOINT")
	_ = v.BindEnv("telemetry.otlp_headers", "TP_TELEMETRY_OTLP_HEADERS", "OTEL_EXPORTER_OTLP_HEADERS")
}

func setDefaults(v *viper.Viper) {
	// App defaults
	v.SetDefault("app.name", "tokenprice")
	v.SetDefault("app.environment", "development")
	v.SetDefault("app.log_level", "info")

	// BNB Smart Chain mainnet
	v.SetDefault("ethereum.http_url", "https://bsc-dataseed.bnbchain.org")
	v.SetDefault("ethereum.chain_id", asset.ChainIDBSC)
	v.SetDefault("ethereum.circuit_breaker.enabled", true)
	v.SetDefault("ethereum.circuit_breaker.consecutive_failures", 5)
	v.SetDefault("ethereum.circuit_breaker.timeout", "15s")
	v.SetDefault("ethereum.circuit_breaker.interval", "60s")

	setTokenDefault(v, "tokens.native", asset.WBNB)
	setTokenDefault(v, "tokens.stable", asset.USDT)
	setTokenDefault(v, "tokens.pegged_a", asset.BUSD)
	setTokenDefault(v, "tokens.pegged_b", asset.USDC)

	// PancakeSwap
	v.SetDefault("dex.router_address", "0x10ED43C718714eb63d5aA57B78B54704E256024E")
	v.SetDefault("dex.factory_address", "0x0BFbCF9fa4f9C56B0F40a671Ad40E0805A091865")
	v.SetDefault("dex.quoter_address", "0xB048Bbc1Ee6b733FFfCFb9e9CeF7375518e25997")
	v.SetDefault("dex.v3_strategy", "pool_state")
	v.SetDefault("dex.v3_enabled", true)
	v.SetDefault("dex.known_pools", []map[string]string{
		{
			"token_a": asset.AddrWBNB.Hex(),
			"token_b": asset.AddrUSDT.Hex(),
			"pool":    "0x36696169C63e42cd08ce11f5deeBbCeBae652050",
		},
	})

	v.SetDefault("aggregator.base_url", "https://api.dexscreener.com")
	v.SetDefault("aggregator.chain_id", "")
	v.SetDefault("aggregator.requests_per_minute", 300)

	v.SetDefault("server.port", 8080)

	// Telemetry defaults
	v.SetDefault("telemetry.enabled", false)
	v.SetDefault("telemetry.service_name", "tokenprice")
	v.SetDefault("telemetry.trace_provider", "EMPTY_PROVIDER")
	v.SetDefault("telemetry.prometheus_port", 9090)
}

func setTokenDefault(v *viper.Viper, key string, a *asset.Asset) {
	v.SetDefault(key+".address", a.Address().Hex())
	v.SetDefault(key+".symbol", a.Symbol())
	v.SetDefault(key+".name", a.Name())
	v.SetDefault(key+".decimals", a.Decimals())
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if c.Ethereum.HTTPURL == "" {
		return invalid("ethereum.http_url is required")
	}

	tokens := map[string]TokenConfig{
		"tokens.native":   c.Tokens.Native,
		"tokens.stable":   c.Tokens.Stable,
		"tokens.pegged_a": c.Tokens.PeggedA,
		"tokens.pegged_b": c.Tokens.PeggedB,
	}
	for key, t := range tokens {
		if err := validateAddress(key+".address", t.Address); err != nil {
			return err
		}
		if t.Symbol == "" {
			return invalid(key + ".symbol is required")
		}
	}
	if strings.EqualFold(c.Tokens.Native.Address, c.Tokens.Stable.Address) {
		return invalid("tokens.native and tokens.stable must differ")
	}

	for key, addr := range map[string]string{
		"dex.router_address":  c.Dex.RouterAddress,
		"dex.factory_address": c.Dex.FactoryAddress,
		"dex.quoter_address":  c.Dex.QuoterAddress,
	} {
		if err := validateAddress(key, addr); err != nil {
			return err
		}
	}
	for i, p := range c.Dex.KnownPools {
		prefix := fmt.Sprintf("dex.known_pools[%d]", i)
		for field, addr := range map[string]string{"token_a": p.TokenA, "token_b": p.TokenB, "pool": p.Pool} {
			if err := validateAddress(prefix+"."+field, addr); err != nil {
				return err
			}
		}
	}

	if c.Aggregator.BaseURL == "" {
		return invalid("aggregator.base_url is required")
	}
	return nil
}

func validateAddress(key, raw string) error {
	if _, err := asset.ParseAddress(raw); err != nil {
		return apperror.New(apperror.CodeConfigurationError,
			apperror.WithCause(err),
			apperror.WithContext(fmt.Sprintf("invalid %s: %q", key, raw)))
	}
	return nil
}

func invalid(msg string) error {
	return apperror.New(apperror.CodeConfigurationError, apperror.WithContext(msg))
}
