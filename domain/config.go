package domain

import "time"

// Config is the root process configuration, loaded once via viper from a
// config file plus environment overrides, and treated as immutable for the
// process lifetime.
type Config struct {
	// ServerAddress is the address the HTTP server listens on, e.g. ":8080".
	ServerAddress string `mapstructure:"server-address"`

	Chain    ChainConfig    `mapstructure:"chain"`
	Router   RouterConfig   `mapstructure:"router"`
	Platform PlatformConfig `mapstructure:"platform-fee"`
	Logger   LoggerConfig   `mapstructure:"logger"`
	CORS     CORSConfig     `mapstructure:"cors"`

	// PoolsFile and TokensFile are paths to the JSON catalog files loaded
	// at startup by the (external) pool-discovery collaborator.
	PoolsFile  string `mapstructure:"pools-file"`
	TokensFile string `mapstructure:"tokens-file"`
}

// ChainConfig names the two chain RPC base URLs from the CLI/env surface,
// plus the two fixed application IDs the adapters need: HumbleSwap's
// padding beacon and Nomadex's factory.
type ChainConfig struct {
	NodeURL    string `mapstructure:"node-url"`
	IndexerURL string `mapstructure:"indexer-url"`

	BeaconAppId  uint64 `mapstructure:"beacon-app-id"`
	FactoryAppId uint64 `mapstructure:"factory-app-id"`
}

// RouterConfig configures route finding, splitting, and the per-request
// concurrency and deadline model.
type RouterConfig struct {
	// MaxHops bounds route length (fixed at 2 by default, but it is
	// configurable for testing).
	MaxHops int `mapstructure:"max-hops"`

	// MaxConcurrentChainReads bounds the pool-state pre-fetch fan-out.
	MaxConcurrentChainReads int `mapstructure:"max-concurrent-chain-reads"`

	// PlanningTimeout is the deadline propagated to every chain read issued
	// during one planning call.
	PlanningTimeout time.Duration `mapstructure:"planning-timeout"`

	// DefaultSlippageBps is used when a request omits slippageTolerance.
	DefaultSlippageBps uint32 `mapstructure:"default-slippage-bps"`
}

// PlatformConfig configures the optional fee skim on multi-pool gains.
type PlatformConfig struct {
	FeeBps  uint32 `mapstructure:"fee-bps"`
	Address string `mapstructure:"fee-address"`
}

// LoggerConfig configures the process logger.
type LoggerConfig struct {
	IsProduction bool   `mapstructure:"is-production"`
	Level        string `mapstructure:"level"`
}

// CORSConfig configures the CORS middleware.
type CORSConfig struct {
	AllowedHeaders string `mapstructure:"allowed-headers"`
	AllowedMethods string `mapstructure:"allowed-methods"`
	AllowedOrigin  string `mapstructure:"allowed-origin"`
}

// DefaultRouterConfig holds the fixed defaults (2-hop routes).
var DefaultRouterConfig = RouterConfig{
	MaxHops:                 2,
	MaxConcurrentChainReads: 16,
	PlanningTimeout:         3 * time.Second,
	DefaultSlippageBps:      100,
}
