// Package config loads service configuration from the environment.
package config

import (
	"errors"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

var (
	errRPCRequired   = errors.New("solana rpc url is required")
	errStoreRequired = errors.New("database url is required unless demo mode is enabled")
	errFiatRate      = errors.New("mock sol rate must be positive")
)

// Config holds the configuration data.
type Config struct {
	ListenAddr   string `envconfig:"LISTEN_ADDR" default:":4000"`
	SolanaRPCURL string `envconfig:"SOLANA_RPC_URL" default:"https://api.devnet.solana.com"`
	DatabaseURL  string `envconfig:"DATABASE_URL"`
	DBMaxConns   int32  `envconfig:"DB_MAX_CONNS" default:"8"`
	Network      string `envconfig:"SOLANA_NETWORK" default:"devnet"`

	DefaultFiat      string  `envconfig:"DEFAULT_FIAT" default:"GBP"`
	MockSOLGBPRate   float64 `envconfig:"MOCK_SOL_GBP_RATE" default:"120"`
	MockSOLUSDRate   float64 `envconfig:"MOCK_SOL_USD_RATE" default:"150"`
	MockRateGBPToPKR float64 `envconfig:"MOCK_RATE_GBP_TO_PKR" default:"360"`

	// DemoMode authorizes running without a database: writes are accepted
	// and dropped, reads return empty. Never enable outside demos.
	DemoMode bool `envconfig:"DEMO_MODE" default:"false"`

	// AllowUnfilteredList exposes /transactions without a publicKey filter.
	// Operator/debug visibility only; off by default.
	AllowUnfilteredList bool `envconfig:"ALLOW_UNFILTERED_LIST" default:"false"`

	// StrictAddressCheck additionally rejects off-curve account keys.
	StrictAddressCheck bool `envconfig:"STRICT_ADDRESS_CHECK" default:"false"`

	RPCTimeout          time.Duration `envconfig:"RPC_TIMEOUT" default:"10s"`
	ConfirmProbeTimeout time.Duration `envconfig:"CONFIRM_PROBE_TIMEOUT" default:"3s"`

	ListLimit int `envconfig:"LIST_LIMIT" default:"200"`

	CORSOrigins []string `envconfig:"CORS_ORIGINS" default:"http://localhost:5173"`
}

// Load reads the config from a .env file (if present) and the environment.
func Load() (*Config, error) {
	// Real environment variables win over .env entries.
	_ = godotenv.Load()

	cfg := &Config{}
	if err := envconfig.Process("", cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate returns an error if config is invalid.
func (c *Config) Validate() error {
	if c.SolanaRPCURL == "" {
		return errRPCRequired
	}

	if c.DatabaseURL == "" && !c.DemoMode {
		return errStoreRequired
	}

	if c.MockSOLGBPRate <= 0 || c.MockSOLUSDRate <= 0 {
		return errFiatRate
	}

	return nil
}
