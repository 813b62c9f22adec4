package config

import (
	"fmt"
	"time"

	env "github.com/caarlos0/env/v11"
	"github.com/shopspring/decimal"
)

type Config struct {
	DatabaseURL string `env:"DATABASE_URL,required,notEmpty"`
	APIKey      string `env:"API_KEY,required,notEmpty"`
	AliasSecret string `env:"ALIAS_SECRET,required,notEmpty"`
	IPNSecret   string `env:"IPN_SECRET,required,notEmpty"`
	Port        int    `env:"PORT" envDefault:"8080"`
	LogLevel    string `env:"LOG_LEVEL" envDefault:"info"`
	AppEnv      string `env:"APP_ENV" envDefault:"production"`

	PaymentTimeout    time.Duration   `env:"PAYMENT_TIMEOUT" envDefault:"20m"`
	SlippageTolerance decimal.Decimal `env:"TRANSACTION_SLIPPAGE_TOLERANCE" envDefault:"0.02"`

	MonitorInterval    time.Duration `env:"MONITOR_INTERVAL" envDefault:"10s"`
	ResweepInterval    time.Duration `env:"RESWEEP_INTERVAL" envDefault:"1m"`
	MonitorConcurrency int           `env:"MONITOR_CONCURRENCY" envDefault:"8"`
	MonitorBatchSize   int           `env:"MONITOR_BATCH_SIZE" envDefault:"200"`
	MonitorMaxRetries  uint64        `env:"MONITOR_MAX_RETRIES" envDefault:"3"`
	MonitorBackoff     time.Duration `env:"MONITOR_INITIAL_BACKOFF" envDefault:"500ms"`
	ResweepGrace       time.Duration `env:"RESWEEP_GRACE" envDefault:"2m"`
	ChainTimeout       time.Duration `env:"CHAIN_TIMEOUT" envDefault:"10s"`
	SweepTimeout       time.Duration `env:"SWEEP_TIMEOUT" envDefault:"30s"`
	IPNTimeout         time.Duration `env:"IPN_TIMEOUT" envDefault:"5s"`
	ChainRPS           float64       `env:"CHAIN_RPS" envDefault:"10"`

	Solana   SolanaConfig   `envPrefix:"SOL_"`
	Ethereum EthereumConfig `envPrefix:"ETH_"`

	DBMaxOpenConns     int `env:"DB_MAX_OPEN_CONNS" envDefault:"25"`
	DBMaxIdleConns     int `env:"DB_MAX_IDLE_CONNS" envDefault:"10"`
	DBConnMaxLifetimeS int `env:"DB_CONN_MAX_LIFETIME_S" envDefault:"300"`
	DBConnMaxIdleTimeS int `env:"DB_CONN_MAX_IDLE_TIME_S" envDefault:"60"`
	DBPingAttempts     int `env:"DB_PING_ATTEMPTS" envDefault:"30"`
}

// SolanaConfig enables SOL payments when RPCURL is set.
type SolanaConfig struct {
	RPCURL           string `env:"RPC_URL"`
	AdminWallet      string `env:"ADMIN_WALLET"`
	FeeLamports      uint64 `env:"FEE_LAMPORTS" envDefault:"5000"`
	MinSweepLamports uint64 `env:"MIN_SWEEP_LAMPORTS" envDefault:"0"`
}

// EthereumConfig enables ETH payments when RPCURL is set.
type EthereumConfig struct {
	RPCURL        string `env:"RPC_URL"`
	AdminWallet   string `env:"ADMIN_WALLET"`
	Confirmations uint64 `env:"CONFIRMATIONS" envDefault:"12"`
	MinSweepWei   string `env:"MIN_SWEEP_WEI" envDefault:"0"`
}

func Load() (*Config, error) {
	cfg, err := env.ParseAs[Config]()
	if err != nil {
		return nil, fmt.Errorf("config.Load: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config.Load: %w", err)
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	if c.SlippageTolerance.IsNegative() || c.SlippageTolerance.GreaterThanOrEqual(decimal.NewFromInt(1)) {
		return fmt.Errorf("TRANSACTION_SLIPPAGE_TOLERANCE must be in [0, 1), got %s", c.SlippageTolerance)
	}
	if c.PaymentTimeout <= 0 {
		return fmt.Errorf("PAYMENT_TIMEOUT must be positive")
	}
	if c.ResweepGrace <= c.SweepTimeout {
		return fmt.Errorf("RESWEEP_GRACE (%s) must exceed SWEEP_TIMEOUT (%s)", c.ResweepGrace, c.SweepTimeout)
	}
	if c.Solana.RPCURL != "" && c.Solana.AdminWallet == "" {
		return fmt.Errorf("SOL_ADMIN_WALLET is required when SOL_RPC_URL is set")
	}
	if c.Ethereum.RPCURL != "" && c.Ethereum.AdminWallet == "" {
		return fmt.Errorf("ETH_ADMIN_WALLET is required when ETH_RPC_URL is set")
	}
	if c.Solana.RPCURL == "" && c.Ethereum.RPCURL == "" {
		return fmt.Errorf("at least one of SOL_RPC_URL or ETH_RPC_URL must be set")
	}
	return nil
}
