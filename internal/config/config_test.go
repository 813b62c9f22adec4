package config

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setRequired(t *testing.T) {
	t.Helper()
	t.Setenv("DATABASE_URL", "postgres://localhost/cryptogate")
	t.Setenv("API_KEY", "key")
	t.Setenv("ALIAS_SECRET", "alias-secret-0123456789")
	t.Setenv("IPN_SECRET", "ipn-secret")
	t.Setenv("SOL_RPC_URL", "http://localhost:8899")
	t.Setenv("SOL_ADMIN_WALLET", "AdminSoL")
}

func TestLoad_Defaults(t *testing.T) {
	setRequired(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Port)
	assert.Equal(t, 20*time.Minute, cfg.PaymentTimeout)
	assert.True(t, decimal.RequireFromString("0.02").Equal(cfg.SlippageTolerance))
	assert.Equal(t, "AdminSoL", cfg.Solana.AdminWallet)
	assert.Equal(t, uint64(5000), cfg.Solana.FeeLamports)
	assert.Equal(t, uint64(12), cfg.Ethereum.Confirmations)
	assert.Empty(t, cfg.Ethereum.RPCURL)
	assert.Equal(t, 500*time.Millisecond, cfg.MonitorBackoff)
	assert.Equal(t, 2*time.Minute, cfg.ResweepGrace)
}

func TestLoad_Overrides(t *testing.T) {
	setRequired(t)
	t.Setenv("PAYMENT_TIMEOUT", "5m")
	t.Setenv("TRANSACTION_SLIPPAGE_TOLERANCE", "0.01")
	t.Setenv("ETH_RPC_URL", "http://localhost:8545")
	t.Setenv("ETH_ADMIN_WALLET", "0xadmin")
	t.Setenv("ETH_CONFIRMATIONS", "3")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 5*time.Minute, cfg.PaymentTimeout)
	assert.True(t, decimal.RequireFromString("0.01").Equal(cfg.SlippageTolerance))
	assert.Equal(t, uint64(3), cfg.Ethereum.Confirmations)
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{name: "slippage too high", env: map[string]string{"TRANSACTION_SLIPPAGE_TOLERANCE": "1"}},
		{name: "negative slippage", env: map[string]string{"TRANSACTION_SLIPPAGE_TOLERANCE": "-0.1"}},
		{name: "eth without admin", env: map[string]string{"ETH_RPC_URL": "http://localhost:8545"}},
		{name: "no chains", env: map[string]string{"SOL_RPC_URL": ""}},
		{name: "missing api key", env: map[string]string{"API_KEY": ""}},
		{name: "resweep grace within sweep timeout", env: map[string]string{"RESWEEP_GRACE": "20s", "SWEEP_TIMEOUT": "30s"}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			setRequired(t)
			for k, v := range tc.env {
				t.Setenv(k, v)
			}
			_, err := Load()
			assert.Error(t, err)
		})
	}
}
