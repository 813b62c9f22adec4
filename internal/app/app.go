// Package app assembles the gateway's components from configuration. Both
// binaries build on it so they always agree on wiring.
package app

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"math/big"

	"github.com/josh-kwaku/cryptogate/internal/alias"
	"github.com/josh-kwaku/cryptogate/internal/config"
	"github.com/josh-kwaku/cryptogate/internal/metrics"
	"github.com/josh-kwaku/cryptogate/internal/notify"
	"github.com/josh-kwaku/cryptogate/internal/repository"
	"github.com/josh-kwaku/cryptogate/internal/service"
	"github.com/josh-kwaku/cryptogate/internal/service/payment"
	"github.com/josh-kwaku/cryptogate/internal/view"
	"github.com/josh-kwaku/cryptogate/internal/wallet"
	"github.com/josh-kwaku/cryptogate/internal/wallet/ethereum"
	"github.com/josh-kwaku/cryptogate/internal/wallet/solana"
)

type App struct {
	Payments    *repository.PaymentRepository
	Idempotency *repository.IdempotencyRepository
	Wallets     *wallet.Registry
	Codec       *alias.Codec
	Projector   *view.Projector
	Service     *payment.Service
	Monitor     *service.Monitor
}

func New(ctx context.Context, cfg *config.Config, db *sql.DB, recorder metrics.Recorder, logger *slog.Logger) (*App, error) {
	codec, err := alias.NewCodec(cfg.AliasSecret)
	if err != nil {
		return nil, fmt.Errorf("app.New: %w", err)
	}

	wallets, err := NewRegistry(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("app.New: %w", err)
	}

	payments := repository.NewPaymentRepository(db)
	projector := view.NewProjector(codec)
	dispatcher := notify.NewDispatcher(projector, notify.NewIPNSender(cfg.IPNSecret, cfg.IPNTimeout))

	svc := payment.NewService(payments, wallets, codec, dispatcher, recorder, payment.Config{
		PaymentTimeout:    cfg.PaymentTimeout,
		SlippageTolerance: cfg.SlippageTolerance,
		ChainTimeout:      cfg.ChainTimeout,
		SweepTimeout:      cfg.SweepTimeout,
	})

	monitor := service.NewMonitor(payments, svc, logger, service.MonitorConfig{
		Interval:        cfg.MonitorInterval,
		ResweepInterval: cfg.ResweepInterval,
		Concurrency:     cfg.MonitorConcurrency,
		BatchSize:       cfg.MonitorBatchSize,
		ChainRPS:        cfg.ChainRPS,
		MaxRetries:      cfg.MonitorMaxRetries,
		InitialBackoff:  cfg.MonitorBackoff,
		ResweepGrace:    cfg.ResweepGrace,
	})

	return &App{
		Payments:    payments,
		Idempotency: repository.NewIdempotencyRepository(db),
		Wallets:     wallets,
		Codec:       codec,
		Projector:   projector,
		Service:     svc,
		Monitor:     monitor,
	}, nil
}

// NewRegistry registers a wallet for every chain that has an RPC URL.
func NewRegistry(ctx context.Context, cfg *config.Config) (*wallet.Registry, error) {
	reg := wallet.NewRegistry()

	if cfg.Solana.RPCURL != "" {
		w := solana.NewFromURL(cfg.Solana.RPCURL, solana.Config{
			FeeLamports:      cfg.Solana.FeeLamports,
			MinSweepLamports: cfg.Solana.MinSweepLamports,
		})
		if err := reg.Register(w, cfg.Solana.AdminWallet); err != nil {
			return nil, fmt.Errorf("NewRegistry: %w", err)
		}
	}

	if cfg.Ethereum.RPCURL != "" {
		minSweep, ok := new(big.Int).SetString(cfg.Ethereum.MinSweepWei, 10)
		if !ok {
			return nil, fmt.Errorf("NewRegistry: invalid ETH_MIN_SWEEP_WEI %q", cfg.Ethereum.MinSweepWei)
		}
		w, err := ethereum.Dial(ctx, cfg.Ethereum.RPCURL, ethereum.Config{
			Confirmations: cfg.Ethereum.Confirmations,
			MinSweepWei:   minSweep,
		})
		if err != nil {
			return nil, fmt.Errorf("NewRegistry: %w", err)
		}
		if err := reg.Register(w, cfg.Ethereum.AdminWallet); err != nil {
			return nil, fmt.Errorf("NewRegistry: %w", err)
		}
	}

	return reg, nil
}
