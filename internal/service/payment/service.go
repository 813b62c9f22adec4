package payment

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/josh-kwaku/cryptogate/internal/domain"
	"github.com/josh-kwaku/cryptogate/internal/metrics"
	"github.com/josh-kwaku/cryptogate/internal/wallet"
)

type paymentStore interface {
	Create(ctx context.Context, p *domain.Payment) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Payment, error)
	GetByExtraID(ctx context.Context, extraID string) ([]domain.Payment, error)
	Update(ctx context.Context, id uuid.UUID, expectedVersion int64, upd domain.PaymentUpdate) error
}

type walletRegistry interface {
	Get(c domain.Currency) (wallet.Entry, error)
}

type aliasDecoder interface {
	Decode(alias string) (uuid.UUID, error)
}

// Notifier is told about a payment after one of its status changes has been
// committed. Implementations must not block for long.
type Notifier interface {
	PaymentChanged(ctx context.Context, p *domain.Payment)
}

type Config struct {
	PaymentTimeout    time.Duration
	SlippageTolerance decimal.Decimal
	ChainTimeout      time.Duration
	SweepTimeout      time.Duration
}

type Service struct {
	payments paymentStore
	wallets  walletRegistry
	aliases  aliasDecoder
	notifier Notifier
	metrics  metrics.Recorder
	config   Config
	locks    *keyedMutex
	now      func() time.Time
}

func NewService(
	payments paymentStore,
	wallets walletRegistry,
	aliases aliasDecoder,
	notifier Notifier,
	recorder metrics.Recorder,
	cfg Config,
) *Service {
	if recorder == nil {
		recorder = metrics.Noop{}
	}
	return &Service{
		payments: payments,
		wallets:  wallets,
		aliases:  aliases,
		notifier: notifier,
		metrics:  recorder,
		config:   cfg,
		locks:    newKeyedMutex(),
		now:      time.Now,
	}
}
