package payment

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/josh-kwaku/cryptogate/internal/domain"
	"github.com/josh-kwaku/cryptogate/internal/logging"
	"github.com/josh-kwaku/cryptogate/internal/wallet"
)

type CreateRequest struct {
	Currency           domain.Currency
	Amount             decimal.Decimal
	ExtraID            *string
	IPNCallbackURL     *string
	InvoiceCallbackURL *string
}

// CreatePayment provisions a fresh receiving address and stores a WAITING
// payment. Nothing is persisted if the currency is unknown or key generation
// fails.
func (s *Service) CreatePayment(ctx context.Context, req CreateRequest) (*domain.Payment, error) {
	entry, err := s.wallets.Get(req.Currency)
	if err != nil {
		return nil, fmt.Errorf("CreatePayment: %w", err)
	}

	if !req.Amount.IsPositive() {
		return nil, fmt.Errorf("CreatePayment: %w", domain.ErrInvalidAmount)
	}

	id := uuid.New()
	creds, err := entry.Wallet.Generate(ctx, wallet.GenerateRequest{PaymentID: id, Amount: req.Amount})
	if err != nil {
		if !errors.Is(err, domain.ErrKeyGeneration) {
			err = fmt.Errorf("%w: %w", domain.ErrKeyGeneration, err)
		}
		return nil, fmt.Errorf("CreatePayment: %w", err)
	}

	now := s.now().UTC()
	p := &domain.Payment{
		ID:                 id,
		Currency:           req.Currency,
		PublicKey:          creds.PublicKey,
		PrivateKey:         creds.PrivateKey,
		Memo:               creds.Memo,
		WalletIndex:        creds.WalletIndex,
		Amount:             req.Amount,
		AmountPaid:         decimal.Zero,
		Status:             domain.PaymentStatusWaiting,
		ExtraID:            req.ExtraID,
		IPNCallbackURL:     req.IPNCallbackURL,
		InvoiceCallbackURL: req.InvoiceCallbackURL,
		Version:            1,
		CreatedAt:          now,
		UpdatedAt:          now,
		ExpiresAt:          now.Add(s.config.PaymentTimeout),
	}

	if err := s.payments.Create(ctx, p); err != nil {
		return nil, fmt.Errorf("CreatePayment: %w", err)
	}

	s.metrics.PaymentCreated(string(p.Currency))
	_, log := logging.WithPayment(ctx, p.ID, string(p.Currency))
	log.Info("payment created",
		"amount", p.Amount.String(),
		"public_key", p.PublicKey,
		"expires_at", p.ExpiresAt,
	)

	return p, nil
}
