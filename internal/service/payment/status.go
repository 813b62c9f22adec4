package payment

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/josh-kwaku/cryptogate/internal/alias"
	"github.com/josh-kwaku/cryptogate/internal/domain"
)

// GetStatus looks a payment up by raw id or by alias. It never touches the
// chain or writes. Malformed identifiers read the same as unknown ones.
func (s *Service) GetStatus(ctx context.Context, idOrAlias string) (*domain.Payment, error) {
	id, err := s.resolveID(idOrAlias)
	if err != nil {
		return nil, fmt.Errorf("GetStatus: %w", err)
	}

	p, err := s.lookup(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("GetStatus: %w", err)
	}
	return p, nil
}

// GetInvoice resolves the payee-facing invoice address. The alias must decode
// and the currency in the path must match the payment.
func (s *Service) GetInvoice(ctx context.Context, currency domain.Currency, a string) (*domain.Payment, error) {
	id, err := s.aliases.Decode(a)
	if err != nil {
		return nil, fmt.Errorf("GetInvoice: %w", domain.ErrPaymentNotFound)
	}

	p, err := s.lookup(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("GetInvoice: %w", err)
	}
	if p.Currency != currency {
		return nil, fmt.Errorf("GetInvoice: %w", domain.ErrPaymentNotFound)
	}
	return p, nil
}

func (s *Service) GetByExtraID(ctx context.Context, extraID string) ([]domain.Payment, error) {
	if extraID == "" {
		return nil, fmt.Errorf("GetByExtraID: %w", domain.ErrInvalidRequest)
	}

	payments, err := s.payments.GetByExtraID(ctx, extraID)
	if err != nil {
		return nil, fmt.Errorf("GetByExtraID: %w", err)
	}
	return payments, nil
}

func (s *Service) resolveID(idOrAlias string) (uuid.UUID, error) {
	if alias.IsAlias(idOrAlias) {
		id, err := s.aliases.Decode(idOrAlias)
		if err != nil {
			return uuid.Nil, domain.ErrPaymentNotFound
		}
		return id, nil
	}

	id, err := uuid.Parse(idOrAlias)
	if err != nil {
		return uuid.Nil, domain.ErrPaymentNotFound
	}
	return id, nil
}

func (s *Service) lookup(ctx context.Context, id uuid.UUID) (*domain.Payment, error) {
	p, err := s.payments.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrPaymentNotFound
		}
		return nil, err
	}
	return p, nil
}
