package testutil

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/josh-kwaku/cryptogate/internal/domain"
)

// NewPayment builds a WAITING SOL payment for amount that expires in ttl.
// Times are truncated to microseconds to survive a postgres round trip.
func NewPayment(amount string, ttl time.Duration) *domain.Payment {
	now := time.Now().UTC().Truncate(time.Microsecond)
	return &domain.Payment{
		ID:         uuid.New(),
		Currency:   domain.CurrencySOL,
		PublicKey:  "addr-" + uuid.NewString()[:8],
		PrivateKey: domain.NewPrivateKey("secret-" + uuid.NewString()),
		Amount:     decimal.RequireFromString(amount),
		AmountPaid: decimal.Zero,
		Status:     domain.PaymentStatusWaiting,
		CreatedAt:  now,
		UpdatedAt:  now,
		ExpiresAt:  now.Add(ttl),
	}
}

func StringPtr(s string) *string { return &s }

func StatusPtr(s domain.PaymentStatus) *domain.PaymentStatus { return &s }

func DecimalPtr(s string) *decimal.Decimal {
	d := decimal.RequireFromString(s)
	return &d
}
