package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type Currency string

const (
	CurrencySOL Currency = "SOL"
	CurrencyETH Currency = "ETH"
)

type PaymentStatus string

const (
	PaymentStatusWaiting       PaymentStatus = "WAITING"
	PaymentStatusConfirming    PaymentStatus = "CONFIRMING"
	PaymentStatusFinished      PaymentStatus = "FINISHED"
	PaymentStatusPartiallyPaid PaymentStatus = "PARTIALLY_PAID"
	PaymentStatusExpired       PaymentStatus = "EXPIRED"
	PaymentStatusFailed        PaymentStatus = "FAILED"
)

// IsTerminal reports whether no further transition is possible. FAILED is not
// terminal: the re-sweep path drives it back to FINISHED.
func (s PaymentStatus) IsTerminal() bool {
	switch s {
	case PaymentStatusFinished, PaymentStatusPartiallyPaid, PaymentStatusExpired:
		return true
	}
	return false
}

// PayeeFacing is the status a payee sees. A FAILED payment was paid in full
// and only its payout is pending, so it reads as FINISHED.
func (s PaymentStatus) PayeeFacing() PaymentStatus {
	if s == PaymentStatusFailed {
		return PaymentStatusFinished
	}
	return s
}

// OpenStatuses are the states the monitor polls for incoming funds.
var OpenStatuses = []PaymentStatus{PaymentStatusWaiting, PaymentStatusConfirming}

type Payment struct {
	ID                 uuid.UUID
	Currency           Currency
	PublicKey          string
	PrivateKey         PrivateKey
	Memo               *string
	WalletIndex        *int
	Amount             decimal.Decimal
	AmountPaid         decimal.Decimal
	Status             PaymentStatus
	ExtraID            *string
	IPNCallbackURL     *string
	InvoiceCallbackURL *string
	PayoutTxHash       *string
	Version            int64
	CreatedAt          time.Time
	UpdatedAt          time.Time
	ExpiresAt          time.Time
}

// PaymentUpdate carries the mutable fields of a payment. Nil fields are left
// untouched by the store.
type PaymentUpdate struct {
	Status       *PaymentStatus
	AmountPaid   *decimal.Decimal
	PayoutTxHash *string
}
