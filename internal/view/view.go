// Package view projects payments into the shapes that leave the process. It is
// the only path from domain.Payment to a response body, and none of its types
// has a field that can hold a private key.
package view

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/josh-kwaku/cryptogate/internal/domain"
)

// TimestampFormat is ISO 8601 in UTC with millisecond precision.
const TimestampFormat = "2006-01-02T15:04:05.000Z"

type aliasEncoder interface {
	Encode(id uuid.UUID) string
}

type PublicView struct {
	ID                 string          `json:"id"`
	PublicKey          string          `json:"publicKey"`
	Amount             decimal.Decimal `json:"amount"`
	AmountPaid         decimal.Decimal `json:"amountPaid"`
	Status             string          `json:"status"`
	Currency           string          `json:"currency"`
	InvoiceURL         string          `json:"invoiceUrl"`
	ExpiresAt          string          `json:"expiresAt"`
	CreatedAt          string          `json:"createdAt"`
	UpdatedAt          string          `json:"updatedAt"`
	ExtraID            *string         `json:"extraId,omitempty"`
	IPNCallbackURL     *string         `json:"ipnCallbackUrl,omitempty"`
	InvoiceCallbackURL *string         `json:"invoiceCallbackUrl,omitempty"`
	PayoutTxHash       *string         `json:"payoutTransactionHash,omitempty"`
	WalletIndex        *int            `json:"walletIndex,omitempty"`
	Memo               *string         `json:"memo,omitempty"`
}

// InvoiceView is what an unauthenticated payee sees on the invoice page.
type InvoiceView struct {
	PublicKey          string          `json:"publicKey"`
	Amount             decimal.Decimal `json:"amount"`
	AmountPaid         decimal.Decimal `json:"amountPaid"`
	Status             string          `json:"status"`
	Currency           string          `json:"currency"`
	ExpiresAt          string          `json:"expiresAt"`
	PaymentURI         string          `json:"paymentUri"`
	Memo               *string         `json:"memo,omitempty"`
	InvoiceCallbackURL *string         `json:"invoiceCallbackUrl,omitempty"`
}

type Projector struct {
	aliases aliasEncoder
}

func NewProjector(aliases aliasEncoder) *Projector {
	return &Projector{aliases: aliases}
}

func (pr *Projector) Project(p *domain.Payment) PublicView {
	return PublicView{
		ID:                 p.ID.String(),
		PublicKey:          p.PublicKey,
		Amount:             p.Amount,
		AmountPaid:         p.AmountPaid,
		Status:             string(p.Status.PayeeFacing()),
		Currency:           string(p.Currency),
		InvoiceURL:         pr.InvoiceURL(p),
		ExpiresAt:          formatTime(p.ExpiresAt),
		CreatedAt:          formatTime(p.CreatedAt),
		UpdatedAt:          formatTime(p.UpdatedAt),
		ExtraID:            cloneString(p.ExtraID),
		IPNCallbackURL:     cloneString(p.IPNCallbackURL),
		InvoiceCallbackURL: cloneString(p.InvoiceCallbackURL),
		PayoutTxHash:       cloneString(p.PayoutTxHash),
		WalletIndex:        cloneInt(p.WalletIndex),
		Memo:               cloneString(p.Memo),
	}
}

func (pr *Projector) ProjectInvoice(p *domain.Payment) InvoiceView {
	return InvoiceView{
		PublicKey:          p.PublicKey,
		Amount:             p.Amount,
		AmountPaid:         p.AmountPaid,
		Status:             string(p.Status.PayeeFacing()),
		Currency:           string(p.Currency),
		ExpiresAt:          formatTime(p.ExpiresAt),
		PaymentURI:         PaymentURI(p),
		Memo:               cloneString(p.Memo),
		InvoiceCallbackURL: cloneString(p.InvoiceCallbackURL),
	}
}

func (pr *Projector) InvoiceURL(p *domain.Payment) string {
	return fmt.Sprintf("/invoice/%s/%s", p.Currency, pr.aliases.Encode(p.ID))
}

// PaymentURI is the wallet deep link a payee scans: Solana Pay for SOL and
// EIP-681 (value in wei) for ETH. The outstanding amount is requested.
func PaymentURI(p *domain.Payment) string {
	due := p.Amount.Sub(p.AmountPaid)
	if due.IsNegative() {
		due = decimal.Zero
	}

	q := url.Values{}
	switch p.Currency {
	case domain.CurrencyETH:
		q.Set("value", due.Shift(18).Truncate(0).String())
		return "ethereum:" + p.PublicKey + "?" + q.Encode()
	case domain.CurrencySOL:
		q.Set("amount", due.String())
		if p.Memo != nil {
			q.Set("memo", *p.Memo)
		}
		return "solana:" + p.PublicKey + "?" + q.Encode()
	default:
		return strings.ToLower(string(p.Currency)) + ":" + p.PublicKey
	}
}

func formatTime(t time.Time) string {
	return t.UTC().Format(TimestampFormat)
}

func cloneString(s *string) *string {
	if s == nil {
		return nil
	}
	v := *s
	return &v
}

func cloneInt(i *int) *int {
	if i == nil {
		return nil
	}
	v := *i
	return &v
}
