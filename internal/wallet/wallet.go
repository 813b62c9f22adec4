// Package wallet defines the per-currency transactional wallet contract and the
// registry the payment service routes through.
package wallet

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/josh-kwaku/cryptogate/internal/domain"
)

type GenerateRequest struct {
	PaymentID uuid.UUID
	Amount    decimal.Decimal
}

// Credentials are the receiving address and signing key of one payment.
// Memo is set only by variants whose addresses are shared between payments.
type Credentials struct {
	PublicKey   string
	PrivateKey  domain.PrivateKey
	Memo        *string
	WalletIndex *int
}

// Observation is what a chain reports for a payment address. Received counts
// funds at any commitment level; Confirmed only counts funds that satisfy the
// variant's confirmation rule.
type Observation struct {
	Received  decimal.Decimal
	Confirmed decimal.Decimal
}

// Wallet is implemented once per supported currency.
//
// Generate fails with domain.ErrKeyGeneration. Inspect is side-effect free and
// fails with domain.ErrChainUnavailable. Sweep moves the balance minus fees to
// adminWallet and fails with domain.ErrInsufficientFunds or domain.ErrBroadcast.
type Wallet interface {
	Currency() domain.Currency
	Generate(ctx context.Context, req GenerateRequest) (Credentials, error)
	Inspect(ctx context.Context, publicKey string, memo *string) (Observation, error)
	Sweep(ctx context.Context, creds Credentials, adminWallet string) (string, error)
}

// Entry is a registered wallet together with the admin address it sweeps to.
type Entry struct {
	Wallet      Wallet
	AdminWallet string
}

type Registry struct {
	mu      sync.RWMutex
	entries map[domain.Currency]Entry
}

func NewRegistry() *Registry {
	return &Registry{entries: make(map[domain.Currency]Entry)}
}

func (r *Registry) Register(w Wallet, adminWallet string) error {
	if adminWallet == "" {
		return fmt.Errorf("Register %s: admin wallet required", w.Currency())
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.entries[w.Currency()]; ok {
		return fmt.Errorf("Register %s: already registered", w.Currency())
	}
	r.entries[w.Currency()] = Entry{Wallet: w, AdminWallet: adminWallet}
	return nil
}

func (r *Registry) Get(c domain.Currency) (Entry, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	e, ok := r.entries[c]
	if !ok {
		return Entry{}, fmt.Errorf("Get %q: %w", c, domain.ErrUnsupportedCurrency)
	}
	return e, nil
}

// Currencies returns the registered currency tags in stable order.
func (r *Registry) Currencies() []domain.Currency {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]domain.Currency, 0, len(r.entries))
	for c := range r.entries {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// CredentialsOf rebuilds the credentials stored on a payment.
func CredentialsOf(p *domain.Payment) Credentials {
	return Credentials{
		PublicKey:   p.PublicKey,
		PrivateKey:  p.PrivateKey,
		Memo:        p.Memo,
		WalletIndex: p.WalletIndex,
	}
}
