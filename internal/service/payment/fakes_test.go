package payment

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/josh-kwaku/cryptogate/internal/alias"
	"github.com/josh-kwaku/cryptogate/internal/domain"
	"github.com/josh-kwaku/cryptogate/internal/wallet"
)

// memStore mimics the postgres repository: versioned conditional updates and
// a monotonic amount_paid.
type memStore struct {
	mu       sync.Mutex
	payments map[uuid.UUID]domain.Payment
	updates  int
	creates  int
}

func newMemStore() *memStore {
	return &memStore{payments: make(map[uuid.UUID]domain.Payment)}
}

func (m *memStore) Create(_ context.Context, p *domain.Payment) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.creates++
	m.payments[p.ID] = *p
	return nil
}

func (m *memStore) GetByID(_ context.Context, id uuid.UUID) (*domain.Payment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.payments[id]
	if !ok {
		return nil, fmt.Errorf("GetByID: %w", domain.ErrNotFound)
	}
	return &p, nil
}

func (m *memStore) GetByExtraID(_ context.Context, extraID string) ([]domain.Payment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []domain.Payment
	for _, p := range m.payments {
		if p.ExtraID != nil && *p.ExtraID == extraID {
			out = append(out, p)
		}
	}
	return out, nil
}

func (m *memStore) Update(_ context.Context, id uuid.UUID, expectedVersion int64, upd domain.PaymentUpdate) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.payments[id]
	if !ok {
		return fmt.Errorf("Update: %w", domain.ErrNotFound)
	}
	if p.Version != expectedVersion {
		return fmt.Errorf("Update: %w", domain.ErrVersionConflict)
	}
	if upd.Status != nil {
		p.Status = *upd.Status
	}
	if upd.AmountPaid != nil {
		p.AmountPaid = decimal.Max(p.AmountPaid, *upd.AmountPaid)
	}
	if upd.PayoutTxHash != nil {
		h := *upd.PayoutTxHash
		p.PayoutTxHash = &h
	}
	p.Version++
	m.updates++
	m.payments[id] = p
	return nil
}

func (m *memStore) put(p *domain.Payment) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.payments[p.ID] = *p
}

func (m *memStore) get(id uuid.UUID) domain.Payment {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.payments[id]
}

type fakeWallet struct {
	mu         sync.Mutex
	obs        wallet.Observation
	inspects   int
	sweeps     atomic.Int32
	sweepErr   error
	genErr     error
	inspectErr error
	delay      time.Duration
	onSweep    func()
}

func (f *fakeWallet) Currency() domain.Currency { return domain.CurrencySOL }

func (f *fakeWallet) Generate(_ context.Context, req wallet.GenerateRequest) (wallet.Credentials, error) {
	if f.genErr != nil {
		return wallet.Credentials{}, f.genErr
	}
	return wallet.Credentials{
		PublicKey:  "addr-" + req.PaymentID.String()[:8],
		PrivateKey: domain.NewPrivateKey("priv-" + req.PaymentID.String()),
	}, nil
}

func (f *fakeWallet) Inspect(_ context.Context, _ string, _ *string) (wallet.Observation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.inspects++
	if f.inspectErr != nil {
		return wallet.Observation{}, f.inspectErr
	}
	return f.obs, nil
}

func (f *fakeWallet) Sweep(_ context.Context, _ wallet.Credentials, _ string) (string, error) {
	f.sweeps.Add(1)
	if f.onSweep != nil {
		f.onSweep()
	}
	if f.delay > 0 {
		time.Sleep(f.delay)
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.sweepErr != nil {
		return "", f.sweepErr
	}
	return "tx-hash", nil
}

func (f *fakeWallet) observe(received, confirmed string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.obs = wallet.Observation{
		Received:  decimal.RequireFromString(received),
		Confirmed: decimal.RequireFromString(confirmed),
	}
}

func (f *fakeWallet) setSweepErr(err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sweepErr = err
}

// failingUpdates fails the failOn-th Update and passes every other call
// through to the wrapped store.
type failingUpdates struct {
	*memStore
	failOn int
	calls  int
}

func (s *failingUpdates) Update(ctx context.Context, id uuid.UUID, expectedVersion int64, upd domain.PaymentUpdate) error {
	s.calls++
	if s.calls == s.failOn {
		return errors.New("db: connection reset")
	}
	return s.memStore.Update(ctx, id, expectedVersion, upd)
}

type recordingNotifier struct {
	mu       sync.Mutex
	statuses []domain.PaymentStatus
}

func (r *recordingNotifier) PaymentChanged(_ context.Context, p *domain.Payment) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.statuses = append(r.statuses, p.Status)
}

type fixture struct {
	svc      *Service
	store    *memStore
	wallet   *fakeWallet
	codec    *alias.Codec
	notifier *recordingNotifier
	now      time.Time
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	codec, err := alias.NewCodec("0123456789abcdef0123456789abcdef")
	require.NoError(t, err)

	reg := wallet.NewRegistry()
	w := &fakeWallet{}
	require.NoError(t, reg.Register(w, "admin-wallet"))

	f := &fixture{
		store:    newMemStore(),
		wallet:   w,
		codec:    codec,
		notifier: &recordingNotifier{},
		now:      time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC),
	}
	f.svc = NewService(f.store, reg, codec, f.notifier, nil, Config{
		PaymentTimeout:    15 * time.Minute,
		SlippageTolerance: decimal.RequireFromString("0.01"),
		ChainTimeout:      time.Second,
		SweepTimeout:      time.Second,
	})
	f.svc.now = func() time.Time { return f.now }
	return f
}

func (f *fixture) create(t *testing.T, amount string) *domain.Payment {
	t.Helper()
	p, err := f.svc.CreatePayment(context.Background(), CreateRequest{
		Currency: domain.CurrencySOL,
		Amount:   decimal.RequireFromString(amount),
	})
	require.NoError(t, err)
	return p
}
