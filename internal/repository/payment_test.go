package repository_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/josh-kwaku/cryptogate/internal/domain"
	"github.com/josh-kwaku/cryptogate/internal/repository"
	"github.com/josh-kwaku/cryptogate/internal/testutil"
)

func TestPaymentRepository_CreateAndGet(t *testing.T) {
	db := testutil.SetupTestDB(t)
	repo := repository.NewPaymentRepository(db)
	ctx := context.Background()

	p := testutil.NewPayment("1.5", 20*time.Minute)
	p.ExtraID = testutil.StringPtr("order-1")
	p.Memo = testutil.StringPtr("memo-1")
	idx := 4
	p.WalletIndex = &idx
	require.NoError(t, repo.Create(ctx, p))

	got, err := repo.GetByID(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, p.ID, got.ID)
	assert.Equal(t, p.PublicKey, got.PublicKey)
	assert.Equal(t, p.PrivateKey.Reveal(), got.PrivateKey.Reveal())
	assert.True(t, p.Amount.Equal(got.Amount))
	assert.True(t, got.AmountPaid.IsZero())
	assert.Equal(t, domain.PaymentStatusWaiting, got.Status)
	assert.Equal(t, "order-1", *got.ExtraID)
	assert.Equal(t, "memo-1", *got.Memo)
	assert.Equal(t, 4, *got.WalletIndex)
	assert.Nil(t, got.PayoutTxHash)
	assert.True(t, p.ExpiresAt.Equal(got.ExpiresAt))

	_, err = repo.GetByID(ctx, uuid.New())
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestPaymentRepository_GetByExtraID(t *testing.T) {
	db := testutil.SetupTestDB(t)
	repo := repository.NewPaymentRepository(db)
	ctx := context.Background()

	for range 2 {
		p := testutil.NewPayment("1", time.Hour)
		p.ExtraID = testutil.StringPtr("cart-9")
		require.NoError(t, repo.Create(ctx, p))
	}
	require.NoError(t, repo.Create(ctx, testutil.NewPayment("1", time.Hour)))

	found, err := repo.GetByExtraID(ctx, "cart-9")
	require.NoError(t, err)
	assert.Len(t, found, 2)

	none, err := repo.GetByExtraID(ctx, "missing")
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestPaymentRepository_Update(t *testing.T) {
	db := testutil.SetupTestDB(t)
	repo := repository.NewPaymentRepository(db)
	ctx := context.Background()

	p := testutil.NewPayment("2", time.Hour)
	require.NoError(t, repo.Create(ctx, p))

	err := repo.Update(ctx, p.ID, 0, domain.PaymentUpdate{
		Status:     testutil.StatusPtr(domain.PaymentStatusConfirming),
		AmountPaid: testutil.DecimalPtr("1.2"),
	})
	require.NoError(t, err)

	// stale version loses
	err = repo.Update(ctx, p.ID, 0, domain.PaymentUpdate{Status: testutil.StatusPtr(domain.PaymentStatusExpired)})
	assert.ErrorIs(t, err, domain.ErrVersionConflict)

	// amount_paid never decreases
	err = repo.Update(ctx, p.ID, 1, domain.PaymentUpdate{
		AmountPaid:   testutil.DecimalPtr("0.5"),
		PayoutTxHash: testutil.StringPtr("0xabc"),
	})
	require.NoError(t, err)

	got, err := repo.GetByID(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.PaymentStatusConfirming, got.Status)
	assert.True(t, decimal.RequireFromString("1.2").Equal(got.AmountPaid), "got %s", got.AmountPaid)
	assert.Equal(t, "0xabc", *got.PayoutTxHash)
	assert.Equal(t, int64(2), got.Version)

	err = repo.Update(ctx, uuid.New(), 0, domain.PaymentUpdate{})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestPaymentRepository_ListByStatus(t *testing.T) {
	db := testutil.SetupTestDB(t)
	repo := repository.NewPaymentRepository(db)
	ctx := context.Background()

	waiting := testutil.NewPayment("1", time.Hour)
	require.NoError(t, repo.Create(ctx, waiting))

	failed := testutil.NewPayment("1", time.Hour)
	failed.Status = domain.PaymentStatusFailed
	require.NoError(t, repo.Create(ctx, failed))

	expired := testutil.NewPayment("1", time.Hour)
	expired.Status = domain.PaymentStatusExpired
	require.NoError(t, repo.Create(ctx, expired))

	open, err := repo.ListByStatus(ctx, domain.OpenStatuses, 10)
	require.NoError(t, err)
	require.Len(t, open, 1)
	assert.Equal(t, waiting.ID, open[0].ID)

	retry, err := repo.ListByStatus(ctx, []domain.PaymentStatus{domain.PaymentStatusFailed}, 10)
	require.NoError(t, err)
	require.Len(t, retry, 1)
	assert.Equal(t, failed.ID, retry[0].ID)
}

func TestIdempotencyRepository(t *testing.T) {
	db := testutil.SetupTestDB(t)
	repo := repository.NewIdempotencyRepository(db)
	ctx := context.Background()

	miss, err := repo.Get(ctx, "key-1")
	require.NoError(t, err)
	assert.Nil(t, miss)

	now := time.Now().UTC()
	require.NoError(t, repo.Set(ctx, &repository.IdempotencyCacheEntry{
		Key:          "key-1",
		RequestHash:  "h1",
		StatusCode:   200,
		ResponseBody: []byte(`{"id":"x"}`),
		CreatedAt:    now,
		ExpiresAt:    now.Add(time.Hour),
	}))

	hit, err := repo.Get(ctx, "key-1")
	require.NoError(t, err)
	require.NotNil(t, hit)
	assert.Equal(t, "h1", hit.RequestHash)
	assert.JSONEq(t, `{"id":"x"}`, string(hit.ResponseBody))
}
