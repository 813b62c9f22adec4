package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/josh-kwaku/cryptogate/internal/domain"
)

const paymentColumns = `id, currency, public_key, private_key, memo, wallet_index,
	amount, amount_paid, status, extra_id, ipn_callback_url, invoice_callback_url,
	payout_transaction_hash, version, created_at, updated_at, expires_at`

type PaymentRepository struct {
	db *sql.DB
}

func NewPaymentRepository(db *sql.DB) *PaymentRepository {
	return &PaymentRepository{db: db}
}

func (r *PaymentRepository) Create(ctx context.Context, p *domain.Payment) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO payments (
			id, currency, public_key, private_key, memo, wallet_index,
			amount, amount_paid, status, extra_id, ipn_callback_url, invoice_callback_url,
			payout_transaction_hash, version, created_at, updated_at, expires_at
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9, $10,
			$11, $12, $13, $14, $15, $16, $17
		)`,
		p.ID, p.Currency, p.PublicKey, p.PrivateKey.Reveal(), p.Memo, p.WalletIndex,
		p.Amount, p.AmountPaid, p.Status, p.ExtraID, p.IPNCallbackURL, p.InvoiceCallbackURL,
		p.PayoutTxHash, p.Version, p.CreatedAt, p.UpdatedAt, p.ExpiresAt,
	)
	if err != nil {
		return fmt.Errorf("Create: %w", err)
	}
	return nil
}

func (r *PaymentRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Payment, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+paymentColumns+` FROM payments WHERE id = $1`, id,
	)
	p, err := scanPayment(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("GetByID: %w", domain.ErrNotFound)
		}
		return nil, fmt.Errorf("GetByID: %w", err)
	}
	return p, nil
}

func (r *PaymentRepository) GetByExtraID(ctx context.Context, extraID string) ([]domain.Payment, error) {
	payments, err := r.query(ctx,
		`SELECT `+paymentColumns+` FROM payments WHERE extra_id = $1 ORDER BY created_at`, extraID,
	)
	if err != nil {
		return nil, fmt.Errorf("GetByExtraID: %w", err)
	}
	return payments, nil
}

// ListByStatus returns the oldest payments in the given states, least recently
// updated first so a large backlog is worked through fairly.
func (r *PaymentRepository) ListByStatus(ctx context.Context, statuses []domain.PaymentStatus, limit int) ([]domain.Payment, error) {
	names := make([]string, len(statuses))
	for i, s := range statuses {
		names[i] = string(s)
	}

	payments, err := r.query(ctx,
		`SELECT `+paymentColumns+` FROM payments
		WHERE status = ANY($1) ORDER BY updated_at LIMIT $2`,
		pq.Array(names), limit,
	)
	if err != nil {
		return nil, fmt.Errorf("ListByStatus: %w", err)
	}
	return payments, nil
}

// Update applies upd only if the row is still at expectedVersion, and bumps the
// version. amount_paid never moves backwards even if a smaller value is passed.
func (r *PaymentRepository) Update(ctx context.Context, id uuid.UUID, expectedVersion int64, upd domain.PaymentUpdate) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE payments SET
			status = COALESCE($1, status),
			amount_paid = GREATEST(amount_paid, COALESCE($2, amount_paid)),
			payout_transaction_hash = COALESCE($3, payout_transaction_hash),
			version = version + 1,
			updated_at = now()
		WHERE id = $4 AND version = $5`,
		upd.Status, upd.AmountPaid, upd.PayoutTxHash, id, expectedVersion,
	)
	if err != nil {
		return fmt.Errorf("Update: %w", err)
	}

	rows, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("Update: rows affected: %w", err)
	}
	if rows == 0 {
		if _, err := r.GetByID(ctx, id); err != nil {
			return fmt.Errorf("Update: %w", err)
		}
		return fmt.Errorf("Update: %w", domain.ErrVersionConflict)
	}
	return nil
}

func (r *PaymentRepository) query(ctx context.Context, q string, args ...any) ([]domain.Payment, error) {
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var payments []domain.Payment
	for rows.Next() {
		p, err := scanPayment(rows)
		if err != nil {
			return nil, fmt.Errorf("scan: %w", err)
		}
		payments = append(payments, *p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows: %w", err)
	}
	return payments, nil
}

func scanPayment(s scanner) (*domain.Payment, error) {
	var p domain.Payment
	var privateKey string
	var walletIndex sql.NullInt64

	err := s.Scan(
		&p.ID, &p.Currency, &p.PublicKey, &privateKey, &p.Memo, &walletIndex,
		&p.Amount, &p.AmountPaid, &p.Status, &p.ExtraID, &p.IPNCallbackURL, &p.InvoiceCallbackURL,
		&p.PayoutTxHash, &p.Version, &p.CreatedAt, &p.UpdatedAt, &p.ExpiresAt,
	)
	if err != nil {
		return nil, err
	}

	p.PrivateKey = domain.NewPrivateKey(privateKey)
	if walletIndex.Valid {
		idx := int(walletIndex.Int64)
		p.WalletIndex = &idx
	}
	return &p, nil
}
