package payment

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/josh-kwaku/cryptogate/internal/domain"
	"github.com/josh-kwaku/cryptogate/internal/logging"
	"github.com/josh-kwaku/cryptogate/internal/wallet"
)

// Tick reads the chain once for payment id and applies at most one round of
// transitions. Ticks for the same id never overlap in this process; across
// processes the version check in the store lets exactly one writer win.
//
// A fully paid payment is committed as FAILED before the sweep starts and only
// becomes FINISHED once the sweep is settled. A lost race never sweeps, and a
// crash or failed write after the claim leaves a FAILED record for the
// re-sweep loop.
func (s *Service) Tick(ctx context.Context, id uuid.UUID) (domain.PaymentStatus, error) {
	start := s.now()

	unlock := s.locks.Lock(id)
	p, before, err := s.tick(ctx, id)
	unlock()

	if p != nil {
		s.metrics.ObserveTick(string(p.Currency), s.now().Sub(start))
		if s.notifier != nil && payeeStateOf(p) != before {
			s.notifier.PaymentChanged(ctx, p)
		}
	}
	if err != nil {
		if p != nil && !errors.Is(err, domain.ErrPaymentTerminal) {
			s.metrics.TickFailed(string(p.Currency), failureReason(err))
		}
		return "", fmt.Errorf("Tick: %w", err)
	}
	return p.Status, nil
}

// payeeState is what a merchant can observe of a payment's progress. A
// notification goes out only when it changes.
type payeeState struct {
	status domain.PaymentStatus
	swept  bool
}

func payeeStateOf(p *domain.Payment) payeeState {
	return payeeState{status: p.Status.PayeeFacing(), swept: p.PayoutTxHash != nil}
}

func (s *Service) tick(ctx context.Context, id uuid.UUID) (*domain.Payment, payeeState, error) {
	p, err := s.lookup(ctx, id)
	if err != nil {
		return nil, payeeState{}, err
	}
	before := payeeStateOf(p)
	if p.Status.IsTerminal() {
		return p, before, domain.ErrPaymentTerminal
	}

	entry, err := s.wallets.Get(p.Currency)
	if err != nil {
		return p, before, err
	}

	ctx, log := logging.WithPayment(ctx, p.ID, string(p.Currency))

	if p.Status == domain.PaymentStatusFailed {
		if err := s.commit(ctx, p, domain.PaymentUpdate{}); err != nil {
			return p, before, fmt.Errorf("claim resweep: %w", err)
		}
		log.Info("resweeping failed payment")
		return p, before, s.sweep(ctx, p, entry)
	}

	obs, err := s.inspect(ctx, entry.Wallet, p)
	if err != nil {
		return p, before, err
	}

	paid := decimal.Max(p.AmountPaid, obs.Confirmed)
	next := nextStatus(p, obs, paid, s.config.SlippageTolerance, s.now())
	if next == p.Status && paid.Equal(p.AmountPaid) {
		return p, before, nil
	}

	upd := domain.PaymentUpdate{AmountPaid: &paid}
	switch {
	case next == domain.PaymentStatusFinished:
		claim := domain.PaymentStatusFailed
		upd.Status = &claim
	case next != p.Status:
		upd.Status = &next
	}
	if err := s.commit(ctx, p, upd); err != nil {
		return p, before, err
	}
	if next != domain.PaymentStatusFinished {
		return p, before, nil
	}

	log.Info("payment paid, sweeping", slog.String("amount_paid", paid.String()))
	return p, before, s.sweep(ctx, p, entry)
}

// nextStatus applies the transition rules to a fresh observation. paid is the
// monotonic amount paid after this observation.
func nextStatus(p *domain.Payment, obs wallet.Observation, paid, slippage decimal.Decimal, now time.Time) domain.PaymentStatus {
	threshold := p.Amount.Mul(decimal.NewFromInt(1).Sub(slippage))
	if paid.GreaterThanOrEqual(threshold) {
		return domain.PaymentStatusFinished
	}

	if now.After(p.ExpiresAt) {
		switch {
		case obs.Received.GreaterThanOrEqual(threshold):
			// Everything arrived in time; wait for it to confirm.
			return domain.PaymentStatusConfirming
		case obs.Received.IsPositive() || paid.IsPositive():
			return domain.PaymentStatusPartiallyPaid
		default:
			return domain.PaymentStatusExpired
		}
	}

	if p.Status == domain.PaymentStatusWaiting && obs.Received.IsPositive() {
		return domain.PaymentStatusConfirming
	}
	return p.Status
}

func (s *Service) inspect(ctx context.Context, w wallet.Wallet, p *domain.Payment) (wallet.Observation, error) {
	ctx, cancel := context.WithTimeout(ctx, s.config.ChainTimeout)
	defer cancel()

	obs, err := w.Inspect(ctx, p.PublicKey, p.Memo)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) && !errors.Is(err, domain.ErrChainUnavailable) {
			err = fmt.Errorf("%w: %w", domain.ErrChainUnavailable, err)
		}
		return wallet.Observation{}, fmt.Errorf("inspect: %w", err)
	}
	return obs, nil
}

// sweep moves the funds of a payment held in FAILED to the admin wallet and
// records the outcome. A failed broadcast leaves it FAILED and is not an
// error; the returned error means the outcome could not be recorded, and the
// record is still FAILED.
func (s *Service) sweep(ctx context.Context, p *domain.Payment, entry wallet.Entry) error {
	log := logging.FromContext(ctx)
	finished := domain.PaymentStatusFinished

	if p.PayoutTxHash != nil {
		if err := s.commit(ctx, p, domain.PaymentUpdate{Status: &finished}); err != nil {
			return fmt.Errorf("sweep: %w", err)
		}
		return nil
	}

	sweepCtx, cancel := context.WithTimeout(ctx, s.config.SweepTimeout)
	hash, err := entry.Wallet.Sweep(sweepCtx, wallet.CredentialsOf(p), entry.AdminWallet)
	cancel()

	var upd domain.PaymentUpdate
	switch {
	case err == nil:
		s.metrics.SweepFinished(string(p.Currency), "success")
		log.Info("payment swept", "tx_hash", hash, "admin_wallet", entry.AdminWallet)
		upd = domain.PaymentUpdate{Status: &finished, PayoutTxHash: &hash}

	case errors.Is(err, domain.ErrInsufficientFunds):
		s.metrics.SweepFinished(string(p.Currency), "insufficient_funds")
		log.Warn("nothing to sweep", "error", err)
		upd = domain.PaymentUpdate{Status: &finished}

	default:
		s.metrics.SweepFinished(string(p.Currency), "failed")
		log.Error("sweep failed", "error", err)
		return nil
	}

	if err := s.commit(ctx, p, upd); err != nil {
		log.Error("sweep outcome not recorded, left for resweep", "tx_hash", hash, "error", err)
		return fmt.Errorf("sweep: %w", err)
	}
	return nil
}

// commit writes upd at p's current version and mirrors it onto p.
func (s *Service) commit(ctx context.Context, p *domain.Payment, upd domain.PaymentUpdate) error {
	if err := s.payments.Update(ctx, p.ID, p.Version, upd); err != nil {
		return fmt.Errorf("commit: %w", err)
	}

	p.Version++
	p.UpdatedAt = s.now().UTC()
	if upd.AmountPaid != nil {
		p.AmountPaid = decimal.Max(p.AmountPaid, *upd.AmountPaid)
	}
	if upd.PayoutTxHash != nil {
		hash := *upd.PayoutTxHash
		p.PayoutTxHash = &hash
	}
	if upd.Status != nil && *upd.Status != p.Status {
		logging.FromContext(ctx).Info("payment status changed",
			slog.String("from", string(p.Status)),
			slog.String("to", string(*upd.Status)),
			slog.String("amount_paid", p.AmountPaid.String()),
		)
		p.Status = *upd.Status
		s.metrics.StatusChanged(string(p.Currency), string(p.Status))
	}
	return nil
}

func failureReason(err error) string {
	switch {
	case errors.Is(err, domain.ErrVersionConflict):
		return "version_conflict"
	case errors.Is(err, domain.ErrChainUnavailable):
		return "chain_unavailable"
	case errors.Is(err, domain.ErrPaymentNotFound):
		return "not_found"
	case errors.Is(err, domain.ErrUnsupportedCurrency):
		return "unsupported_currency"
	default:
		return "internal"
	}
}
