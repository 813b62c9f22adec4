package service

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/josh-kwaku/cryptogate/internal/domain"
	"github.com/josh-kwaku/cryptogate/internal/logging"
)

type paymentLister interface {
	ListByStatus(ctx context.Context, statuses []domain.PaymentStatus, limit int) ([]domain.Payment, error)
}

type paymentTicker interface {
	Tick(ctx context.Context, id uuid.UUID) (domain.PaymentStatus, error)
}

type MonitorConfig struct {
	Interval        time.Duration
	ResweepInterval time.Duration
	Concurrency     int
	BatchSize       int
	ChainRPS        float64
	MaxRetries      uint64
	InitialBackoff  time.Duration
	// ResweepGrace keeps the re-sweep loop off FAILED payments updated more
	// recently than this; a sweep for them may still be in flight elsewhere.
	ResweepGrace time.Duration
}

// Monitor drives Tick for every payment that can still move: open payments on
// one loop, FAILED sweeps on a slower one.
type Monitor struct {
	payments paymentLister
	ticks    paymentTicker
	logger   *slog.Logger
	config   MonitorConfig

	mu       sync.Mutex
	limiters map[domain.Currency]*rate.Limiter
	now      func() time.Time
}

func NewMonitor(payments paymentLister, ticks paymentTicker, logger *slog.Logger, cfg MonitorConfig) *Monitor {
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = 1
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = 100
	}
	return &Monitor{
		payments: payments,
		ticks:    ticks,
		logger:   logger,
		config:   cfg,
		limiters: make(map[domain.Currency]*rate.Limiter),
		now:      time.Now,
	}
}

// Start blocks until ctx is cancelled.
func (m *Monitor) Start(ctx context.Context) {
	m.logger.Info("payment monitor started",
		"interval", m.config.Interval,
		"resweep_interval", m.config.ResweepInterval,
		"concurrency", m.config.Concurrency,
	)

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		m.loop(ctx, m.config.Interval, m.PollOpen)
	}()
	go func() {
		defer wg.Done()
		m.loop(ctx, m.config.ResweepInterval, m.PollFailed)
	}()
	wg.Wait()

	m.logger.Info("payment monitor stopped")
}

func (m *Monitor) loop(ctx context.Context, interval time.Duration, poll func(context.Context) int) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			poll(ctx)
		}
	}
}

// PollOpen ticks one batch of WAITING and CONFIRMING payments and returns how
// many were picked up.
func (m *Monitor) PollOpen(ctx context.Context) int {
	return m.poll(ctx, domain.OpenStatuses, nil)
}

// PollFailed re-sweeps one batch of FAILED payments that have been idle for at
// least ResweepGrace.
func (m *Monitor) PollFailed(ctx context.Context) int {
	cutoff := m.now().Add(-m.config.ResweepGrace)
	return m.poll(ctx, []domain.PaymentStatus{domain.PaymentStatusFailed}, func(p domain.Payment) bool {
		return !p.UpdatedAt.After(cutoff)
	})
}

func (m *Monitor) poll(ctx context.Context, statuses []domain.PaymentStatus, keep func(domain.Payment) bool) int {
	listed, err := m.payments.ListByStatus(ctx, statuses, m.config.BatchSize)
	if err != nil {
		m.logger.Error("failed to list payments", "statuses", statuses, "error", err)
		return 0
	}

	payments := listed
	if keep != nil {
		payments = make([]domain.Payment, 0, len(listed))
		for _, p := range listed {
			if keep(p) {
				payments = append(payments, p)
			}
		}
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(m.config.Concurrency)
	for _, p := range payments {
		g.Go(func() error {
			m.process(gctx, p)
			return nil
		})
	}
	_ = g.Wait()

	return len(payments)
}

func (m *Monitor) process(ctx context.Context, p domain.Payment) {
	log := m.logger.With("payment_id", p.ID, "currency", p.Currency)
	ctx = logging.WithLogger(ctx, log)
	limiter := m.limiter(p.Currency)

	op := func() error {
		if err := limiter.Wait(ctx); err != nil {
			return backoff.Permanent(err)
		}

		_, err := m.ticks.Tick(ctx, p.ID)
		switch {
		case err == nil, errors.Is(err, domain.ErrPaymentTerminal):
			return nil
		case domain.IsTransient(err), errors.Is(err, domain.ErrVersionConflict):
			log.Debug("tick will be retried", "error", err)
			return err
		default:
			return backoff.Permanent(err)
		}
	}

	if err := backoff.Retry(op, m.backoff(ctx)); err != nil {
		log.Warn("tick failed", "status", p.Status, "error", err)
	}
}

func (m *Monitor) backoff(ctx context.Context) backoff.BackOff {
	b := backoff.NewExponentialBackOff()
	if m.config.InitialBackoff > 0 {
		b.InitialInterval = m.config.InitialBackoff
	}
	return backoff.WithContext(backoff.WithMaxRetries(b, m.config.MaxRetries), ctx)
}

// limiter paces chain calls per currency so one busy chain cannot starve or
// rate-limit the others.
func (m *Monitor) limiter(c domain.Currency) *rate.Limiter {
	m.mu.Lock()
	defer m.mu.Unlock()

	l, ok := m.limiters[c]
	if !ok {
		limit := rate.Inf
		if m.config.ChainRPS > 0 {
			limit = rate.Limit(m.config.ChainRPS)
		}
		l = rate.NewLimiter(limit, max(1, m.config.Concurrency))
		m.limiters[c] = l
	}
	return l
}
