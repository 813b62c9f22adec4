package notify

import (
	"context"

	"github.com/josh-kwaku/cryptogate/internal/domain"
	"github.com/josh-kwaku/cryptogate/internal/logging"
	"github.com/josh-kwaku/cryptogate/internal/view"
)

type ipnSender interface {
	Notify(ctx context.Context, callbackURL string, v view.PublicView) error
}

// Dispatcher delivers IPNs for payments that registered a callback. Delivery
// is best effort: failures are logged and never reach the caller.
type Dispatcher struct {
	projector *view.Projector
	sender    ipnSender
}

func NewDispatcher(projector *view.Projector, sender ipnSender) *Dispatcher {
	return &Dispatcher{projector: projector, sender: sender}
}

func (d *Dispatcher) PaymentChanged(ctx context.Context, p *domain.Payment) {
	if p.IPNCallbackURL == nil || *p.IPNCallbackURL == "" {
		return
	}

	if err := d.sender.Notify(ctx, *p.IPNCallbackURL, d.projector.Project(p)); err != nil {
		logging.FromContext(ctx).Warn("ipn delivery failed",
			"payment_id", p.ID,
			"status", p.Status,
			"error", err,
		)
	}
}
