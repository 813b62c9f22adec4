package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/josh-kwaku/cryptogate/internal/domain"
	"github.com/josh-kwaku/cryptogate/internal/logging"
)

// Version is overridden at build time with -ldflags.
var Version = "dev"

type pinger interface {
	PingContext(ctx context.Context) error
}

type chainLister interface {
	Currencies() []domain.Currency
}

type HealthHandler struct {
	db     pinger
	chains chainLister
}

func NewHealthHandler(db pinger, chains chainLister) *HealthHandler {
	return &HealthHandler{db: db, chains: chains}
}

func (h *HealthHandler) Liveness(w http.ResponseWriter, r *http.Request) {
	RespondJSON(w, http.StatusOK, map[string]string{
		"status":    "ok",
		"version":   Version,
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

// Readiness fails when the database is unreachable or no chain is registered,
// since the gateway can then neither record nor accept payments.
func (h *HealthHandler) Readiness(w http.ResponseWriter, r *http.Request) {
	log := logging.FromContext(r.Context())
	checks := map[string]string{"database": "ok"}
	httpStatus := http.StatusOK

	if err := h.db.PingContext(r.Context()); err != nil {
		log.Warn("readiness check failed: database unreachable", "error", err)
		checks["database"] = "down"
		httpStatus = http.StatusServiceUnavailable
	}

	currencies := h.chains.Currencies()
	if len(currencies) == 0 {
		log.Warn("readiness check failed: no chains registered")
		httpStatus = http.StatusServiceUnavailable
	}
	chains := make([]string, len(currencies))
	for i, c := range currencies {
		chains[i] = string(c)
	}

	overallStatus := "ok"
	if httpStatus != http.StatusOK {
		overallStatus = "down"
	}

	RespondJSON(w, httpStatus, map[string]any{
		"status":    overallStatus,
		"version":   Version,
		"timestamp": time.Now().UTC().Format(time.RFC3339),
		"chains":    chains,
		"checks":    checks,
	})
}
