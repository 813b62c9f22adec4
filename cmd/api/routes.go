package main

import (
	"database/sql"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/josh-kwaku/cryptogate/internal/app"
	"github.com/josh-kwaku/cryptogate/internal/config"
	"github.com/josh-kwaku/cryptogate/internal/handler"
	"github.com/josh-kwaku/cryptogate/internal/middleware"
)

func newRouter(cfg *config.Config, a *app.App, db *sql.DB, gatherer prometheus.Gatherer) http.Handler {
	health := handler.NewHealthHandler(db, a.Wallets)
	payments := handler.NewPaymentHandler(a.Service, a.Projector)

	requireKey := middleware.APIKey(cfg.APIKey)
	idempotent := middleware.Idempotency(a.Idempotency)

	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", health.Liveness)
	mux.HandleFunc("GET /ready", health.Readiness)
	mux.Handle("GET /metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))
	mux.HandleFunc("GET /docs", handler.ServeDocs())
	mux.HandleFunc("GET /openapi.yaml", handler.ServeSpec())

	mux.Handle("POST /createPayment", requireKey(idempotent(http.HandlerFunc(payments.Create))))
	mux.Handle("GET /getPaymentStatus", requireKey(http.HandlerFunc(payments.Status)))
	mux.Handle("GET /getPaymentsByExtraId", requireKey(http.HandlerFunc(payments.ByExtraID)))

	mux.HandleFunc("GET /invoice/{currency}/{alias}", payments.Invoice)
	mux.HandleFunc("GET /invoice/{currency}/{alias}/qr.png", payments.InvoiceQR)

	var h http.Handler = mux
	h = middleware.Logging(h)
	h = middleware.Recovery(h)
	h = middleware.Tracing(h)
	return otelhttp.NewHandler(h, "cryptogate")
}
