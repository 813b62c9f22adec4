// Command ipn-echo is a development merchant endpoint: it verifies the
// signature of every IPN it receives and logs the payload.
package main

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"os"

	"github.com/joho/godotenv"

	"github.com/josh-kwaku/cryptogate/internal/logging"
	"github.com/josh-kwaku/cryptogate/internal/notify"
)

func main() {
	_ = godotenv.Load()
	logging.Init("ipn-echo", "info", os.Getenv("APP_ENV"))

	addr := os.Getenv("IPN_ECHO_ADDR")
	if addr == "" {
		addr = ":8081"
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(map[string]string{"status": "ok"}); err != nil {
			slog.Error("failed to write health response", "error", err)
		}
	})
	mux.Handle("POST /ipn", ipnHandler(os.Getenv("IPN_SECRET")))

	slog.Info("ipn echo started", "addr", addr)
	if err := http.ListenAndServe(addr, mux); err != nil {
		slog.Error("server error", "error", err)
		os.Exit(1)
	}
}

func ipnHandler(secret string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		body, err := io.ReadAll(io.LimitReader(r.Body, 1<<20))
		if err != nil {
			http.Error(w, "unreadable body", http.StatusBadRequest)
			return
		}

		claims, err := notify.VerifySignature(r.Header.Get(notify.SignatureHeader), body, secret)
		if err != nil {
			slog.Warn("rejected ipn", "error", err)
			http.Error(w, "invalid signature", http.StatusUnauthorized)
			return
		}

		slog.Info("ipn received",
			"payment_id", claims.PaymentID,
			"status", claims.Status,
			"body", json.RawMessage(body),
		)
		w.WriteHeader(http.StatusNoContent)
	}
}
