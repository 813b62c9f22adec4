package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/josh-kwaku/cryptogate/internal/logging"
	"github.com/josh-kwaku/cryptogate/internal/view"
)

const signatureTTL = 10 * time.Minute

// IPNSender POSTs the public view of a payment to its ipnCallbackUrl.
type IPNSender struct {
	secret     string
	httpClient *http.Client
}

func NewIPNSender(secret string, timeout time.Duration) *IPNSender {
	return &IPNSender{
		secret: secret,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

func (s *IPNSender) Notify(ctx context.Context, callbackURL string, v view.PublicView) error {
	log := logging.FromContext(ctx)

	body, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("Notify: marshal: %w", err)
	}

	sig, err := Sign(v.ID, v.Status, body, s.secret, signatureTTL)
	if err != nil {
		return fmt.Errorf("Notify: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, callbackURL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("Notify: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(SignatureHeader, sig)

	start := time.Now()
	resp, err := s.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("Notify: send: %w", err)
	}
	defer resp.Body.Close()

	log.Info("ipn delivered",
		"payment_id", v.ID,
		"status", resp.StatusCode,
		"duration_ms", time.Since(start).Milliseconds(),
	)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("Notify: callback returned %d: %s", resp.StatusCode, respBody)
	}
	return nil
}
