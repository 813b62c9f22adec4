package handler

import (
	"net/http"
	"strings"

	"github.com/skip2/go-qrcode"

	"github.com/josh-kwaku/cryptogate/internal/domain"
	"github.com/josh-kwaku/cryptogate/internal/logging"
)

const qrSize = 256

// Invoice serves the payee-facing view of a payment. It is unauthenticated:
// the alias is the only credential.
func (h *PaymentHandler) Invoice(w http.ResponseWriter, r *http.Request) {
	p, err := h.payments.GetInvoice(r.Context(), currencyFromPath(r), r.PathValue("alias"))
	if err != nil {
		RespondDomainError(w, err)
		return
	}

	RespondJSON(w, http.StatusOK, h.projector.ProjectInvoice(p))
}

func (h *PaymentHandler) InvoiceQR(w http.ResponseWriter, r *http.Request) {
	p, err := h.payments.GetInvoice(r.Context(), currencyFromPath(r), r.PathValue("alias"))
	if err != nil {
		RespondDomainError(w, err)
		return
	}

	png, err := qrcode.Encode(h.projector.ProjectInvoice(p).PaymentURI, qrcode.Medium, qrSize)
	if err != nil {
		logging.FromContext(r.Context()).Error("qr encoding failed", "error", err)
		RespondAppError(w, ErrInternalError, nil)
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "public, max-age=300")
	w.Write(png)
}

func currencyFromPath(r *http.Request) domain.Currency {
	return domain.Currency(strings.ToUpper(r.PathValue("currency")))
}
