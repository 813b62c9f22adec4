package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/josh-kwaku/cryptogate/internal/domain"
	"github.com/josh-kwaku/cryptogate/internal/logging"
	"github.com/josh-kwaku/cryptogate/internal/service/payment"
	"github.com/josh-kwaku/cryptogate/internal/view"
)

type paymentService interface {
	CreatePayment(ctx context.Context, req payment.CreateRequest) (*domain.Payment, error)
	GetStatus(ctx context.Context, idOrAlias string) (*domain.Payment, error)
	GetByExtraID(ctx context.Context, extraID string) ([]domain.Payment, error)
	GetInvoice(ctx context.Context, currency domain.Currency, alias string) (*domain.Payment, error)
}

type PaymentHandler struct {
	payments  paymentService
	projector *view.Projector
}

func NewPaymentHandler(payments paymentService, projector *view.Projector) *PaymentHandler {
	return &PaymentHandler{payments: payments, projector: projector}
}

type createPaymentRequest struct {
	Currency           string          `json:"currency" validate:"required,alpha,max=10"`
	Amount             decimal.Decimal `json:"amount"`
	ExtraID            *string         `json:"extraId" validate:"omitempty,max=255"`
	IPNCallbackURL     *string         `json:"ipnCallbackUrl" validate:"omitempty,http_url"`
	InvoiceCallbackURL *string         `json:"invoiceCallbackUrl" validate:"omitempty,http_url"`
}

func (h *PaymentHandler) Create(w http.ResponseWriter, r *http.Request) {
	log := logging.FromContext(r.Context())

	var req createPaymentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		RespondAppError(w, ErrInvalidRequest, nil)
		return
	}

	if fields := validateStruct(req); len(fields) > 0 {
		RespondValidationError(w, fields)
		return
	}

	p, err := h.payments.CreatePayment(r.Context(), payment.CreateRequest{
		Currency:           domain.Currency(strings.ToUpper(req.Currency)),
		Amount:             req.Amount,
		ExtraID:            req.ExtraID,
		IPNCallbackURL:     req.IPNCallbackURL,
		InvoiceCallbackURL: req.InvoiceCallbackURL,
	})
	if err != nil {
		log.Warn("payment creation failed", "error", err)
		RespondDomainError(w, err)
		return
	}

	RespondJSON(w, http.StatusOK, h.projector.Project(p))
}

func (h *PaymentHandler) Status(w http.ResponseWriter, r *http.Request) {
	id := r.URL.Query().Get("id")
	if id == "" {
		RespondAppError(w, ErrPaymentNotFound, nil)
		return
	}

	p, err := h.payments.GetStatus(r.Context(), id)
	if err != nil {
		logging.FromContext(r.Context()).Debug("payment lookup failed", "error", err)
		RespondDomainError(w, err)
		return
	}

	RespondJSON(w, http.StatusOK, h.projector.Project(p))
}

func (h *PaymentHandler) ByExtraID(w http.ResponseWriter, r *http.Request) {
	payments, err := h.payments.GetByExtraID(r.Context(), r.URL.Query().Get("extraId"))
	if err != nil {
		RespondDomainError(w, err)
		return
	}

	views := make([]view.PublicView, 0, len(payments))
	for i := range payments {
		views = append(views, h.projector.Project(&payments[i]))
	}
	RespondJSON(w, http.StatusOK, views)
}
