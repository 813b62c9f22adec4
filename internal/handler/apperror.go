package handler

import "net/http"

type AppError struct {
	Status  int
	Code    string
	Message string
}

func (e *AppError) Error() string { return e.Message }

var (
	ErrUnauthorized     = &AppError{http.StatusUnauthorized, "UNAUTHORIZED", "Missing or invalid API key"}
	ErrInvalidRequest   = &AppError{http.StatusBadRequest, "INVALID_REQUEST", "Invalid request body"}
	ErrValidationFailed = &AppError{http.StatusBadRequest, "VALIDATION_FAILED", "Validation failed"}
	ErrInternalError    = &AppError{http.StatusInternalServerError, "INTERNAL_ERROR", "An unexpected error occurred"}

	// Lookup misses use 300 so merchants can tell them apart from hard failures.
	ErrPaymentNotFound = &AppError{http.StatusMultipleChoices, "PAYMENT_NOT_FOUND", "Payment not found"}

	ErrUnsupportedCurrency = &AppError{http.StatusBadRequest, "UNSUPPORTED_CURRENCY", "Currency is not supported"}
	ErrInvalidAmount       = &AppError{http.StatusBadRequest, "INVALID_AMOUNT", "Amount must be greater than zero"}
	ErrVersionConflict     = &AppError{http.StatusConflict, "VERSION_CONFLICT", "Payment was modified concurrently, please retry"}
	ErrChainUnavailable    = &AppError{http.StatusServiceUnavailable, "CHAIN_UNAVAILABLE", "Blockchain node is unavailable"}
	ErrIdempotencyConflict = &AppError{http.StatusConflict, "IDEMPOTENCY_CONFLICT", "Idempotency key already used with a different request"}
)
