package domain

import "errors"

var (
	ErrNotFound            = errors.New("not found")
	ErrPaymentNotFound     = errors.New("payment not found")
	ErrInvalidAlias        = errors.New("invalid alias")
	ErrUnsupportedCurrency = errors.New("unsupported currency")
	ErrInvalidAmount       = errors.New("amount must be greater than zero")
	ErrInvalidRequest      = errors.New("invalid request")
	ErrKeyGeneration       = errors.New("key generation failed")
	ErrChainUnavailable    = errors.New("chain unavailable")
	ErrBroadcast           = errors.New("transaction broadcast failed")
	ErrInsufficientFunds   = errors.New("insufficient funds to sweep")
	ErrVersionConflict     = errors.New("optimistic lock conflict")
	ErrPaymentTerminal     = errors.New("payment already in terminal state")
)

// IsTransient reports whether err is worth retrying on a later cycle without
// changing payment state.
func IsTransient(err error) bool {
	return errors.Is(err, ErrChainUnavailable) || errors.Is(err, ErrBroadcast)
}
