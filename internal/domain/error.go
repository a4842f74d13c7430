package domain

import (
	"errors"
	"fmt"
)

var (
	// Common domain errors
	ErrNotFound               = errors.New("entity not found")
	ErrInvalidArgument        = errors.New("invalid argument")
	ErrAlreadyProcessed       = errors.New("checkout session already processed")
	ErrEmailAlreadyRegistered = errors.New("email already registered")
	ErrTokenNotFound          = errors.New("activation token not found")
	ErrTokenAlreadyUsed       = errors.New("activation token already used")
	ErrWrongPurchaseVariant   = errors.New("wrong purchase variant for this operation")
	ErrForbidden              = errors.New("forbidden")
	ErrLocked                 = errors.New("operation already in flight")
	ErrReadBackendRow         = errors.New("failed to decode backend record")
)

// PaymentStateError reports a checkout session whose payment has not
// completed. It carries the raw processor status for the caller.
type PaymentStateError struct {
	Status string
}

func (e *PaymentStateError) Error() string {
	return fmt.Sprintf("payment not completed (status=%s)", e.Status)
}

// ConfigError reports missing or malformed credentials. Fatal at startup,
// never retried by a handler.
type ConfigError struct {
	Field string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("missing or invalid configuration: %s", e.Field)
}
