package errors

import (
	"encoding/json"
	"errors"
	"fmt"
)

var (
	ErrAlreadyExists       = errors.New("already exists")
	ErrNotFound            = errors.New("not found")
	ErrInvalidCredentials  = errors.New("invalid credentials")
	ErrInvalidInput        = errors.New("invalid input")
	ErrInvalidAmount       = errors.New("invalid amount")
	ErrUserBanned          = errors.New("user is banned")
	ErrForbidden           = errors.New("forbidden")
	ErrInsufficientFunds   = errors.New("insufficient funds")
	ErrProviderUnavailable = errors.New("provider unavailable")
	ErrProviderRejected    = errors.New("provider rejected request")
	ErrCompensationFailed  = errors.New("compensating credit failed")
	ErrAlreadyProcessed    = errors.New("already processed")
)

// InsufficientFundsError reports how far the balance is from the required amount.
type InsufficientFundsError struct {
	Required int64
	Current  int64
	Shortage int64
}

// NewInsufficientFunds builds the error with shortage derived from required and current.
func NewInsufficientFunds(required, current int64) *InsufficientFundsError {
	return &InsufficientFundsError{Required: required, Current: current, Shortage: required - current}
}

func (e *InsufficientFundsError) Error() string {
	return fmt.Sprintf("insufficient funds: required %d, current %d, shortage %d", e.Required, e.Current, e.Shortage)
}

func (e *InsufficientFundsError) Is(target error) bool {
	return target == ErrInsufficientFunds
}

// ProviderRejectedError carries the provider's HTTP status and body for passthrough.
type ProviderRejectedError struct {
	StatusCode int
	Body       json.RawMessage
}

func (e *ProviderRejectedError) Error() string {
	return fmt.Sprintf("provider rejected request with status %d", e.StatusCode)
}

func (e *ProviderRejectedError) Is(target error) bool {
	return target == ErrProviderRejected
}

// CompensationError means a debit stays unreturned and requires manual reconciliation.
type CompensationError struct {
	UserID    int64
	Reference string
	Amount    int64
	Cause     error
	Err       error
}

func (e *CompensationError) Error() string {
	return fmt.Sprintf("compensate %d for user %d ref %s: %v (after: %v)", e.Amount, e.UserID, e.Reference, e.Err, e.Cause)
}

func (e *CompensationError) Is(target error) bool {
	return target == ErrCompensationFailed
}

func (e *CompensationError) Unwrap() []error {
	return []error{e.Err, e.Cause}
}
