package service

import (
	"errors"
	"fmt"
)

// Validation codes are caller-facing and never retried.
const (
	CodeInvalidAmount        = "invalid_amount"
	CodeInvalidSlippage      = "invalid_slippage"
	CodeInvalidMint          = "invalid_mint"
	CodeInvalidMode          = "invalid_mode"
	CodeInsufficientBalance  = "insufficient_balance"
	CodeWalletNotAllowedFree = "wallet_not_allowed_free_tier"
	CodeWalletNotLinked      = "wallet_not_linked"
	CodeWalletLimitExceeded  = "wallet_limit_exceeded"
)

// ErrNoWalletAvailable means the provisioning pool has no free wallet for
// this user. Transient from the caller's point of view.
var ErrNoWalletAvailable = errors.New("no wallet available for assignment")

// ErrNoWalletAssigned means the user has no wallet yet; the caller should
// run allocation first.
var ErrNoWalletAssigned = errors.New("user has no assigned wallet")

type ValidationError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func validationErr(code, format string, args ...interface{}) *ValidationError {
	return &ValidationError{Code: code, Message: fmt.Sprintf(format, args...)}
}

// IntegrationError wraps an aggregator or RPC failure after its bounded
// retries ran out. The caller sees an opaque upstream-failure code.
type IntegrationError struct {
	Op  string
	Err error
}

func (e *IntegrationError) Error() string {
	return fmt.Sprintf("upstream failure during %s: %v", e.Op, e.Err)
}

func (e *IntegrationError) Unwrap() error { return e.Err }

func integrationErr(op string, err error) *IntegrationError {
	return &IntegrationError{Op: op, Err: err}
}
