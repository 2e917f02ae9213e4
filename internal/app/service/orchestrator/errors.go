package orchestrator

import (
	"fmt"

	"github.com/shulefund/payments/pkg/types"
)

// ValidationError is bad input caught before any network call. No transaction
// is created when one is returned.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// InitiationError means the backend rejected transaction creation; the caller
// stays in the pre-payment state and no provider dispatch happens.
type InitiationError struct {
	Err error
}

func (e *InitiationError) Error() string {
	return fmt.Sprintf("failed to initiate transaction: %v", e.Err)
}

func (e *InitiationError) Unwrap() error { return e.Err }

// ProviderError covers a dispatch call that failed, was rejected, or reported
// a failure or cancellation outcome. Reason is human-readable and shown to
// the payer.
type ProviderError struct {
	Method types.PaymentMethod
	Reason string
	Err    error
}

func (e *ProviderError) Error() string {
	if e.Reason != "" {
		return e.Reason
	}
	if e.Err != nil {
		return fmt.Sprintf("%s payment failed: %v", e.Method, e.Err)
	}
	return "payment failed, please try again"
}

func (e *ProviderError) Unwrap() error { return e.Err }
