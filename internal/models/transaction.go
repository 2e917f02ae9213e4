package models

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/shulefund/payments/pkg/types"
)

// PaymentTransaction is the client-side read view of a transaction. The
// backend owns the row; every local copy is a cache of the last response and
// may be stale. Metadata is descriptive only and never drives control flow.
type PaymentTransaction struct {
	ID            string                  `json:"id"`
	ReferenceID   string                  `json:"reference_id"`
	PaymentType   types.PaymentType       `json:"payment_type"`
	Amount        decimal.Decimal         `json:"amount"`
	Currency      string                  `json:"currency"`
	PaymentMethod types.PaymentMethod     `json:"payment_method"`
	Status        types.TransactionStatus `json:"status"`

	PhoneNumber   string `json:"phone_number,omitempty"`
	CardLast4     string `json:"card_last4,omitempty"`
	CardBrand     string `json:"card_brand,omitempty"`
	FailureReason string `json:"failure_reason,omitempty"`

	InitiatedAt *time.Time `json:"initiated_at,omitempty"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
	FailedAt    *time.Time `json:"failed_at,omitempty"`

	Metadata map[string]string `json:"metadata,omitempty"`
}

func (t *PaymentTransaction) IsTerminal() bool {
	return t != nil && t.Status.IsTerminal()
}

// ApplyStatus moves the local view to observed only when the lattice allows
// it; a terminal status never regresses. Reports whether the view changed.
func (t *PaymentTransaction) ApplyStatus(observed types.TransactionStatus) bool {
	if t == nil || observed == t.Status {
		return false
	}
	if !types.CanTransition(t.Status, observed) {
		return false
	}
	t.Status = observed
	return true
}

// Refresh merges a newer backend observation into the local view, keeping the
// status monotonic. Non-status fields follow whenever the observation is for
// the same transaction.
func (t *PaymentTransaction) Refresh(observed *PaymentTransaction) bool {
	if t == nil || observed == nil || observed.ID != t.ID {
		return false
	}
	changed := t.ApplyStatus(observed.Status)
	if t.FailureReason == "" && observed.FailureReason != "" {
		t.FailureReason = observed.FailureReason
		changed = true
	}
	if observed.CompletedAt != nil {
		t.CompletedAt = observed.CompletedAt
	}
	if observed.FailedAt != nil {
		t.FailedAt = observed.FailedAt
	}
	return changed
}
