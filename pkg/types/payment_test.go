package types

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestPaymentMethod_Valid(t *testing.T) {
	for _, m := range []PaymentMethod{MethodMpesa, MethodAirtelMoney, MethodCard, MethodPayPal, MethodBankTransfer} {
		require.True(t, m.Valid(), "method %q", m)
	}
	require.False(t, PaymentMethod("bitcoin").Valid())
	require.False(t, PaymentMethod("").Valid())
}

func TestPaymentType_ReferencePrefix(t *testing.T) {
	require.Equal(t, "DON", PaymentTypeDonation.ReferencePrefix())
	require.Equal(t, "SPN", PaymentTypeSponsorship.ReferencePrefix())
}

func TestCanTransition_ForwardOnly(t *testing.T) {
	require.True(t, CanTransition(StatusInitiated, StatusPending))
	require.True(t, CanTransition(StatusInitiated, StatusCompleted))
	require.True(t, CanTransition(StatusPending, StatusProcessing))
	require.True(t, CanTransition(StatusProcessing, StatusFailed))
	require.True(t, CanTransition(StatusCompleted, StatusRefunded))

	// terminal states are absorbing
	require.False(t, CanTransition(StatusCompleted, StatusPending))
	require.False(t, CanTransition(StatusFailed, StatusCompleted))
	require.False(t, CanTransition(StatusCancelled, StatusPending))
	require.False(t, CanTransition(StatusRefunded, StatusCompleted))

	// no local downgrade of non-terminal progress either
	require.False(t, CanTransition(StatusProcessing, StatusPending))
	require.False(t, CanTransition(StatusPending, StatusInitiated))

	// refresh of the same status is fine
	require.True(t, CanTransition(StatusPending, StatusPending))
}

func TestTransactionStatus_IsTerminal(t *testing.T) {
	for _, s := range []TransactionStatus{StatusCompleted, StatusFailed, StatusCancelled, StatusRefunded} {
		require.True(t, s.IsTerminal(), "status %q", s)
	}
	for _, s := range []TransactionStatus{StatusInitiated, StatusPending, StatusProcessing} {
		require.False(t, s.IsTerminal(), "status %q", s)
	}
}
