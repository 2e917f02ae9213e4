package donation

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/shulefund/payments/internal/models"
	"github.com/shulefund/payments/internal/platform/backend"
	"github.com/shulefund/payments/pkg/types"
)

type stubRecorder struct {
	records []*backend.DonationRecord
	err     error
}

func (s *stubRecorder) RecordDonation(_ context.Context, rec *backend.DonationRecord) error {
	if s.err != nil {
		return s.err
	}
	s.records = append(s.records, rec)
	return nil
}

func completedDonation(id string) *models.PaymentTransaction {
	return &models.PaymentTransaction{
		ID:            id,
		ReferenceID:   "DON-1699999999999-000001",
		PaymentType:   types.PaymentTypeDonation,
		PaymentMethod: types.MethodMpesa,
		Amount:        decimal.NewFromInt(100),
		Currency:      "KES",
		Status:        types.StatusCompleted,
		Metadata:      map[string]string{"donor_name": "Jane Donor"},
	}
}

func TestRecordCompleted_OncePerTransaction(t *testing.T) {
	rec := &stubRecorder{}
	svc := NewService(rec, zap.NewNop().Sugar())

	tx := completedDonation("tx-1")
	svc.RecordCompleted(context.Background(), tx)
	svc.RecordCompleted(context.Background(), tx)

	require.Len(t, rec.records, 1)
	require.Equal(t, "tx-1", rec.records[0].TransactionID)
	require.Equal(t, "Jane Donor", rec.records[0].DonorName)
}

func TestRecordCompleted_IgnoresNonDonationsAndNonCompleted(t *testing.T) {
	rec := &stubRecorder{}
	svc := NewService(rec, zap.NewNop().Sugar())

	sponsorship := completedDonation("tx-1")
	sponsorship.PaymentType = types.PaymentTypeSponsorship
	svc.RecordCompleted(context.Background(), sponsorship)

	pending := completedDonation("tx-2")
	pending.Status = types.StatusPending
	svc.RecordCompleted(context.Background(), pending)

	svc.RecordCompleted(context.Background(), nil)

	require.Empty(t, rec.records)
}

func TestRecordCompleted_RetriesAfterFailure(t *testing.T) {
	rec := &stubRecorder{err: errors.New("backend down")}
	svc := NewService(rec, zap.NewNop().Sugar())

	tx := completedDonation("tx-1")
	svc.RecordCompleted(context.Background(), tx)
	require.Empty(t, rec.records)

	// a later observation path can retry once the backend recovers
	rec.err = nil
	svc.RecordCompleted(context.Background(), tx)
	require.Len(t, rec.records, 1)
}
