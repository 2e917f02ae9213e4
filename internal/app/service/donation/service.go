package donation

import (
	"context"
	"sync"

	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/shulefund/payments/internal/models"
	"github.com/shulefund/payments/internal/platform/backend"
	"github.com/shulefund/payments/pkg/logctx"
	"github.com/shulefund/payments/pkg/types"
)

// Recorder is the slice of the platform client this service needs.
type Recorder interface {
	RecordDonation(ctx context.Context, rec *backend.DonationRecord) error
}

// Service posts donation bookkeeping once a donation payment is observed
// completed. Bookkeeping is decoupled from the transaction record: a failure
// here never changes the payment outcome.
type Service struct {
	backend Recorder
	log     *zap.SugaredLogger

	mu       sync.Mutex
	recorded map[string]struct{}
}

func NewService(be Recorder, log *zap.SugaredLogger) *Service {
	return &Service{backend: be, log: log, recorded: make(map[string]struct{})}
}

// RecordCompleted records the donation for a completed donation-type
// transaction, at most once per transaction id per process. Sponsorship
// payments and non-terminal observations are ignored.
func (s *Service) RecordCompleted(ctx context.Context, tx *models.PaymentTransaction) {
	if tx == nil || tx.PaymentType != types.PaymentTypeDonation || tx.Status != types.StatusCompleted {
		return
	}

	s.mu.Lock()
	if _, dup := s.recorded[tx.ID]; dup {
		s.mu.Unlock()
		return
	}
	s.recorded[tx.ID] = struct{}{}
	s.mu.Unlock()

	rec := &backend.DonationRecord{
		TransactionID: tx.ID,
		ReferenceID:   tx.ReferenceID,
		Amount:        tx.Amount,
		Currency:      tx.Currency,
		PaymentMethod: string(tx.PaymentMethod),
		DonorName:     tx.Metadata["donor_name"],
		DonorEmail:    tx.Metadata["donor_email"],
		Metadata:      tx.Metadata,
	}
	if err := s.backend.RecordDonation(ctx, rec); err != nil {
		// Retry is possible on a later observation path.
		s.mu.Lock()
		delete(s.recorded, tx.ID)
		s.mu.Unlock()
		logctx.FromCtx(ctx, s.log).Errorw("failed to record donation",
			"transaction_id", tx.ID, "reference_id", tx.ReferenceID, "err", err)
		return
	}
	logctx.FromCtx(ctx, s.log).Infow("donation recorded",
		"transaction_id", tx.ID, "reference_id", tx.ReferenceID)
}

func newRecorder(c *backend.Client) Recorder { return c }

var Module = fx.Options(
	fx.Provide(newRecorder),
	fx.Provide(NewService),
)
