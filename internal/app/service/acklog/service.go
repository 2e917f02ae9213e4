package acklog

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/shulefund/payments/internal/models"
	"github.com/shulefund/payments/pkg/tool"
)

// Service persists bank-transfer acknowledgements ("I've transferred") so
// reconciliation staff can match statements against references. Recording an
// acknowledgement never touches transaction status.
type Service struct {
	db  *gorm.DB
	log *zap.SugaredLogger
}

func NewService(db *gorm.DB, log *zap.SugaredLogger) *Service {
	return &Service{db: db, log: log}
}

// RecordAcknowledgement stores one acknowledgement for the given transaction
// view. Repeated button presses produce repeated rows; staff want to see them.
func (s *Service) RecordAcknowledgement(ctx context.Context, tx *models.PaymentTransaction, donorName, donorEmail string) (*models.BankTransferAck, error) {
	if tx == nil {
		return nil, fmt.Errorf("nil transaction")
	}
	ack := &models.BankTransferAck{
		ID:             tool.GenerateUUIDV7(),
		TransactionID:  tx.ID,
		ReferenceID:    tx.ReferenceID,
		DonorName:      donorName,
		DonorEmail:     donorEmail,
		Amount:         tx.Amount,
		Currency:       tx.Currency,
		Metadata:       datatypes.NewJSONType(tx.Metadata),
		AcknowledgedAt: time.Now(),
	}
	if err := s.db.WithContext(ctx).Create(ack).Error; err != nil {
		return nil, fmt.Errorf("failed to record acknowledgement: %w", err)
	}
	s.log.Infow("bank transfer acknowledged",
		"transaction_id", tx.ID, "reference_id", tx.ReferenceID)
	return ack, nil
}

type ListRequest struct {
	From int `json:"from"`
	Size int `json:"size"`
}

type ListResponse struct {
	Items []*models.BankTransferAck `json:"items"`
	Total int64                     `json:"total"`
}

// List implements the paginated listing used by reconciliation staff pages.
func (s *Service) List(ctx context.Context, req *ListRequest) (*ListResponse, error) {
	if req == nil {
		return nil, fmt.Errorf("nil request")
	}
	if req.Size <= 0 {
		req.Size = 10
	}
	if req.From < 0 {
		req.From = 0
	}

	tx := s.db.WithContext(ctx).Model(&models.BankTransferAck{})

	var total int64
	if err := tx.Count(&total).Error; err != nil {
		return nil, fmt.Errorf("failed to count acknowledgements: %w", err)
	}

	var rows []*models.BankTransferAck
	q := tx.Order("acknowledged_at DESC").Limit(req.Size)
	if req.From > 0 {
		q = q.Offset(req.From)
	}
	if err := q.Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to list acknowledgements: %w", err)
	}

	return &ListResponse{Items: rows, Total: total}, nil
}

var Module = fx.Options(
	fx.Provide(NewService),
)
