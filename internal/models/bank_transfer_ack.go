package models

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

// BankTransferAck records a payer pressing "I've transferred" on the bank
// transfer instructions screen. It is a reconciliation aid for staff matching
// bank statements against references; it never changes transaction status.
type BankTransferAck struct {
	ID            string          `gorm:"column:id;primary_key;type:uuid" json:"id"`
	TransactionID string          `gorm:"column:transaction_id;type:varchar(64);not null;index:idx_ack_transaction_id" json:"transaction_id"`
	ReferenceID   string          `gorm:"column:reference_id;type:varchar(64);not null" json:"reference_id"`
	DonorName     string          `gorm:"column:donor_name;type:varchar(255)" json:"donor_name"`
	DonorEmail    string          `gorm:"column:donor_email;type:varchar(255)" json:"donor_email"`
	Amount        decimal.Decimal `gorm:"column:amount;type:numeric(18,2)" json:"amount"`
	Currency      string          `gorm:"column:currency;type:varchar(8)" json:"currency"`

	Metadata datatypes.JSONType[map[string]string] `gorm:"column:metadata;type:jsonb;default:'{}'" json:"metadata"`

	AcknowledgedAt time.Time `gorm:"column:acknowledged_at;not null" json:"acknowledged_at"`
	CreatedAt      time.Time `json:"created_at"`
}

func (BankTransferAck) TableName() string {
	return "bank_transfer_ack"
}
