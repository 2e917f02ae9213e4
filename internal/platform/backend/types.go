package backend

import (
	"github.com/shopspring/decimal"

	"github.com/shulefund/payments/pkg/types"
)

// InitiateRequest creates the transaction row. The backend assigns the id;
// the client supplies the reference id before the row exists server-side.
type InitiateRequest struct {
	ReferenceID   string            `json:"reference_id"`
	PaymentType   types.PaymentType `json:"payment_type"`
	Amount        decimal.Decimal   `json:"amount"`
	Currency      string            `json:"currency"`
	PaymentMethod string            `json:"payment_method"`
	PhoneNumber   string            `json:"phone_number,omitempty"`
	Metadata      map[string]string `json:"metadata,omitempty"`
}

type MpesaProcessRequest struct {
	TransactionID    string          `json:"transaction_id"`
	PhoneNumber      string          `json:"phone_number"`
	Amount           decimal.Decimal `json:"amount"`
	AccountReference string          `json:"account_reference"`
	TransactionDesc  string          `json:"transaction_desc"`
}

type MpesaProcessResponse struct {
	Success           bool   `json:"success"`
	Message           string `json:"message"`
	CheckoutRequestID string `json:"checkout_request_id"`
	MerchantRequestID string `json:"merchant_request_id"`
}

type AirtelProcessRequest struct {
	TransactionID    string          `json:"transaction_id"`
	PhoneNumber      string          `json:"phone_number"`
	Amount           decimal.Decimal `json:"amount"`
	AccountReference string          `json:"account_reference"`
	TransactionDesc  string          `json:"transaction_desc"`
}

type AirtelProcessResponse struct {
	Success             bool   `json:"success"`
	Message             string `json:"message"`
	AirtelTransactionID string `json:"airtel_transaction_id"`
}

type CardProcessRequest struct {
	TransactionID string          `json:"transaction_id"`
	PaymentToken  string          `json:"payment_token"`
	Amount        decimal.Decimal `json:"amount"`
	BillingName   string          `json:"billing_name"`
	BillingEmail  string          `json:"billing_email"`
}

type CardProcessResponse struct {
	Success           bool   `json:"success"`
	Message           string `json:"message"`
	TransactionRef    string `json:"transaction_ref"`
	AuthorizationCode string `json:"authorization_code"`
}

type PayPalCreateRequest struct {
	TransactionID string          `json:"transaction_id"`
	Amount        decimal.Decimal `json:"amount"`
	Currency      string          `json:"currency"`
	ReturnURL     string          `json:"return_url"`
	CancelURL     string          `json:"cancel_url"`
	Description   string          `json:"description"`
}

type PayPalCreateResponse struct {
	Success     bool   `json:"success"`
	Message     string `json:"message"`
	OrderID     string `json:"order_id"`
	ApprovalURL string `json:"approval_url"`
}

type BankTransferInitiateRequest struct {
	TransactionID string          `json:"transaction_id"`
	Amount        decimal.Decimal `json:"amount"`
	Currency      string          `json:"currency"`
	DonorName     string          `json:"donor_name"`
	DonorEmail    string          `json:"donor_email"`
}

// BankDetails are the static account details shown to the payer alongside the
// transaction reference.
type BankDetails struct {
	BankName      string `json:"bank_name"`
	AccountName   string `json:"account_name"`
	AccountNumber string `json:"account_number"`
	BranchCode    string `json:"branch_code,omitempty"`
	SwiftCode     string `json:"swift_code,omitempty"`
}

type BankTransferInitiateResponse struct {
	Success     bool         `json:"success"`
	Message     string       `json:"message"`
	Reference   string       `json:"reference"`
	BankDetails *BankDetails `json:"bank_details"`
}

// DonationRecord persists donation bookkeeping after a successful payment,
// separate from the transaction record.
type DonationRecord struct {
	TransactionID string            `json:"transaction_id"`
	ReferenceID   string            `json:"reference_id"`
	Amount        decimal.Decimal   `json:"amount"`
	Currency      string            `json:"currency"`
	PaymentMethod string            `json:"payment_method"`
	DonorName     string            `json:"donor_name,omitempty"`
	DonorEmail    string            `json:"donor_email,omitempty"`
	Metadata      map[string]string `json:"metadata,omitempty"`
}
