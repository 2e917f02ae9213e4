package orchestrator

import (
	"github.com/shopspring/decimal"

	"github.com/shulefund/payments/internal/models"
	"github.com/shulefund/payments/internal/platform/backend"
	"github.com/shulefund/payments/pkg/types"
)

// Method is the sealed payment-method union. Each variant carries only the
// fields its rail needs; dispatch matches exhaustively in one place so a new
// rail cannot be added without a dispatch arm.
type Method interface {
	Name() types.PaymentMethod
	isMethod()
}

// Mpesa is an M-Pesa STK push to the payer's phone.
type Mpesa struct {
	PhoneNumber      string
	AccountReference string
	Description      string
}

func (Mpesa) Name() types.PaymentMethod { return types.MethodMpesa }
func (Mpesa) isMethod()                 {}

// AirtelMoney is an Airtel Money push to the payer's phone.
type AirtelMoney struct {
	PhoneNumber      string
	AccountReference string
	Description      string
}

func (AirtelMoney) Name() types.PaymentMethod { return types.MethodAirtelMoney }
func (AirtelMoney) isMethod()                 {}

// Card is a tokenized card charge. Number and CVV exist only for local
// validation and are never serialized; the gateway token is what travels.
type Card struct {
	Token string `json:"payment_token"`

	Number string `json:"-"`
	CVV    string `json:"-"`

	ExpMonth     string `json:"exp_month,omitempty"`
	ExpYear      string `json:"exp_year,omitempty"`
	BillingName  string `json:"billing_name"`
	BillingEmail string `json:"billing_email"`
}

func (Card) Name() types.PaymentMethod { return types.MethodCard }
func (Card) isMethod()                 {}

// PayPal creates an order the payer approves out-of-band.
type PayPal struct {
	ReturnURL   string
	CancelURL   string
	Description string
}

func (PayPal) Name() types.PaymentMethod { return types.MethodPayPal }
func (PayPal) isMethod()                 {}

// BankTransfer hands the payer static bank details plus the reference id;
// status advances only through backend-side reconciliation.
type BankTransfer struct {
	DonorName  string
	DonorEmail string
}

func (BankTransfer) Name() types.PaymentMethod { return types.MethodBankTransfer }
func (BankTransfer) isMethod()                 {}

// PaymentRequest is a donation or sponsorship payment intent.
type PaymentRequest struct {
	PaymentType types.PaymentType
	Amount      decimal.Decimal
	Currency    string
	Method      Method
	// ReferenceID is generated when empty; once set it never changes.
	ReferenceID string
	Metadata    map[string]string
}

// DispatchResult is the uniform outcome shape callers receive regardless of
// rail. Beyond "should I redirect" and "should I poll", no per-method
// branching leaks to the presentation layer.
type DispatchResult struct {
	Transaction *models.PaymentTransaction `json:"transaction"`
	Next        types.NextAction           `json:"next_action"`
	Message     string                     `json:"message,omitempty"`

	// ActionRedirect only.
	ApprovalURL string `json:"approval_url,omitempty"`
	// ActionDisplayInstructions only.
	BankDetails *backend.BankDetails `json:"bank_details,omitempty"`
	Reference   string               `json:"reference,omitempty"`
	// Provider-assigned correlation id, when the rail returns one.
	ProviderRef string `json:"provider_ref,omitempty"`
}
