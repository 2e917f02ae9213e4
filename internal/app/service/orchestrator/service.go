package orchestrator

import (
	"context"
	"fmt"
	"time"

	"github.com/samber/lo"
	"go.uber.org/zap"

	"github.com/shulefund/payments/internal/models"
	"github.com/shulefund/payments/internal/platform/backend"
	"github.com/shulefund/payments/pkg/config"
	"github.com/shulefund/payments/pkg/logctx"
	"github.com/shulefund/payments/pkg/metrics"
	"github.com/shulefund/payments/pkg/tool"
	"github.com/shulefund/payments/pkg/types"
	"github.com/shulefund/payments/pkg/validate"
)

// Backend is the slice of the platform client the orchestrator needs.
type Backend interface {
	InitiateTransaction(ctx context.Context, req *backend.InitiateRequest) (*models.PaymentTransaction, error)
	ProcessMpesa(ctx context.Context, req *backend.MpesaProcessRequest) (*backend.MpesaProcessResponse, error)
	ProcessAirtel(ctx context.Context, req *backend.AirtelProcessRequest) (*backend.AirtelProcessResponse, error)
	ProcessCard(ctx context.Context, req *backend.CardProcessRequest) (*backend.CardProcessResponse, error)
	CreatePayPalOrder(ctx context.Context, req *backend.PayPalCreateRequest) (*backend.PayPalCreateResponse, error)
	InitiateBankTransfer(ctx context.Context, req *backend.BankTransferInitiateRequest) (*backend.BankTransferInitiateResponse, error)
}

// PaymentOrchestrator takes a payment intent through validation, transaction
// creation and provider dispatch, and returns a uniform result shape.
type PaymentOrchestrator interface {
	Process(ctx context.Context, req *PaymentRequest) (*DispatchResult, error)
}

type Service struct {
	cfg     *config.Config
	log     *zap.SugaredLogger
	backend Backend
	metrics *metrics.Metrics
}

func NewService(cfg *config.Config, log *zap.SugaredLogger, be Backend, m *metrics.Metrics) PaymentOrchestrator {
	return &Service{cfg: cfg, log: log, backend: be, metrics: m}
}

// Process validates the intent, persists the transaction in state
// "initiated", then dispatches on the method variant. Validation failures
// block everything: no transaction is created and no provider is called.
// The persisted row is guaranteed to exist before any dispatch is attempted.
func (s *Service) Process(ctx context.Context, req *PaymentRequest) (*DispatchResult, error) {
	if err := s.validateRequest(req); err != nil {
		return nil, err
	}

	if req.ReferenceID == "" {
		req.ReferenceID = tool.NewReference(req.PaymentType.ReferencePrefix())
	}

	tx, err := s.initiate(ctx, req)
	if err != nil {
		return nil, err
	}

	log := logctx.FromCtx(ctx, s.log)
	log.Infow("transaction initiated",
		"transaction_id", tx.ID,
		"reference_id", tx.ReferenceID,
		"payment_method", req.Method.Name(),
		"amount", req.Amount.String(),
		"currency", req.Currency,
	)
	if s.metrics != nil {
		s.metrics.PaymentsInitiated.WithLabelValues(string(req.Method.Name())).Inc()
	}

	start := time.Now()
	res, err := s.dispatch(ctx, tx, req)
	if s.metrics != nil {
		s.metrics.ProviderDuration.WithLabelValues(string(req.Method.Name())).
			Observe(float64(time.Since(start).Milliseconds()))
		if res != nil && res.Transaction.IsTerminal() {
			s.metrics.PaymentsTerminal.WithLabelValues(string(res.Transaction.Status)).Inc()
		}
	}
	return res, err
}

func (s *Service) validateRequest(req *PaymentRequest) error {
	if req == nil {
		return &ValidationError{Field: "request", Reason: "missing payment request"}
	}
	if !req.PaymentType.Valid() {
		return &ValidationError{Field: "payment_type", Reason: "must be donation or sponsorship"}
	}
	if !validate.ValidAmount(req.Amount) {
		return &ValidationError{Field: "amount", Reason: "must be greater than zero"}
	}
	if len(req.Currency) != 3 {
		return &ValidationError{Field: "currency", Reason: "must be a 3-letter currency code"}
	}
	if req.Method == nil {
		return &ValidationError{Field: "payment_method", Reason: "must be one of mpesa, airtel_money, card, paypal, bank_transfer"}
	}

	country := s.cfg.Payments.PhoneCountry

	switch m := req.Method.(type) {
	case *Mpesa:
		if !validate.ValidatePhoneNumber(m.PhoneNumber, country) {
			return &ValidationError{Field: "phone_number", Reason: "not a valid mobile money number"}
		}
		m.PhoneNumber = validate.FormatPhoneNumber(m.PhoneNumber, country)
	case *AirtelMoney:
		if !validate.ValidatePhoneNumber(m.PhoneNumber, country) {
			return &ValidationError{Field: "phone_number", Reason: "not a valid mobile money number"}
		}
		m.PhoneNumber = validate.FormatPhoneNumber(m.PhoneNumber, country)
	case *Card:
		return validateCard(m)
	case *PayPal:
		// return/cancel URLs are defaulted from config at dispatch time
	case *BankTransfer:
		if m.DonorName == "" {
			return &ValidationError{Field: "donor_name", Reason: "required for bank transfer instructions"}
		}
	default:
		return &ValidationError{Field: "payment_method", Reason: fmt.Sprintf("unsupported method %T", req.Method)}
	}
	return nil
}

// validateCard gates the tokenized card flow. Raw PAN/CVV are checked locally
// when present and then dropped; only the gateway token travels.
func validateCard(m *Card) error {
	if m.Token == "" {
		return &ValidationError{Field: "payment_token", Reason: "card details must be tokenized before submission"}
	}
	if m.Number != "" {
		if !validate.ValidateCardNumber(m.Number) {
			return &ValidationError{Field: "card_number", Reason: "card number failed checksum validation"}
		}
		scheme := validate.DetectCardType(m.Number)
		if m.CVV != "" && !validate.ValidateCVV(m.CVV, scheme.Type) {
			return &ValidationError{Field: "cvv", Reason: "security code has the wrong length"}
		}
	}
	if m.ExpMonth != "" || m.ExpYear != "" {
		if !validate.ValidateExpiry(m.ExpMonth, m.ExpYear) {
			return &ValidationError{Field: "expiry", Reason: "card is expired"}
		}
	}
	if m.BillingName == "" {
		return &ValidationError{Field: "billing_name", Reason: "required for card payments"}
	}
	return nil
}

func (s *Service) initiate(ctx context.Context, req *PaymentRequest) (*models.PaymentTransaction, error) {
	init := &backend.InitiateRequest{
		ReferenceID:   req.ReferenceID,
		PaymentType:   req.PaymentType,
		Amount:        req.Amount,
		Currency:      req.Currency,
		PaymentMethod: string(req.Method.Name()),
		Metadata:      req.Metadata,
	}
	switch m := req.Method.(type) {
	case *Mpesa:
		init.PhoneNumber = m.PhoneNumber
	case *AirtelMoney:
		init.PhoneNumber = m.PhoneNumber
	}

	tx, err := s.backend.InitiateTransaction(ctx, init)
	if err != nil {
		return nil, &InitiationError{Err: err}
	}
	if tx.Status == "" {
		tx.Status = types.StatusInitiated
	}
	if tx.InitiatedAt == nil {
		tx.InitiatedAt = lo.ToPtr(time.Now())
	}
	return tx, nil
}

// dispatch is the single exhaustive match over the method union.
func (s *Service) dispatch(ctx context.Context, tx *models.PaymentTransaction, req *PaymentRequest) (*DispatchResult, error) {
	switch m := req.Method.(type) {
	case *Mpesa:
		return s.dispatchMpesa(ctx, tx, req, m)
	case *AirtelMoney:
		return s.dispatchAirtel(ctx, tx, req, m)
	case *Card:
		return s.dispatchCard(ctx, tx, req, m)
	case *PayPal:
		return s.dispatchPayPal(ctx, tx, req, m)
	case *BankTransfer:
		return s.dispatchBankTransfer(ctx, tx, req, m)
	default:
		return nil, &ProviderError{Method: req.Method.Name(), Reason: "unsupported payment method"}
	}
}

func (s *Service) dispatchMpesa(ctx context.Context, tx *models.PaymentTransaction, req *PaymentRequest, m *Mpesa) (*DispatchResult, error) {
	accountRef := m.AccountReference
	if accountRef == "" {
		accountRef = tx.ReferenceID
	}
	desc := m.Description
	if desc == "" {
		desc = fmt.Sprintf("Shulefund %s %s", req.PaymentType, tx.ReferenceID)
	}

	resp, err := s.backend.ProcessMpesa(ctx, &backend.MpesaProcessRequest{
		TransactionID:    tx.ID,
		PhoneNumber:      m.PhoneNumber,
		Amount:           req.Amount,
		AccountReference: accountRef,
		TransactionDesc:  desc,
	})
	if err != nil {
		return s.failTransaction(tx, req.Method.Name(), "", err)
	}
	if !resp.Success {
		return s.failTransaction(tx, req.Method.Name(), resp.Message, nil)
	}

	// Provider acknowledged the push, not the payment. Confirmation arrives
	// out-of-band once the payer enters their PIN.
	tx.ApplyStatus(types.StatusPending)
	tx.PhoneNumber = m.PhoneNumber
	return &DispatchResult{
		Transaction: tx,
		Next:        types.ActionPoll,
		Message:     "Payment request sent. Check your phone to complete.",
		ProviderRef: resp.CheckoutRequestID,
	}, nil
}

func (s *Service) dispatchAirtel(ctx context.Context, tx *models.PaymentTransaction, req *PaymentRequest, m *AirtelMoney) (*DispatchResult, error) {
	accountRef := m.AccountReference
	if accountRef == "" {
		accountRef = tx.ReferenceID
	}
	desc := m.Description
	if desc == "" {
		desc = fmt.Sprintf("Shulefund %s %s", req.PaymentType, tx.ReferenceID)
	}

	resp, err := s.backend.ProcessAirtel(ctx, &backend.AirtelProcessRequest{
		TransactionID:    tx.ID,
		PhoneNumber:      m.PhoneNumber,
		Amount:           req.Amount,
		AccountReference: accountRef,
		TransactionDesc:  desc,
	})
	if err != nil {
		return s.failTransaction(tx, req.Method.Name(), "", err)
	}
	if !resp.Success {
		return s.failTransaction(tx, req.Method.Name(), resp.Message, nil)
	}

	tx.ApplyStatus(types.StatusPending)
	tx.PhoneNumber = m.PhoneNumber
	return &DispatchResult{
		Transaction: tx,
		Next:        types.ActionPoll,
		Message:     "Payment request sent. Check your phone to complete.",
		ProviderRef: resp.AirtelTransactionID,
	}, nil
}

// dispatchCard is the one synchronous rail: the gateway answers success or
// failure immediately and no polling is needed.
func (s *Service) dispatchCard(ctx context.Context, tx *models.PaymentTransaction, req *PaymentRequest, m *Card) (*DispatchResult, error) {
	if m.Number != "" {
		scheme := validate.DetectCardType(m.Number)
		tx.CardBrand = scheme.Brand
		if len(m.Number) >= 4 {
			tx.CardLast4 = m.Number[len(m.Number)-4:]
		}
	}

	resp, err := s.backend.ProcessCard(ctx, &backend.CardProcessRequest{
		TransactionID: tx.ID,
		PaymentToken:  m.Token,
		Amount:        req.Amount,
		BillingName:   m.BillingName,
		BillingEmail:  m.BillingEmail,
	})
	if err != nil {
		return s.failTransaction(tx, req.Method.Name(), "", err)
	}
	if !resp.Success {
		return s.failTransaction(tx, req.Method.Name(), resp.Message, nil)
	}

	tx.ApplyStatus(types.StatusCompleted)
	tx.CompletedAt = lo.ToPtr(time.Now())
	return &DispatchResult{
		Transaction: tx,
		Next:        types.ActionNone,
		Message:     resp.Message,
		ProviderRef: resp.TransactionRef,
	}, nil
}

func (s *Service) dispatchPayPal(ctx context.Context, tx *models.PaymentTransaction, req *PaymentRequest, m *PayPal) (*DispatchResult, error) {
	returnURL := m.ReturnURL
	if returnURL == "" {
		returnURL = s.cfg.Payments.CallbackBaseURL + "/payments/paypal/return"
	}
	cancelURL := m.CancelURL
	if cancelURL == "" {
		cancelURL = s.cfg.Payments.CallbackBaseURL + "/payments/paypal/cancel"
	}
	desc := m.Description
	if desc == "" {
		desc = fmt.Sprintf("Shulefund %s %s", req.PaymentType, tx.ReferenceID)
	}

	resp, err := s.backend.CreatePayPalOrder(ctx, &backend.PayPalCreateRequest{
		TransactionID: tx.ID,
		Amount:        req.Amount,
		Currency:      req.Currency,
		ReturnURL:     returnURL,
		CancelURL:     cancelURL,
		Description:   desc,
	})
	if err != nil {
		return s.failTransaction(tx, req.Method.Name(), "", err)
	}
	if !resp.Success {
		return s.failTransaction(tx, req.Method.Name(), resp.Message, nil)
	}

	tx.ApplyStatus(types.StatusPending)
	if resp.ApprovalURL != "" {
		return &DispatchResult{
			Transaction: tx,
			Next:        types.ActionRedirect,
			ApprovalURL: resp.ApprovalURL,
			ProviderRef: resp.OrderID,
		}, nil
	}
	// Already approved: behaves like mobile money from here on.
	return &DispatchResult{
		Transaction: tx,
		Next:        types.ActionPoll,
		ProviderRef: resp.OrderID,
	}, nil
}

func (s *Service) dispatchBankTransfer(ctx context.Context, tx *models.PaymentTransaction, req *PaymentRequest, m *BankTransfer) (*DispatchResult, error) {
	resp, err := s.backend.InitiateBankTransfer(ctx, &backend.BankTransferInitiateRequest{
		TransactionID: tx.ID,
		Amount:        req.Amount,
		Currency:      req.Currency,
		DonorName:     m.DonorName,
		DonorEmail:    m.DonorEmail,
	})
	if err != nil {
		return s.failTransaction(tx, req.Method.Name(), "", err)
	}
	if !resp.Success {
		return s.failTransaction(tx, req.Method.Name(), resp.Message, nil)
	}

	// No provider to poll; status advances via backend reconciliation once
	// the transfer shows up on the statement.
	return &DispatchResult{
		Transaction: tx,
		Next:        types.ActionDisplayInstructions,
		BankDetails: resp.BankDetails,
		Reference:   resp.Reference,
		Message:     resp.Message,
	}, nil
}

// failTransaction marks the local view failed and returns it alongside the
// provider error: callers get both the uniform failure shape and an error to
// surface. Transport failures are not distinguished from provider declines.
func (s *Service) failTransaction(tx *models.PaymentTransaction, method types.PaymentMethod, reason string, cause error) (*DispatchResult, error) {
	perr := &ProviderError{Method: method, Reason: reason, Err: cause}
	tx.ApplyStatus(types.StatusFailed)
	tx.FailureReason = perr.Error()
	tx.FailedAt = lo.ToPtr(time.Now())
	s.log.Warnw("provider dispatch failed",
		"transaction_id", tx.ID,
		"payment_method", method,
		"reason", tx.FailureReason,
	)
	return &DispatchResult{Transaction: tx, Next: types.ActionNone, Message: tx.FailureReason}, perr
}
