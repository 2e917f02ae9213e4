package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/shulefund/payments/internal/models"
	"github.com/shulefund/payments/pkg/config"
	"github.com/shulefund/payments/pkg/logctx"
	"github.com/shulefund/payments/pkg/types"
)

// APIError is a non-2xx backend response. The backend reports a human-readable
// cause in the "detail" field.
type APIError struct {
	Status int
	Detail string
}

func (e *APIError) Error() string {
	if e.Detail != "" {
		return e.Detail
	}
	return fmt.Sprintf("backend returned status %d", e.Status)
}

// Client is the typed client for the charity platform backend that owns
// transaction state and fronts the payment providers.
type Client struct {
	baseURL string
	http    *http.Client
	tokens  TokenSource
	log     *zap.SugaredLogger
}

func NewClient(cfg *config.Config, tokens TokenSource, log *zap.SugaredLogger) *Client {
	timeout := cfg.Backend.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		baseURL: strings.TrimRight(cfg.Backend.BaseURL, "/"),
		http:    &http.Client{Timeout: timeout},
		tokens:  tokens,
		log:     log,
	}
}

// wireMethod translates the client-side method enum to the backend's wire
// value; airtel_money is "airtel" on the wire.
func wireMethod(m types.PaymentMethod) string {
	if m == types.MethodAirtelMoney {
		return "airtel"
	}
	return string(m)
}

func (c *Client) do(ctx context.Context, method, path string, body any, out any) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	token, ok := bearerFrom(ctx)
	if !ok && c.tokens != nil {
		token = c.tokens.Token(ctx)
	}
	// the backend expects the header even when the session has no token
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("backend request failed: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read backend response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := &APIError{Status: resp.StatusCode}
		var detail struct {
			Detail string `json:"detail"`
		}
		if json.Unmarshal(raw, &detail) == nil {
			apiErr.Detail = detail.Detail
		}
		logctx.FromCtx(ctx, c.log).Warnw("backend call rejected",
			"method", method, "path", path, "status", resp.StatusCode, "detail", apiErr.Detail)
		return apiErr
	}

	if out != nil {
		if err := json.Unmarshal(raw, out); err != nil {
			return fmt.Errorf("failed to decode backend response: %w", err)
		}
	}
	return nil
}

// InitiateTransaction persists a transaction row in state "initiated" and
// returns it with the backend-assigned id bound to the reference id.
func (c *Client) InitiateTransaction(ctx context.Context, req *InitiateRequest) (*models.PaymentTransaction, error) {
	body := *req
	body.PaymentMethod = wireMethod(types.PaymentMethod(req.PaymentMethod))

	var tx models.PaymentTransaction
	if err := c.do(ctx, http.MethodPost, "/payments/initiate", &body, &tx); err != nil {
		return nil, err
	}
	return &tx, nil
}

func (c *Client) ProcessMpesa(ctx context.Context, req *MpesaProcessRequest) (*MpesaProcessResponse, error) {
	var out MpesaProcessResponse
	if err := c.do(ctx, http.MethodPost, "/payments/mpesa/process", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) ProcessAirtel(ctx context.Context, req *AirtelProcessRequest) (*AirtelProcessResponse, error) {
	var out AirtelProcessResponse
	if err := c.do(ctx, http.MethodPost, "/payments/airtel/process", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) ProcessCard(ctx context.Context, req *CardProcessRequest) (*CardProcessResponse, error) {
	var out CardProcessResponse
	if err := c.do(ctx, http.MethodPost, "/payments/card/process", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) CreatePayPalOrder(ctx context.Context, req *PayPalCreateRequest) (*PayPalCreateResponse, error) {
	var out PayPalCreateResponse
	if err := c.do(ctx, http.MethodPost, "/payments/paypal/create", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) InitiateBankTransfer(ctx context.Context, req *BankTransferInitiateRequest) (*BankTransferInitiateResponse, error) {
	var out BankTransferInitiateResponse
	if err := c.do(ctx, http.MethodPost, "/payments/bank-transfer/initiate", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// GetTransactionStatus fetches the authoritative transaction view.
func (c *Client) GetTransactionStatus(ctx context.Context, transactionID string) (*models.PaymentTransaction, error) {
	var out struct {
		Transaction *models.PaymentTransaction `json:"transaction"`
	}
	if err := c.do(ctx, http.MethodGet, "/payments/status/"+transactionID, nil, &out); err != nil {
		return nil, err
	}
	if out.Transaction == nil {
		return nil, fmt.Errorf("backend returned no transaction for %s", transactionID)
	}
	return out.Transaction, nil
}

// RecordDonation persists donation bookkeeping after payment success.
func (c *Client) RecordDonation(ctx context.Context, rec *DonationRecord) error {
	return c.do(ctx, http.MethodPost, "/donations", rec, nil)
}

func newTokenSource(cfg *config.Config) TokenSource {
	return StaticToken(cfg.Backend.Token)
}

var Module = fx.Options(
	fx.Provide(newTokenSource),
	fx.Provide(NewClient),
)
