package backend

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/shulefund/payments/pkg/config"
	"github.com/shulefund/payments/pkg/types"
)

func newTestClient(t *testing.T, handler http.HandlerFunc, token TokenSource) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	cfg := &config.Config{Backend: config.BackendConfig{BaseURL: srv.URL}}
	return NewClient(cfg, token, zap.NewNop().Sugar())
}

func TestInitiateTransaction_TranslatesAirtelOnTheWire(t *testing.T) {
	var body map[string]any
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/payments/initiate", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		_ = json.NewEncoder(w).Encode(map[string]any{
			"id": "txn-1", "reference_id": body["reference_id"], "status": "initiated",
		})
	}, StaticToken("svc-token"))

	tx, err := c.InitiateTransaction(context.Background(), &InitiateRequest{
		ReferenceID:   "DON-1699999999999-000001",
		PaymentType:   types.PaymentTypeDonation,
		Amount:        decimal.NewFromInt(100),
		Currency:      "KES",
		PaymentMethod: string(types.MethodAirtelMoney),
	})
	require.NoError(t, err)
	require.Equal(t, "txn-1", tx.ID)
	require.Equal(t, "airtel", body["payment_method"])
}

func TestDo_SendsBearerEvenWhenTokenEmpty(t *testing.T) {
	var header string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		header = r.Header.Get("Authorization")
		_ = json.NewEncoder(w).Encode(map[string]any{"transaction": map[string]any{"id": "txn-1", "status": "pending"}})
	}, StaticToken(""))

	_, err := c.GetTransactionStatus(context.Background(), "txn-1")
	require.NoError(t, err)
	require.Equal(t, "Bearer ", header)
}

func TestDo_ContextBearerOverridesStaticToken(t *testing.T) {
	var header string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		header = r.Header.Get("Authorization")
		_ = json.NewEncoder(w).Encode(map[string]any{"transaction": map[string]any{"id": "txn-1", "status": "pending"}})
	}, StaticToken("svc-token"))

	ctx := WithBearer(context.Background(), "session-token")
	_, err := c.GetTransactionStatus(ctx, "txn-1")
	require.NoError(t, err)
	require.Equal(t, "Bearer session-token", header)
}

func TestDo_DecodesDetailOnFailure(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
		_ = json.NewEncoder(w).Encode(map[string]string{"detail": "amount must be positive"})
	}, StaticToken("svc-token"))

	_, err := c.InitiateTransaction(context.Background(), &InitiateRequest{
		ReferenceID: "DON-1", PaymentType: types.PaymentTypeDonation,
		Amount: decimal.NewFromInt(0), Currency: "KES",
		PaymentMethod: string(types.MethodMpesa),
	})

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	require.Equal(t, http.StatusUnprocessableEntity, apiErr.Status)
	require.Equal(t, "amount must be positive", apiErr.Error())
}

func TestGetTransactionStatus_UnwrapsEnvelope(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/payments/status/txn-9", r.URL.Path)
		_ = json.NewEncoder(w).Encode(map[string]any{"transaction": map[string]any{
			"id": "txn-9", "status": "completed", "reference_id": "DON-1699999999999-000002",
		}})
	}, StaticToken("svc-token"))

	tx, err := c.GetTransactionStatus(context.Background(), "txn-9")
	require.NoError(t, err)
	require.Equal(t, types.StatusCompleted, tx.Status)
	require.Equal(t, "DON-1699999999999-000002", tx.ReferenceID)
}

func TestProcessMpesa_RoundTrip(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/payments/mpesa/process", r.URL.Path)
		var req MpesaProcessRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		require.Equal(t, "254712345678", req.PhoneNumber)
		_ = json.NewEncoder(w).Encode(MpesaProcessResponse{
			Success: true, Message: "sent", CheckoutRequestID: "ws_CO_1", MerchantRequestID: "m-1",
		})
	}, StaticToken("svc-token"))

	resp, err := c.ProcessMpesa(context.Background(), &MpesaProcessRequest{
		TransactionID: "txn-1", PhoneNumber: "254712345678",
		Amount: decimal.NewFromInt(100), AccountReference: "DON-1", TransactionDesc: "donation",
	})
	require.NoError(t, err)
	require.True(t, resp.Success)
	require.Equal(t, "ws_CO_1", resp.CheckoutRequestID)
}
