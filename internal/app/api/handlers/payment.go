package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"github.com/shulefund/payments/internal/app/api/middleware"
	"github.com/shulefund/payments/internal/app/service/acklog"
	"github.com/shulefund/payments/internal/app/service/donation"
	"github.com/shulefund/payments/internal/app/service/orchestrator"
	"github.com/shulefund/payments/internal/app/service/poller"
	"github.com/shulefund/payments/internal/models"
	"github.com/shulefund/payments/pkg/response"
	"github.com/shulefund/payments/pkg/types"
)

type createPaymentRequest struct {
	PaymentType   string          `json:"payment_type" binding:"required"`
	Amount        decimal.Decimal `json:"amount"`
	Currency      string          `json:"currency"`
	PaymentMethod string          `json:"payment_method" binding:"required"`
	ReferenceID   string          `json:"reference_id"`

	// mobile money
	PhoneNumber string `json:"phone_number"`

	// card (token from the gateway; number/cvv validated locally, never forwarded)
	PaymentToken string `json:"payment_token"`
	CardNumber   string `json:"card_number"`
	CVV          string `json:"cvv"`
	ExpMonth     string `json:"exp_month"`
	ExpYear      string `json:"exp_year"`
	BillingName  string `json:"billing_name"`
	BillingEmail string `json:"billing_email"`

	// paypal
	ReturnURL string `json:"return_url"`
	CancelURL string `json:"cancel_url"`

	// bank transfer
	DonorName  string `json:"donor_name"`
	DonorEmail string `json:"donor_email"`

	Description string            `json:"description"`
	Metadata    map[string]string `json:"metadata"`
}

func (r *createPaymentRequest) toMethod() (orchestrator.Method, bool) {
	switch types.PaymentMethod(r.PaymentMethod) {
	case types.MethodMpesa:
		return &orchestrator.Mpesa{PhoneNumber: r.PhoneNumber, Description: r.Description}, true
	case types.MethodAirtelMoney:
		return &orchestrator.AirtelMoney{PhoneNumber: r.PhoneNumber, Description: r.Description}, true
	case types.MethodCard:
		return &orchestrator.Card{
			Token:        r.PaymentToken,
			Number:       r.CardNumber,
			CVV:          r.CVV,
			ExpMonth:     r.ExpMonth,
			ExpYear:      r.ExpYear,
			BillingName:  r.BillingName,
			BillingEmail: r.BillingEmail,
		}, true
	case types.MethodPayPal:
		return &orchestrator.PayPal{ReturnURL: r.ReturnURL, CancelURL: r.CancelURL, Description: r.Description}, true
	case types.MethodBankTransfer:
		return &orchestrator.BankTransfer{DonorName: r.DonorName, DonorEmail: r.DonorEmail}, true
	}
	return nil, false
}

// ApiCreatePayment validates and initiates a payment intent, dispatches it on
// the requested rail and returns the uniform dispatch result.
func ApiCreatePayment(orc orchestrator.PaymentOrchestrator, don *donation.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req createPaymentRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusOK, response.ErrorT[any](response.APIResponseCodeBadRequest, err.Error(), nil))
			return
		}

		method, ok := req.toMethod()
		if !ok {
			c.JSON(http.StatusOK, response.ErrorT[any](response.APIResponseCodeBadRequest, "unsupported payment method: "+req.PaymentMethod, nil))
			return
		}

		metadata := req.Metadata
		if claims := middleware.ClaimsFromGin(c); claims != nil {
			if metadata == nil {
				metadata = map[string]string{}
			}
			if _, ok := metadata["donor_name"]; !ok && claims.Name != "" {
				metadata["donor_name"] = claims.Name
			}
			if _, ok := metadata["donor_email"]; !ok && claims.Email != "" {
				metadata["donor_email"] = claims.Email
			}
		}

		res, err := orc.Process(c.Request.Context(), &orchestrator.PaymentRequest{
			PaymentType: types.PaymentType(req.PaymentType),
			Amount:      req.Amount,
			Currency:    req.Currency,
			Method:      method,
			ReferenceID: req.ReferenceID,
			Metadata:    metadata,
		})
		if err != nil {
			var verr *orchestrator.ValidationError
			var ierr *orchestrator.InitiationError
			switch {
			case errors.As(err, &verr):
				c.JSON(http.StatusOK, response.ErrorT[any](response.APIResponseCodeBadRequest, verr.Error(), nil))
			case errors.As(err, &ierr):
				c.JSON(http.StatusOK, response.ErrorT[any](response.APIResponseCodeUpstream, ierr.Error(), nil))
			default:
				// Provider failure: the result still carries the failed view
				// so the UI can offer retry with the entered details kept.
				c.JSON(http.StatusOK, response.ErrorT(response.APIResponseCodeError, err.Error(), res))
			}
			return
		}

		don.RecordCompleted(c.Request.Context(), res.Transaction)
		c.JSON(http.StatusOK, response.OKT(res))
	}
}

// ApiGetPayment returns the backend-authoritative transaction snapshot.
func ApiGetPayment(src poller.StatusSource) gin.HandlerFunc {
	return func(c *gin.Context) {
		tx, err := src.GetTransactionStatus(c.Request.Context(), c.Param("id"))
		if err != nil {
			c.JSON(http.StatusOK, response.ErrorT[any](response.APIResponseCodeUpstream, err.Error(), nil))
			return
		}
		c.JSON(http.StatusOK, response.OKT(tx))
	}
}

type waitPaymentResponse struct {
	Transaction *models.PaymentTransaction `json:"transaction"`
	Pending     bool                       `json:"pending"`
}

// ApiWaitPayment long-polls the transaction until it reaches a terminal
// state, the client disconnects, or the poll budget runs out. A budget expiry
// is reported as still pending, never as failed.
func ApiWaitPayment(p *poller.Poller, don *donation.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		tx, err := p.Await(c.Request.Context(), c.Param("id"), nil)
		switch {
		case errors.Is(err, poller.ErrWatchActive):
			c.JSON(http.StatusOK, response.ErrorT[any](response.APIResponseCodeConflict, err.Error(), nil))
			return
		case errors.Is(err, poller.ErrInconclusive):
			c.JSON(http.StatusOK, response.OKT(waitPaymentResponse{Transaction: tx, Pending: true}))
			return
		case err != nil:
			// client went away or the request context was torn down
			c.JSON(http.StatusOK, response.ErrorT[any](response.APIResponseCodeError, err.Error(), nil))
			return
		}

		don.RecordCompleted(c.Request.Context(), tx)
		c.JSON(http.StatusOK, response.OKT(waitPaymentResponse{Transaction: tx, Pending: !tx.IsTerminal()}))
	}
}

type acknowledgeRequest struct {
	DonorName  string `json:"donor_name"`
	DonorEmail string `json:"donor_email"`
}

type acknowledgeResponse struct {
	Acknowledgement *models.BankTransferAck    `json:"acknowledgement"`
	Transaction     *models.PaymentTransaction `json:"transaction"`
}

// ApiAcknowledgeTransfer records the payer's "I've transferred" press for a
// bank transfer. It never advances the transaction status; reconciliation
// does that backend-side.
func ApiAcknowledgeTransfer(src poller.StatusSource, ack *acklog.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req acknowledgeRequest
		_ = c.ShouldBindJSON(&req)
		if claims := middleware.ClaimsFromGin(c); claims != nil {
			if req.DonorName == "" {
				req.DonorName = claims.Name
			}
			if req.DonorEmail == "" {
				req.DonorEmail = claims.Email
			}
		}

		tx, err := src.GetTransactionStatus(c.Request.Context(), c.Param("id"))
		if err != nil {
			c.JSON(http.StatusOK, response.ErrorT[any](response.APIResponseCodeUpstream, err.Error(), nil))
			return
		}

		row, err := ack.RecordAcknowledgement(c.Request.Context(), tx, req.DonorName, req.DonorEmail)
		if err != nil {
			c.JSON(http.StatusOK, response.ErrorT[any](response.APIResponseCodeError, err.Error(), nil))
			return
		}
		c.JSON(http.StatusOK, response.OKT(acknowledgeResponse{Acknowledgement: row, Transaction: tx}))
	}
}

// ApiListAcknowledgements serves the reconciliation staff listing.
func ApiListAcknowledgements(ack *acklog.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		from, _ := strconv.Atoi(c.DefaultQuery("from", "0"))
		size, _ := strconv.Atoi(c.DefaultQuery("size", "10"))

		res, err := ack.List(c.Request.Context(), &acklog.ListRequest{From: from, Size: size})
		if err != nil {
			c.JSON(http.StatusOK, response.ErrorT[any](response.APIResponseCodeError, err.Error(), nil))
			return
		}
		c.JSON(http.StatusOK, response.OKT(res))
	}
}

func RegisterPaymentRoutes(r gin.IRouter, orc orchestrator.PaymentOrchestrator, p *poller.Poller, src poller.StatusSource, don *donation.Service, ack *acklog.Service) {
	r.POST("/payments", ApiCreatePayment(orc, don))
	r.GET("/payments/:id", ApiGetPayment(src))
	r.GET("/payments/:id/wait", ApiWaitPayment(p, don))
	r.POST("/payments/:id/acknowledge", ApiAcknowledgeTransfer(src, ack))
}

func RegisterAdminRoutes(r gin.IRouter, ack *acklog.Service) {
	r.GET("/acknowledgements", ApiListAcknowledgements(ack))
}
