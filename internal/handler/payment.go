package handler

import (
	"bytes"
	"encoding/json"
	"errors"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/parcelhub/parcel-server/internal/errs"
	"github.com/parcelhub/parcel-server/internal/lib/payment"
	"github.com/parcelhub/parcel-server/internal/server"
	"github.com/parcelhub/parcel-server/internal/service"
)

type PaymentHandler struct {
	Handler
	paymentService *service.PaymentService
}

func NewPaymentHandler(s *server.Server, paymentService *service.PaymentService) *PaymentHandler {
	return &PaymentHandler{
		Handler:        NewHandler(s),
		paymentService: paymentService,
	}
}

// CreatePaymentIntentRequest carries the amount in the smallest currency
// unit. It is forwarded unvalidated; a missing amount is 0.
type CreatePaymentIntentRequest struct {
	AmountInCents Amount `json:"amountInCents"`
}

// Amount is an integer amount sent either as a JSON number or as a string
// holding one ("2500").
type Amount int64

var errInvalidAmount = errors.New("amountInCents must be an integer")

func (a *Amount) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*a = 0
		return nil
	}

	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return errInvalidAmount
		}
		data = []byte(s)
	}

	n, err := strconv.ParseInt(string(bytes.TrimSpace(data)), 10, 64)
	if err != nil {
		return errInvalidAmount
	}
	*a = Amount(n)
	return nil
}

func (r *CreatePaymentIntentRequest) Validate() error {
	return nil
}

type CreatePaymentIntentResponse struct {
	ClientSecret string `json:"clientSecret"`
}

// CreatePaymentIntent answers 500 for any gateway failure. The processor's
// message is shown to the client as-is.
func (h *PaymentHandler) CreatePaymentIntent(c echo.Context, req *CreatePaymentIntentRequest) (*CreatePaymentIntentResponse, error) {
	secret, err := h.paymentService.CreatePaymentIntent(c.Request().Context(), int64(req.AmountInCents))
	if err != nil {
		var gwErr *payment.GatewayError
		if errors.As(err, &gwErr) {
			return nil, errs.NewOperationError(gwErr.Message, gwErr.Message)
		}
		return nil, errs.NewOperationError("Failed to create payment intent", err.Error())
	}

	return &CreatePaymentIntentResponse{ClientSecret: secret}, nil
}
