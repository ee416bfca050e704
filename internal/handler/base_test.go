package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/parcelhub/parcel-server/internal/errs"
	"github.com/parcelhub/parcel-server/internal/lib/payment"
	"github.com/parcelhub/parcel-server/internal/server"
	"github.com/parcelhub/parcel-server/internal/service"
	"github.com/rs/zerolog"
)

type mockGateway struct {
	CreatePaymentIntentFunc func(ctx context.Context, amount int64) (string, error)
}

func (m *mockGateway) CreatePaymentIntent(ctx context.Context, amount int64) (string, error) {
	return m.CreatePaymentIntentFunc(ctx, amount)
}

func newTestServer() *server.Server {
	log := zerolog.Nop()
	return &server.Server{Logger: &log}
}

func TestHandleUsesFreshRequest(t *testing.T) {
	proto := &CreatePaymentIntentRequest{}
	var seen []*CreatePaymentIntentRequest

	h := Handle(NewHandler(newTestServer()), func(c echo.Context, req *CreatePaymentIntentRequest) (int64, error) {
		seen = append(seen, req)
		return int64(req.AmountInCents), nil
	}, http.StatusOK, proto)

	e := echo.New()
	for _, body := range []string{`{"amountInCents":1}`, `{}`} {
		req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
		rec := httptest.NewRecorder()
		if err := h(e.NewContext(req, rec)); err != nil {
			t.Fatalf("handler error = %v", err)
		}
	}

	if len(seen) != 2 || seen[0] == seen[1] || seen[0] == proto {
		t.Fatal("requests were shared between calls")
	}
	if seen[1].AmountInCents != 0 {
		t.Errorf("second request amount = %d, want 0", seen[1].AmountInCents)
	}
	if proto.AmountInCents != 0 {
		t.Error("prototype request was mutated")
	}
}

func TestCreatePaymentIntentErrors(t *testing.T) {
	tests := []struct {
		name        string
		err         error
		wantMessage string
		wantDetail  string
	}{
		{
			name:        "gateway rejection",
			err:         &payment.GatewayError{Message: "Amount must be at least $0.50 usd", Code: "amount_too_small"},
			wantMessage: "Amount must be at least $0.50 usd",
			wantDetail:  "Amount must be at least $0.50 usd",
		},
		{
			name:        "other failure",
			err:         errors.New("dial tcp: i/o timeout"),
			wantMessage: "Failed to create payment intent",
			wantDetail:  "dial tcp: i/o timeout",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newTestServer()
			gateway := &mockGateway{
				CreatePaymentIntentFunc: func(context.Context, int64) (string, error) {
					return "", tt.err
				},
			}
			h := NewPaymentHandler(s, service.NewPaymentService(s, gateway))

			c := echo.New().NewContext(httptest.NewRequest(http.MethodPost, "/", nil), httptest.NewRecorder())
			_, err := h.CreatePaymentIntent(c, &CreatePaymentIntentRequest{AmountInCents: 10})

			var httpErr *errs.HTTPError
			if !errors.As(err, &httpErr) {
				t.Fatalf("error = %v, want *errs.HTTPError", err)
			}
			if httpErr.Status != http.StatusInternalServerError || httpErr.Message != tt.wantMessage || httpErr.Detail != tt.wantDetail {
				t.Errorf("error = %+v", httpErr)
			}
		})
	}
}

func TestAmountUnmarshalJSON(t *testing.T) {
	tests := []struct {
		in      string
		want    Amount
		wantErr bool
	}{
		{in: `2500`, want: 2500},
		{in: `"2500"`, want: 2500},
		{in: `-5`, want: -5},
		{in: `null`, want: 0},
		{in: `"abc"`, wantErr: true},
		{in: `25.5`, wantErr: true},
		{in: `true`, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			var req CreatePaymentIntentRequest
			err := json.Unmarshal([]byte(`{"amountInCents":`+tt.in+`}`), &req)
			if (err != nil) != tt.wantErr {
				t.Fatalf("Unmarshal() error = %v, wantErr %v", err, tt.wantErr)
			}
			if !tt.wantErr && req.AmountInCents != tt.want {
				t.Errorf("AmountInCents = %d, want %d", req.AmountInCents, tt.want)
			}
		})
	}
}
