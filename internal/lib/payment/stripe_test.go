package payment

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/parcelhub/parcel-server/internal/config"
	"github.com/rs/zerolog"
)

func newTestGateway(t *testing.T, handler http.HandlerFunc) *StripeGateway {
	t.Helper()

	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	log := zerolog.Nop()
	return NewStripeGateway(config.PaymentConfig{
		SecretKey: "sk_test_123",
		Currency:  "usd",
		APIURL:    srv.URL,
	}, &log)
}

func TestCreatePaymentIntent(t *testing.T) {
	calls := 0
	gw := newTestGateway(t, func(w http.ResponseWriter, r *http.Request) {
		calls++
		if r.Method != http.MethodPost || r.URL.Path != "/v1/payment_intents" {
			t.Errorf("request = %s %s", r.Method, r.URL.Path)
		}
		if err := r.ParseForm(); err != nil {
			t.Fatalf("ParseForm() error = %v", err)
		}
		if got := r.PostForm.Get("amount"); got != "5000" {
			t.Errorf("amount = %q, want 5000", got)
		}
		if got := r.PostForm.Get("currency"); got != "usd" {
			t.Errorf("currency = %q, want usd", got)
		}
		if got := r.PostForm.Get("payment_method_types[0]"); got != "card" {
			t.Errorf("payment_method_types[0] = %q, want card", got)
		}

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"pi_1","object":"payment_intent","amount":5000,"currency":"usd","client_secret":"pi_1_secret_abc"}`))
	})

	secret, err := gw.CreatePaymentIntent(context.Background(), 5000)
	if err != nil {
		t.Fatalf("CreatePaymentIntent() error = %v", err)
	}
	if secret != "pi_1_secret_abc" {
		t.Errorf("secret = %q, want pi_1_secret_abc", secret)
	}
	if calls != 1 {
		t.Errorf("calls = %d, want 1", calls)
	}
}

func TestCreatePaymentIntentForwardsNonPositiveAmounts(t *testing.T) {
	for _, amount := range []int64{0, -100} {
		var got string
		gw := newTestGateway(t, func(w http.ResponseWriter, r *http.Request) {
			_ = r.ParseForm()
			got = r.PostForm.Get("amount")
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusBadRequest)
			_, _ = w.Write([]byte(`{"error":{"type":"invalid_request_error","code":"parameter_invalid_integer","message":"This value must be greater than or equal to 1."}}`))
		})

		_, err := gw.CreatePaymentIntent(context.Background(), amount)
		if err == nil {
			t.Fatalf("CreatePaymentIntent(%d) error = nil", amount)
		}
		if got == "" {
			t.Errorf("amount %d was not forwarded", amount)
		}
	}
}

func TestCreatePaymentIntentRejected(t *testing.T) {
	calls := 0
	gw := newTestGateway(t, func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error":{"type":"invalid_request_error","code":"amount_too_small","message":"Amount must be at least $0.50 usd"}}`))
	})

	_, err := gw.CreatePaymentIntent(context.Background(), 10)

	var gwErr *GatewayError
	if !errors.As(err, &gwErr) {
		t.Fatalf("error = %v, want *GatewayError", err)
	}
	if gwErr.Message != "Amount must be at least $0.50 usd" {
		t.Errorf("Message = %q", gwErr.Message)
	}
	if gwErr.Code != "amount_too_small" || gwErr.Status != http.StatusBadRequest {
		t.Errorf("Code/Status = %q/%d", gwErr.Code, gwErr.Status)
	}
	if calls != 1 {
		t.Errorf("calls = %d, want 1 (no retries)", calls)
	}
}

func TestCreatePaymentIntentServerError(t *testing.T) {
	calls := 0
	gw := newTestGateway(t, func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"error":{"type":"api_error","message":"Something went wrong"}}`))
	})

	_, err := gw.CreatePaymentIntent(context.Background(), 5000)

	var gwErr *GatewayError
	if !errors.As(err, &gwErr) || gwErr.Message != "Something went wrong" {
		t.Fatalf("error = %v", err)
	}
	if calls != 1 {
		t.Errorf("calls = %d, want 1 (no retries)", calls)
	}
}
