package service

import (
	"context"
	"errors"
	"testing"

	"github.com/parcelhub/parcel-server/internal/lib/payment"
)

type mockGateway struct {
	CreatePaymentIntentFunc func(ctx context.Context, amount int64) (string, error)
}

func (m *mockGateway) CreatePaymentIntent(ctx context.Context, amount int64) (string, error) {
	return m.CreatePaymentIntentFunc(ctx, amount)
}

func TestPaymentServiceCreatePaymentIntent(t *testing.T) {
	var gotAmount int64
	gateway := &mockGateway{
		CreatePaymentIntentFunc: func(_ context.Context, amount int64) (string, error) {
			gotAmount = amount
			return "pi_123_secret_abc", nil
		},
	}
	svc := NewPaymentService(newTestServer(), gateway)

	secret, err := svc.CreatePaymentIntent(context.Background(), 1500)
	if err != nil {
		t.Fatalf("CreatePaymentIntent() error = %v", err)
	}
	if secret != "pi_123_secret_abc" || gotAmount != 1500 {
		t.Errorf("secret = %q, amount = %d", secret, gotAmount)
	}
}

func TestPaymentServiceGatewayError(t *testing.T) {
	gwErr := &payment.GatewayError{Message: "Amount must be at least 50 cents", Status: 400}
	gateway := &mockGateway{
		CreatePaymentIntentFunc: func(context.Context, int64) (string, error) {
			return "", gwErr
		},
	}
	svc := NewPaymentService(newTestServer(), gateway)

	_, err := svc.CreatePaymentIntent(context.Background(), 1)
	var target *payment.GatewayError
	if !errors.As(err, &target) || target.Message != gwErr.Message {
		t.Errorf("CreatePaymentIntent() error = %v", err)
	}
}
