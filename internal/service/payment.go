package service

import (
	"context"

	"github.com/parcelhub/parcel-server/internal/lib/payment"
	"github.com/parcelhub/parcel-server/internal/server"
)

type PaymentService struct {
	server  *server.Server
	gateway payment.Gateway
}

func NewPaymentService(s *server.Server, gateway payment.Gateway) *PaymentService {
	return &PaymentService{
		server:  s,
		gateway: gateway,
	}
}

// CreatePaymentIntent asks the gateway for a card payment intent of amount
// (smallest currency unit) and returns its client secret. The amount is not
// validated here.
func (s *PaymentService) CreatePaymentIntent(ctx context.Context, amount int64) (string, error) {
	secret, err := s.gateway.CreatePaymentIntent(ctx, amount)
	s.server.Metrics.PaymentIntent(err)
	if err != nil {
		return "", err
	}
	return secret, nil
}
