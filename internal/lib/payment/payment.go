// Package payment creates payment intents with the card processor.
//
// Gateway is what the rest of the application depends on. StripeGateway is
// the production implementation; amounts are forwarded without validation
// and the processor's own verdict is reported back unchanged.
package payment

import (
	"context"
	"fmt"
)

// Gateway creates payment intents.
type Gateway interface {
	// CreatePaymentIntent registers an intent to charge amount (smallest
	// currency unit) by card and returns the client secret used to confirm
	// it.
	CreatePaymentIntent(ctx context.Context, amount int64) (string, error)
}

// GatewayError is a rejection or failure reported by the processor.
// Message is the processor's text as-is.
type GatewayError struct {
	Message string
	Code    string
	Status  int

	err error
}

func (e *GatewayError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("payment gateway: %s (%s)", e.Message, e.Code)
	}
	return "payment gateway: " + e.Message
}

func (e *GatewayError) Unwrap() error {
	return e.err
}
