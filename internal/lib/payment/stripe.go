package payment

import (
	"context"
	"errors"
	"fmt"

	"github.com/parcelhub/parcel-server/internal/config"
	"github.com/rs/zerolog"
	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/client"
)

// StripeGateway creates card payment intents through the Stripe API.
type StripeGateway struct {
	api      *client.API
	currency string
	logger   *zerolog.Logger
}

// NewStripeGateway builds a gateway from cfg. Network retries are off: a
// failed call is reported, never replayed.
func NewStripeGateway(cfg config.PaymentConfig, logger *zerolog.Logger) *StripeGateway {
	stripeLogger := &leveledLogger{log: logger.With().Str("component", "stripe").Logger()}

	backend := func(typ stripe.SupportedBackend) stripe.Backend {
		backendConfig := &stripe.BackendConfig{
			LeveledLogger:     stripeLogger,
			MaxNetworkRetries: stripe.Int64(0),
		}
		if cfg.APIURL != "" {
			backendConfig.URL = stripe.String(cfg.APIURL)
		}
		return stripe.GetBackendWithConfig(typ, backendConfig)
	}

	api := client.New(cfg.SecretKey, &stripe.Backends{
		API:     backend(stripe.APIBackend),
		Connect: backend(stripe.ConnectBackend),
		Uploads: backend(stripe.UploadsBackend),
	})

	return &StripeGateway{
		api:      api,
		currency: cfg.Currency,
		logger:   logger,
	}
}

func (g *StripeGateway) CreatePaymentIntent(ctx context.Context, amount int64) (string, error) {
	params := &stripe.PaymentIntentParams{
		Amount:             stripe.Int64(amount),
		Currency:           stripe.String(g.currency),
		PaymentMethodTypes: stripe.StringSlice([]string{"card"}),
	}
	params.Context = ctx

	pi, err := g.api.PaymentIntents.New(params)
	if err != nil {
		return "", toGatewayError(err)
	}

	g.logger.Debug().
		Str("payment_intent_id", pi.ID).
		Int64("amount", amount).
		Str("currency", g.currency).
		Msg("payment intent created")

	return pi.ClientSecret, nil
}

func toGatewayError(err error) error {
	var stripeErr *stripe.Error
	if errors.As(err, &stripeErr) {
		msg := stripeErr.Msg
		if msg == "" {
			msg = string(stripeErr.Type)
		}
		return &GatewayError{
			Message: msg,
			Code:    string(stripeErr.Code),
			Status:  stripeErr.HTTPStatusCode,
			err:     err,
		}
	}
	return &GatewayError{Message: err.Error(), err: fmt.Errorf("stripe: %w", err)}
}

// leveledLogger routes stripe-go's internal logging into zerolog.
type leveledLogger struct {
	log zerolog.Logger
}

func (l *leveledLogger) Debugf(format string, v ...interface{}) {
	l.log.Debug().Msgf(format, v...)
}

func (l *leveledLogger) Infof(format string, v ...interface{}) {
	l.log.Debug().Msgf(format, v...)
}

func (l *leveledLogger) Warnf(format string, v ...interface{}) {
	l.log.Warn().Msgf(format, v...)
}

func (l *leveledLogger) Errorf(format string, v ...interface{}) {
	l.log.Error().Msgf(format, v...)
}
