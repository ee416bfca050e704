package middleware

import (
	"github.com/newrelic/go-agent/v3/newrelic"
	"github.com/parcelhub/parcel-server/internal/server"
)

// Middlewares groups every middleware component used by the HTTP server so
// the router builds them once.
type Middlewares struct {
	// Global holds CORS, secure headers, request logging, recovery and the
	// global error handler.
	Global *GlobalMiddlewares

	// ContextEnhancer attaches the request-scoped logger.
	ContextEnhancer *ContextEnhancer

	// Tracing wires New Relic transactions. A no-op without a license key.
	Tracing *TracingMiddleware

	// Metrics records Prometheus request metrics.
	Metrics *MetricsMiddleware
}

// NewMiddlewares constructs all middleware components. The New Relic
// application is taken from the server's LoggerService and may be nil.
func NewMiddlewares(s *server.Server) *Middlewares {
	var nrApp *newrelic.Application
	if s.LoggerService != nil {
		nrApp = s.LoggerService.GetApplication()
	}

	return &Middlewares{
		Global:          NewGlobalMiddlewares(s),
		ContextEnhancer: NewContextEnhancer(s),
		Tracing:         NewTracingMiddleware(s, nrApp),
		Metrics:         NewMetricsMiddleware(s),
	}
}
