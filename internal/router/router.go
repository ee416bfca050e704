// Package router initializes the HTTP router (using Echo).
//
// It registers the middlewares and defines the API route groups,
// mapping specific paths to their corresponding handlers
package router

import (
	"github.com/labstack/echo/v4"
	"github.com/parcelhub/parcel-server/internal/handler"
	"github.com/parcelhub/parcel-server/internal/middleware"
	"github.com/parcelhub/parcel-server/internal/server"
)

// NewRouter builds the Echo instance serving every route.
//
// Middleware order matters: the request id must exist before the New Relic
// transaction is annotated, and the context logger must exist before the
// request logger runs.
func NewRouter(s *server.Server, h *handler.Handlers) *echo.Echo {
	middlewares := middleware.NewMiddlewares(s)

	router := echo.New()
	router.HideBanner = true
	router.HidePort = true

	router.HTTPErrorHandler = middlewares.Global.GlobalErrorHandler

	router.Use(
		middlewares.Global.CORS(),
		middlewares.Global.Secure(),
		middleware.RequestID(),
		middlewares.Tracing.NewRelicMiddleware(),
		middlewares.Tracing.EnhanceTracing(),
		middlewares.ContextEnhancer.EnhanceContext(),
		middlewares.Global.RequestLogger(),
		middlewares.Metrics.Observe(),
		middlewares.Global.Recover(),
	)

	registerSystemRoutes(router, h, s)
	registerParcelRoutes(router, h)

	return router
}
