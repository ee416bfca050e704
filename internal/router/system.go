package router

import (
	"github.com/labstack/echo/v4"
	"github.com/parcelhub/parcel-server/internal/handler"
	"github.com/parcelhub/parcel-server/internal/server"
	"github.com/parcelhub/parcel-server/static"
)

// registerSystemRoutes registers the endpoints that are not parcel business:
// liveness, health, metrics and the API docs.
func registerSystemRoutes(r *echo.Echo, h *handler.Handlers, s *server.Server) {
	r.GET("/", handler.HandleText(h.Health.Handler, h.Health.Root, &handler.EmptyRequest{}))

	r.GET("/status", h.Health.CheckHealth)

	r.GET("/metrics", echo.WrapHandler(s.Metrics.Handler()))

	r.StaticFS("/static", static.FS)

	r.GET("/docs", h.OpenAPI.ServeOpenAPIUI)
}
