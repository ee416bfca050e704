package handler

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/parcelhub/parcel-server/internal/middleware"
	"github.com/parcelhub/parcel-server/internal/server"
)

// RunningMessage is the body of GET /.
const RunningMessage = "🚚 Parcel Server is Running"

// StorePinger is the part of the parcel service the health check needs.
type StorePinger interface {
	Ping(ctx context.Context) error
}

// HealthHandler serves the liveness text and the dependency health report.
type HealthHandler struct {
	Handler
	store StorePinger
}

func NewHealthHandler(s *server.Server, store StorePinger) *HealthHandler {
	return &HealthHandler{
		Handler: NewHandler(s),
		store:   store,
	}
}

// Root answers the plain liveness text.
func (h *HealthHandler) Root(c echo.Context, _ *EmptyRequest) (string, error) {
	return RunningMessage, nil
}

// CheckHealth pings the parcel store and Redis as configured by
// observability.health_checks.
//
// It answers 503 when the store is unreachable, or when Redis is unreachable
// while the notification workers depend on it. Redis failures are reported
// either way.
func (h *HealthHandler) CheckHealth(c echo.Context) error {
	start := time.Now()
	obs := h.server.Config.Observability

	logger := middleware.GetLogger(c).With().
		Str("operation", "health_check").
		Logger()

	response := map[string]interface{}{
		"status":      "healthy",
		"timestamp":   time.Now().UTC(),
		"environment": h.server.Config.Primary.Env,
		"driver":      h.server.Config.Database.Driver,
		"checks":      make(map[string]interface{}),
	}

	checks := response["checks"].(map[string]interface{})
	isHealthy := true

	if obs.HasCheck("database") {
		if err := h.runCheck(c.Request().Context(), "database", checks, h.store.Ping); err != nil {
			isHealthy = false
		}
	}

	if h.server.Redis != nil && obs.HasCheck("redis") {
		ping := func(ctx context.Context) error {
			return h.server.Redis.Ping(ctx).Err()
		}
		if err := h.runCheck(c.Request().Context(), "redis", checks, ping); err != nil && h.server.Job != nil {
			isHealthy = false
		}
	}

	if !isHealthy {
		response["status"] = "unhealthy"

		logger.Warn().
			Dur("total_duration", time.Since(start)).
			Msg("health check failed")

		h.recordEvent(map[string]interface{}{
			"check_type":        "overall",
			"operation":         "health_check",
			"error_type":        "overall_unhealthy",
			"total_duration_ms": time.Since(start).Milliseconds(),
		})

		return c.JSON(http.StatusServiceUnavailable, response)
	}

	logger.Debug().
		Dur("total_duration", time.Since(start)).
		Msg("health check passed")

	if err := c.JSON(http.StatusOK, response); err != nil {
		logger.Error().Err(err).Msg("failed to write JSON response")
		return fmt.Errorf("failed to write JSON response: %w", err)
	}

	return nil
}

// runCheck pings one dependency within the configured timeout and records
// the outcome under checks[name].
func (h *HealthHandler) runCheck(
	parent context.Context,
	name string,
	checks map[string]interface{},
	ping func(ctx context.Context) error,
) error {
	ctx, cancel := context.WithTimeout(parent, h.server.Config.Observability.HealthChecks.Timeout)
	defer cancel()

	checkStart := time.Now()
	err := ping(ctx)
	elapsed := time.Since(checkStart)

	if err != nil {
		checks[name] = map[string]interface{}{
			"status":        "unhealthy",
			"response_time": elapsed.String(),
			"error":         err.Error(),
		}

		h.server.Logger.Error().
			Err(err).
			Str("check", name).
			Dur("response_time", elapsed).
			Msg("health check failed")

		h.recordEvent(map[string]interface{}{
			"check_type":       name,
			"operation":        "health_check",
			"error_type":       name + "_unhealthy",
			"response_time_ms": elapsed.Milliseconds(),
			"error_message":    err.Error(),
		})
		return err
	}

	checks[name] = map[string]interface{}{
		"status":        "healthy",
		"response_time": elapsed.String(),
	}
	return nil
}

func (h *HealthHandler) recordEvent(params map[string]interface{}) {
	if app := h.server.LoggerService.GetApplication(); app != nil {
		app.RecordCustomEvent("HealthCheckError", params)
	}
}
