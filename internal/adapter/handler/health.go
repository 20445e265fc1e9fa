package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
)

// HealthCheck is a named dependency check
type HealthCheck struct {
	Name  string
	Check func(ctx context.Context) error
}

// Health reports the state of the service dependencies
type Health struct {
	environment string
	version     string
	checks      []HealthCheck
}

// NewHealthHandler creates a new health handler
func NewHealthHandler(environment, version string, checks ...HealthCheck) *Health {
	return &Health{environment: environment, version: version, checks: checks}
}

// Check returns health status
// @Summary      Health check
// @Tags         Health
// @Produce      json
// @Success      200  {object}  map[string]interface{}
// @Failure      503  {object}  map[string]interface{}
// @Router       /health [get]
func (h *Health) Check(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	status := http.StatusOK
	results := make(map[string]string, len(h.checks))
	for _, check := range h.checks {
		if err := check.Check(ctx); err != nil {
			results[check.Name] = err.Error()
			status = http.StatusServiceUnavailable
			continue
		}
		results[check.Name] = "ok"
	}

	state := "ok"
	if status != http.StatusOK {
		state = "degraded"
	}

	return c.JSON(status, map[string]interface{}{
		"status":      state,
		"environment": h.environment,
		"version":     h.version,
		"time":        time.Now().UTC().Format(time.RFC3339),
		"checks":      results,
	})
}
