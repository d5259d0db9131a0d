package handlers

import (
	"context"
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/complaint-service/internal/api/dto"
	"github.com/spec-kit/complaint-service/internal/observability"
	"github.com/spec-kit/complaint-service/internal/persistence"
)

// Pinger is satisfied by the persistence clients.
type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthHandler responds to liveness and readiness probes.
type HealthHandler struct {
	serviceName string
	version     string
	postgres    Pinger
	redis       Pinger
	metrics     *observability.Metrics
}

// NewHealthHandler returns a new handler instance. postgres and redis may be nil.
func NewHealthHandler(serviceName, version string, postgres, redis Pinger, metrics *observability.Metrics) *HealthHandler {
	return &HealthHandler{serviceName: serviceName, version: version, postgres: postgres, redis: redis, metrics: metrics}
}

// Live reports service liveness.
func (h *HealthHandler) Live(c *fiber.Ctx) error {
	return respond(c, fiber.StatusOK, "alive", fiber.Map{
		"service": h.serviceName,
		"version": h.version,
	})
}

// Ready checks the store. Redis only degrades the login limiter, so it never fails
// readiness.
func (h *HealthHandler) Ready(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.UserContext(), 2*time.Second)
	defer cancel()

	deps := fiber.Map{}
	ready := true

	switch err := ping(ctx, h.postgres); {
	case err == nil:
		deps["postgres"] = "ok"
	case errors.Is(err, persistence.ErrPostgresDisabled), errors.Is(err, errNotConfigured):
		deps["postgres"] = "disabled (in-memory store)"
	default:
		deps["postgres"] = err.Error()
		ready = false
	}

	if err := ping(ctx, h.redis); err != nil {
		deps["redis"] = "degraded: " + err.Error()
	} else {
		deps["redis"] = "ok"
	}

	if !ready {
		return c.Status(fiber.StatusServiceUnavailable).JSON(dto.Envelope{
			Success: false,
			Message: "one or more dependencies unavailable",
			Error:   "DEPENDENCY_UNAVAILABLE",
			Details: deps,
		})
	}
	return respond(c, fiber.StatusOK, "ready", deps)
}

// Metrics serves the in-memory counters.
func (h *HealthHandler) Metrics(c *fiber.Ctx) error {
	return respond(c, fiber.StatusOK, "metrics", h.metrics.Snapshot())
}

var errNotConfigured = errors.New("not configured")

func ping(ctx context.Context, p Pinger) error {
	if p == nil {
		return errNotConfigured
	}
	return p.Ping(ctx)
}
