package http

import (
	"context"
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
)

const readyTimeout = 3 * time.Second

var errDisconnected = errors.New("disconnected")

// probe is one readiness dependency. A nil check means the dependency was
// never wired.
type probe struct {
	name     string
	required bool
	check    func(ctx context.Context) error
}

// HealthHandler returns a basic liveness check.
func HealthHandler(deps *Dependencies) fiber.Handler {
	startedAt := time.Now()

	return func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":  "healthy",
			"uptime":  time.Since(startedAt).Round(time.Second).String(),
			"version": "dev",
		})
	}
}

func readinessProbes(deps *Dependencies) []probe {
	probes := []probe{
		{name: "database", required: true},
		{name: "nats"},
		{name: "cache"},
		{name: "temporal"},
	}
	if deps.DB != nil {
		probes[0].check = func(ctx context.Context) error { return deps.DB.Pool.Ping(ctx) }
	}
	if deps.NATS != nil {
		probes[1].required = true
		probes[1].check = func(context.Context) error {
			if !deps.NATS.IsConnected() {
				return errDisconnected
			}
			return nil
		}
	}
	if deps.Cache != nil {
		probes[2].required = true
		probes[2].check = deps.Cache.Ping
	}
	if deps.Temporal != nil {
		probes[3].check = func(ctx context.Context) error {
			_, err := deps.Temporal.CheckHealth(ctx, nil)
			return err
		}
	}
	return probes
}

// ReadyHandler reports per-dependency readiness. The database must be up.
// NATS and the cache fail readiness only once wired; Temporal never does,
// since only the notifier depends on it.
func ReadyHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		ctx, cancel := context.WithTimeout(c.UserContext(), readyTimeout)
		defer cancel()

		checks := make(map[string]string)
		ready := true
		for _, p := range readinessProbes(deps) {
			if p.check == nil {
				checks[p.name] = "not configured"
				ready = ready && !p.required
				continue
			}
			if err := p.check(ctx); err != nil {
				checks[p.name] = "error: " + err.Error()
				ready = ready && !p.required
				continue
			}
			checks[p.name] = "ok"
		}

		if !ready {
			return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"status": "not ready", "checks": checks})
		}
		return c.JSON(fiber.Map{"status": "ready", "checks": checks})
	}
}
