package health

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
)

// DBPinger abstracts the database liveness check so tests can stub it.
type DBPinger interface {
	Ping() error
}

type Handlers struct {
	Rdb *redis.Client
	DB  DBPinger
}

// JSON GET /health/json — service status with per-dependency results.
func (h *Handlers) JSON(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.Context(), 2*time.Second)
	defer cancel()

	deps := fiber.Map{}
	status := "ok"

	if h.DB != nil {
		if err := h.DB.Ping(); err != nil {
			deps["database"] = fiber.Map{"status": "down", "error": err.Error()}
			status = "degraded"
		} else {
			deps["database"] = fiber.Map{"status": "ok"}
		}
	} else {
		deps["database"] = fiber.Map{"status": "not_configured"}
	}

	if h.Rdb != nil {
		if err := h.Rdb.Ping(ctx).Err(); err != nil {
			deps["redis"] = fiber.Map{"status": "down", "error": err.Error()}
			status = "degraded"
		} else {
			deps["redis"] = fiber.Map{"status": "ok"}
		}
	} else {
		deps["redis"] = fiber.Map{"status": "not_configured"}
	}

	return c.JSON(fiber.Map{
		"service":      "brickshare-api",
		"status":       status,
		"timestamp":    time.Now().UTC(),
		"dependencies": deps,
	})
}
