package middleware

import (
	"brickshare-backend/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

const userIDHeader = "X-User-ID"
const userIDLocal = "user_id"

// RequireUser extracts the authenticated user id resolved by the upstream
// auth service. Requests without a valid id are rejected before any handler
// runs.
func RequireUser() fiber.Handler {
	return func(c *fiber.Ctx) error {
		raw := c.Get(userIDHeader)
		if raw == "" {
			return response.Unauthorized(c, "Not authenticated")
		}
		userID, err := uuid.Parse(raw)
		if err != nil {
			return response.Unauthorized(c, "Not authenticated")
		}
		c.Locals(userIDLocal, userID)
		return c.Next()
	}
}

// GetUserID returns the authenticated user id, or uuid.Nil outside
// RequireUser routes.
func GetUserID(c *fiber.Ctx) uuid.UUID {
	if id, ok := c.Locals(userIDLocal).(uuid.UUID); ok {
		return id
	}
	return uuid.Nil
}
