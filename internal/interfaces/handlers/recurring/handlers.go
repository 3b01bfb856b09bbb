package recurring

import (
	"errors"

	recsvc "brickshare-backend/internal/application/recurring"
	"brickshare-backend/internal/middleware"
	"brickshare-backend/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type Handlers struct {
	Service *recsvc.Service
}

// CreateOrder POST /api/v1/recurring — registers a standing order.
func (h *Handlers) CreateOrder(c *fiber.Ctx) error {
	userID := middleware.GetUserID(c)
	if userID == uuid.Nil {
		return response.Unauthorized(c, "Not authenticated")
	}

	var body struct {
		PropertyID string  `json:"property_id"`
		Amount     float64 `json:"amount"`
		Frequency  string  `json:"frequency"`
	}
	if err := c.BodyParser(&body); err != nil || body.PropertyID == "" {
		return response.Error(c, "Missing required fields", 400, nil)
	}
	propertyID, err := uuid.Parse(body.PropertyID)
	if err != nil {
		return response.Error(c, "Invalid UUID format for property_id", 400, nil)
	}

	order, err := h.Service.Create(c.Context(), userID, &propertyID, body.Amount, body.Frequency)
	if err != nil {
		switch {
		case errors.Is(err, recsvc.ErrInvalidAmount),
			errors.Is(err, recsvc.ErrInvalidFrequency),
			errors.Is(err, recsvc.ErrPropertyRequired):
			return response.Error(c, err.Error(), 400, nil)
		default:
			return response.Error(c, "Internal Server Error", 500, nil)
		}
	}
	return response.SuccessCreated(c, "Recurring investment created", order, nil)
}

// ListOrders GET /api/v1/recurring.
func (h *Handlers) ListOrders(c *fiber.Ctx) error {
	userID := middleware.GetUserID(c)
	if userID == uuid.Nil {
		return response.Unauthorized(c, "Not authenticated")
	}
	orders, err := h.Service.List(c.Context(), userID)
	if err != nil {
		return response.Error(c, "Internal Server Error", 500, nil)
	}
	return response.Success(c, "Recurring investments retrieved", orders, nil)
}

// DeactivateOrder DELETE /api/v1/recurring/:id — owner-only soft delete.
func (h *Handlers) DeactivateOrder(c *fiber.Ctx) error {
	userID := middleware.GetUserID(c)
	if userID == uuid.Nil {
		return response.Unauthorized(c, "Not authenticated")
	}
	recurringID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return response.Error(c, "Invalid UUID format for recurring id", 400, nil)
	}

	if err := h.Service.Deactivate(c.Context(), userID, recurringID); err != nil {
		if errors.Is(err, recsvc.ErrOrderNotFound) {
			return response.Error(c, err.Error(), 404, nil)
		}
		return response.Error(c, "Internal Server Error", 500, nil)
	}
	return response.Success(c, "Recurring investment deactivated", fiber.Map{"deactivated": true}, nil)
}
