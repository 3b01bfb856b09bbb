package payments

import (
	"errors"

	paysvc "brickshare-backend/internal/application/payments"
	propsvc "brickshare-backend/internal/application/properties"
	"brickshare-backend/internal/application/settlement"
	"brickshare-backend/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

type Handlers struct {
	Settler *settlement.Service
}

// Confirm POST /api/v1/payments/confirm — synchronous confirmation for
// clients that confirmed on-session and do not want to poll until the
// webhook lands. Settlement is idempotent, so the webhook replay of the
// same intent is harmless.
func (h *Handlers) Confirm(c *fiber.Ctx) error {
	var body struct {
		PaymentIntentID string `json:"payment_intent_id"`
	}
	if err := c.BodyParser(&body); err != nil || body.PaymentIntentID == "" {
		return response.Error(c, "payment_intent_id is required", 400, nil)
	}

	result, err := h.Settler.Settle(c.Context(), body.PaymentIntentID, nil)
	if err != nil {
		switch {
		case errors.Is(err, paysvc.ErrUnknownIntent):
			return response.Error(c, err.Error(), 404, nil)
		case errors.Is(err, settlement.ErrSettlementRaceLost):
			return response.Error(c, err.Error(), 409, fiber.Map{
				"refund_queued": true,
			})
		case errors.Is(err, settlement.ErrTransactionNotSettleable),
			errors.Is(err, settlement.ErrNotInvestment):
			return response.Error(c, err.Error(), 409, nil)
		case errors.Is(err, propsvc.ErrPropertyNotFound),
			errors.Is(err, propsvc.ErrPropertyInactive):
			return response.Error(c, err.Error(), 409, nil)
		default:
			return response.Error(c, "Internal Server Error", 500, nil)
		}
	}

	msg := "Investment settled"
	if result.AlreadySettled {
		msg = "Investment already settled"
	}
	return response.Success(c, msg, result, nil)
}
