package wallets

import (
	"errors"

	walletsvc "brickshare-backend/internal/application/wallets"
	"brickshare-backend/internal/middleware"
	"brickshare-backend/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type Handlers struct {
	Service *walletsvc.Service
}

// ViewWallet GET /api/v1/wallets/me — current balance, creating the wallet on
// first read.
func (h *Handlers) ViewWallet(c *fiber.Ctx) error {
	userID := middleware.GetUserID(c)
	if userID == uuid.Nil {
		return response.Unauthorized(c, "Not authenticated")
	}
	wallet, err := h.Service.GetOrCreate(c.Context(), userID)
	if err != nil {
		return response.Error(c, "Internal Server Error", 500, nil)
	}
	return response.Success(c, "Wallet retrieved", wallet, nil)
}

// ViewHistory GET /api/v1/wallets/me/transactions — the append-only audit
// trail, newest first.
func (h *Handlers) ViewHistory(c *fiber.Ctx) error {
	userID := middleware.GetUserID(c)
	if userID == uuid.Nil {
		return response.Unauthorized(c, "Not authenticated")
	}
	rows, err := h.Service.History(c.Context(), userID)
	if err != nil {
		return response.Error(c, "Internal Server Error", 500, nil)
	}
	return response.Success(c, "Wallet transactions retrieved", rows, nil)
}

// Withdraw POST /api/v1/wallets/withdraw.
func (h *Handlers) Withdraw(c *fiber.Ctx) error {
	userID := middleware.GetUserID(c)
	if userID == uuid.Nil {
		return response.Unauthorized(c, "Not authenticated")
	}
	var body struct {
		Amount float64 `json:"amount"`
	}
	if err := c.BodyParser(&body); err != nil {
		return response.Error(c, "Missing required fields", 400, nil)
	}

	txn, err := h.Service.Withdraw(c.Context(), userID, body.Amount)
	if err != nil {
		switch {
		case errors.Is(err, walletsvc.ErrInvalidAmount):
			return response.Error(c, err.Error(), 400, nil)
		case errors.Is(err, walletsvc.ErrInsufficientFunds):
			return response.Error(c, err.Error(), 400, nil)
		default:
			return response.Error(c, "Internal Server Error", 500, nil)
		}
	}
	return response.Success(c, "Withdrawal completed", txn, nil)
}
