package investments

import (
	"errors"

	admsvc "brickshare-backend/internal/application/admission"
	paysvc "brickshare-backend/internal/application/payments"
	propsvc "brickshare-backend/internal/application/properties"
	risksvc "brickshare-backend/internal/application/riskgate"
	"brickshare-backend/internal/domain"
	"brickshare-backend/internal/middleware"
	"brickshare-backend/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type Handlers struct {
	Admission *admsvc.Service
	Payments  *paysvc.Service
	RiskGate  *risksvc.Service
}

// Invest POST /api/v1/investments — admission, optional crypto risk gate,
// then a payment intent. Settlement happens later, when the processor
// confirms.
func (h *Handlers) Invest(c *fiber.Ctx) error {
	userID := middleware.GetUserID(c)
	if userID == uuid.Nil {
		return response.Unauthorized(c, "Not authenticated")
	}

	var body struct {
		PropertyID    string `json:"property_id"`
		Shares        int    `json:"shares"`
		PaymentMethod string `json:"payment_method"` // fiat (default) | crypto
		WalletAddress string `json:"wallet_address"`
	}
	if err := c.BodyParser(&body); err != nil {
		return response.Error(c, "Missing required fields", 400, nil)
	}
	if body.PropertyID == "" || body.Shares == 0 {
		return response.Error(c, "Missing required fields", 400, nil)
	}
	propertyID, err := uuid.Parse(body.PropertyID)
	if err != nil {
		return response.Error(c, "Invalid UUID format for property_id", 400, nil)
	}

	decision, err := h.Admission.Admit(c.Context(), propertyID, body.Shares)
	if err != nil {
		return admissionError(c, decision, err)
	}

	metadata := map[string]string{"property_id": body.PropertyID}
	var riskWarning string

	if body.PaymentMethod == "crypto" {
		if body.WalletAddress == "" {
			return response.Error(c, "wallet_address is required for crypto payments", 400, nil)
		}
		verdict, err := h.RiskGate.Evaluate(c.Context(), body.WalletAddress)
		if err != nil {
			if errors.Is(err, risksvc.ErrWalletRiskBlocked) {
				// Hard block: no payment intent, no transaction row.
				return response.Error(c, err.Error(), 403, verdict)
			}
			return response.Error(c, "Risk screening unavailable", 503, nil)
		}
		riskWarning = verdict.Warning
		metadata["wallet_address"] = body.WalletAddress
	}

	intent, err := h.Payments.OpenIntent(c.Context(), paysvc.OpenIntentInput{
		UserID:        userID,
		PropertyID:    &propertyID,
		Amount:        decision.TotalCost,
		Kind:          domain.TransactionTypeInvestment,
		Shares:        decision.Shares,
		PricePerShare: decision.PricePerShare,
		Metadata:      metadata,
	})
	if err != nil {
		if errors.Is(err, paysvc.ErrPaymentDeclined) {
			return response.Error(c, err.Error(), 402, nil)
		}
		return response.Error(c, "Payment processor unavailable", 503, nil)
	}

	var meta interface{}
	if riskWarning != "" {
		meta = fiber.Map{"risk_warning": riskWarning}
	}
	return response.SuccessCreated(c, "Payment intent created", fiber.Map{
		"transaction_id":    intent.TransactionID,
		"receipt_number":    intent.ReceiptNumber,
		"payment_intent_id": intent.PaymentIntentID,
		"client_secret":     intent.ClientSecret,
		"admission":         decision,
	}, meta)
}

// admissionError maps admission rejections onto status codes, keeping the
// decision numbers in details so the client can explain the failure.
func admissionError(c *fiber.Ctx, decision *admsvc.Decision, err error) error {
	switch {
	case errors.Is(err, propsvc.ErrPropertyNotFound):
		return response.Error(c, err.Error(), 404, nil)
	case errors.Is(err, propsvc.ErrPropertyInactive):
		return response.Error(c, err.Error(), 400, nil)
	case errors.Is(err, admsvc.ErrInvalidShareCount):
		return response.Error(c, err.Error(), 400, nil)
	case errors.Is(err, admsvc.ErrBelowMinimumInvestment),
		errors.Is(err, propsvc.ErrInsufficientShares):
		return response.Error(c, err.Error(), 400, decision)
	default:
		return response.Error(c, "Internal Server Error", 500, nil)
	}
}
