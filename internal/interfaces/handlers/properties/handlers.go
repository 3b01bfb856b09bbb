package properties

import (
	"errors"

	paysvc "brickshare-backend/internal/application/payments"
	propsvc "brickshare-backend/internal/application/properties"
	"brickshare-backend/internal/domain"
	"brickshare-backend/internal/middleware"
	"brickshare-backend/internal/pkg/response"
	"brickshare-backend/internal/tokenomics"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type Handlers struct {
	Service  *propsvc.Service
	Payments *paysvc.Service
	// ListingFeeAmount > 0 creates listings pending until the fee intent
	// settles; zero lists them active immediately.
	ListingFeeAmount      float64
	MinInvestmentFraction float64
	PlatformFeeMultiplier float64
}

// CreateProperty POST /api/v1/properties — tokenizes and lists a property.
func (h *Handlers) CreateProperty(c *fiber.Ctx) error {
	ownerID := middleware.GetUserID(c)
	if ownerID == uuid.Nil {
		return response.Unauthorized(c, "Not authenticated")
	}

	var body struct {
		Title         string  `json:"title"`
		Address       string  `json:"address"`
		City          string  `json:"city"`
		Country       string  `json:"country"`
		Valuation     float64 `json:"valuation"`
		SquareFootage int     `json:"square_footage"`
	}
	if err := c.BodyParser(&body); err != nil {
		return response.Error(c, "Missing required fields", 400, nil)
	}
	if body.Title == "" || body.Valuation <= 0 || body.SquareFootage <= 0 {
		return response.Error(c, "Missing required fields", 400, nil)
	}

	property, err := h.Service.CreateProperty(c.Context(), propsvc.CreatePropertyInput{
		OwnerID:       ownerID,
		Title:         body.Title,
		Address:       body.Address,
		City:          body.City,
		Country:       body.Country,
		Valuation:     body.Valuation,
		SquareFootage: body.SquareFootage,
		PendingFee:    h.ListingFeeAmount > 0,
	})
	if err != nil {
		if errors.Is(err, tokenomics.ErrInvalidEconomics) {
			return response.Error(c, err.Error(), 400, nil)
		}
		return response.Error(c, "Internal Server Error", 500, nil)
	}

	if h.ListingFeeAmount <= 0 {
		return response.SuccessCreated(c, "Property listed", h.view(property), nil)
	}

	// The listing stays pending until the fee intent settles; settlement
	// activates it.
	propertyID := property.PropertyID
	intent, err := h.Payments.OpenIntent(c.Context(), paysvc.OpenIntentInput{
		UserID:     ownerID,
		PropertyID: &propertyID,
		Amount:     h.ListingFeeAmount,
		Kind:       domain.TransactionTypeListingFee,
		Metadata:   map[string]string{"property_id": propertyID.String()},
	})
	if err != nil {
		if errors.Is(err, paysvc.ErrPaymentDeclined) {
			return response.Error(c, err.Error(), 402, h.view(property))
		}
		return response.Error(c, "Payment processor unavailable", 503, h.view(property))
	}
	return response.SuccessCreated(c, "Property created; listing fee payment required", fiber.Map{
		"property":        h.view(property),
		"listing_fee":     h.ListingFeeAmount,
		"transaction_id":  intent.TransactionID,
		"receipt_number":  intent.ReceiptNumber,
		"payment_intent":  intent.PaymentIntentID,
		"client_secret":   intent.ClientSecret,
	}, nil)
}

// GetAllProperties GET /api/v1/properties — active listings.
func (h *Handlers) GetAllProperties(c *fiber.Ctx) error {
	props, err := h.Service.List(c.Context())
	if err != nil {
		return response.Error(c, "Internal Server Error", 500, nil)
	}
	out := make([]fiber.Map, 0, len(props))
	for i := range props {
		out = append(out, h.view(&props[i]))
	}
	return response.Success(c, "Properties retrieved", out, nil)
}

// GetPropertyByID GET /api/v1/properties/:id.
func (h *Handlers) GetPropertyByID(c *fiber.Ctx) error {
	propertyID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return response.Error(c, "Invalid UUID format for property id", 400, nil)
	}
	property, err := h.Service.Get(c.Context(), propertyID)
	if err != nil {
		if errors.Is(err, propsvc.ErrPropertyNotFound) {
			return response.Error(c, err.Error(), 404, nil)
		}
		return response.Error(c, "Internal Server Error", 500, nil)
	}
	return response.Success(c, "Property retrieved", h.view(property), nil)
}

// view is the listing as the client sees it: the stored record plus the
// derived checkout numbers.
func (h *Handlers) view(p *domain.Property) fiber.Map {
	return fiber.Map{
		"property_id":      p.PropertyID,
		"owner_id":         p.OwnerID,
		"title":            p.Title,
		"address":          p.Address,
		"city":             p.City,
		"country":          p.Country,
		"valuation":        p.Valuation,
		"square_footage":   p.SquareFootage,
		"token_price":      p.TokenPrice,
		"checkout_price":   tokenomics.CheckoutPrice(p.TokenPrice, h.PlatformFeeMultiplier),
		"max_shares":       p.MaxShares,
		"available_shares": p.AvailableShares(),
		"minimum_shares":   tokenomics.MinimumShares(p.MaxShares, h.MinInvestmentFraction),
		"status":           p.Status,
		"created_at":       p.CreatedAt,
	}
}
