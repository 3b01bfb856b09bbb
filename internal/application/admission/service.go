// Package admission decides whether a requested investment is legal and
// satisfiable before any money moves. The check is advisory: the authoritative
// cap guard runs again, atomically, inside the property repository at
// settlement time. A request admitted here can still lose the race.
package admission

import (
	"context"
	"math"

	"brickshare-backend/internal/application/properties"
	"brickshare-backend/internal/domain"
	"brickshare-backend/internal/tokenomics"

	"github.com/google/uuid"
)

type Service struct {
	Properties *properties.Service
	// MinInvestmentFraction is the single minimum-stake policy constant shared
	// by every call site.
	MinInvestmentFraction float64
	PlatformFeeMultiplier float64
}

// Decision is the accepted admission with everything the client needs to
// render the checkout, or that a rejection needs to explain itself.
type Decision struct {
	PropertyID      uuid.UUID `json:"property_id"`
	Shares          int       `json:"shares"`
	PricePerShare   float64   `json:"price_per_share"` // checkout price, fee included
	TotalCost       float64   `json:"total_cost"`
	AvailableShares int       `json:"available_shares"`
	MinimumShares   int       `json:"minimum_shares"`
}

// Admit validates the request against a live property snapshot.
func (s *Service) Admit(ctx context.Context, propertyID uuid.UUID, shares int) (*Decision, error) {
	if shares <= 0 {
		return nil, ErrInvalidShareCount
	}

	property, err := s.Properties.Get(ctx, propertyID)
	if err != nil {
		return nil, err
	}
	if property.Status != domain.PropertyStatusActive {
		return nil, properties.ErrPropertyInactive
	}

	available := property.AvailableShares()
	minimum := tokenomics.MinimumShares(property.MaxShares, s.MinInvestmentFraction)
	price := tokenomics.CheckoutPrice(property.TokenPrice, s.PlatformFeeMultiplier)

	decision := &Decision{
		PropertyID:      propertyID,
		Shares:          shares,
		PricePerShare:   price,
		TotalCost:       roundCents(float64(shares) * price),
		AvailableShares: available,
		MinimumShares:   minimum,
	}

	if shares < minimum {
		return decision, ErrBelowMinimumInvestment
	}
	if shares > available {
		return decision, properties.ErrInsufficientShares
	}
	return decision, nil
}

func roundCents(v float64) float64 {
	return math.Round(v*100) / 100
}
