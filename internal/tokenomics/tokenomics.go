// Package tokenomics derives a property's token price and supply from its
// valuation under the regulatory ownership cap. It is the single source of
// truth for that formula: listing creation, property endpoints and admission
// all call into here instead of carrying their own copy.
package tokenomics

import (
	"errors"
	"math"
)

// ErrInvalidEconomics rejects listings with a non-positive valuation or
// square footage.
var ErrInvalidEconomics = errors.New("Invalid property economics")

// Economics is the derived token model for one property.
type Economics struct {
	// TokenPrice is the base price of one token: valuation / square footage.
	// One token corresponds to one square foot at base price. The platform fee
	// is not part of this price; it is applied at checkout (CheckoutPrice).
	TokenPrice float64 `json:"token_price"`
	// MaxTokenizedValue is the most value that may be sold: valuation × cap.
	MaxTokenizedValue float64 `json:"max_tokenized_value"`
	// TokenSupply is the share ceiling: floor(MaxTokenizedValue / TokenPrice).
	TokenSupply int `json:"token_supply"`
}

// Calculate derives the token model. capFraction is the compliance ceiling on
// the fraction of a property that may be fractionalized (e.g. 0.49).
//
// TokenSupply × TokenPrice <= valuation × capFraction by construction.
func Calculate(valuation float64, squareFootage int, capFraction float64) (Economics, error) {
	if valuation <= 0 || squareFootage <= 0 {
		return Economics{}, ErrInvalidEconomics
	}
	if capFraction <= 0 || capFraction > 1 {
		return Economics{}, ErrInvalidEconomics
	}

	tokenPrice := roundCents(valuation / float64(squareFootage))
	if tokenPrice <= 0 {
		return Economics{}, ErrInvalidEconomics
	}
	maxTokenizedValue := roundCents(valuation * capFraction)
	supply := int(math.Floor(maxTokenizedValue / tokenPrice))

	return Economics{
		TokenPrice:        tokenPrice,
		MaxTokenizedValue: maxTokenizedValue,
		TokenSupply:       supply,
	}, nil
}

// CheckoutPrice layers the platform fee multiplier on the base token price.
// Every site that charges an investor must use this, never the base price with
// an ad-hoc multiplier.
func CheckoutPrice(tokenPrice, feeMultiplier float64) float64 {
	if feeMultiplier <= 0 {
		feeMultiplier = 1
	}
	return roundCents(tokenPrice * feeMultiplier)
}

// MinimumShares is the smallest meaningful investment for a property:
// ceil(maxShares × minFraction), at least 1.
func MinimumShares(maxShares int, minFraction float64) int {
	if maxShares <= 0 {
		return 1
	}
	min := int(math.Ceil(float64(maxShares) * minFraction))
	if min < 1 {
		min = 1
	}
	return min
}

func roundCents(v float64) float64 {
	return math.Round(v*100) / 100
}
