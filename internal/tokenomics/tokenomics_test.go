package tokenomics

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// $400k over 2,000 sqft at a 49% cap: $200 tokens, $196k tokenized, 980 supply.
func TestCalculate_ReferenceProperty(t *testing.T) {
	eco, err := Calculate(400000, 2000, 0.49)
	require.NoError(t, err)
	assert.Equal(t, 200.0, eco.TokenPrice)
	assert.Equal(t, 196000.0, eco.MaxTokenizedValue)
	assert.Equal(t, 980, eco.TokenSupply)
}

func TestCalculate_InvalidInputs(t *testing.T) {
	cases := []struct {
		name      string
		valuation float64
		sqft      int
		cap       float64
	}{
		{"zero valuation", 0, 2000, 0.49},
		{"negative valuation", -1000, 2000, 0.49},
		{"zero square footage", 400000, 0, 0.49},
		{"negative square footage", 400000, -5, 0.49},
		{"zero cap", 400000, 2000, 0},
		{"cap above one", 400000, 2000, 1.5},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Calculate(tc.valuation, tc.sqft, tc.cap)
			assert.ErrorIs(t, err, ErrInvalidEconomics)
		})
	}
}

// The supply ceiling never exceeds the cap, whatever the inputs.
func TestCalculate_CapNeverExceeded(t *testing.T) {
	cases := []struct {
		valuation float64
		sqft      int
		cap       float64
	}{
		{400000, 2000, 0.49},
		{123456.78, 731, 0.49},
		{999999.99, 1, 0.49},
		{50000, 12000, 0.30},
		{1250000, 3400, 0.10},
		{87000.55, 640, 0.49},
	}
	for _, tc := range cases {
		eco, err := Calculate(tc.valuation, tc.sqft, tc.cap)
		require.NoError(t, err)
		soldValue := float64(eco.TokenSupply) * eco.TokenPrice
		// Allow a cent of rounding slack on the tokenized-value side only.
		assert.LessOrEqual(t, soldValue, tc.valuation*tc.cap+0.01,
			"valuation=%v sqft=%v cap=%v", tc.valuation, tc.sqft, tc.cap)
		assert.GreaterOrEqual(t, eco.TokenSupply, 0)
	}
}

func TestCheckoutPrice(t *testing.T) {
	assert.Equal(t, 210.0, CheckoutPrice(200, 1.05))
	assert.Equal(t, 200.0, CheckoutPrice(200, 1))
	// Non-positive multiplier falls back to base price.
	assert.Equal(t, 200.0, CheckoutPrice(200, 0))
}

func TestMinimumShares(t *testing.T) {
	assert.Equal(t, 49, MinimumShares(980, 0.05))
	assert.Equal(t, 98, MinimumShares(980, 0.10))
	// Always at least one share.
	assert.Equal(t, 1, MinimumShares(10, 0.001))
	assert.Equal(t, 1, MinimumShares(0, 0.05))
}
