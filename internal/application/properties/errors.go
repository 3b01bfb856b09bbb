package properties

import "errors"

var (
	ErrPropertyNotFound = errors.New("Property not found")
	ErrPropertyInactive = errors.New("Property is not open for investment")
	// ErrInsufficientShares is the authoritative cap rejection: the conditional
	// update found that current_shares + requested would exceed max_shares.
	ErrInsufficientShares = errors.New("Insufficient shares available")
)
