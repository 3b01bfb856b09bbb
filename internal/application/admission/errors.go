package admission

import "errors"

var (
	ErrInvalidShareCount      = errors.New("Shares must be a positive number")
	ErrBelowMinimumInvestment = errors.New("Requested shares below the minimum investment")
)
