package recurring

import "errors"

var (
	ErrInvalidAmount         = errors.New("Amount must be a positive number")
	ErrInvalidFrequency      = errors.New("Frequency must be weekly, monthly or quarterly")
	ErrPropertyRequired      = errors.New("A standing order requires a property")
	ErrOrderNotFound         = errors.New("Recurring investment not found")
	ErrAmountBelowSharePrice = errors.New("Amount does not cover a single share")
)
