package wallets

import "errors"

var (
	ErrInsufficientFunds = errors.New("Insufficient wallet balance")
	ErrInvalidAmount     = errors.New("Amount must be a positive number")
)
