package riskgate

import "errors"

var (
	// ErrWalletRiskBlocked: hard block, fatal for this attempt. No payment
	// intent may be opened for the wallet; retrying requires a different one.
	ErrWalletRiskBlocked = errors.New("Wallet blocked by risk policy")
	ErrScannerUnavailable = errors.New("Risk scanners unavailable")
)
