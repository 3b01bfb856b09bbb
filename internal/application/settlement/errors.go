package settlement

import "errors"

var (
	// ErrSettlementRaceLost: a competing settlement consumed the remaining
	// shares between admission and confirmation. The payment has already
	// cleared, so the transaction is failed and a refund queued.
	ErrSettlementRaceLost = errors.New("Settlement lost the share reservation race")
	// ErrTransactionNotSettleable: the transaction is in a terminal failed
	// state; a confirmation for it is a processor replay we must not act on.
	ErrTransactionNotSettleable = errors.New("Transaction is not settleable")
	ErrNotInvestment            = errors.New("Transaction is not an investment")
)
