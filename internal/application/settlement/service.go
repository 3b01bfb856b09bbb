// Package settlement is the one place where money, shares and ledgers change
// together. A confirmed payment becomes, in a single database transaction: a
// share reservation, an immutable Investment, a completed Transaction, and the
// wallet moves with their audit rows. Either all of it lands or none of it.
package settlement

import (
	"context"
	"errors"

	"brickshare-backend/internal/application/payments"
	"brickshare-backend/internal/application/properties"
	"brickshare-backend/internal/application/wallets"
	"brickshare-backend/internal/domain"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type Service struct {
	DB       *gorm.DB
	Currency string
}

// Result is what a confirmation call gets back. A replayed confirmation
// returns the original result with AlreadySettled set and no new side effects.
type Result struct {
	InvestmentID   uuid.UUID `json:"investment_id"`
	TransactionID  uuid.UUID `json:"transaction_id"`
	ReceiptNumber  string    `json:"receipt_number"`
	PropertyID     uuid.UUID `json:"property_id"`
	Shares         int       `json:"shares"`
	TotalAmount    float64   `json:"total_amount"`
	AlreadySettled bool      `json:"already_settled"`
}

// Settle drives INTENT_OPEN → CONFIRMED → SETTLED for the given processor
// intent. Idempotent: at most one settlement per transaction, ever.
func (s *Service) Settle(ctx context.Context, intentID string, rawEvent []byte) (*Result, error) {
	var result *Result

	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		txn, err := payments.FindByIntentID(tx, intentID)
		if err != nil {
			return err
		}

		state := stateFor(txn)
		if state == StateSettled {
			// Replayed confirmation: return the stored outcome untouched.
			existing, err := s.settledResult(tx, txn)
			if err != nil {
				return err
			}
			result = existing
			return nil
		}
		if !state.CanTransition(StateConfirmed) {
			return ErrTransactionNotSettleable
		}

		// Claim the transaction with a conditional pending→completed flip.
		// Two settlements of the same intent serialize on this row; the loser
		// affects zero rows and reports the committed outcome as a replay.
		claimed, err := claimPending(tx, txn, rawEvent)
		if err != nil {
			return err
		}
		if !claimed {
			fresh, err := payments.FindByIntentID(tx, intentID)
			if err != nil {
				return err
			}
			if stateFor(fresh) != StateSettled {
				return ErrTransactionNotSettleable
			}
			existing, err := s.settledResult(tx, fresh)
			if err != nil {
				return err
			}
			result = existing
			return nil
		}

		if txn.Type == domain.TransactionTypeListingFee {
			fee, err := s.settleListingFee(tx, txn)
			if err != nil {
				return err
			}
			result = fee
			return nil
		}
		if txn.Type != domain.TransactionTypeInvestment && txn.Type != domain.TransactionTypeRecurring {
			return ErrNotInvestment
		}
		if txn.PropertyID == nil || txn.Shares <= 0 {
			return ErrNotInvestment
		}

		// Authoritative cap guard. Admission passed long ago; payment latency
		// means a competitor may have taken the remaining shares since.
		if err := properties.ReserveSharesTx(tx, *txn.PropertyID, txn.Shares); err != nil {
			return err
		}

		var property domain.Property
		if err := tx.Where("property_id = ?", txn.PropertyID).First(&property).Error; err != nil {
			return err
		}

		investment := &domain.Investment{
			UserID:        txn.UserID,
			PropertyID:    *txn.PropertyID,
			Shares:        txn.Shares,
			PricePerShare: txn.PricePerShare,
			TotalAmount:   txn.Amount,
			TransactionID: txn.TransactionID,
		}
		if err := tx.Create(investment).Error; err != nil {
			return err
		}

		// Wallet moves. The processor funds pass through the investor's wallet
		// so the debit keeps the non-negative invariant and the audit trail
		// shows both legs; the owner receives the proceeds.
		txnRef := txn.TransactionID
		if _, err := wallets.CreditTx(tx, txn.UserID, txn.Amount, "payment_received", &txnRef, s.Currency); err != nil {
			return err
		}
		if _, err := wallets.DebitTx(tx, txn.UserID, txn.Amount, "investment_purchase", &txnRef, s.Currency); err != nil {
			return err
		}
		if _, err := wallets.CreditTx(tx, property.OwnerID, txn.Amount, "sale_proceeds", &txnRef, s.Currency); err != nil {
			return err
		}

		result = &Result{
			InvestmentID:  investment.InvestmentID,
			TransactionID: txn.TransactionID,
			ReceiptNumber: txn.ReceiptNumber,
			PropertyID:    *txn.PropertyID,
			Shares:        txn.Shares,
			TotalAmount:   txn.Amount,
		}
		return nil
	})

	if errors.Is(err, properties.ErrInsufficientShares) {
		// Real money has moved; this must not be silently dropped. Fail the
		// transaction and queue the compensating refund in their own
		// transaction (the settlement one rolled back).
		if failErr := s.failAndQueueRefund(ctx, intentID); failErr != nil {
			log.Error().Err(failErr).Str("intent_id", intentID).Msg("failed to queue settlement refund")
			return nil, failErr
		}
		return nil, ErrSettlementRaceLost
	}
	if err != nil {
		if errors.Is(err, payments.ErrUnknownIntent) {
			log.Error().Str("intent_id", intentID).Msg("confirmation for unknown payment intent")
		}
		return nil, err
	}
	return result, nil
}

func (s *Service) failAndQueueRefund(ctx context.Context, intentID string) error {
	return s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		txn, err := payments.FindByIntentID(tx, intentID)
		if err != nil {
			return err
		}
		if txn.Status != domain.TransactionStatusPending {
			return nil
		}
		if err := tx.Model(txn).Update("status", domain.TransactionStatusFailed).Error; err != nil {
			return err
		}
		refund := &domain.Refund{
			TransactionID: txn.TransactionID,
			Amount:        txn.Amount,
			Reason:        "settlement_race_lost",
			Status:        domain.RefundStatusQueued,
		}
		return tx.Create(refund).Error
	})
}

// claimPending flips the transaction from pending to completed with a single
// conditional update, attaching the raw processor event. RowsAffected tells
// racing settlements apart: only the claimer proceeds with side effects.
func claimPending(tx *gorm.DB, txn *domain.Transaction, rawEvent []byte) (bool, error) {
	updates := map[string]interface{}{"status": domain.TransactionStatusCompleted}
	if len(rawEvent) > 0 {
		updates["raw_payment_intent"] = datatypes.JSON(rawEvent)
	}
	res := tx.Model(&domain.Transaction{}).
		Where("transaction_id = ? AND status = ?", txn.TransactionID, domain.TransactionStatusPending).
		Updates(updates)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

// settleListingFee activates the pending listing the fee was charged for. No
// shares move and no wallet is touched; the fee is platform revenue.
func (s *Service) settleListingFee(tx *gorm.DB, txn *domain.Transaction) (*Result, error) {
	if txn.PropertyID == nil {
		return nil, ErrTransactionNotSettleable
	}
	if err := properties.ActivatePropertyTx(tx, *txn.PropertyID); err != nil {
		return nil, err
	}
	return &Result{
		TransactionID: txn.TransactionID,
		ReceiptNumber: txn.ReceiptNumber,
		PropertyID:    *txn.PropertyID,
		TotalAmount:   txn.Amount,
	}, nil
}

func (s *Service) settledResult(tx *gorm.DB, txn *domain.Transaction) (*Result, error) {
	if txn.Type == domain.TransactionTypeListingFee {
		result := &Result{
			TransactionID:  txn.TransactionID,
			ReceiptNumber:  txn.ReceiptNumber,
			TotalAmount:    txn.Amount,
			AlreadySettled: true,
		}
		if txn.PropertyID != nil {
			result.PropertyID = *txn.PropertyID
		}
		return result, nil
	}
	var investment domain.Investment
	if err := tx.Where("transaction_id = ?", txn.TransactionID).First(&investment).Error; err != nil {
		return nil, err
	}
	return &Result{
		InvestmentID:   investment.InvestmentID,
		TransactionID:  txn.TransactionID,
		ReceiptNumber:  txn.ReceiptNumber,
		PropertyID:     investment.PropertyID,
		Shares:         investment.Shares,
		TotalAmount:    txn.Amount,
		AlreadySettled: true,
	}, nil
}

// stateFor maps a stored transaction onto the attempt state machine. Rows only
// exist from INTENT_OPEN onward; the earlier states live in the request path.
func stateFor(txn *domain.Transaction) State {
	switch txn.Status {
	case domain.TransactionStatusCompleted:
		return StateSettled
	case domain.TransactionStatusFailed:
		return StateFailed
	default:
		return StateIntentOpen
	}
}
