package wallets

import (
	"context"
	"math"

	"brickshare-backend/internal/application/payments"
	"brickshare-backend/internal/domain"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Service is the wallet ledger. Every balance change writes the new balance
// and a WalletTransaction carrying before/after snapshots in one database
// transaction; the snapshots are the audit trail and are never reconstructed
// from the current balance.
type Service struct {
	DB       *gorm.DB
	Currency string
}

// GetOrCreate returns the user's wallet, creating an empty one on first use.
func (s *Service) GetOrCreate(ctx context.Context, userID uuid.UUID) (*domain.Wallet, error) {
	return getOrCreateTx(s.DB.WithContext(ctx), userID, s.Currency)
}

// Credit adds amount to the user's wallet with an audit row.
func (s *Service) Credit(ctx context.Context, userID uuid.UUID, amount float64, reason string, txnRef *uuid.UUID) (*domain.WalletTransaction, error) {
	var out *domain.WalletTransaction
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		out, err = CreditTx(tx, userID, amount, reason, txnRef, s.Currency)
		return err
	})
	return out, err
}

// Debit removes amount from the user's wallet with an audit row. The balance
// never goes negative; a short balance fails with ErrInsufficientFunds.
func (s *Service) Debit(ctx context.Context, userID uuid.UUID, amount float64, reason string, txnRef *uuid.UUID) (*domain.WalletTransaction, error) {
	var out *domain.WalletTransaction
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		out, err = DebitTx(tx, userID, amount, reason, txnRef, s.Currency)
		return err
	})
	return out, err
}

// Withdraw debits the wallet and records a completed withdrawal transaction,
// both in one database transaction. A short balance fails with
// ErrInsufficientFunds and writes nothing.
func (s *Service) Withdraw(ctx context.Context, userID uuid.UUID, amount float64) (*domain.Transaction, error) {
	var txn *domain.Transaction
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		txn = &domain.Transaction{
			UserID:        userID,
			Type:          domain.TransactionTypeWithdrawal,
			Amount:        roundCents(amount),
			Currency:      s.Currency,
			Status:        domain.TransactionStatusCompleted,
			ReceiptNumber: payments.NewReceiptNumber(),
		}
		if err := tx.Create(txn).Error; err != nil {
			return err
		}
		txnRef := txn.TransactionID
		_, err := DebitTx(tx, userID, amount, "withdrawal", &txnRef, s.Currency)
		return err
	})
	if err != nil {
		return nil, err
	}
	return txn, nil
}

// History returns the wallet's append-only transaction trail, newest first.
func (s *Service) History(ctx context.Context, userID uuid.UUID) ([]domain.WalletTransaction, error) {
	wallet, err := s.GetOrCreate(ctx, userID)
	if err != nil {
		return nil, err
	}
	var rows []domain.WalletTransaction
	if err := s.DB.WithContext(ctx).
		Where("wallet_id = ?", wallet.WalletID).
		Order(`"createdAt" DESC`).
		Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// CreditTx is the composable form used by the settlement orchestrator inside
// its own transaction. The balance moves with a single arithmetic UPDATE so
// concurrent ledger writes serialize on the wallet row.
func CreditTx(tx *gorm.DB, userID uuid.UUID, amount float64, reason string, txnRef *uuid.UUID, currency string) (*domain.WalletTransaction, error) {
	if amount <= 0 {
		return nil, ErrInvalidAmount
	}
	amount = roundCents(amount)
	wallet, err := getOrCreateTx(tx, userID, currency)
	if err != nil {
		return nil, err
	}

	if err := tx.Model(&domain.Wallet{}).
		Where("wallet_id = ?", wallet.WalletID).
		UpdateColumn("balance", gorm.Expr("ROUND((balance + ?) * 100) / 100", amount)).Error; err != nil {
		return nil, err
	}
	if err := tx.Where("wallet_id = ?", wallet.WalletID).First(wallet).Error; err != nil {
		return nil, err
	}

	audit := &domain.WalletTransaction{
		WalletID:      wallet.WalletID,
		Direction:     domain.WalletTxDirectionCredit,
		Amount:        amount,
		BalanceBefore: roundCents(wallet.Balance - amount),
		BalanceAfter:  wallet.Balance,
		Reason:        reason,
		TransactionID: txnRef,
	}
	if err := tx.Create(audit).Error; err != nil {
		return nil, err
	}
	return audit, nil
}

// DebitTx is the composable debit; see Debit. The non-negative invariant
// lives in the UPDATE's guard, not in a prior read: a debit racing another
// spend of the same wallet affects zero rows instead of overdrawing.
func DebitTx(tx *gorm.DB, userID uuid.UUID, amount float64, reason string, txnRef *uuid.UUID, currency string) (*domain.WalletTransaction, error) {
	if amount <= 0 {
		return nil, ErrInvalidAmount
	}
	amount = roundCents(amount)
	wallet, err := getOrCreateTx(tx, userID, currency)
	if err != nil {
		return nil, err
	}

	res := tx.Model(&domain.Wallet{}).
		Where("wallet_id = ? AND balance >= ?", wallet.WalletID, amount).
		UpdateColumn("balance", gorm.Expr("ROUND((balance - ?) * 100) / 100", amount))
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, ErrInsufficientFunds
	}
	if err := tx.Where("wallet_id = ?", wallet.WalletID).First(wallet).Error; err != nil {
		return nil, err
	}

	audit := &domain.WalletTransaction{
		WalletID:      wallet.WalletID,
		Direction:     domain.WalletTxDirectionDebit,
		Amount:        amount,
		BalanceBefore: roundCents(wallet.Balance + amount),
		BalanceAfter:  wallet.Balance,
		Reason:        reason,
		TransactionID: txnRef,
	}
	if err := tx.Create(audit).Error; err != nil {
		return nil, err
	}
	return audit, nil
}

func getOrCreateTx(tx *gorm.DB, userID uuid.UUID, currency string) (*domain.Wallet, error) {
	if currency == "" {
		currency = "USD"
	}
	var wallet domain.Wallet
	err := tx.Where("user_id = ?", userID).First(&wallet).Error
	if err == gorm.ErrRecordNotFound {
		wallet = domain.Wallet{UserID: userID, Balance: 0, Currency: currency}
		if err := tx.Create(&wallet).Error; err != nil {
			return nil, err
		}
		return &wallet, nil
	}
	if err != nil {
		return nil, err
	}
	return &wallet, nil
}

func roundCents(v float64) float64 {
	return math.Round(v*100) / 100
}
