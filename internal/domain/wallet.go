package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Wallet is the one genuinely mutable aggregate in the core. Balance changes
// only through the ledger service, which appends a WalletTransaction with
// before/after snapshots inside the same database transaction.
type Wallet struct {
	WalletID  uuid.UUID `gorm:"column:wallet_id;type:uuid;primaryKey" json:"wallet_id"`
	UserID    uuid.UUID `gorm:"column:user_id;type:uuid;not null;uniqueIndex" json:"user_id"`
	Balance   float64   `gorm:"column:balance;type:decimal(18,2);not null;default:0" json:"balance"`
	Currency  string    `gorm:"column:currency;type:char(3);not null;default:'USD'" json:"currency"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (Wallet) TableName() string {
	return "Wallets"
}

func (w *Wallet) BeforeCreate(tx *gorm.DB) error {
	if w.WalletID == uuid.Nil {
		w.WalletID = uuid.New()
	}
	return nil
}

// WalletTransaction directions.
const (
	WalletTxDirectionCredit = "credit"
	WalletTxDirectionDebit  = "debit"
)

// WalletTransaction is the append-only audit trail. BalanceBefore and
// BalanceAfter are written at mutation time and never recomputed from the
// current balance.
type WalletTransaction struct {
	WalletTxID    uuid.UUID  `gorm:"column:wallet_tx_id;type:uuid;primaryKey" json:"wallet_tx_id"`
	WalletID      uuid.UUID  `gorm:"column:wallet_id;type:uuid;not null;index" json:"wallet_id"`
	Direction     string     `gorm:"column:direction;type:varchar(10);not null" json:"direction"`
	Amount        float64    `gorm:"column:amount;type:decimal(18,2);not null" json:"amount"`
	BalanceBefore float64    `gorm:"column:balance_before;type:decimal(18,2);not null" json:"balance_before"`
	BalanceAfter  float64    `gorm:"column:balance_after;type:decimal(18,2);not null" json:"balance_after"`
	Reason        string     `gorm:"column:reason;not null" json:"reason"`
	TransactionID *uuid.UUID `gorm:"column:transaction_id;type:uuid" json:"transaction_id"`
	CreatedAt     time.Time  `json:"createdAt"`
}

func (WalletTransaction) TableName() string {
	return "WalletTransactions"
}

func (wt *WalletTransaction) BeforeCreate(tx *gorm.DB) error {
	if wt.WalletTxID == uuid.Nil {
		wt.WalletTxID = uuid.New()
	}
	return nil
}
