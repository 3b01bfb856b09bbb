package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Transaction types.
const (
	TransactionTypeInvestment = "investment"
	TransactionTypeListingFee = "listing_fee"
	TransactionTypeWithdrawal = "withdrawal"
	TransactionTypeRecurring  = "recurring"
)

// Transaction statuses. A transaction is created pending when a payment intent
// opens and moves to completed exactly once; failed is terminal.
const (
	TransactionStatusPending   = "pending"
	TransactionStatusCompleted = "completed"
	TransactionStatusFailed    = "failed"
)

type Transaction struct {
	TransactionID uuid.UUID  `gorm:"column:transaction_id;type:uuid;primaryKey" json:"transaction_id"`
	UserID        uuid.UUID  `gorm:"column:user_id;type:uuid;not null" json:"user_id"`
	PropertyID    *uuid.UUID `gorm:"column:property_id;type:uuid" json:"property_id"`
	Type          string     `gorm:"column:type;type:varchar(20);not null" json:"type"`
	Amount        float64    `gorm:"column:amount;type:decimal(18,2);not null" json:"amount"`
	// Shares and PricePerShare are set for investment transactions only; they
	// carry the admitted request through payment latency so settlement needs
	// nothing but the intent id.
	Shares                int            `gorm:"column:shares;not null;default:0" json:"shares"`
	PricePerShare         float64        `gorm:"column:price_per_share;type:decimal(18,2);not null;default:0" json:"price_per_share"`
	Currency              string         `gorm:"column:currency;not null" json:"currency"`
	Status                string         `gorm:"column:status;type:varchar(20);not null;default:'pending'" json:"status"`
	StripePaymentIntentID *string        `gorm:"column:stripe_payment_intent_id;uniqueIndex" json:"stripe_payment_intent_id"`
	ReceiptNumber         string         `gorm:"column:receipt_number;uniqueIndex;not null" json:"receipt_number"`
	RawPaymentIntent      datatypes.JSON `gorm:"column:raw_payment_intent;type:jsonb" json:"raw_payment_intent"`
	CreatedAt             time.Time      `json:"createdAt"`
	UpdatedAt             time.Time      `json:"updatedAt"`
}

func (Transaction) TableName() string {
	return "Transactions"
}

func (t *Transaction) BeforeCreate(tx *gorm.DB) error {
	if t.TransactionID == uuid.Nil {
		t.TransactionID = uuid.New()
	}
	return nil
}
