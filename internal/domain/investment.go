package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Investment is immutable once created. PricePerShare is a snapshot of the
// checkout price at purchase time and is never recomputed from the property.
// TransactionID is unique: a transaction settles into at most one investment.
type Investment struct {
	InvestmentID  uuid.UUID `gorm:"column:investment_id;type:uuid;primaryKey" json:"investment_id"`
	UserID        uuid.UUID `gorm:"column:user_id;type:uuid;not null" json:"user_id"`
	PropertyID    uuid.UUID `gorm:"column:property_id;type:uuid;not null" json:"property_id"`
	Shares        int       `gorm:"column:shares;not null" json:"shares"`
	PricePerShare float64   `gorm:"column:price_per_share;type:decimal(18,2);not null" json:"price_per_share"`
	TotalAmount   float64   `gorm:"column:total_amount;type:decimal(18,2);not null" json:"total_amount"`
	TransactionID uuid.UUID `gorm:"column:transaction_id;type:uuid;not null;uniqueIndex" json:"transaction_id"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

func (Investment) TableName() string {
	return "Investments"
}

func (i *Investment) BeforeCreate(tx *gorm.DB) error {
	if i.InvestmentID == uuid.Nil {
		i.InvestmentID = uuid.New()
	}
	return nil
}
