package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Refund statuses.
const (
	RefundStatusQueued    = "queued"
	RefundStatusProcessed = "processed"
)

// Refund is a queued compensation for a payment that was confirmed by the
// processor but lost the share reservation race at settlement time. Real money
// has moved by then, so the failure is recorded here rather than dropped.
type Refund struct {
	RefundID      uuid.UUID `gorm:"column:refund_id;type:uuid;primaryKey" json:"refund_id"`
	TransactionID uuid.UUID `gorm:"column:transaction_id;type:uuid;not null;uniqueIndex" json:"transaction_id"`
	Amount        float64   `gorm:"column:amount;type:decimal(18,2);not null" json:"amount"`
	Reason        string    `gorm:"column:reason;not null" json:"reason"`
	Status        string    `gorm:"column:status;type:varchar(20);not null;default:'queued'" json:"status"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

func (Refund) TableName() string {
	return "Refunds"
}

func (r *Refund) BeforeCreate(tx *gorm.DB) error {
	if r.RefundID == uuid.Nil {
		r.RefundID = uuid.New()
	}
	return nil
}
