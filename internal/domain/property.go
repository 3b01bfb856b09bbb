package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Property statuses.
const (
	PropertyStatusDraft   = "draft"
	PropertyStatusPending = "pending"
	PropertyStatusActive  = "active"
)

// Property is a tokenized listing. TokenPrice and MaxShares are derived once at
// listing time by the tokenomics calculator and never recomputed. CurrentShares
// only moves through the repository's conditional update (or the explicit
// refund reversal), so 0 <= current_shares <= max_shares holds at all times.
type Property struct {
	PropertyID    uuid.UUID `gorm:"column:property_id;type:uuid;primaryKey" json:"property_id"`
	OwnerID       uuid.UUID `gorm:"column:owner_id;type:uuid;not null" json:"owner_id"`
	Title         string    `gorm:"column:title;not null" json:"title"`
	Address       string    `gorm:"column:address;not null" json:"address"`
	City          string    `gorm:"column:city;not null" json:"city"`
	Country       string    `gorm:"column:country;not null" json:"country"`
	Valuation     float64   `gorm:"column:valuation;type:decimal(18,2);not null" json:"valuation"`
	SquareFootage int       `gorm:"column:square_footage;not null" json:"square_footage"`
	TokenPrice    float64   `gorm:"column:token_price;type:decimal(18,2);not null" json:"token_price"`
	MaxShares     int       `gorm:"column:max_shares;not null" json:"max_shares"`
	CurrentShares int       `gorm:"column:current_shares;not null;default:0" json:"current_shares"`
	Status        string    `gorm:"column:status;type:varchar(20);default:'draft'" json:"status"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

func (Property) TableName() string {
	return "Properties"
}

func (p *Property) BeforeCreate(tx *gorm.DB) error {
	if p.PropertyID == uuid.Nil {
		p.PropertyID = uuid.New()
	}
	return nil
}

// AvailableShares is the unsold remainder under the ownership cap.
func (p *Property) AvailableShares() int {
	return p.MaxShares - p.CurrentShares
}
