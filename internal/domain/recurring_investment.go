package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Recurring investment frequencies.
const (
	FrequencyWeekly    = "weekly"
	FrequencyMonthly   = "monthly"
	FrequencyQuarterly = "quarterly"
)

// MaxConsecutiveFailures deactivates a standing order after this many failed
// charge attempts in a row.
const MaxConsecutiveFailures = 3

// RecurringInvestment is a standing order re-driven by the scheduler rather
// than user interaction.
type RecurringInvestment struct {
	RecurringID         uuid.UUID  `gorm:"column:recurring_id;type:uuid;primaryKey" json:"recurring_id"`
	UserID              uuid.UUID  `gorm:"column:user_id;type:uuid;not null;index" json:"user_id"`
	PropertyID          *uuid.UUID `gorm:"column:property_id;type:uuid" json:"property_id"`
	Amount              float64    `gorm:"column:amount;type:decimal(18,2);not null" json:"amount"`
	Frequency           string     `gorm:"column:frequency;type:varchar(10);not null" json:"frequency"`
	NextRunAt           time.Time  `gorm:"column:next_run_at;not null;index" json:"next_run_at"`
	ConsecutiveFailures int        `gorm:"column:consecutive_failures;not null;default:0" json:"consecutive_failures"`
	Active              bool       `gorm:"column:active;not null;default:true" json:"active"`
	CreatedAt           time.Time  `json:"createdAt"`
	UpdatedAt           time.Time  `json:"updatedAt"`
}

func (RecurringInvestment) TableName() string {
	return "RecurringInvestments"
}

func (r *RecurringInvestment) BeforeCreate(tx *gorm.DB) error {
	if r.RecurringID == uuid.Nil {
		r.RecurringID = uuid.New()
	}
	return nil
}

// NextInterval returns the gap to the following run for the order's frequency.
func (r *RecurringInvestment) NextInterval() time.Duration {
	switch r.Frequency {
	case FrequencyWeekly:
		return 7 * 24 * time.Hour
	case FrequencyQuarterly:
		return 91 * 24 * time.Hour
	default: // monthly
		return 30 * 24 * time.Hour
	}
}
