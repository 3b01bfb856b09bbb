package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// User is the minimal account row referenced by properties, investments and
// wallets. Authentication and onboarding live in a separate service; requests
// arrive with the user id already resolved.
type User struct {
	UserID    uuid.UUID      `gorm:"column:user_id;type:uuid;primaryKey" json:"user_id"`
	Email     string         `gorm:"column:email;not null;uniqueIndex" json:"email"`
	FullName  string         `gorm:"column:full_name;not null" json:"full_name"`
	CreatedAt time.Time      `json:"createdAt"`
	UpdatedAt time.Time      `json:"updatedAt"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

func (User) TableName() string {
	return "Users"
}

func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.UserID == uuid.Nil {
		u.UserID = uuid.New()
	}
	return nil
}
