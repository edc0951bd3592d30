package models

import (
	"time"

	"github.com/google/uuid"
)

// LoyaltyAccount tracks points earned per customer phone. Phones are the
// customer identity for guest checkout, so the account is keyed on them.
type LoyaltyAccount struct {
	ID     uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Phone  string    `gorm:"column:phone;uniqueIndex;not null"`
	Points int       `gorm:"column:points;not null;default:0"`

	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

func (LoyaltyAccount) TableName() string { return "loyalty_accounts" }
