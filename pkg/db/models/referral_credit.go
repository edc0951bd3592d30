package models

import (
	"time"

	"github.com/google/uuid"
)

// ReferralCredit is the spendable peso balance a customer earned by
// referring others. Balance only moves through the discounts service.
type ReferralCredit struct {
	ID      uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Phone   string    `gorm:"column:phone;uniqueIndex;not null"`
	Balance int       `gorm:"column:balance;not null;default:0"`

	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

func (ReferralCredit) TableName() string { return "referral_credits" }
