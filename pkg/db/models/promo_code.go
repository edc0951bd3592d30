package models

import (
	"time"

	"github.com/google/uuid"
)

// PromoCode is a flat-amount discount code. Amount is capped against the
// order subtotal at checkout time, never stored negative.
type PromoCode struct {
	ID          uuid.UUID  `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Code        string     `gorm:"column:code;uniqueIndex;not null"`
	Amount      int        `gorm:"column:amount;not null"`
	MinSubtotal int        `gorm:"column:min_subtotal;not null;default:0"`
	StartsAt    *time.Time `gorm:"column:starts_at"`
	ExpiresAt   *time.Time `gorm:"column:expires_at"`
	Active      bool       `gorm:"column:active;not null;default:true"`
	MaxUses     *int       `gorm:"column:max_uses"`
	UsedCount   int        `gorm:"column:used_count;not null;default:0"`

	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

func (PromoCode) TableName() string { return "promo_codes" }

// UsableAt reports whether the code can be redeemed at the given instant
// against the given subtotal. It does not consume a use.
func (p *PromoCode) UsableAt(at time.Time, subtotal int) bool {
	if !p.Active {
		return false
	}
	if p.StartsAt != nil && at.Before(*p.StartsAt) {
		return false
	}
	if p.ExpiresAt != nil && at.After(*p.ExpiresAt) {
		return false
	}
	if p.MaxUses != nil && p.UsedCount >= *p.MaxUses {
		return false
	}
	return subtotal >= p.MinSubtotal
}
