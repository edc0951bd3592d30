package models

import (
	"time"

	"github.com/google/uuid"
)

// CashRecord reconciles cash-on-delivery money for one order: what the total
// said, what the driver collected, what reached the hub. Amounts are settable
// independently; nil means not yet recorded.
type CashRecord struct {
	ID             uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	OrderID        uuid.UUID `gorm:"column:order_id;type:uuid;not null;uniqueIndex"`
	Expected       int       `gorm:"column:expected;not null"`
	Received       *int      `gorm:"column:received"`
	TurnedIn       *int      `gorm:"column:turned_in"`
	VarianceReason *string   `gorm:"column:variance_reason"`
	CreatedAt      time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt      time.Time `gorm:"column:updated_at;autoUpdateTime"`
}
