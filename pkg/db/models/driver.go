package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/rmagbanua/kaon-backend/pkg/enums"
)

// Driver is a long-lived courier account. Availability and the liveness
// timestamp gate whether the driver shows up as a claim candidate.
type Driver struct {
	ID           uuid.UUID  `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Name         string     `gorm:"column:name;not null"`
	Phone        string     `gorm:"column:phone;not null;uniqueIndex"`
	PasswordHash string     `gorm:"column:password_hash;not null"`
	Available    bool       `gorm:"column:available;not null;default:false"`
	LastSeenAt   *time.Time `gorm:"column:last_seen_at"`
	Lat          *float64   `gorm:"column:lat"`
	Lng          *float64   `gorm:"column:lng"`
	CreatedAt    time.Time  `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt    time.Time  `gorm:"column:updated_at;autoUpdateTime"`
}

// DriverEarning accrues one row per delivered order; Amount is the driver's
// share of the delivery fee after commission.
type DriverEarning struct {
	ID        uuid.UUID          `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	DriverID  uuid.UUID          `gorm:"column:driver_id;type:uuid;not null;index"`
	OrderID   uuid.UUID          `gorm:"column:order_id;type:uuid;not null;uniqueIndex"`
	Amount    int                `gorm:"column:amount;not null"`
	Status    enums.PayoutStatus `gorm:"column:status;type:text;not null;default:'accrued'"`
	PaidAt    *time.Time         `gorm:"column:paid_at"`
	CreatedAt time.Time          `gorm:"column:created_at;autoCreateTime"`
}
