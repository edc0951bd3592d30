package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/rmagbanua/kaon-backend/pkg/enums"
)

// Message is one entry in an order's thread. Threads are append-only; edits
// and deletes are not supported.
type Message struct {
	ID         uuid.UUID        `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	OrderID    uuid.UUID        `gorm:"column:order_id;type:uuid;index;not null"`
	Sender     enums.ActorClass `gorm:"column:sender;type:text;not null"`
	SenderName string           `gorm:"column:sender_name;not null"`
	Text       string           `gorm:"column:text;not null"`
	CreatedAt  time.Time        `gorm:"column:created_at;autoCreateTime"`
}

func (Message) TableName() string { return "messages" }
