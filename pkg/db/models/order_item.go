package models

import (
	"time"

	"github.com/google/uuid"
)

// OrderItem is a cart line snapshotted at creation or edit time. Price keeps
// the display string the menus use; PriceValue is what the pricing engine
// multiplies.
type OrderItem struct {
	ID             uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	OrderID        uuid.UUID `gorm:"column:order_id;type:uuid;not null;index"`
	RestaurantName string    `gorm:"column:restaurant_name;not null"`
	RestaurantSlug string    `gorm:"column:restaurant_slug;not null"`
	IsGrocery      bool      `gorm:"column:is_grocery;not null;default:false"`
	ItemName       string    `gorm:"column:item_name;not null"`
	Price          string    `gorm:"column:price;not null"`
	PriceValue     int       `gorm:"column:price_value;not null"`
	Quantity       int       `gorm:"column:quantity;not null"`
	Position       int       `gorm:"column:position;not null;default:0"`
	CreatedAt      time.Time `gorm:"column:created_at;autoCreateTime"`
}
