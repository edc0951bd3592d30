package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Restaurant is a merchant storefront. Grocery partners reuse the same shape
// with IsGrocery set; the dispatch and commission paths treat them identically.
type Restaurant struct {
	ID           uuid.UUID       `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Name         string          `gorm:"column:name;not null"`
	Slug         string          `gorm:"column:slug;uniqueIndex;not null"`
	IsGrocery    bool            `gorm:"column:is_grocery;not null;default:false"`
	Phone        string          `gorm:"column:phone;not null"`
	PasswordHash string          `gorm:"column:password_hash;not null"`
	Address      string          `gorm:"column:address;not null"`
	Lat          float64         `gorm:"column:lat;not null"`
	Lng          float64         `gorm:"column:lng;not null"`
	Commission   decimal.Decimal `gorm:"column:commission;type:numeric(5,4);not null;default:0.15"`
	MinOrder     int             `gorm:"column:min_order;not null;default:0"`
	Open         bool            `gorm:"column:open;not null;default:true"`
	PayoutMethod string          `gorm:"column:payout_method;type:text;not null;default:'bank'"`

	Items []RestaurantItem `gorm:"foreignKey:RestaurantID"`

	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

func (Restaurant) TableName() string { return "restaurants" }

// RestaurantItem is a menu entry. SoldOut hides it from checkout without
// deleting it, so historical order lines keep their names.
type RestaurantItem struct {
	ID           uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	RestaurantID uuid.UUID `gorm:"column:restaurant_id;type:uuid;index;not null"`
	Name         string    `gorm:"column:name;not null"`
	Description  *string   `gorm:"column:description"`
	Price        int       `gorm:"column:price;not null"`
	Category     string    `gorm:"column:category;not null;default:'mains'"`
	SoldOut      bool      `gorm:"column:sold_out;not null;default:false"`
	Position     int       `gorm:"column:position;not null;default:0"`

	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

func (RestaurantItem) TableName() string { return "restaurant_items" }
