package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/rmagbanua/kaon-backend/pkg/enums"
)

// Order is the central aggregate shared by all four portals. Money fields are
// whole currency units; total is always recomputed from its inputs, never
// edited directly.
type Order struct {
	ID uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`

	CustomerName string  `gorm:"column:customer_name;not null"`
	Phone        string  `gorm:"column:phone;not null;index"`
	Email        *string `gorm:"column:email"`
	Address      string  `gorm:"column:address;not null"`
	Landmark     string  `gorm:"column:landmark;not null"`
	Room         *string `gorm:"column:room"`
	Floor        *string `gorm:"column:floor"`
	GuestName    *string `gorm:"column:guest_name"`

	DeliveryLat *float64 `gorm:"column:delivery_lat"`
	DeliveryLng *float64 `gorm:"column:delivery_lng"`
	ZoneName    *string  `gorm:"column:zone_name"`
	DistanceKm  float64  `gorm:"column:distance_km;not null;default:0"`

	Subtotal         int     `gorm:"column:subtotal;not null"`
	PromoCode        *string `gorm:"column:promo_code"`
	PromoDiscount    int     `gorm:"column:promo_discount;not null;default:0"`
	LoyaltyDiscount  int     `gorm:"column:loyalty_discount;not null;default:0"`
	ReferralDiscount int     `gorm:"column:referral_discount;not null;default:0"`
	DeliveryFee      int     `gorm:"column:delivery_fee;not null;default:0"`
	Tip              int     `gorm:"column:tip;not null;default:0"`
	Priority         bool    `gorm:"column:priority;not null;default:false"`
	PriorityFee      int     `gorm:"column:priority_fee;not null;default:0"`
	Total            int     `gorm:"column:total;not null"`

	WindowKind   enums.TimeWindowKind `gorm:"column:window_kind;type:text;not null;default:'asap'"`
	ScheduledFor *time.Time           `gorm:"column:scheduled_for"`

	Status       enums.OrderStatus      `gorm:"column:status;type:text;not null;default:'pending';index"`
	Acceptance   enums.AcceptanceStatus `gorm:"column:acceptance;type:text;not null;default:'pending'"`
	PrepMinutes  *int                   `gorm:"column:prep_minutes"`
	RejectReason *string                `gorm:"column:reject_reason"`
	// Set when a paid order is cancelled; payment reversal is an external
	// follow-up keyed off this flag.
	RefundPending bool             `gorm:"column:refund_pending;not null;default:false"`
	UpdatedBy     enums.ActorClass `gorm:"column:updated_by;type:text;not null;default:'customer'"`

	DriverID        *uuid.UUID `gorm:"column:driver_id;type:uuid;index"`
	ArrivedAtHubAt  *time.Time `gorm:"column:arrived_at_hub_at"`
	DriverArrivedAt *time.Time `gorm:"column:driver_arrived_at"`

	DriverLat       *float64   `gorm:"column:driver_lat"`
	DriverLng       *float64   `gorm:"column:driver_lng"`
	DriverLocatedAt *time.Time `gorm:"column:driver_located_at"`

	PaymentMethod enums.PaymentMethod `gorm:"column:payment_method;type:text;not null;default:'cash'"`
	// Gateway session id, or the on-chain tx hash for crypto orders.
	PaymentRef *string `gorm:"column:payment_ref"`

	Notes *string `gorm:"column:notes"`

	CancelCutoffAt      time.Time  `gorm:"column:cancel_cutoff_at;not null"`
	ConfirmedAt         *time.Time `gorm:"column:confirmed_at"`
	PreparingAt         *time.Time `gorm:"column:preparing_at"`
	ReadyAt             *time.Time `gorm:"column:ready_at"`
	AssignedAt          *time.Time `gorm:"column:assigned_at"`
	PickedAt            *time.Time `gorm:"column:picked_at"`
	OutForDeliveryAt    *time.Time `gorm:"column:out_for_delivery_at"`
	DeliveredAt         *time.Time `gorm:"column:delivered_at"`
	CancelledAt         *time.Time `gorm:"column:cancelled_at"`
	EstimatedDeliveryAt *time.Time `gorm:"column:estimated_delivery_at"`

	Items []OrderItem  `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
	Cash  *CashRecord  `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`

	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}
