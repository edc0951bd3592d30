package orders

import (
	"time"

	"github.com/google/uuid"

	"github.com/rmagbanua/kaon-backend/pkg/db/models"
	"github.com/rmagbanua/kaon-backend/pkg/enums"
)

// CartLine is one checkout cart entry as submitted by the customer portal.
type CartLine struct {
	RestaurantName string
	RestaurantSlug string
	IsGrocery      bool
	ItemName       string
	Price          string
	PriceValue     int
	Quantity       int
}

// CreateInput is everything checkout collects before an order exists.
type CreateInput struct {
	CustomerName string
	Phone        string
	Email        *string
	Address      string
	Landmark     string
	Room         *string
	Floor        *string
	GuestName    *string

	DeliveryLat *float64
	DeliveryLng *float64
	ZoneName    *string

	Lines []CartLine

	PromoCode      *string
	LoyaltyPoints  int
	ReferralAmount int
	Tip            int
	Priority       bool

	WindowKind   enums.TimeWindowKind
	ScheduledFor *time.Time

	PaymentMethod enums.PaymentMethod
	PaymentRef    *string

	Notes *string
}

// AcceptInput records a restaurant's accept decision with its prep estimate.
type AcceptInput struct {
	OrderID        uuid.UUID
	RestaurantSlug string
	PrepMinutes    int
}

// RejectInput records a restaurant's reject decision.
type RejectInput struct {
	OrderID        uuid.UUID
	RestaurantSlug string
	Reason         string
}

// TransitionInput moves an order one step on the ladder for driver and
// restaurant actors, or to any status for staff.
type TransitionInput struct {
	OrderID uuid.UUID
	Actor   enums.ActorClass
	Target  enums.OrderStatus
	// DriverID scopes driver transitions to the assigned driver; the claim
	// transition (ready to assigned) sets the assignment instead.
	DriverID *uuid.UUID
}

// CancelInput is a customer or staff cancellation request.
type CancelInput struct {
	OrderID uuid.UUID
	Actor   enums.ActorClass
	// Phone authorizes customer cancellations; ignored for staff.
	Phone  string
	Reason *string
}

// EditInput patches an order inside the post-creation edit window. Nil
// fields are left untouched; a non-nil Lines replaces the cart and reprices.
type EditInput struct {
	OrderID uuid.UUID
	Phone   string
	Notes   *string
	Tip     *int
	Lines   []CartLine
}

// OrderList wraps one page of orders plus the cursor for the next page.
type OrderList struct {
	Orders     []models.Order `json:"orders"`
	NextCursor string         `json:"next_cursor,omitempty"`
}

// ChangeHead is the cheap polling response: compare UpdatedAt with the last
// value you saw before refetching the full order.
type ChangeHead struct {
	OrderID   uuid.UUID `json:"order_id"`
	UpdatedAt time.Time `json:"updated_at"`
	Changed   bool      `json:"changed"`
}
