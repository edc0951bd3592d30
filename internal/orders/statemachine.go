package orders

import (
	"time"

	"github.com/rmagbanua/kaon-backend/pkg/db/models"
	"github.com/rmagbanua/kaon-backend/pkg/enums"
	pkgerrors "github.com/rmagbanua/kaon-backend/pkg/errors"
)

// Per-actor forward moves on the status ladder. Staff is absent on purpose:
// staff overrides bypass the table entirely. Cancellation is handled
// separately because it is a side exit, not a ladder step.
var actorTransitions = map[enums.ActorClass]map[enums.OrderStatus]enums.OrderStatus{
	enums.ActorRestaurant: {
		enums.OrderStatusPending:   enums.OrderStatusConfirmed,
		enums.OrderStatusConfirmed: enums.OrderStatusPreparing,
		enums.OrderStatusPreparing: enums.OrderStatusReady,
	},
	enums.ActorDriver: {
		enums.OrderStatusReady:          enums.OrderStatusAssigned,
		enums.OrderStatusAssigned:       enums.OrderStatusPicked,
		enums.OrderStatusPicked:         enums.OrderStatusOutForDelivery,
		enums.OrderStatusOutForDelivery: enums.OrderStatusDelivered,
	},
}

var statusTimestampColumn = map[enums.OrderStatus]string{
	enums.OrderStatusConfirmed:      "confirmed_at",
	enums.OrderStatusPreparing:      "preparing_at",
	enums.OrderStatusReady:          "ready_at",
	enums.OrderStatusAssigned:       "assigned_at",
	enums.OrderStatusPicked:         "picked_at",
	enums.OrderStatusOutForDelivery: "out_for_delivery_at",
	enums.OrderStatusDelivered:      "delivered_at",
	enums.OrderStatusCancelled:      "cancelled_at",
}

// CheckTransition validates one status move for a non-staff actor. Staff
// callers skip this and go through CheckOverride instead.
func CheckTransition(actor enums.ActorClass, from, to enums.OrderStatus) error {
	if !to.IsValid() {
		return pkgerrors.New(pkgerrors.CodeValidation, "invalid target status")
	}
	if from.IsTerminal() {
		return pkgerrors.New(pkgerrors.CodeStateConflict, "order is already "+from.String())
	}
	if to == enums.OrderStatusCancelled {
		if actor == enums.ActorCustomer {
			return nil
		}
		return pkgerrors.New(pkgerrors.CodeForbidden, "actor cannot cancel this order")
	}
	allowed, ok := actorTransitions[actor]
	if !ok {
		return pkgerrors.New(pkgerrors.CodeForbidden, "actor cannot change order status")
	}
	if next, ok := allowed[from]; !ok || next != to {
		return pkgerrors.New(pkgerrors.CodeStateConflict, "cannot move order from "+from.String()+" to "+to.String())
	}
	return nil
}

// CheckOverride validates a staff status set. Staff may put an order into
// any valid status from any state, terminal included; the only rejection is
// an unknown status value.
func CheckOverride(to enums.OrderStatus) error {
	if !to.IsValid() {
		return pkgerrors.New(pkgerrors.CodeValidation, "invalid target status")
	}
	return nil
}

// transitionUpdates builds the per-field patch for a status move: the new
// status, the acting class, and the matching lifecycle timestamp. Timestamps
// are first-write-wins so an idempotent or staff re-transition never rewrites
// the audit timeline.
func transitionUpdates(order *models.Order, to enums.OrderStatus, actor enums.ActorClass, now time.Time) map[string]any {
	updates := map[string]any{
		"status":     to,
		"updated_by": actor,
	}
	column, ok := statusTimestampColumn[to]
	if !ok {
		return updates
	}
	if current := statusTimestamp(order, to); current == nil {
		updates[column] = now
	}
	return updates
}

func statusTimestamp(order *models.Order, status enums.OrderStatus) *time.Time {
	switch status {
	case enums.OrderStatusConfirmed:
		return order.ConfirmedAt
	case enums.OrderStatusPreparing:
		return order.PreparingAt
	case enums.OrderStatusReady:
		return order.ReadyAt
	case enums.OrderStatusAssigned:
		return order.AssignedAt
	case enums.OrderStatusPicked:
		return order.PickedAt
	case enums.OrderStatusOutForDelivery:
		return order.OutForDeliveryAt
	case enums.OrderStatusDelivered:
		return order.DeliveredAt
	case enums.OrderStatusCancelled:
		return order.CancelledAt
	default:
		return nil
	}
}
