package controllers

import (
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/rmagbanua/kaon-backend/api/middleware"
	"github.com/rmagbanua/kaon-backend/api/responses"
	"github.com/rmagbanua/kaon-backend/api/validators"
	"github.com/rmagbanua/kaon-backend/internal/dispatch"
	"github.com/rmagbanua/kaon-backend/internal/ledger"
	"github.com/rmagbanua/kaon-backend/internal/messaging"
	"github.com/rmagbanua/kaon-backend/internal/orders"
	"github.com/rmagbanua/kaon-backend/pkg/enums"
	pkgerrors "github.com/rmagbanua/kaon-backend/pkg/errors"
	"github.com/rmagbanua/kaon-backend/pkg/logger"
)

type availabilityRequest struct {
	Available bool `json:"available"`
}

type pushLocationRequest struct {
	Lat       float64    `json:"lat" validate:"required"`
	Lng       float64    `json:"lng" validate:"required"`
	AccuracyM float64    `json:"accuracy_m" validate:"min=0"`
	At        *time.Time `json:"at,omitempty"`
}

type arrivalRequest struct {
	Kind string `json:"kind" validate:"required,oneof=hub customer"`
}

type cashEntryRequest struct {
	Received       *int    `json:"received,omitempty" validate:"omitempty,min=0"`
	TurnedIn       *int    `json:"turned_in,omitempty" validate:"omitempty,min=0"`
	VarianceReason *string `json:"variance_reason,omitempty"`
}

type driverMessageRequest struct {
	Text string `json:"text" validate:"required"`
}

func driverIDFromContext(r *http.Request) (uuid.UUID, error) {
	id := middleware.ActorIDFromContext(r.Context())
	if id == uuid.Nil {
		return uuid.Nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "driver identity missing")
	}
	return id, nil
}

// DriverSetAvailability flips the driver on or off the claim queue.
func DriverSetAvailability(svc dispatch.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		driverID, err := driverIDFromContext(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		var req availabilityRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		driver, err := svc.SetAvailability(r.Context(), driverID, req.Available)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, driver)
	}
}

// DriverQueue lists ready orders no driver has claimed yet.
func DriverQueue(svc orders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		params, err := paginationFromQuery(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		list, err := svc.ListClaimable(r.Context(), params)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, list)
	}
}

// DriverOrders lists the driver's own orders, optionally filtered by status.
func DriverOrders(svc orders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		driverID, err := driverIDFromContext(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		params, err := paginationFromQuery(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		statuses, err := statusesFromQuery(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		list, err := svc.ListForDriver(r.Context(), driverID, statuses, params)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, list)
	}
}

// driverTransition builds one rung of the driver ladder as a handler.
func driverTransition(svc orders.Service, target enums.OrderStatus, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		driverID, err := driverIDFromContext(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		orderID, err := orderIDFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		order, err := svc.Transition(r.Context(), orders.TransitionInput{
			OrderID:  orderID,
			Actor:    enums.ActorDriver,
			Target:   target,
			DriverID: &driverID,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, order)
	}
}

// DriverClaim assigns a ready order to the calling driver.
func DriverClaim(svc orders.Service, logg *logger.Logger) http.HandlerFunc {
	return driverTransition(svc, enums.OrderStatusAssigned, logg)
}

// DriverPickup marks the assigned order as picked up from the merchant.
func DriverPickup(svc orders.Service, logg *logger.Logger) http.HandlerFunc {
	return driverTransition(svc, enums.OrderStatusPicked, logg)
}

// DriverOutForDelivery starts the delivery leg.
func DriverOutForDelivery(svc orders.Service, logg *logger.Logger) http.HandlerFunc {
	return driverTransition(svc, enums.OrderStatusOutForDelivery, logg)
}

// DriverDeliver completes the order, triggering earnings and loyalty accrual.
func DriverDeliver(svc orders.Service, logg *logger.Logger) http.HandlerFunc {
	return driverTransition(svc, enums.OrderStatusDelivered, logg)
}

// DriverArrival flags arrival at the hub or the customer.
func DriverArrival(svc dispatch.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		driverID, err := driverIDFromContext(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		orderID, err := orderIDFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		var req arrivalRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		order, err := svc.RecordArrival(r.Context(), orderID, driverID, dispatch.ArrivalKind(req.Kind))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, order)
	}
}

// DriverPushLocation accepts one location sample for an out-for-delivery
// order. Most samples land in redis only; one write per window reaches the
// database.
func DriverPushLocation(svc dispatch.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		driverID, err := driverIDFromContext(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		orderID, err := orderIDFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		var req pushLocationRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		at := time.Now().UTC()
		if req.At != nil {
			at = req.At.UTC()
		}
		result, err := svc.PushLocation(r.Context(), dispatch.PushInput{
			OrderID:   orderID,
			DriverID:  driverID,
			Lat:       req.Lat,
			Lng:       req.Lng,
			AccuracyM: req.AccuracyM,
			At:        at,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}

// DriverCashEntry records collected or turned-in cash for a COD order.
func DriverCashEntry(svc ledger.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		orderID, err := orderIDFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		var req cashEntryRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		record, err := svc.RecordCash(r.Context(), ledger.RecordCashInput{
			OrderID:        orderID,
			Received:       req.Received,
			TurnedIn:       req.TurnedIn,
			VarianceReason: req.VarianceReason,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, record)
	}
}

// DriverEarnings lists the driver's per-delivery earnings.
func DriverEarnings(svc ledger.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		driverID, err := driverIDFromContext(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		earnings, err := svc.ListEarnings(r.Context(), driverID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, earnings)
	}
}

// DriverThread lists the thread for an order the driver is assigned to.
func DriverThread(svc messaging.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		driverID, err := driverIDFromContext(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		orderID, err := orderIDFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		thread, err := svc.Thread(r.Context(), orderID, messaging.Identity{
			Actor:    enums.ActorDriver,
			DriverID: &driverID,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, thread)
	}
}

// DriverSendMessage appends to the thread of an assigned order.
func DriverSendMessage(svc messaging.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		driverID, err := driverIDFromContext(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		orderID, err := orderIDFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		var req driverMessageRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		message, err := svc.Append(r.Context(), messaging.AppendInput{
			OrderID: orderID,
			Sender: messaging.Identity{
				Actor:    enums.ActorDriver,
				DriverID: &driverID,
			},
			SenderName: middleware.ActorNameFromContext(r.Context()),
			Text:       req.Text,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, message)
	}
}
