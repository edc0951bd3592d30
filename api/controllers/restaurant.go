package controllers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/rmagbanua/kaon-backend/api/middleware"
	"github.com/rmagbanua/kaon-backend/api/responses"
	"github.com/rmagbanua/kaon-backend/api/validators"
	"github.com/rmagbanua/kaon-backend/internal/messaging"
	"github.com/rmagbanua/kaon-backend/internal/orders"
	"github.com/rmagbanua/kaon-backend/internal/restaurants"
	"github.com/rmagbanua/kaon-backend/pkg/enums"
	pkgerrors "github.com/rmagbanua/kaon-backend/pkg/errors"
	"github.com/rmagbanua/kaon-backend/pkg/logger"
)

type acceptOrderRequest struct {
	PrepMinutes int `json:"prep_minutes" validate:"required,min=1"`
}

type rejectOrderRequest struct {
	Reason string `json:"reason" validate:"required"`
}

type soldOutRequest struct {
	SoldOut bool `json:"sold_out"`
}

type openRequest struct {
	Open bool `json:"open"`
}

type minOrderRequest struct {
	MinOrder int `json:"min_order" validate:"min=0"`
}

type restaurantMessageRequest struct {
	Text string `json:"text" validate:"required"`
}

func restaurantSlugFromContext(r *http.Request) (string, error) {
	slug := middleware.RestaurantSlugFromContext(r.Context())
	if slug == "" {
		return "", pkgerrors.New(pkgerrors.CodeForbidden, "restaurant scope missing")
	}
	return slug, nil
}

// RestaurantIncoming lists the merchant's orders, optionally by status.
func RestaurantIncoming(svc orders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		slug, err := restaurantSlugFromContext(r)
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
		list, err := svc.ListForRestaurant(r.Context(), slug, statuses, params)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, list)
	}
}

// RestaurantAccept confirms an order with a prep estimate.
func RestaurantAccept(svc orders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		slug, err := restaurantSlugFromContext(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		orderID, err := orderIDFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		var req acceptOrderRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		order, err := svc.Accept(r.Context(), orders.AcceptInput{
			OrderID:        orderID,
			RestaurantSlug: slug,
			PrepMinutes:    req.PrepMinutes,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, order)
	}
}

// RestaurantReject declines an order with a reason.
func RestaurantReject(svc orders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		slug, err := restaurantSlugFromContext(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		orderID, err := orderIDFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		var req rejectOrderRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		order, err := svc.Reject(r.Context(), orders.RejectInput{
			OrderID:        orderID,
			RestaurantSlug: slug,
			Reason:         req.Reason,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, order)
	}
}

// restaurantTransition builds one kitchen step as a handler.
func restaurantTransition(svc orders.Service, target enums.OrderStatus, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if _, err := restaurantSlugFromContext(r); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		orderID, err := orderIDFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		order, err := svc.Transition(r.Context(), orders.TransitionInput{
			OrderID: orderID,
			Actor:   enums.ActorRestaurant,
			Target:  target,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, order)
	}
}

// RestaurantStartPreparing moves a confirmed order into the kitchen.
func RestaurantStartPreparing(svc orders.Service, logg *logger.Logger) http.HandlerFunc {
	return restaurantTransition(svc, enums.OrderStatusPreparing, logg)
}

// RestaurantMarkReady flags the order ready for pickup.
func RestaurantMarkReady(svc orders.Service, logg *logger.Logger) http.HandlerFunc {
	return restaurantTransition(svc, enums.OrderStatusReady, logg)
}

// RestaurantMenu lists the merchant's own menu including sold-out items.
func RestaurantMenu(svc restaurants.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		slug, err := restaurantSlugFromContext(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		menu, err := svc.Menu(r.Context(), slug, true)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, menu)
	}
}

// RestaurantSetSoldOut toggles one menu item's availability.
func RestaurantSetSoldOut(svc restaurants.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		slug, err := restaurantSlugFromContext(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		itemID, err := uuid.Parse(chi.URLParam(r, "itemId"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid item id"))
			return
		}
		var req soldOutRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if err := svc.SetItemSoldOut(r.Context(), slug, itemID, req.SoldOut); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]bool{"sold_out": req.SoldOut})
	}
}

// RestaurantSetOpen opens or closes the storefront.
func RestaurantSetOpen(svc restaurants.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		slug, err := restaurantSlugFromContext(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		var req openRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if err := svc.SetOpen(r.Context(), slug, req.Open); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]bool{"open": req.Open})
	}
}

// RestaurantSetMinOrder updates the checkout minimum.
func RestaurantSetMinOrder(svc restaurants.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		slug, err := restaurantSlugFromContext(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		var req minOrderRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if err := svc.SetMinOrder(r.Context(), slug, req.MinOrder); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]int{"min_order": req.MinOrder})
	}
}

// RestaurantOrderPayout computes the merchant's take for a delivered order.
func RestaurantOrderPayout(svc restaurants.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		slug, err := restaurantSlugFromContext(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		orderID, err := orderIDFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		payout, err := svc.OrderPayout(r.Context(), slug, orderID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, payout)
	}
}

// RestaurantThread lists the thread for an order carrying the merchant's lines.
func RestaurantThread(svc messaging.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		slug, err := restaurantSlugFromContext(r)
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
			Actor:          enums.ActorRestaurant,
			RestaurantSlug: slug,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, thread)
	}
}

// RestaurantSendMessage appends to the thread of one of the merchant's orders.
func RestaurantSendMessage(svc messaging.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		slug, err := restaurantSlugFromContext(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		orderID, err := orderIDFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		var req restaurantMessageRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		message, err := svc.Append(r.Context(), messaging.AppendInput{
			OrderID: orderID,
			Sender: messaging.Identity{
				Actor:          enums.ActorRestaurant,
				RestaurantSlug: slug,
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
