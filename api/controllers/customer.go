package controllers

import (
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/rmagbanua/kaon-backend/api/responses"
	"github.com/rmagbanua/kaon-backend/api/validators"
	"github.com/rmagbanua/kaon-backend/internal/dispatch"
	"github.com/rmagbanua/kaon-backend/internal/messaging"
	"github.com/rmagbanua/kaon-backend/internal/orders"
	"github.com/rmagbanua/kaon-backend/pkg/enums"
	pkgerrors "github.com/rmagbanua/kaon-backend/pkg/errors"
	"github.com/rmagbanua/kaon-backend/pkg/logger"
)

type cartLineRequest struct {
	RestaurantName string `json:"restaurant_name" validate:"required"`
	RestaurantSlug string `json:"restaurant_slug" validate:"required"`
	IsGrocery      bool   `json:"is_grocery"`
	ItemName       string `json:"item_name" validate:"required"`
	Price          string `json:"price"`
	PriceValue     int    `json:"price_value" validate:"min=0"`
	Quantity       int    `json:"quantity" validate:"min=1"`
}

type createOrderRequest struct {
	CustomerName string  `json:"customer_name" validate:"required"`
	Phone        string  `json:"phone" validate:"required"`
	Email        *string `json:"email,omitempty" validate:"omitempty,email"`
	Address      string  `json:"address" validate:"required"`
	Landmark     string  `json:"landmark" validate:"required"`
	Room         *string `json:"room,omitempty"`
	Floor        *string `json:"floor,omitempty"`
	GuestName    *string `json:"guest_name,omitempty"`

	DeliveryLat *float64 `json:"delivery_lat,omitempty"`
	DeliveryLng *float64 `json:"delivery_lng,omitempty"`
	ZoneName    *string  `json:"zone_name,omitempty"`

	Lines []cartLineRequest `json:"lines" validate:"required,min=1,dive"`

	PromoCode      *string `json:"promo_code,omitempty"`
	LoyaltyPoints  int     `json:"loyalty_points" validate:"min=0"`
	ReferralAmount int     `json:"referral_amount" validate:"min=0"`
	Tip            int     `json:"tip" validate:"min=0"`
	Priority       bool    `json:"priority"`

	WindowKind   string     `json:"window_kind" validate:"required,oneof=asap scheduled"`
	ScheduledFor *time.Time `json:"scheduled_for,omitempty"`

	PaymentMethod string  `json:"payment_method" validate:"required"`
	PaymentRef    *string `json:"payment_ref,omitempty"`

	Notes *string `json:"notes,omitempty"`
}

type editOrderRequest struct {
	Phone string            `json:"phone" validate:"required"`
	Notes *string           `json:"notes,omitempty"`
	Tip   *int              `json:"tip,omitempty" validate:"omitempty,min=0"`
	Lines []cartLineRequest `json:"lines,omitempty" validate:"omitempty,min=1,dive"`
}

type cancelOrderRequest struct {
	Phone  string  `json:"phone" validate:"required"`
	Reason *string `json:"reason,omitempty"`
}

type sendMessageRequest struct {
	Phone      string `json:"phone" validate:"required"`
	SenderName string `json:"sender_name" validate:"required"`
	Text       string `json:"text" validate:"required"`
}

func orderIDFromRequest(r *http.Request) (uuid.UUID, error) {
	raw := chi.URLParam(r, "orderId")
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid order id")
	}
	return id, nil
}

func phoneFromQuery(r *http.Request) (string, error) {
	phone := strings.TrimSpace(r.URL.Query().Get("phone"))
	if phone == "" {
		return "", pkgerrors.New(pkgerrors.CodeValidation, "phone query parameter required")
	}
	return phone, nil
}

func cartLines(reqs []cartLineRequest) []orders.CartLine {
	lines := make([]orders.CartLine, 0, len(reqs))
	for _, line := range reqs {
		lines = append(lines, orders.CartLine{
			RestaurantName: line.RestaurantName,
			RestaurantSlug: line.RestaurantSlug,
			IsGrocery:      line.IsGrocery,
			ItemName:       line.ItemName,
			Price:          line.Price,
			PriceValue:     line.PriceValue,
			Quantity:       line.Quantity,
		})
	}
	return lines
}

// CustomerCreateOrder prices and persists a new order from the checkout cart.
func CustomerCreateOrder(svc orders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req createOrderRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		method, err := enums.ParsePaymentMethod(req.PaymentMethod)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid payment method"))
			return
		}
		window, err := enums.ParseTimeWindowKind(req.WindowKind)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid window kind"))
			return
		}

		order, err := svc.Create(r.Context(), orders.CreateInput{
			CustomerName:   req.CustomerName,
			Phone:          req.Phone,
			Email:          req.Email,
			Address:        req.Address,
			Landmark:       req.Landmark,
			Room:           req.Room,
			Floor:          req.Floor,
			GuestName:      req.GuestName,
			DeliveryLat:    req.DeliveryLat,
			DeliveryLng:    req.DeliveryLng,
			ZoneName:       req.ZoneName,
			Lines:          cartLines(req.Lines),
			PromoCode:      req.PromoCode,
			LoyaltyPoints:  req.LoyaltyPoints,
			ReferralAmount: req.ReferralAmount,
			Tip:            req.Tip,
			Priority:       req.Priority,
			WindowKind:     window,
			ScheduledFor:   req.ScheduledFor,
			PaymentMethod:  method,
			PaymentRef:     req.PaymentRef,
			Notes:          req.Notes,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, order)
	}
}

// CustomerTrackOrder is the tokenless read, gated by the order's phone.
func CustomerTrackOrder(svc orders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := orderIDFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		phone, err := phoneFromQuery(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		order, err := svc.Track(r.Context(), id, phone)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, order)
	}
}

// CustomerOrderHead reports whether the order changed since the given
// timestamp, so trackers can poll cheaply.
func CustomerOrderHead(svc orders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := orderIDFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if _, err := phoneFromQuery(r); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var since time.Time
		if raw := strings.TrimSpace(r.URL.Query().Get("since")); raw != "" {
			parsed, err := time.Parse(time.RFC3339Nano, raw)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid since timestamp"))
				return
			}
			since = parsed
		}

		head, err := svc.Head(r.Context(), id, since)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, head)
	}
}

// CustomerCancelOrder cancels inside the post-creation window.
func CustomerCancelOrder(svc orders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := orderIDFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		var req cancelOrderRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		err = svc.Cancel(r.Context(), orders.CancelInput{
			OrderID: id,
			Actor:   enums.ActorCustomer,
			Phone:   req.Phone,
			Reason:  req.Reason,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"status": "cancelled"})
	}
}

// CustomerEditOrder patches notes, tip, or the cart inside the edit window.
func CustomerEditOrder(svc orders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := orderIDFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		var req editOrderRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		input := orders.EditInput{
			OrderID: id,
			Phone:   req.Phone,
			Notes:   req.Notes,
			Tip:     req.Tip,
		}
		if len(req.Lines) > 0 {
			input.Lines = cartLines(req.Lines)
		}
		order, err := svc.Edit(r.Context(), input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, order)
	}
}

// CustomerLiveLocation serves the freshest driver fix for an active order.
func CustomerLiveLocation(ordersSvc orders.Service, dispatchSvc dispatch.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := orderIDFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		phone, err := phoneFromQuery(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		// Track enforces the phone gate before any location leaves the API.
		if _, err := ordersSvc.Track(r.Context(), id, phone); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		position, err := dispatchSvc.LiveLocation(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, position)
	}
}

// CustomerThread lists the order's messages, phone-gated.
func CustomerThread(svc messaging.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := orderIDFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		phone, err := phoneFromQuery(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		thread, err := svc.Thread(r.Context(), id, messaging.Identity{
			Actor: enums.ActorCustomer,
			Phone: phone,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, thread)
	}
}

// CustomerSendMessage appends to the order thread, phone-gated.
func CustomerSendMessage(svc messaging.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := orderIDFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		var req sendMessageRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		message, err := svc.Append(r.Context(), messaging.AppendInput{
			OrderID: id,
			Sender: messaging.Identity{
				Actor: enums.ActorCustomer,
				Phone: req.Phone,
			},
			SenderName: req.SenderName,
			Text:       req.Text,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, message)
	}
}
