package controllers

import (
	"fmt"
	"net/http"

	"github.com/rmagbanua/kaon-backend/api/responses"
	"github.com/rmagbanua/kaon-backend/api/validators"
	"github.com/rmagbanua/kaon-backend/internal/orders"
	"github.com/rmagbanua/kaon-backend/pkg/enums"
	pkgerrors "github.com/rmagbanua/kaon-backend/pkg/errors"
	"github.com/rmagbanua/kaon-backend/pkg/logger"
	"github.com/rmagbanua/kaon-backend/pkg/payments"
)

type paymentSessionRequest struct {
	Phone string `json:"phone" validate:"required"`
}

type paymentSessionResponse struct {
	Method      string `json:"method"`
	SessionID   string `json:"session_id,omitempty"`
	RedirectURL string `json:"redirect_url,omitempty"`
}

type cryptoConfirmRequest struct {
	Phone  string `json:"phone" validate:"required"`
	TxHash string `json:"tx_hash" validate:"required"`
}

// CustomerPaymentSession opens the gateway session for a non-cash order and
// returns the redirect the customer completes payment through.
func CustomerPaymentSession(
	ordersSvc orders.Service,
	stripeClient *payments.StripeClient,
	paymongoClient *payments.PayMongoClient,
	paypalClient *payments.PayPalClient,
	logg *logger.Logger,
) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := orderIDFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		var req paymentSessionRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		order, err := ordersSvc.Track(r.Context(), id, req.Phone)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		description := fmt.Sprintf("Kaon order %s", order.ID)

		switch order.PaymentMethod {
		case enums.PaymentMethodCash:
			responses.WriteSuccess(w, paymentSessionResponse{Method: string(order.PaymentMethod)})
		case enums.PaymentMethodCard:
			if stripeClient == nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeDependency, "card payments are not configured"))
				return
			}
			session, err := stripeClient.CreateCardSession(r.Context(), payments.CardSessionParams{
				OrderID:     order.ID.String(),
				Description: description,
				Amount:      int64(order.Total),
			})
			if err != nil {
				responses.WriteError(r.Context(), logg, w, err)
				return
			}
			responses.WriteSuccess(w, paymentSessionResponse{
				Method:      string(order.PaymentMethod),
				SessionID:   session.ID,
				RedirectURL: session.URL,
			})
		case enums.PaymentMethodGCash:
			if paymongoClient == nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeDependency, "gcash payments are not configured"))
				return
			}
			source, err := paymongoClient.CreateGCashSource(r.Context(), payments.GCashSourceParams{
				OrderID: order.ID.String(),
				Amount:  int64(order.Total),
			})
			if err != nil {
				responses.WriteError(r.Context(), logg, w, err)
				return
			}
			responses.WriteSuccess(w, paymentSessionResponse{
				Method:      string(order.PaymentMethod),
				SessionID:   source.ID,
				RedirectURL: source.CheckoutURL,
			})
		case enums.PaymentMethodPayPal:
			if paypalClient == nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeDependency, "paypal payments are not configured"))
				return
			}
			ppOrder, err := paypalClient.CreateOrder(r.Context(), payments.PayPalOrderParams{
				OrderID: order.ID.String(),
				Amount:  int64(order.Total),
			})
			if err != nil {
				responses.WriteError(r.Context(), logg, w, err)
				return
			}
			responses.WriteSuccess(w, paymentSessionResponse{
				Method:      string(order.PaymentMethod),
				SessionID:   ppOrder.ID,
				RedirectURL: ppOrder.ApproveURL,
			})
		case enums.PaymentMethodCrypto:
			// No hosted session; the customer pays on-chain and confirms
			// with the transaction hash afterwards.
			responses.WriteSuccess(w, paymentSessionResponse{Method: string(order.PaymentMethod)})
		default:
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "payment method has no hosted session"))
		}
	}
}

// CustomerConfirmCrypto records the on-chain transaction hash for a crypto
// order, phone-gated like every customer endpoint.
func CustomerConfirmCrypto(ordersSvc orders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := orderIDFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		var req cryptoConfirmRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if !payments.ValidTxHash(req.TxHash) {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "invalid transaction hash"))
			return
		}

		order, err := ordersSvc.Track(r.Context(), id, req.Phone)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if order.PaymentMethod != enums.PaymentMethodCrypto {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeStateConflict, "order is not a crypto payment"))
			return
		}

		if err := ordersSvc.RecordPaymentRef(r.Context(), order.ID, req.TxHash); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"status": "recorded"})
	}
}
