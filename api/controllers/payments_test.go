package controllers

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/rmagbanua/kaon-backend/internal/orders"
	"github.com/rmagbanua/kaon-backend/pkg/config"
	"github.com/rmagbanua/kaon-backend/pkg/db/models"
	"github.com/rmagbanua/kaon-backend/pkg/enums"
	"github.com/rmagbanua/kaon-backend/pkg/logger"
	"github.com/rmagbanua/kaon-backend/pkg/payments"
)

// trackOnlyOrders serves Track and panics on anything else the handler under
// test should not touch.
type trackOnlyOrders struct {
	orders.Service
	order *models.Order
}

func (s trackOnlyOrders) Track(ctx context.Context, id uuid.UUID, phone string) (*models.Order, error) {
	return s.order, nil
}

type paypalRoundTrip func(*http.Request) (*http.Response, error)

func (f paypalRoundTrip) RoundTrip(req *http.Request) (*http.Response, error) { return f(req) }

func newPayPalTestClient(t *testing.T) *payments.PayPalClient {
	t.Helper()
	rt := paypalRoundTrip(func(req *http.Request) (*http.Response, error) {
		body := `{"id":"pp_123","status":"CREATED","links":[{"rel":"approve","href":"https://pp.test/approve/pp_123"}]}`
		if strings.HasSuffix(req.URL.Path, "/v1/oauth2/token") {
			body = `{"access_token":"tok_abc"}`
		}
		return &http.Response{
			StatusCode: http.StatusOK,
			Body:       io.NopCloser(strings.NewReader(body)),
			Header:     http.Header{},
		}, nil
	})
	client, err := payments.NewPayPalClient(config.PayPalConfig{
		ClientID: "client-id",
		Secret:   "client-secret",
		BaseURL:  "http://pp.test",
	}, payments.WithPayPalHTTPClient(&http.Client{Transport: rt}))
	if err != nil {
		t.Fatalf("new paypal client: %v", err)
	}
	return client
}

func sessionRequest(orderID uuid.UUID) *http.Request {
	req := httptest.NewRequest(http.MethodPost, "/orders/"+orderID.String()+"/payment-session", strings.NewReader(`{"phone":"09171234567"}`))
	req.Header.Set("Content-Type", "application/json")
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add("orderId", orderID.String())
	return req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))
}

func TestCustomerPaymentSessionPayPal(t *testing.T) {
	orderID := uuid.New()
	order := &models.Order{ID: orderID, Total: 530, PaymentMethod: enums.PaymentMethodPayPal, Phone: "09171234567"}
	logg := logger.New(logger.Options{ServiceName: "payments-test", Output: io.Discard})

	handler := CustomerPaymentSession(trackOnlyOrders{order: order}, nil, nil, newPayPalTestClient(t), logg)

	rec := httptest.NewRecorder()
	handler(rec, sessionRequest(orderID))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var envelope struct {
		Data paymentSessionResponse `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &envelope); err != nil {
		t.Fatalf("unmarshal response: %v", err)
	}
	if envelope.Data.Method != "paypal" {
		t.Fatalf("expected paypal method, got %q", envelope.Data.Method)
	}
	if envelope.Data.SessionID != "pp_123" || envelope.Data.RedirectURL != "https://pp.test/approve/pp_123" {
		t.Fatalf("unexpected session %+v", envelope.Data)
	}
}

func TestCustomerPaymentSessionPayPalUnconfigured(t *testing.T) {
	orderID := uuid.New()
	order := &models.Order{ID: orderID, Total: 530, PaymentMethod: enums.PaymentMethodPayPal, Phone: "09171234567"}
	logg := logger.New(logger.Options{ServiceName: "payments-test", Output: io.Discard})

	handler := CustomerPaymentSession(trackOnlyOrders{order: order}, nil, nil, nil, logg)

	rec := httptest.NewRecorder()
	handler(rec, sessionRequest(orderID))

	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503, got %d: %s", rec.Code, rec.Body.String())
	}
}
