package payments

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/stripe/stripe-go/v84"
	"github.com/stripe/stripe-go/v84/checkout/session"

	"github.com/rmagbanua/kaon-backend/pkg/config"
	pkgerrors "github.com/rmagbanua/kaon-backend/pkg/errors"
)

const phpCurrency = "php"

var (
	errStripeKeyRequired = errors.New("stripe api key is required")
	errStripeURLRequired = errors.New("stripe success and cancel URLs are required")
)

// CheckoutSessionAPI is the subset of Stripe used for card checkout.
type CheckoutSessionAPI interface {
	New(params *stripe.CheckoutSessionParams) (*stripe.CheckoutSession, error)
}

type stripeSessionAPI struct{}

func (stripeSessionAPI) New(params *stripe.CheckoutSessionParams) (*stripe.CheckoutSession, error) {
	return session.New(params)
}

// StripeClient creates hosted checkout sessions for card payments.
type StripeClient struct {
	sessions   CheckoutSessionAPI
	successURL string
	cancelURL  string
}

// NewStripeClient initializes Stripe once with the configured secret key.
func NewStripeClient(cfg config.StripeConfig) (*StripeClient, error) {
	apiKey := strings.TrimSpace(cfg.APIKey)
	if apiKey == "" {
		return nil, errStripeKeyRequired
	}
	if !strings.HasPrefix(apiKey, "sk_") && !strings.HasPrefix(apiKey, "rk_") {
		return nil, fmt.Errorf("stripe api key must be a secret key (sk_/rk_)")
	}
	if cfg.SuccessURL == "" || cfg.CancelURL == "" {
		return nil, errStripeURLRequired
	}

	stripe.Key = apiKey

	return &StripeClient{
		sessions:   stripeSessionAPI{},
		successURL: cfg.SuccessURL,
		cancelURL:  cfg.CancelURL,
	}, nil
}

// CardSessionParams describes one order's card checkout.
type CardSessionParams struct {
	OrderID     string
	Description string
	// Amount is the order total in whole pesos.
	Amount int64
}

// CardSession is the hosted checkout handle returned to the client.
type CardSession struct {
	ID  string
	URL string
}

// CreateCardSession opens a hosted checkout session for the order total.
func (c *StripeClient) CreateCardSession(ctx context.Context, p CardSessionParams) (*CardSession, error) {
	if c == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "stripe client not configured")
	}
	if p.OrderID == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order id is required")
	}
	if p.Amount <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "amount must be positive")
	}

	params := &stripe.CheckoutSessionParams{
		Params:     stripe.Params{Context: ctx},
		Mode:       stripe.String(string(stripe.CheckoutSessionModePayment)),
		SuccessURL: stripe.String(c.successURL),
		CancelURL:  stripe.String(c.cancelURL),
		LineItems: []*stripe.CheckoutSessionLineItemParams{
			{
				PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
					Currency: stripe.String(phpCurrency),
					ProductData: &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
						Name: stripe.String(p.Description),
					},
					// Stripe amounts are in centavos.
					UnitAmount: stripe.Int64(p.Amount * 100),
				},
				Quantity: stripe.Int64(1),
			},
		},
		ClientReferenceID: stripe.String(p.OrderID),
	}

	sess, err := c.sessions.New(params)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create stripe checkout session")
	}

	return &CardSession{ID: sess.ID, URL: sess.URL}, nil
}
