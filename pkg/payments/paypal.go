package payments

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rmagbanua/kaon-backend/pkg/config"
	pkgerrors "github.com/rmagbanua/kaon-backend/pkg/errors"
)

const (
	defaultPayPalBaseURL       = "https://api-m.paypal.com"
	payPalBodyReadLimit  int64 = 1024
)

var errPayPalCredentialsRequired = errors.New("paypal client id and secret are required")

// PayPalClient creates checkout orders through the PayPal Orders API.
type PayPalClient struct {
	httpClient *http.Client
	baseURL    string
	clientID   string
	secret     string
	returnURL  string
	cancelURL  string
}

// PayPalOption configures optional client behavior.
type PayPalOption func(*PayPalClient)

// WithPayPalHTTPClient overrides the default HTTP client.
func WithPayPalHTTPClient(client *http.Client) PayPalOption {
	return func(c *PayPalClient) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// NewPayPalClient builds the PayPal client from configuration.
func NewPayPalClient(cfg config.PayPalConfig, opts ...PayPalOption) (*PayPalClient, error) {
	clientID := strings.TrimSpace(cfg.ClientID)
	secret := strings.TrimSpace(cfg.Secret)
	if clientID == "" || secret == "" {
		return nil, errPayPalCredentialsRequired
	}

	client := &PayPalClient{
		httpClient: &http.Client{Timeout: 10 * time.Second},
		baseURL:    defaultPayPalBaseURL,
		clientID:   clientID,
		secret:     secret,
		returnURL:  cfg.ReturnURL,
		cancelURL:  cfg.CancelURL,
	}
	if trimmed := strings.TrimSpace(cfg.BaseURL); trimmed != "" {
		client.baseURL = trimmed
	}

	for _, opt := range opts {
		if opt != nil {
			opt(client)
		}
	}

	return client, nil
}

// PayPalOrderParams describes one order's PayPal payment.
type PayPalOrderParams struct {
	OrderID string
	// Amount is the order total in whole pesos.
	Amount int64
}

// PayPalOrder is the approval handle the customer completes payment through.
type PayPalOrder struct {
	ID         string
	ApproveURL string
	Status     string
}

// CreateOrder opens a PayPal checkout order the customer is redirected to
// approve.
func (c *PayPalClient) CreateOrder(ctx context.Context, p PayPalOrderParams) (*PayPalOrder, error) {
	if c == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "paypal client not configured")
	}
	if p.OrderID == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order id is required")
	}
	if p.Amount <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "amount must be positive")
	}

	token, err := c.accessToken(ctx)
	if err != nil {
		return nil, err
	}

	body := map[string]any{
		"intent": "CAPTURE",
		"purchase_units": []map[string]any{
			{
				"reference_id": p.OrderID,
				"amount": map[string]any{
					"currency_code": "PHP",
					"value":         fmt.Sprintf("%d.00", p.Amount),
				},
			},
		},
		"application_context": map[string]any{
			"return_url": c.returnURL,
			"cancel_url": c.cancelURL,
		},
	}
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "marshal paypal order request")
	}

	endpoint := fmt.Sprintf("%s/v2/checkout/orders", strings.TrimRight(c.baseURL, "/"))
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "build paypal order request")
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+token)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "execute paypal order request")
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, payPalBodyReadLimit))
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, fmt.Errorf("status %d: %s", resp.StatusCode, strings.TrimSpace(string(msg))), "paypal order request failed")
	}

	var apiResp struct {
		ID     string `json:"id"`
		Status string `json:"status"`
		Links  []struct {
			Rel  string `json:"rel"`
			Href string `json:"href"`
		} `json:"links"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&apiResp); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "decode paypal order response")
	}

	order := &PayPalOrder{ID: apiResp.ID, Status: apiResp.Status}
	for _, link := range apiResp.Links {
		if link.Rel == "approve" {
			order.ApproveURL = link.Href
			break
		}
	}
	return order, nil
}

// accessToken exchanges the client credentials for a bearer token. Tokens are
// not cached; the session endpoint is low-traffic.
func (c *PayPalClient) accessToken(ctx context.Context) (string, error) {
	endpoint := fmt.Sprintf("%s/v1/oauth2/token", strings.TrimRight(c.baseURL, "/"))
	form := url.Values{"grant_type": {"client_credentials"}}
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return "", pkgerrors.Wrap(pkgerrors.CodeDependency, err, "build paypal token request")
	}
	httpReq.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	httpReq.SetBasicAuth(c.clientID, c.secret)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return "", pkgerrors.Wrap(pkgerrors.CodeDependency, err, "execute paypal token request")
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, payPalBodyReadLimit))
		return "", pkgerrors.Wrap(pkgerrors.CodeDependency, fmt.Errorf("status %d: %s", resp.StatusCode, strings.TrimSpace(string(msg))), "paypal token request failed")
	}

	var tokenResp struct {
		AccessToken string `json:"access_token"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&tokenResp); err != nil {
		return "", pkgerrors.Wrap(pkgerrors.CodeDependency, err, "decode paypal token response")
	}
	if tokenResp.AccessToken == "" {
		return "", pkgerrors.New(pkgerrors.CodeDependency, "paypal token response missing access token")
	}
	return tokenResp.AccessToken, nil
}
