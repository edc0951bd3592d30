package payments

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/rmagbanua/kaon-backend/pkg/config"
	pkgerrors "github.com/rmagbanua/kaon-backend/pkg/errors"
)

const (
	defaultPayMongoBaseURL       = "https://api.paymongo.com/v1"
	payMongoBodyReadLimit  int64 = 1024
)

var errPayMongoKeyRequired = errors.New("paymongo secret key is required")

// PayMongoClient creates GCash sources through the PayMongo API.
type PayMongoClient struct {
	httpClient  *http.Client
	baseURL     string
	secretKey   string
	redirectURL string
}

// PayMongoOption configures optional client behavior.
type PayMongoOption func(*PayMongoClient)

// WithPayMongoHTTPClient overrides the default HTTP client.
func WithPayMongoHTTPClient(client *http.Client) PayMongoOption {
	return func(c *PayMongoClient) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// NewPayMongoClient builds the PayMongo client from configuration.
func NewPayMongoClient(cfg config.PayMongoConfig, opts ...PayMongoOption) (*PayMongoClient, error) {
	secretKey := strings.TrimSpace(cfg.SecretKey)
	if secretKey == "" {
		return nil, errPayMongoKeyRequired
	}

	client := &PayMongoClient{
		httpClient:  &http.Client{Timeout: 10 * time.Second},
		baseURL:     defaultPayMongoBaseURL,
		secretKey:   secretKey,
		redirectURL: cfg.RedirectURL,
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

// GCashSourceParams describes one order's GCash payment.
type GCashSourceParams struct {
	OrderID string
	// Amount is the order total in whole pesos.
	Amount int64
}

// GCashSource is the redirect handle the customer completes payment through.
type GCashSource struct {
	ID          string
	CheckoutURL string
	Status      string
}

// CreateGCashSource opens a GCash source the customer is redirected to.
func (c *PayMongoClient) CreateGCashSource(ctx context.Context, p GCashSourceParams) (*GCashSource, error) {
	if c == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "paymongo client not configured")
	}
	if p.OrderID == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order id is required")
	}
	if p.Amount <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "amount must be positive")
	}

	body := map[string]any{
		"data": map[string]any{
			"attributes": map[string]any{
				// PayMongo amounts are in centavos.
				"amount":   p.Amount * 100,
				"currency": "PHP",
				"type":     "gcash",
				"redirect": map[string]any{
					"success": c.redirectURL,
					"failed":  c.redirectURL,
				},
				"metadata": map[string]any{"order_id": p.OrderID},
			},
		},
	}
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "marshal gcash source request")
	}

	endpoint := fmt.Sprintf("%s/sources", strings.TrimRight(c.baseURL, "/"))
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "build gcash source request")
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.SetBasicAuth(c.secretKey, "")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "execute gcash source request")
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, payMongoBodyReadLimit))
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, fmt.Errorf("status %d: %s", resp.StatusCode, strings.TrimSpace(string(msg))), "gcash source request failed")
	}

	var apiResp struct {
		Data struct {
			ID         string `json:"id"`
			Attributes struct {
				Status   string `json:"status"`
				Redirect struct {
					CheckoutURL string `json:"checkout_url"`
				} `json:"redirect"`
			} `json:"attributes"`
		} `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&apiResp); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "decode gcash source response")
	}

	return &GCashSource{
		ID:          apiResp.Data.ID,
		CheckoutURL: apiResp.Data.Attributes.Redirect.CheckoutURL,
		Status:      apiResp.Data.Attributes.Status,
	}, nil
}
