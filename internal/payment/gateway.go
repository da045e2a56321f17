// Package payment wraps the payment gateway: order creation over its REST
// API plus the two HMAC verification schemes for the redirect and webhook
// completion paths.
package payment

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// Order is the gateway-issued order a pending registration carries until one
// of the completion paths settles it.
type Order struct {
	ID       string `json:"id"`
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
}

type Gateway interface {
	// CreateOrder registers an order with the gateway. Amount is in minor
	// units and always comes from the event row, never from client input.
	CreateOrder(ctx context.Context, amount int64, currency, receipt string) (*Order, error)
}

type httpGateway struct {
	baseURL   string
	keyID     string
	keySecret string
	client    *http.Client
}

func NewHTTPGateway(baseURL, keyID, keySecret string) Gateway {
	return &httpGateway{
		baseURL:   baseURL,
		keyID:     keyID,
		keySecret: keySecret,
		client:    &http.Client{Timeout: 10 * time.Second},
	}
}

func (g *httpGateway) CreateOrder(ctx context.Context, amount int64, currency, receipt string) (*Order, error) {
	payload, err := json.Marshal(map[string]any{
		"amount":   amount,
		"currency": currency,
		"receipt":  receipt,
	})
	if err != nil {
		return nil, fmt.Errorf("marshal order: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.baseURL+"/orders", bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("build order request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.SetBasicAuth(g.keyID, g.keySecret)

	resp, err := g.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("create order: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("create order: gateway returned %d", resp.StatusCode)
	}

	var order Order
	if err := json.NewDecoder(resp.Body).Decode(&order); err != nil {
		return nil, fmt.Errorf("decode order: %w", err)
	}
	if order.ID == "" {
		return nil, fmt.Errorf("create order: gateway returned no order id")
	}
	return &order, nil
}
