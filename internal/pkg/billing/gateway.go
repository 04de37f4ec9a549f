package billing

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// Order is the gateway-side order handle returned from order creation.
type Order struct {
	ID          string `json:"id"`
	AmountPaise int64  `json:"amount"`
	Currency    string `json:"currency"`
	Status      string `json:"status"`
}

// Gateway creates orders at the payment provider. The production
// implementation talks to the Razorpay orders API; tests inject stubs.
type Gateway interface {
	CreateOrder(ctx context.Context, amountPaise int64, currency string, notes map[string]string) (*Order, error)
}

type httpGateway struct {
	keyID      string
	keySecret  string
	baseURL    string
	httpClient *http.Client
}

// NewGateway builds the HTTP gateway client from the injected config.
func NewGateway(cfg Config) Gateway {
	return &httpGateway{
		keyID:     cfg.KeyID,
		keySecret: cfg.KeySecret,
		baseURL:   cfg.GatewayURL,
		httpClient: &http.Client{
			Timeout: 15 * time.Second,
		},
	}
}

func (g *httpGateway) CreateOrder(ctx context.Context, amountPaise int64, currency string, notes map[string]string) (*Order, error) {
	body := map[string]interface{}{
		"amount":          amountPaise,
		"currency":        currency,
		"payment_capture": 1,
	}
	if len(notes) > 0 {
		body["notes"] = notes
	}
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, &GatewayError{Op: "order create", Err: err}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.baseURL+"/v1/orders", bytes.NewReader(payload))
	if err != nil {
		return nil, &GatewayError{Op: "order create", Err: err}
	}
	req.Header.Set("Content-Type", "application/json")
	req.SetBasicAuth(g.keyID, g.keySecret)

	resp, err := g.httpClient.Do(req)
	if err != nil {
		return nil, &GatewayError{Op: "order create", Err: err}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, &GatewayError{Op: "order create", Err: err}
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &GatewayError{Op: "order create", Err: fmt.Errorf("unexpected status %d: %s", resp.StatusCode, string(raw))}
	}

	var order Order
	if err := json.Unmarshal(raw, &order); err != nil {
		return nil, &GatewayError{Op: "order create", Err: err}
	}
	if order.ID == "" {
		return nil, &GatewayError{Op: "order create", Err: fmt.Errorf("response missing order id")}
	}
	return &order, nil
}
