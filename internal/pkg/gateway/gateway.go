// Package gateway is the REST client for the hosted payment checkout
// provider. Orders are created server-side; the client opens the
// hosted overlay against the returned order ID and the provider calls
// back with an HMAC signature we verify here.
package gateway

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// APIError is a non-2xx gateway response. Message is the server-
// supplied message when present; Payload carries the full parsed body
// so callers can inspect structured error details.
type APIError struct {
	Status  int
	Message string
	Payload map[string]interface{}
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return fmt.Sprintf("gateway returned HTTP %d", e.Status)
}

// Order is a checkout order created at the gateway.
type Order struct {
	ID       string `json:"id"`
	Amount   int64  `json:"amount"` // smallest currency unit
	Currency string `json:"currency"`
	Receipt  string `json:"receipt"`
	Status   string `json:"status"`
}

// Client talks to the payment gateway. One attempt per call, no retry;
// the request timeout is the only mitigation for a hung gateway.
type Client struct {
	baseURL   string
	keyID     string
	keySecret string
	http      *http.Client
}

// New creates a gateway client.
func New(baseURL, keyID, keySecret string) *Client {
	return &Client{
		baseURL:   baseURL,
		keyID:     keyID,
		keySecret: keySecret,
		http:      &http.Client{Timeout: 10 * time.Second},
	}
}

// CreateOrder registers a checkout order for the given amount (in the
// smallest currency unit) and merchant receipt ID.
func (c *Client) CreateOrder(ctx context.Context, amount int64, currency, receipt string) (*Order, error) {
	body, err := json.Marshal(map[string]interface{}{
		"amount":   amount,
		"currency": currency,
		"receipt":  receipt,
	})
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/orders", bytes.NewBuffer(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.SetBasicAuth(c.keyID, c.keySecret)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	// parse the body unconditionally; error bodies carry details too
	var parsed map[string]interface{}
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		parsed = nil
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &APIError{
			Status:  resp.StatusCode,
			Message: errorMessage(parsed),
			Payload: parsed,
		}
	}

	raw, err := json.Marshal(parsed)
	if err != nil {
		return nil, err
	}
	var order Order
	if err := json.Unmarshal(raw, &order); err != nil {
		return nil, err
	}
	return &order, nil
}

// Sign computes the checkout signature for an order/payment pair.
func (c *Client) Sign(orderID, paymentID string) string {
	mac := hmac.New(sha256.New, []byte(c.keySecret))
	mac.Write([]byte(orderID + "|" + paymentID))
	return hex.EncodeToString(mac.Sum(nil))
}

// VerifySignature checks a callback signature in constant time.
func (c *Client) VerifySignature(orderID, paymentID, signature string) bool {
	expected := c.Sign(orderID, paymentID)
	return hmac.Equal([]byte(expected), []byte(signature))
}

func errorMessage(payload map[string]interface{}) string {
	if payload == nil {
		return ""
	}
	// provider nests the message under "error": {"description": ...}
	if errObj, ok := payload["error"].(map[string]interface{}); ok {
		if desc, ok := errObj["description"].(string); ok {
			return desc
		}
	}
	if msg, ok := payload["message"].(string); ok {
		return msg
	}
	return ""
}
