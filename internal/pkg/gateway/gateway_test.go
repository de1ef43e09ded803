package gateway

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateOrder(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/orders", r.URL.Path)

		user, pass, ok := r.BasicAuth()
		require.True(t, ok)
		assert.Equal(t, "key-id", user)
		assert.Equal(t, "key-secret", pass)

		var body map[string]interface{}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, float64(125000), body["amount"])
		assert.Equal(t, "INR", body["currency"])

		json.NewEncoder(w).Encode(map[string]interface{}{
			"id":       "order_ABC123",
			"amount":   125000,
			"currency": "INR",
			"receipt":  body["receipt"],
			"status":   "created",
		})
	}))
	defer srv.Close()

	client := New(srv.URL, "key-id", "key-secret")
	order, err := client.CreateOrder(context.Background(), 125000, "INR", "rcpt-1")
	require.NoError(t, err)
	assert.Equal(t, "order_ABC123", order.ID)
	assert.Equal(t, int64(125000), order.Amount)
	assert.Equal(t, "created", order.Status)
}

func TestCreateOrderErrorCarriesPayload(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		json.NewEncoder(w).Encode(map[string]interface{}{
			"error": map[string]interface{}{
				"code":        "BAD_REQUEST_ERROR",
				"description": "amount must be at least 100",
			},
		})
	}))
	defer srv.Close()

	client := New(srv.URL, "k", "s")
	_, err := client.CreateOrder(context.Background(), 1, "INR", "rcpt-2")
	require.Error(t, err)

	apiErr, ok := err.(*APIError)
	require.True(t, ok)
	assert.Equal(t, http.StatusBadRequest, apiErr.Status)
	assert.Equal(t, "amount must be at least 100", apiErr.Message)

	// the full parsed body rides along for structured inspection
	errObj := apiErr.Payload["error"].(map[string]interface{})
	assert.Equal(t, "BAD_REQUEST_ERROR", errObj["code"])
}

func TestCreateOrderGenericMessageOnOpaqueBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		w.Write([]byte("upstream down"))
	}))
	defer srv.Close()

	client := New(srv.URL, "k", "s")
	_, err := client.CreateOrder(context.Background(), 500, "INR", "rcpt-3")
	require.Error(t, err)
	assert.Equal(t, "gateway returned HTTP 502", err.Error())
}

func TestVerifySignature(t *testing.T) {
	client := New("http://unused", "k", "secret")

	sig := client.Sign("order_1", "pay_1")
	assert.True(t, client.VerifySignature("order_1", "pay_1", sig))
	assert.False(t, client.VerifySignature("order_1", "pay_2", sig))
	assert.False(t, client.VerifySignature("order_1", "pay_1", sig+"00"))
	assert.False(t, client.VerifySignature("order_1", "pay_1", ""))
}
