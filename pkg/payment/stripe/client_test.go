package stripe

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	client, err := NewClient(Config{
		SecretKey:      "sk_test_123",
		PublishableKey: "pk_test_123",
		BaseURL:        server.URL,
	})
	require.NoError(t, err)
	return client
}

func TestNewClientRequiresSecret(t *testing.T) {
	_, err := NewClient(Config{})
	assert.ErrorIs(t, err, ErrMissingSecretKey)
}

func TestCreatePaymentIntent(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/v1/payment_intents", r.URL.Path)
		assert.Equal(t, "Bearer sk_test_123", r.Header.Get("Authorization"))
		assert.Equal(t, "order-42-intent", r.Header.Get("Idempotency-Key"))

		assert.NoError(t, r.ParseForm())
		assert.Equal(t, "10000", r.PostForm.Get("amount"))
		assert.Equal(t, "usd", r.PostForm.Get("currency"))
		assert.Equal(t, "42", r.PostForm.Get("metadata[order_id]"))
		assert.Equal(t, "7", r.PostForm.Get("metadata[user_id]"))

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]interface{}{
			"id":            "pi_123",
			"object":        "payment_intent",
			"amount":        10000,
			"currency":      "usd",
			"status":        "requires_payment_method",
			"client_secret": "pi_123_secret_abc",
		})
	})

	intent, err := client.CreatePaymentIntent(context.Background(), CreateIntentRequest{
		Amount:         10000,
		Currency:       "USD",
		Metadata:       map[string]string{"order_id": "42", "user_id": "7"},
		IdempotencyKey: "order-42-intent",
	})
	require.NoError(t, err)
	assert.Equal(t, "pi_123", intent.ID)
	assert.Equal(t, "pi_123_secret_abc", intent.ClientSecret)
	assert.Equal(t, StatusRequiresPaymentMethod, intent.Status)
	assert.Equal(t, "pk_test_123", client.PublishableKey())
}

func TestCreatePaymentIntentRejectsZeroAmount(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		t.Error("processor must not be called")
	})

	_, err := client.CreatePaymentIntent(context.Background(), CreateIntentRequest{Currency: "usd"})
	assert.ErrorIs(t, err, ErrInvalidRequest)
}

func TestRetrievePaymentIntent(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/v1/payment_intents/pi_123", r.URL.Path)
		json.NewEncoder(w).Encode(map[string]interface{}{
			"id":       "pi_123",
			"amount":   10000,
			"status":   "succeeded",
			"metadata": map[string]string{"order_id": "42"},
		})
	})

	intent, err := client.RetrievePaymentIntent(context.Background(), "pi_123")
	require.NoError(t, err)
	assert.True(t, intent.Status.Authorized())
	assert.Equal(t, "42", intent.Metadata["order_id"])
}

func TestErrorMapping(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		wantErr error
	}{
		{name: "Bad request", status: http.StatusBadRequest, wantErr: ErrInvalidRequest},
		{name: "Unauthorized", status: http.StatusUnauthorized, wantErr: ErrUnauthorized},
		{name: "Not found", status: http.StatusNotFound, wantErr: ErrNotFound},
		{name: "Idempotency conflict", status: http.StatusConflict, wantErr: ErrIdempotencyConflict},
		{name: "Server error", status: http.StatusInternalServerError, wantErr: ErrProcessor},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				w.Write([]byte(`{"error":{"type":"invalid_request_error","message":"boom"}}`))
			})

			_, err := client.RetrievePaymentIntent(context.Background(), "pi_missing")
			assert.ErrorIs(t, err, tt.wantErr)
			assert.Contains(t, err.Error(), "boom")
		})
	}
}

func TestNetworkError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	server.Close()

	client, err := NewClient(Config{SecretKey: "sk_test", BaseURL: server.URL})
	require.NoError(t, err)

	_, err = client.RetrievePaymentIntent(context.Background(), "pi_123")
	assert.ErrorIs(t, err, ErrNetworkError)
}

func TestIntentStatusAuthorized(t *testing.T) {
	assert.True(t, StatusSucceeded.Authorized())
	assert.True(t, StatusRequiresCapture.Authorized())
	assert.False(t, StatusRequiresPaymentMethod.Authorized())
	assert.False(t, StatusProcessing.Authorized())
	assert.False(t, StatusCanceled.Authorized())
}
