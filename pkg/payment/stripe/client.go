package stripe

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"strings"

	"github.com/ikkim/agroshop-backend/pkg/logger"
)

// Client is a minimal PaymentIntents API client
type Client struct {
	config     Config
	httpClient *http.Client
}

// NewClient creates a new client with the given configuration
func NewClient(config Config) (*Client, error) {
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &Client{
		config:     config,
		httpClient: &http.Client{Timeout: config.Timeout},
	}, nil
}

// PublishableKey returns the key the browser needs to confirm the intent
func (c *Client) PublishableKey() string {
	return c.config.PublishableKey
}

// CreatePaymentIntent mints a new intent for the given amount
func (c *Client) CreatePaymentIntent(ctx context.Context, req CreateIntentRequest) (*PaymentIntent, error) {
	if req.Amount <= 0 {
		return nil, fmt.Errorf("%w: amount must be positive", ErrInvalidRequest)
	}
	if req.Currency == "" {
		return nil, fmt.Errorf("%w: currency is required", ErrInvalidRequest)
	}

	form := url.Values{}
	form.Set("amount", strconv.FormatInt(req.Amount, 10))
	form.Set("currency", strings.ToLower(req.Currency))
	form.Set("automatic_payment_methods[enabled]", "true")

	keys := make([]string, 0, len(req.Metadata))
	for k := range req.Metadata {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		form.Set(fmt.Sprintf("metadata[%s]", k), req.Metadata[k])
	}

	body, err := c.doRequest(ctx, http.MethodPost, "/v1/payment_intents", form, req.IdempotencyKey)
	if err != nil {
		return nil, fmt.Errorf("failed to create payment intent: %w", err)
	}

	var intent PaymentIntent
	if err := json.Unmarshal(body, &intent); err != nil {
		return nil, fmt.Errorf("failed to unmarshal payment intent: %w", err)
	}
	return &intent, nil
}

// RetrievePaymentIntent fetches the current state of an intent
func (c *Client) RetrievePaymentIntent(ctx context.Context, id string) (*PaymentIntent, error) {
	if id == "" {
		return nil, fmt.Errorf("%w: payment intent id is required", ErrInvalidRequest)
	}

	body, err := c.doRequest(ctx, http.MethodGet, "/v1/payment_intents/"+url.PathEscape(id), nil, "")
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve payment intent: %w", err)
	}

	var intent PaymentIntent
	if err := json.Unmarshal(body, &intent); err != nil {
		return nil, fmt.Errorf("failed to unmarshal payment intent: %w", err)
	}
	return &intent, nil
}

// doRequest performs a form-encoded request against the API
func (c *Client) doRequest(ctx context.Context, method, path string, form url.Values, idempotencyKey string) ([]byte, error) {
	endpoint := strings.TrimRight(c.config.BaseURL, "/") + path

	var reqBody io.Reader
	if form != nil {
		reqBody = strings.NewReader(form.Encode())
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, reqBody)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Authorization", "Bearer "+c.config.SecretKey)
	if form != nil {
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}
	if idempotencyKey != "" {
		req.Header.Set("Idempotency-Key", idempotencyKey)
	}

	logger.Debug("Payment processor request", map[string]interface{}{
		"method":          method,
		"path":            path,
		"idempotency_key": idempotencyKey,
	})

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNetworkError, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to read response body: %v", ErrNetworkError, err)
	}

	if resp.StatusCode >= http.StatusOK && resp.StatusCode < http.StatusMultipleChoices {
		return body, nil
	}

	var errResp ErrorResponse
	detail := string(body)
	if err := json.Unmarshal(body, &errResp); err == nil && errResp.Error.Message != "" {
		detail = fmt.Sprintf("%s (%s)", errResp.Error.Message, errResp.Error.Type)
	}
	errorMsg := fmt.Sprintf("status %d: %s", resp.StatusCode, detail)

	switch resp.StatusCode {
	case http.StatusBadRequest, http.StatusPaymentRequired:
		return nil, fmt.Errorf("%w: %s", ErrInvalidRequest, errorMsg)
	case http.StatusUnauthorized, http.StatusForbidden:
		return nil, fmt.Errorf("%w: %s", ErrUnauthorized, errorMsg)
	case http.StatusNotFound:
		return nil, fmt.Errorf("%w: %s", ErrNotFound, errorMsg)
	case http.StatusConflict:
		return nil, fmt.Errorf("%w: %s", ErrIdempotencyConflict, errorMsg)
	default:
		return nil, fmt.Errorf("%w: %s", ErrProcessor, errorMsg)
	}
}
