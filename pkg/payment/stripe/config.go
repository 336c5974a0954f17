package stripe

import "time"

// DefaultBaseURL is the production PaymentIntents API host.
const DefaultBaseURL = "https://api.stripe.com"

// Config represents the configuration for the payment intents client
type Config struct {
	// SecretKey authenticates server-side calls (sk_...)
	SecretKey string

	// PublishableKey is handed to the client for card collection (pk_...)
	PublishableKey string

	// BaseURL is the API host, overridable for tests
	BaseURL string

	// Timeout bounds every processor call
	Timeout time.Duration
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.SecretKey == "" {
		return ErrMissingSecretKey
	}
	if c.BaseURL == "" {
		c.BaseURL = DefaultBaseURL
	}
	if c.Timeout <= 0 {
		c.Timeout = 30 * time.Second
	}
	return nil
}
