package stripe

// IntentStatus is the processor-side lifecycle state of a payment intent.
type IntentStatus string

const (
	StatusRequiresPaymentMethod IntentStatus = "requires_payment_method"
	StatusRequiresConfirmation  IntentStatus = "requires_confirmation"
	StatusRequiresAction        IntentStatus = "requires_action"
	StatusProcessing            IntentStatus = "processing"
	StatusRequiresCapture       IntentStatus = "requires_capture"
	StatusCanceled              IntentStatus = "canceled"
	StatusSucceeded             IntentStatus = "succeeded"
)

// Authorized reports whether the funds are secured for the merchant.
func (s IntentStatus) Authorized() bool {
	return s == StatusSucceeded || s == StatusRequiresCapture
}

// CreateIntentRequest represents the parameters for creating a payment intent
type CreateIntentRequest struct {
	Amount         int64 // minor units
	Currency       string
	Metadata       map[string]string
	IdempotencyKey string
}

// PaymentIntent represents the processor's payment intent object
type PaymentIntent struct {
	ID           string            `json:"id"`
	Object       string            `json:"object"`
	Amount       int64             `json:"amount"`
	Currency     string            `json:"currency"`
	Status       IntentStatus      `json:"status"`
	ClientSecret string            `json:"client_secret"`
	Metadata     map[string]string `json:"metadata"`
	Created      int64             `json:"created"`
	LiveMode     bool              `json:"livemode"`
}

// ErrorResponse represents an error payload returned by the API
type ErrorResponse struct {
	Error struct {
		Type    string `json:"type"`
		Code    string `json:"code"`
		Message string `json:"message"`
		Param   string `json:"param"`
	} `json:"error"`
}
