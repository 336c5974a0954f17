// Package stripetest provides an in-memory PaymentIntents API for tests.
package stripetest

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"

	"github.com/ikkim/agroshop-backend/pkg/payment/stripe"
)

const (
	SecretKey      = "sk_test_fake"
	PublishableKey = "pk_test_fake"
)

// Server records created intents and serves them back. Intents start in
// requires_payment_method; tests move them with SetStatus.
type Server struct {
	*httptest.Server

	mu        sync.Mutex
	intents   map[string]*stripe.PaymentIntent
	byKey     map[string]string
	seq       int
	failNext  int
	createHit int
}

func NewServer() *Server {
	s := &Server{
		intents: map[string]*stripe.PaymentIntent{},
		byKey:   map[string]string{},
	}
	s.Server = httptest.NewServer(http.HandlerFunc(s.handle))
	return s
}

// Client returns a processor client pointed at the fake.
func (s *Server) Client() *stripe.Client {
	client, err := stripe.NewClient(stripe.Config{
		SecretKey:      SecretKey,
		PublishableKey: PublishableKey,
		BaseURL:        s.URL,
	})
	if err != nil {
		panic(err)
	}
	return client
}

func (s *Server) SetStatus(id string, status stripe.IntentStatus) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if intent, ok := s.intents[id]; ok {
		intent.Status = status
	}
}

// Add registers an intent created outside the server, e.g. for another order.
func (s *Server) Add(intent stripe.PaymentIntent) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.intents[intent.ID] = &intent
}

// FailNext makes the next n requests answer 500.
func (s *Server) FailNext(n int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failNext = n
}

// CreateCalls counts POSTs, including idempotent replays.
func (s *Server) CreateCalls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.createHit
}

func (s *Server) Intent(id string) (stripe.PaymentIntent, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	intent, ok := s.intents[id]
	if !ok {
		return stripe.PaymentIntent{}, false
	}
	return *intent, true
}

func (s *Server) handle(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if r.Header.Get("Authorization") != "Bearer "+SecretKey {
		writeError(w, http.StatusUnauthorized, "Invalid API Key provided")
		return
	}
	if s.failNext > 0 {
		s.failNext--
		writeError(w, http.StatusInternalServerError, "simulated outage")
		return
	}

	switch {
	case r.Method == http.MethodPost && r.URL.Path == "/v1/payment_intents":
		s.create(w, r)
	case r.Method == http.MethodGet && strings.HasPrefix(r.URL.Path, "/v1/payment_intents/"):
		id := strings.TrimPrefix(r.URL.Path, "/v1/payment_intents/")
		intent, ok := s.intents[id]
		if !ok {
			writeError(w, http.StatusNotFound, "No such payment_intent: '"+id+"'")
			return
		}
		writeJSON(w, intent)
	default:
		writeError(w, http.StatusNotFound, "Unrecognized request URL")
	}
}

func (s *Server) create(w http.ResponseWriter, r *http.Request) {
	s.createHit++

	if key := r.Header.Get("Idempotency-Key"); key != "" {
		if id, ok := s.byKey[key]; ok {
			writeJSON(w, s.intents[id])
			return
		}
	}

	if err := r.ParseForm(); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	amount, err := strconv.ParseInt(r.PostForm.Get("amount"), 10, 64)
	if err != nil || amount <= 0 {
		writeError(w, http.StatusBadRequest, "Invalid positive integer")
		return
	}

	metadata := map[string]string{}
	for k, v := range r.PostForm {
		if strings.HasPrefix(k, "metadata[") && strings.HasSuffix(k, "]") && len(v) > 0 {
			metadata[strings.TrimSuffix(strings.TrimPrefix(k, "metadata["), "]")] = v[0]
		}
	}

	s.seq++
	id := fmt.Sprintf("pi_test_%d", s.seq)
	intent := &stripe.PaymentIntent{
		ID:           id,
		Object:       "payment_intent",
		Amount:       amount,
		Currency:     r.PostForm.Get("currency"),
		Status:       stripe.StatusRequiresPaymentMethod,
		ClientSecret: id + "_secret_test",
		Metadata:     metadata,
	}
	s.intents[id] = intent
	if key := r.Header.Get("Idempotency-Key"); key != "" {
		s.byKey[key] = id
	}
	writeJSON(w, intent)
}

func writeJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	var resp stripe.ErrorResponse
	resp.Error.Type = "invalid_request_error"
	resp.Error.Message = message
	json.NewEncoder(w).Encode(resp)
}
