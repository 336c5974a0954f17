// Package idempotency replays the first response of a POST /checkout that
// carries an Idempotency-Key header, so a double submit does not create a
// second order and a second payment intent.
package idempotency

import (
	"context"
	"errors"
	"sync"
	"time"
)

// ErrInProgress means another request with the same key has not finished.
var ErrInProgress = errors.New("a request with this idempotency key is still in progress")

// Store reserves keys and keeps finished responses.
type Store interface {
	// Begin reserves key. It returns the stored response when the key
	// already finished, or ErrInProgress when it is still reserved.
	Begin(ctx context.Context, key string) (cached []byte, err error)
	// Complete stores the response for later replays.
	Complete(ctx context.Context, key string, response []byte) error
	// Abort releases the reservation so the client may retry.
	Abort(ctx context.Context, key string) error
}

type memoryEntry struct {
	response  []byte
	done      bool
	expiresAt time.Time
}

// MemoryStore is a process-local Store used when Redis is disabled.
type MemoryStore struct {
	mu      sync.Mutex
	ttl     time.Duration
	entries map[string]memoryEntry
	now     func() time.Time

	lastSweep time.Time
}

func NewMemoryStore(ttl time.Duration) *MemoryStore {
	return &MemoryStore{ttl: ttl, entries: map[string]memoryEntry{}, now: time.Now}
}

func (s *MemoryStore) Begin(_ context.Context, key string) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	s.sweep(now)
	if entry, ok := s.entries[key]; ok && now.Before(entry.expiresAt) {
		if !entry.done {
			return nil, ErrInProgress
		}
		return entry.response, nil
	}
	s.entries[key] = memoryEntry{expiresAt: now.Add(s.ttl)}
	return nil, nil
}

// sweep drops expired keys, at most once per ttl. Callers hold mu.
func (s *MemoryStore) sweep(now time.Time) {
	if now.Sub(s.lastSweep) < s.ttl {
		return
	}
	s.lastSweep = now
	for key, entry := range s.entries {
		if !now.Before(entry.expiresAt) {
			delete(s.entries, key)
		}
	}
}

func (s *MemoryStore) Complete(_ context.Context, key string, response []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[key] = memoryEntry{response: response, done: true, expiresAt: s.now().Add(s.ttl)}
	return nil
}

func (s *MemoryStore) Abort(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.entries, key)
	return nil
}
