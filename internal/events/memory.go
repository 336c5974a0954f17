package events

import (
	"context"
	"sync"
)

// MemoryPublisher keeps events in memory. Used by tests and local runs.
type MemoryPublisher struct {
	mu     sync.Mutex
	events []OrderEvent
	Err    error
}

func NewMemoryPublisher() *MemoryPublisher {
	return &MemoryPublisher{}
}

func (p *MemoryPublisher) Publish(_ context.Context, evt OrderEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.Err != nil {
		return p.Err
	}
	p.events = append(p.events, evt)
	return nil
}

func (p *MemoryPublisher) Close() error { return nil }

// Events returns a copy of everything published so far.
func (p *MemoryPublisher) Events() []OrderEvent {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]OrderEvent, len(p.events))
	copy(out, p.events)
	return out
}

// Count returns how many events of the given type were published.
func (p *MemoryPublisher) Count(t Type) int {
	n := 0
	for _, evt := range p.Events() {
		if evt.Type == t {
			n++
		}
	}
	return n
}
