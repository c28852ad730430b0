package events

import (
	"context"
	"sync"

	"github.com/rs/zerolog"
)

// MemoryPublisher records events in memory and logs them. It backs the
// "log" events driver and tests.
type MemoryPublisher struct {
	logger zerolog.Logger

	mu     sync.Mutex
	events []Event
	closed bool
}

func NewMemoryPublisher(logger zerolog.Logger) *MemoryPublisher {
	return &MemoryPublisher{logger: logger.With().Str("component", "events").Logger()}
}

func (p *MemoryPublisher) Publish(_ context.Context, name string, payload interface{}) error {
	evt, err := NewEvent(name, payload)
	if err != nil {
		return err
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return ErrClosed
	}
	p.events = append(p.events, evt)
	p.logger.Info().Str("event", name).RawJSON("payload", evt.Payload).Msg("event published")
	return nil
}

func (p *MemoryPublisher) Close(context.Context) error {
	p.mu.Lock()
	p.closed = true
	p.mu.Unlock()
	return nil
}

// Events returns a copy of the published events.
func (p *MemoryPublisher) Events() []Event {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]Event, len(p.events))
	copy(out, p.events)
	return out
}

// Names returns the published event names in order.
func (p *MemoryPublisher) Names() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	names := make([]string, len(p.events))
	for i, e := range p.events {
		names[i] = e.Name
	}
	return names
}
