// Package events publishes domain events to an asynchronous queue.
package events

import (
	"context"
	"encoding/json"
	"errors"
	"time"
)

// ErrClosed is returned when publishing after the publisher was closed.
var ErrClosed = errors.New("events: publisher closed")

// Event is the envelope written to the queue.
type Event struct {
	Name      string          `json:"eventName"`
	Timestamp int64           `json:"timestamp"`
	Payload   json.RawMessage `json:"payload"`
}

// Publisher enqueues events. Publish must not block on consumers.
type Publisher interface {
	Publish(ctx context.Context, name string, payload interface{}) error
	// Close drains in-flight publishes and releases resources.
	Close(ctx context.Context) error
}

// NewEvent builds an envelope stamped with the current unix time in seconds.
func NewEvent(name string, payload interface{}) (Event, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return Event{}, err
	}
	return Event{
		Name:      name,
		Timestamp: time.Now().Unix(),
		Payload:   data,
	}, nil
}
