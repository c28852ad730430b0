package events

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// RedisPublisher appends events to a Redis stream with XADD.
type RedisPublisher struct {
	client redis.UniversalClient
	stream string
	maxLen int64
	logger zerolog.Logger

	mu       sync.RWMutex
	closed   bool
	inflight sync.WaitGroup
}

func NewRedisPublisher(client redis.UniversalClient, stream string, maxLen int64, logger zerolog.Logger) *RedisPublisher {
	return &RedisPublisher{
		client: client,
		stream: stream,
		maxLen: maxLen,
		logger: logger.With().Str("component", "events").Str("stream", stream).Logger(),
	}
}

func (p *RedisPublisher) Publish(ctx context.Context, name string, payload interface{}) error {
	p.mu.RLock()
	if p.closed {
		p.mu.RUnlock()
		return ErrClosed
	}
	p.inflight.Add(1)
	p.mu.RUnlock()
	defer p.inflight.Done()

	evt, err := NewEvent(name, payload)
	if err != nil {
		return fmt.Errorf("encode event %s: %w", name, err)
	}
	body, err := json.Marshal(evt)
	if err != nil {
		return fmt.Errorf("encode event %s: %w", name, err)
	}

	id, err := p.client.XAdd(ctx, &redis.XAddArgs{
		Stream: p.stream,
		MaxLen: p.maxLen,
		Approx: true,
		Values: map[string]interface{}{
			"eventName": evt.Name,
			"timestamp": evt.Timestamp,
			"data":      string(body),
		},
	}).Result()
	if err != nil {
		return fmt.Errorf("publish event %s: %w", name, err)
	}

	p.logger.Debug().Str("event", name).Str("id", id).Msg("event published")
	return nil
}

// Close rejects new publishes and waits for in-flight ones or ctx expiry.
func (p *RedisPublisher) Close(ctx context.Context) error {
	p.mu.Lock()
	p.closed = true
	p.mu.Unlock()

	done := make(chan struct{})
	go func() {
		p.inflight.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("drain events: %w", ctx.Err())
	}
}
