// Package events publishes order lifecycle events for downstream consumers
// such as printers, delivery bridges and analytics.
package events

import (
	"context"
	"encoding/json"
	"sync"
	"time"
)

// Topics
const (
	TopicOrderPlaced = "orders.placed"
	TopicOrderStatus = "orders.status"
)

// Event is the envelope written on the wire
type Event struct {
	Topic        string          `json:"topic"`
	RestaurantID string          `json:"restaurant_id"`
	OccurredAt   time.Time       `json:"occurred_at"`
	Data         json.RawMessage `json:"data"`
}

// NewEvent marshals data into an envelope
func NewEvent(topic, restaurantID string, data interface{}) (Event, error) {
	raw, err := json.Marshal(data)
	if err != nil {
		return Event{}, err
	}
	return Event{
		Topic:        topic,
		RestaurantID: restaurantID,
		OccurredAt:   time.Now().UTC(),
		Data:         raw,
	}, nil
}

// Subject is the per-restaurant subject an event is published on
func (e Event) Subject() string {
	if e.RestaurantID == "" {
		return e.Topic
	}
	return e.Topic + "." + e.RestaurantID
}

// Publisher sends events to a message bus
type Publisher interface {
	Publish(ctx context.Context, e Event) error
	Close() error
}

// Noop discards every event
type Noop struct{}

func (Noop) Publish(ctx context.Context, e Event) error { return nil }
func (Noop) Close() error                               { return nil }

// Recorder keeps published events in memory
type Recorder struct {
	mu     sync.Mutex
	events []Event
	Err    error
}

func (r *Recorder) Publish(ctx context.Context, e Event) error {
	if r.Err != nil {
		return r.Err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
	return nil
}

func (r *Recorder) Close() error { return nil }

// Events returns a copy of what was published
func (r *Recorder) Events() []Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Event, len(r.events))
	copy(out, r.events)
	return out
}

var (
	_ Publisher = Noop{}
	_ Publisher = (*Recorder)(nil)
	_ Publisher = (*NATSPublisher)(nil)
)
