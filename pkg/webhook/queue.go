// Package webhook receives store event notifications, records them in a
// bounded in-memory log and applies the entity changes they carry.
package webhook

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// DefaultQueueCapacity is how many recent events the log retains.
const DefaultQueueCapacity = 20

// Event is one received webhook delivery.
type Event struct {
	ID         string    `json:"id"`
	Topic      string    `json:"topic"`
	ShopDomain string    `json:"shopDomain"`
	ReceivedAt time.Time `json:"receivedAt"`
	Note       string    `json:"note,omitempty"`
}

// Queue is a fixed-capacity FIFO event log. When full, accepting a new
// event drops the oldest one.
type Queue struct {
	mu       sync.Mutex
	events   []Event
	capacity int
}

// NewQueue builds a queue. capacity of zero or less uses
// DefaultQueueCapacity.
func NewQueue(capacity int) *Queue {
	if capacity <= 0 {
		capacity = DefaultQueueCapacity
	}
	return &Queue{capacity: capacity}
}

// Record appends an event, assigning it an ID and timestamp, and returns
// the stored copy.
func (q *Queue) Record(topic, shopDomain, note string) Event {
	event := Event{
		ID:         uuid.NewString(),
		Topic:      topic,
		ShopDomain: shopDomain,
		ReceivedAt: time.Now().UTC(),
		Note:       note,
	}

	q.mu.Lock()
	defer q.mu.Unlock()

	q.events = append(q.events, event)
	if len(q.events) > q.capacity {
		q.events = q.events[len(q.events)-q.capacity:]
	}
	return event
}

// Dequeue removes and returns the oldest retained event. The second
// return is false when the log is empty.
func (q *Queue) Dequeue() (Event, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if len(q.events) == 0 {
		return Event{}, false
	}
	event := q.events[0]
	q.events = q.events[1:]
	return event, true
}

// Recent returns the retained events, oldest first.
func (q *Queue) Recent() []Event {
	q.mu.Lock()
	defer q.mu.Unlock()

	out := make([]Event, len(q.events))
	copy(out, q.events)
	return out
}

// Len reports how many events are retained.
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.events)
}
