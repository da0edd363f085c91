// Package events carries store change notifications to live subscribers.
package events

import (
	"strings"
	"sync"
	"time"
)

const defaultBufferSize = 100

// Change topics, one per kind of store mutation.
const (
	TopicLog        = "log"
	TopicAgent      = "agent_update"
	TopicProject    = "project_update"
	TopicTask       = "task_update"
	TopicDeployment = "deployment_update"
	TopicChat       = "chat"
	TopicCanvas     = "canvas_sync"
	TopicGeneration = "canvas_generation"
	TopicStats      = "stats_update"
	TopicView       = "view"
	TopicReset      = "reset"
)

// Event is one change notification.
type Event struct {
	Type      string    `json:"type"`
	Payload   any       `json:"payload"`
	Timestamp time.Time `json:"timestamp"`
}

// Publisher is what stores need to announce changes.
type Publisher interface {
	Publish(topic string, payload any)
}

// Discard drops every event.
var Discard Publisher = discard{}

type discard struct{}

func (discard) Publish(string, any) {}

// Subscription is an active subscriber.
type Subscription struct {
	id     int
	prefix string
	ch     chan Event
}

// Ch returns the channel events arrive on.
func (s *Subscription) Ch() <-chan Event {
	return s.ch
}

// Bus is an in-process pub/sub bus with topic prefix matching.
type Bus struct {
	mu     sync.RWMutex
	subs   map[int]*Subscription
	nextID int
	now    func() time.Time
}

// New creates a Bus stamping events with now (time.Now when nil).
func New(now func() time.Time) *Bus {
	if now == nil {
		now = time.Now
	}
	return &Bus{subs: make(map[int]*Subscription), now: now}
}

// Subscribe matches topics starting with prefix; "" matches everything.
// Slow subscribers miss events once their buffer is full.
func (b *Bus) Subscribe(prefix string) *Subscription {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.nextID++
	sub := &Subscription{
		id:     b.nextID,
		prefix: prefix,
		ch:     make(chan Event, defaultBufferSize),
	}
	b.subs[sub.id] = sub
	return sub
}

// Unsubscribe removes sub and closes its channel.
func (b *Bus) Unsubscribe(sub *Subscription) {
	if sub == nil {
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	if _, ok := b.subs[sub.id]; ok {
		delete(b.subs, sub.id)
		close(sub.ch)
	}
}

// Publish delivers without blocking.
func (b *Bus) Publish(topic string, payload any) {
	evt := Event{Type: topic, Payload: payload, Timestamp: b.now()}
	b.mu.RLock()
	defer b.mu.RUnlock()
	for _, sub := range b.subs {
		if sub.prefix != "" && !strings.HasPrefix(topic, sub.prefix) {
			continue
		}
		select {
		case sub.ch <- evt:
		default:
		}
	}
}

// SubscriberCount returns the number of active subscriptions.
func (b *Bus) SubscriberCount() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subs)
}
