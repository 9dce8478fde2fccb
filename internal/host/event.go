// Package host simulates the external engine side of the node contract: a
// driver that fires entry points in the contract order, an event bus for
// observing a run, a capture sink standing in for downstream transport, and
// a registry of drivers for inspection. It schedules nothing across nodes.
package host

import (
	"sync"
	"time"

	"github.com/sliink/flownode/internal/model"
)

// Event represents a node lifecycle event with metadata
type Event struct {
	Type      model.EventType `json:"type"`
	Node      string          `json:"node"`
	RunID     string          `json:"run_id,omitempty"`
	Data      any             `json:"data,omitempty"`
	Timestamp time.Time       `json:"timestamp"`
}

// NewEvent creates a new event
func NewEvent(eventType model.EventType, nodeName, runID string, data any) Event {
	return Event{
		Type:      eventType,
		Node:      nodeName,
		RunID:     runID,
		Data:      data,
		Timestamp: time.Now(),
	}
}

// EventCallback is a function that is called when an event occurs
type EventCallback func(Event)

// EventBus handles event publication and subscription
type EventBus struct {
	subscribers map[model.EventType]map[string]EventCallback
	mutex       sync.RWMutex
}

// NewEventBus creates a new event bus
func NewEventBus() *EventBus {
	return &EventBus{
		subscribers: make(map[model.EventType]map[string]EventCallback),
	}
}

// Subscribe registers a callback for a specific event type
func (b *EventBus) Subscribe(eventType model.EventType, listenerID string, callback EventCallback) {
	b.mutex.Lock()
	defer b.mutex.Unlock()

	if b.subscribers[eventType] == nil {
		b.subscribers[eventType] = make(map[string]EventCallback)
	}

	b.subscribers[eventType][listenerID] = callback
}

// Unsubscribe removes a subscriber from a specific event type
func (b *EventBus) Unsubscribe(eventType model.EventType, listenerID string) {
	b.mutex.Lock()
	defer b.mutex.Unlock()

	if b.subscribers[eventType] != nil {
		delete(b.subscribers[eventType], listenerID)
	}
}

// Publish broadcasts an event to all subscribers
func (b *EventBus) Publish(event Event) {
	b.mutex.RLock()
	callbacks := make([]EventCallback, 0, len(b.subscribers[event.Type]))
	for _, callback := range b.subscribers[event.Type] {
		callbacks = append(callbacks, callback)
	}
	b.mutex.RUnlock()

	// Call the callbacks outside the lock
	for _, callback := range callbacks {
		callback(event)
	}
}
