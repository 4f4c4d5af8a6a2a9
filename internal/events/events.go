// Package events is an in-process pub/sub bus for reminder lifecycle events.
package events

import (
	"sync"
	"time"

	"dosewatch/internal/models"
)

// Type names a reminder lifecycle event.
type Type string

const (
	ReminderCreated Type = "reminder.created"
	ReminderUpdated Type = "reminder.updated"
	ReminderDeleted Type = "reminder.deleted"
	ReminderToggled Type = "reminder.toggled"
)

// Event carries the reminder a lifecycle change applies to.
type Event struct {
	Type     Type
	Reminder models.Reminder
	At       time.Time
}

// Handler reacts to an event.
type Handler func(Event)

// Bus provides in-process pub/sub.
type Bus struct {
	subscribers map[Type][]Handler
	mu          sync.RWMutex
}

// NewBus constructs an empty bus.
func NewBus() *Bus {
	return &Bus{subscribers: make(map[Type][]Handler)}
}

// Subscribe registers a handler for a given event type.
func (b *Bus) Subscribe(eventType Type, handler Handler) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.subscribers[eventType] = append(b.subscribers[eventType], handler)
}

// Publish notifies subscribers of the event type. Handlers run synchronously;
// the caller decides the concurrency model.
func (b *Bus) Publish(event Event) {
	b.mu.RLock()
	handlers := append([]Handler(nil), b.subscribers[event.Type]...)
	b.mu.RUnlock()

	if event.At.IsZero() {
		event.At = time.Now()
	}

	for _, handler := range handlers {
		handler(event)
	}
}
