// Package session fans auth-state changes out to subscribers and keeps the
// latest per-user session state.
package session

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

type EventType string

const (
	SignedIn       EventType = "SIGNED_IN"
	SignedOut      EventType = "SIGNED_OUT"
	TokenRefreshed EventType = "TOKEN_REFRESHED"
	UserUpdated    EventType = "USER_UPDATED"
)

// Event is one auth-state change
type Event struct {
	Type      EventType `json:"event"`
	UserID    uuid.UUID `json:"user_id"`
	Email     string    `json:"email,omitempty"`
	At        time.Time `json:"at"`
	ExpiresAt time.Time `json:"expires_at,omitzero"`
}

// Callback receives events. It runs on the publisher's goroutine and must
// not block.
type Callback func(Event)

// Broker delivers every published event to every current subscriber
type Broker struct {
	mu          sync.RWMutex
	nextID      uint64
	subscribers map[uint64]Callback
}

func NewBroker() *Broker {
	return &Broker{subscribers: make(map[uint64]Callback)}
}

// Subscribe registers cb and returns its unsubscribe function. Calling the
// returned function more than once is a no-op.
func (b *Broker) Subscribe(cb Callback) func() {
	b.mu.Lock()
	id := b.nextID
	b.nextID++
	b.subscribers[id] = cb
	b.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			b.mu.Lock()
			delete(b.subscribers, id)
			b.mu.Unlock()
		})
	}
}

// Publish calls every subscriber outside the lock, so callbacks may
// subscribe or unsubscribe
func (b *Broker) Publish(event Event) {
	if event.At.IsZero() {
		event.At = time.Now()
	}

	b.mu.RLock()
	callbacks := make([]Callback, 0, len(b.subscribers))
	for _, cb := range b.subscribers {
		callbacks = append(callbacks, cb)
	}
	b.mu.RUnlock()

	for _, cb := range callbacks {
		cb(event)
	}
}

// Subscribers returns the number of live subscriptions
func (b *Broker) Subscribers() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subscribers)
}
