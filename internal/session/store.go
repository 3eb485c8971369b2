package session

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// State is the last known session state of one user
type State struct {
	UserID    uuid.UUID `json:"user_id"`
	SignedIn  bool      `json:"signed_in"`
	LastEvent EventType `json:"last_event"`
	UpdatedAt time.Time `json:"updated_at"`
	ExpiresAt time.Time `json:"expires_at,omitzero"`
}

// Store is the only writer of session state. It holds a single broker
// subscription; everything else reads snapshots through Get. Signed-out and
// expired sessions are dropped, so Get reports them as unknown.
type Store struct {
	mu          sync.RWMutex
	states      map[uuid.UUID]State
	unsubscribe func()
}

func NewStore(broker *Broker) *Store {
	s := &Store{states: make(map[uuid.UUID]State)}
	s.unsubscribe = broker.Subscribe(s.apply)
	return s
}

func (s *Store) apply(event Event) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.pruneExpired(event.At)

	if event.Type == SignedOut {
		delete(s.states, event.UserID)
		return
	}

	state := s.states[event.UserID]
	state.UserID = event.UserID
	state.LastEvent = event.Type
	state.UpdatedAt = event.At

	switch event.Type {
	case SignedIn, TokenRefreshed:
		state.SignedIn = true
		state.ExpiresAt = event.ExpiresAt
	}

	s.states[event.UserID] = state
}

// pruneExpired drops sessions whose access token expired before now.
// Callers hold s.mu.
func (s *Store) pruneExpired(now time.Time) {
	for id, state := range s.states {
		if !state.ExpiresAt.IsZero() && state.ExpiresAt.Before(now) {
			delete(s.states, id)
		}
	}
}

// Get returns a copy of the user's session state
func (s *Store) Get(userID uuid.UUID) (State, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	state, ok := s.states[userID]
	return state, ok
}

// Close stops tracking events
func (s *Store) Close() {
	s.unsubscribe()
}
