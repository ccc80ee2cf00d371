// Package session keeps checkout state per browsing session in memory.
package session

import (
	"sync"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/imrishuroy/go-glucose-guard-orderflow/internal/checkout"
	"github.com/imrishuroy/go-glucose-guard-orderflow/internal/health"
)

// ErrNotFound is returned for unknown session ids.
var ErrNotFound = errors.New("session not found")

type entry struct {
	mu    sync.Mutex
	state checkout.State
}

// Store maps session ids to state. Updates to one session are serialised;
// different sessions never wait on each other.
type Store struct {
	mu       sync.RWMutex
	sessions map[string]*entry
	newID    func() string
}

// NewStore returns an empty Store.
func NewStore() *Store {
	return &Store{
		sessions: map[string]*entry{},
		newID:    uuid.NewString,
	}
}

// Create starts an idle session for user.
func (s *Store) Create(user health.User) (string, checkout.State) {
	st := checkout.NewState(user)
	id := s.newID()

	s.mu.Lock()
	s.sessions[id] = &entry{state: st}
	s.mu.Unlock()
	return id, st.Clone()
}

func (s *Store) lookup(id string) (*entry, error) {
	s.mu.RLock()
	e, ok := s.sessions[id]
	s.mu.RUnlock()
	if !ok {
		return nil, errors.Wrapf(ErrNotFound, "session %s", id)
	}
	return e, nil
}

// Get returns a copy of the session state.
func (s *Store) Get(id string) (checkout.State, error) {
	e, err := s.lookup(id)
	if err != nil {
		return checkout.State{}, err
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state.Clone(), nil
}

// Update runs fn on a copy of the state and stores what it returns. When fn
// fails the stored state is left as it was.
func (s *Store) Update(id string, fn func(checkout.State) (checkout.State, error)) (checkout.State, error) {
	e, err := s.lookup(id)
	if err != nil {
		return checkout.State{}, err
	}
	e.mu.Lock()
	defer e.mu.Unlock()

	next, err := fn(e.state.Clone())
	if err != nil {
		return checkout.State{}, err
	}
	e.state = next.Clone()
	return next, nil
}

// Delete forgets a session.
func (s *Store) Delete(id string) {
	s.mu.Lock()
	delete(s.sessions, id)
	s.mu.Unlock()
}
