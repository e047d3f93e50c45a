// Copyright 2026 Peter Edge
//
// All rights reserved.

package rebaledit

import "sync"

// Session owns the current State of one editing session.
//
// A Session may be shared across goroutines. Each Apply is atomic.
type Session struct {
	lock  sync.Mutex
	state *State
}

// NewSession returns a new Session starting at state.
func NewSession(state *State) *Session {
	return &Session{state: state}
}

// State returns the current state.
func (s *Session) State() *State {
	s.lock.Lock()
	defer s.lock.Unlock()
	return s.state
}

// Apply applies an edit and makes the result the current state.
//
// See the package-level Apply for the returned state and error.
func (s *Session) Apply(edit Edit) (*State, error) {
	s.lock.Lock()
	defer s.lock.Unlock()
	state, err := Apply(s.state, edit)
	s.state = state
	return state, err
}
