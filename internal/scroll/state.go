// Package scroll contains the auto-scroll engine and the scroll surface.
package scroll

import (
	"sync"
)

// State is the scroll position shared by the engine and the surface.
//
// Two writers exist: the engine tick and the user drag. At most one of
// them may apply an update at a given moment; the userDriving flag gates
// which writes go through.
type State struct {
	mutex       sync.Mutex
	offset      float64
	speed       float64
	active      bool
	userDriving bool
}

// Offset returns the current scroll offset.
func (s *State) Offset() float64 {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	return s.offset
}

// Speed returns the current scroll speed.
func (s *State) Speed() float64 {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	return s.speed
}

// Active returns whether the engine is advancing the offset.
func (s *State) Active() bool {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	return s.active
}

// UserDriving returns whether a drag is in progress.
func (s *State) UserDriving() bool {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	return s.userDriving
}

// Reset moves the offset back to zero. It is meant to be called between
// takes, never while the engine or a drag is writing.
func (s *State) Reset() {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	if !s.active && !s.userDriving {
		s.offset = 0
	}
}
