package scroll

// Surface reconciles user drag gestures with engine-driven offset
// updates. While a drag is in progress the surface is the sole writer
// of the offset; when the drag ends, control reverts to the engine if
// it is active, otherwise the offset holds its last position.
type Surface struct {
	State *State

	contentLength float64
}

// BeginDrag marks the start of a user drag.
func (s *Surface) BeginDrag() {
	s.State.mutex.Lock()
	defer s.State.mutex.Unlock()
	s.State.userDriving = true
}

// Drag applies a drag position. It is ignored unless a drag is in
// progress.
func (s *Surface) Drag(offset float64) {
	s.State.mutex.Lock()
	defer s.State.mutex.Unlock()

	if !s.State.userDriving {
		return
	}

	if offset < 0 {
		offset = 0
	}
	if s.contentLength > 0 && offset > s.contentLength {
		offset = s.contentLength
	}

	s.State.offset = offset
}

// EndDrag marks the end of a user drag.
func (s *Surface) EndDrag() {
	s.State.mutex.Lock()
	defer s.State.mutex.Unlock()
	s.State.userDriving = false
}

// SetContentLength sets the scrollable extent, derived from the
// rendered script.
func (s *Surface) SetContentLength(v float64) {
	s.State.mutex.Lock()
	defer s.State.mutex.Unlock()
	s.contentLength = v
}

// ContentLength returns the scrollable extent.
func (s *Surface) ContentLength() float64 {
	s.State.mutex.Lock()
	defer s.State.mutex.Unlock()
	return s.contentLength
}
