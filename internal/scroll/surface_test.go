package scroll

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSurfaceDragSupersedesEngine(t *testing.T) {
	e := newTestEngine()
	s := &Surface{State: e.State}

	e.SetSpeed(1.0)
	for i := 0; i < 50; i++ {
		e.tick()
	}
	require.InDelta(t, 50.0, e.State.Offset(), 1e-9)

	// while a drag is active, engine ticks must not move the offset
	s.BeginDrag()
	s.Drag(60.0)
	e.tick()
	e.tick()
	require.InDelta(t, 60.0, e.State.Offset(), 1e-9)

	s.Drag(80.0)
	s.EndDrag()

	// after the drag, ticks resume from the dragged value
	e.tick()
	require.InDelta(t, 81.0, e.State.Offset(), 1e-9)
}

func TestSurfaceDragOutsideGesture(t *testing.T) {
	e := newTestEngine()
	s := &Surface{State: e.State}

	// drag deltas without an active gesture are ignored
	s.Drag(100.0)
	require.InDelta(t, 0.0, e.State.Offset(), 1e-9)
}

func TestSurfaceDragBounds(t *testing.T) {
	e := newTestEngine()
	s := &Surface{State: e.State}
	s.SetContentLength(500.0)

	s.BeginDrag()

	s.Drag(-20.0)
	require.InDelta(t, 0.0, e.State.Offset(), 1e-9)

	s.Drag(1000.0)
	require.InDelta(t, 500.0, e.State.Offset(), 1e-9)

	s.EndDrag()

	require.InDelta(t, 500.0, s.ContentLength(), 1e-9)
}

func TestStateReset(t *testing.T) {
	e := newTestEngine()
	s := &Surface{State: e.State}

	e.tick()
	e.tick()
	require.Greater(t, e.State.Offset(), 0.0)

	// reset is refused while a drag is in progress
	s.BeginDrag()
	e.State.Reset()
	require.Greater(t, e.State.Offset(), 0.0)
	s.EndDrag()

	e.State.Reset()
	require.InDelta(t, 0.0, e.State.Offset(), 1e-9)
}
