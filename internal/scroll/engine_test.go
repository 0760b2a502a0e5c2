package scroll

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/promptcam/promptcam/internal/test"
)

func newTestEngine() *Engine {
	e := &Engine{
		State:        &State{},
		TickInterval: 30 * time.Millisecond,
		SpeedMin:     0.1,
		SpeedMax:     2.0,
		SpeedStep:    0.1,
		SpeedInitial: 1.0,
		Parent:       test.NilLogger,
	}
	e.Initialize()
	return e
}

func TestEngineTick(t *testing.T) {
	e := newTestEngine()
	e.SetSpeed(1.8)

	// ten undisturbed ticks advance the offset by exactly ten speeds
	for i := 0; i < 10; i++ {
		e.tick()
	}
	require.InDelta(t, 18.0, e.State.Offset(), 1e-9)

	// the offset never decreases
	prev := e.State.Offset()
	e.tick()
	require.Greater(t, e.State.Offset(), prev)
}

func TestEngineStartStop(t *testing.T) {
	e := newTestEngine()
	defer e.Close()

	require.False(t, e.State.Active())

	e.Start()
	require.True(t, e.State.Active())

	// double start is a no-op
	e.Start()

	time.Sleep(100 * time.Millisecond)

	e.Stop()
	require.False(t, e.State.Active())

	offset := e.State.Offset()
	require.Greater(t, offset, 0.0)

	// stopping preserves the offset and halts advancement
	time.Sleep(60 * time.Millisecond)
	require.Equal(t, offset, e.State.Offset())

	// double stop is a no-op
	e.Stop()

	// resuming continues from where it left off
	e.Start()
	time.Sleep(60 * time.Millisecond)
	e.Stop()
	require.Greater(t, e.State.Offset(), offset)
}

func TestEngineConcurrentStartStop(t *testing.T) {
	e := newTestEngine()
	defer e.Close()

	var wg sync.WaitGroup

	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 200; j++ {
				e.Start()
				e.Stop()
			}
		}()
	}

	wg.Wait()

	e.Stop()
	require.False(t, e.State.Active())
}

func TestEngineSpeedClamp(t *testing.T) {
	e := newTestEngine()

	for i := 0; i < 30; i++ {
		e.IncreaseSpeed()
	}
	require.InDelta(t, 2.0, e.State.Speed(), 1e-9)

	// increasing at the maximum is a no-op
	e.IncreaseSpeed()
	require.InDelta(t, 2.0, e.State.Speed(), 1e-9)
	require.Equal(t, 20, e.DisplaySpeed())

	for i := 0; i < 30; i++ {
		e.DecreaseSpeed()
	}
	require.InDelta(t, 0.1, e.State.Speed(), 1e-9)

	e.DecreaseSpeed()
	require.InDelta(t, 0.1, e.State.Speed(), 1e-9)
	require.Equal(t, 1, e.DisplaySpeed())

	e.SetSpeed(5.0)
	require.InDelta(t, 2.0, e.State.Speed(), 1e-9)
}

func TestEngineInitialSpeed(t *testing.T) {
	e := newTestEngine()
	require.InDelta(t, 1.0, e.State.Speed(), 1e-9)
	require.Equal(t, 10, e.DisplaySpeed())
}
