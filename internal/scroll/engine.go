package scroll

import (
	"math"
	"time"

	"github.com/promptcam/promptcam/internal/logger"
)

// Engine advances the shared scroll offset at a steady cadence.
//
// The offset increases by exactly the current speed on every tick and is
// never decreased or reset by the engine itself. Stopping preserves the
// offset, so resuming continues from where it left off.
type Engine struct {
	State        *State
	TickInterval time.Duration
	SpeedMin     float64
	SpeedMax     float64
	SpeedStep    float64
	SpeedInitial float64
	Parent       logger.Writer

	// guarded by State.mutex
	terminate chan struct{}
	done      chan struct{}
}

// Initialize initializes an Engine.
func (e *Engine) Initialize() {
	e.State.mutex.Lock()
	e.State.speed = e.clamp(e.SpeedInitial)
	e.State.mutex.Unlock()
}

// Log implements logger.Writer.
func (e *Engine) Log(level logger.Level, format string, args ...interface{}) {
	e.Parent.Log(level, "[scroll] "+format, args...)
}

// Start begins advancing the offset. It is a no-op when already active.
func (e *Engine) Start() {
	e.State.mutex.Lock()
	if e.State.active {
		e.State.mutex.Unlock()
		return
	}
	e.State.active = true
	e.terminate = make(chan struct{})
	e.done = make(chan struct{})
	go e.run()
	e.State.mutex.Unlock()

	e.Log(logger.Debug, "auto scroll started")
}

// Stop halts the tick source. It is a no-op when already inactive.
// The offset is preserved.
func (e *Engine) Stop() {
	e.State.mutex.Lock()
	if !e.State.active {
		e.State.mutex.Unlock()
		return
	}
	e.State.active = false
	terminate := e.terminate
	done := e.done
	e.State.mutex.Unlock()

	close(terminate)
	<-done

	e.Log(logger.Debug, "auto scroll stopped")
}

// Close guarantees that the tick source is canceled.
func (e *Engine) Close() {
	e.Stop()
}

func (e *Engine) run() {
	defer close(e.done)

	t := time.NewTicker(e.TickInterval)
	defer t.Stop()

	for {
		select {
		case <-e.terminate:
			return

		case <-t.C:
			e.tick()
		}
	}
}

func (e *Engine) tick() {
	e.State.mutex.Lock()
	defer e.State.mutex.Unlock()

	// a drag in progress supersedes engine writes
	if e.State.userDriving {
		return
	}

	e.State.offset += e.State.speed
}

func (e *Engine) clamp(v float64) float64 {
	if v < e.SpeedMin {
		return e.SpeedMin
	}
	if v > e.SpeedMax {
		return e.SpeedMax
	}
	return v
}

// IncreaseSpeed raises the speed by one step, clamped to the maximum.
func (e *Engine) IncreaseSpeed() {
	e.State.mutex.Lock()
	defer e.State.mutex.Unlock()
	e.State.speed = e.clamp(e.State.speed + e.SpeedStep)
}

// DecreaseSpeed lowers the speed by one step, clamped to the minimum.
func (e *Engine) DecreaseSpeed() {
	e.State.mutex.Lock()
	defer e.State.mutex.Unlock()
	e.State.speed = e.clamp(e.State.speed - e.SpeedStep)
}

// SetSpeed sets the speed directly, clamped to the allowed range.
func (e *Engine) SetSpeed(v float64) {
	e.State.mutex.Lock()
	defer e.State.mutex.Unlock()
	e.State.speed = e.clamp(v)
}

// DisplaySpeed returns the speed as the integer shown to the user.
func (e *Engine) DisplaySpeed() int {
	e.State.mutex.Lock()
	defer e.State.mutex.Unlock()
	return int(math.Round(e.State.speed * 10))
}
