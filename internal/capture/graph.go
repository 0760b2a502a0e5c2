// Package capture contains the camera/microphone capture graph.
package capture

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/promptcam/promptcam/internal/conf"
	"github.com/promptcam/promptcam/internal/logger"
)

// Graph owns the capture session: camera and microphone inputs, raw
// sample outputs and the orientation/mirroring configuration of the
// video output connection.
//
// The underlying hardware session is a single shared resource. Only
// SetMode and Close may mutate its input/output wiring, and SetMode
// brackets every reconfiguration with a full stop → reconfigure →
// commit → restart sequence: reconfiguring a live session produced
// corrupted duration/orientation on some devices.
type Graph struct {
	Provider        Provider
	PreferUltraWide bool
	TargetFPS       float64
	OnVideoSample   func(Sample)
	OnAudioSample   func(Sample)
	Parent          logger.Writer

	mutex        sync.Mutex
	running      bool
	camera       Camera
	mic          Microphone
	conn         Connection
	mode         conf.AspectRatioMode
	activeFormat Format
}

// Initialize configures the graph with the given aspect ratio mode and
// starts the session.
func (g *Graph) Initialize(mode conf.AspectRatioMode) error {
	g.mutex.Lock()
	defer g.mutex.Unlock()

	mic, err := g.Provider.Microphone()
	if err != nil {
		return err
	}
	g.mic = mic

	err = g.configure(mode)
	if err != nil {
		return err
	}

	return g.startSession()
}

// Close stops the session and releases the devices.
func (g *Graph) Close() {
	g.mutex.Lock()
	defer g.mutex.Unlock()

	if g.running {
		g.stopSession()
	}

	if g.camera != nil {
		g.camera = nil
	}
	g.mic = nil
}

// Log implements logger.Writer.
func (g *Graph) Log(level logger.Level, format string, args ...interface{}) {
	g.Parent.Log(level, "[capture] "+format, args...)
}

// SetMode switches the aspect ratio mode, performing the full
// stop → reconfigure → commit → restart bracket.
//
// Precondition: no recording may be in progress. The caller is
// responsible for enforcing this; the recording lifecycle rejects mode
// changes while recording.
func (g *Graph) SetMode(mode conf.AspectRatioMode) error {
	g.mutex.Lock()
	defer g.mutex.Unlock()

	if g.camera != nil && mode == g.mode {
		return nil
	}

	wasRunning := g.running
	if wasRunning {
		g.stopSession()
	}

	err := g.configure(mode)
	if err != nil {
		return err
	}

	if wasRunning {
		return g.startSession()
	}
	return nil
}

// Mode returns the current aspect ratio mode.
func (g *Graph) Mode() conf.AspectRatioMode {
	g.mutex.Lock()
	defer g.mutex.Unlock()
	return g.mode
}

// ActiveFormat returns the native format the camera is locked on.
func (g *Graph) ActiveFormat() Format {
	g.mutex.Lock()
	defer g.mutex.Unlock()
	return g.activeFormat
}

// Connection returns the current video output connection properties.
func (g *Graph) Connection() Connection {
	g.mutex.Lock()
	defer g.mutex.Unlock()
	return g.conn
}

// VideoParams returns the H.264 parameter sets of the active camera.
func (g *Graph) VideoParams() ([]byte, []byte) {
	g.mutex.Lock()
	defer g.mutex.Unlock()

	if g.camera == nil {
		return nil, nil
	}
	return g.camera.VideoParams()
}

// configure is idempotent and must be called with the session stopped
// and the mutex held.
func (g *Graph) configure(mode conf.AspectRatioMode) error {
	// 1) remove any existing camera input. This resets the output
	// connection properties to their defaults.
	if g.camera != nil {
		g.camera = nil
		g.conn.resetToDefaults()
	}

	// 2) add the preferred camera.
	cameras, err := g.Provider.Cameras()
	if err != nil {
		return err
	}

	camera, err := selectCamera(cameras, g.PreferUltraWide)
	if err != nil {
		return err
	}
	g.camera = camera

	// 3) lock the best native format together with a fixed frame
	// duration, preventing automatic frame-rate throttling in low light.
	format, err := SelectFormat(camera.Formats(), mode, g.TargetFPS, PixelEncoding420Video)
	if err != nil {
		if !errors.Is(err, ErrNoFormatFound) {
			return err
		}
		g.Log(logger.Warn, "no format matches mode %v at %v fps, keeping current format",
			mode, g.TargetFPS)
		format = camera.ActiveFormat()
	} else {
		frameDuration := time.Duration(float64(time.Second) / g.TargetFPS)
		err = camera.SetActiveFormat(format, frameDuration)
		if err != nil {
			g.Log(logger.Warn, "%v, keeping current format", err)
			format = camera.ActiveFormat()
		}
	}
	g.activeFormat = format

	// 4) restore the connection properties that the input swap reset.
	g.conn.Orientation = OrientationUpright
	if camera.Position() == PositionFront {
		g.conn.Mirrored = true
	}

	g.mode = mode

	g.Log(logger.Info, "configured %s camera, format %dx%d @ %v fps, mode %v",
		camera.ID(), format.Width, format.Height, g.TargetFPS, mode)

	return nil
}

func (g *Graph) startSession() error {
	err := g.camera.Start(g.OnVideoSample)
	if err != nil {
		return fmt.Errorf("unable to start camera: %w", err)
	}

	err = g.mic.Start(g.OnAudioSample)
	if err != nil {
		g.camera.Stop()
		return fmt.Errorf("unable to start microphone: %w", err)
	}

	g.running = true
	return nil
}

func (g *Graph) stopSession() {
	g.camera.Stop()
	g.mic.Stop()
	g.running = false
}
