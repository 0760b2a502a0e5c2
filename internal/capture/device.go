package capture

import (
	"errors"
	"time"
)

// Position is the physical position of a camera.
type Position int

// camera positions.
const (
	PositionFront Position = iota
	PositionBack
)

// errors returned by device discovery.
var (
	// ErrNoCameraAvailable is returned when no usable camera exists.
	ErrNoCameraAvailable = errors.New("no camera available")

	// ErrPermissionDenied is returned when camera or microphone access
	// has not been granted. The permission layer is external: the core
	// assumes access and fails fast otherwise.
	ErrPermissionDenied = errors.New("camera or microphone permission denied")

	// ErrDeviceLockFailed is returned when the device configuration
	// could not be locked. Recoverable: the device keeps its current format.
	ErrDeviceLockFailed = errors.New("unable to lock device configuration")
)

// Camera is a physical camera device.
type Camera interface {
	ID() string
	Position() Position
	UltraWide() bool

	// Formats returns the native sensor formats, enumerated fresh
	// on every call.
	Formats() []Format

	// ActiveFormat returns the format the device is currently locked on.
	ActiveFormat() Format

	// SetActiveFormat locks the device on a format with a fixed frame
	// duration, preventing automatic frame-rate throttling in low light.
	SetActiveFormat(f Format, frameDuration time.Duration) error

	// VideoParams returns the H.264 parameter sets of the encoded
	// stream, or nil when not yet known.
	VideoParams() (sps []byte, pps []byte)

	// Start begins sample delivery. The consumer is invoked on a
	// dedicated delivery goroutine owned by the device.
	Start(consume func(Sample)) error
	Stop()
}

// Microphone is an audio capture device.
type Microphone interface {
	ID() string
	SampleRate() int
	ChannelCount() int

	Start(consume func(Sample)) error
	Stop()
}

// Provider enumerates the capture devices of the system.
type Provider interface {
	// Cameras returns the available cameras.
	// Returns ErrPermissionDenied when access has not been granted.
	Cameras() ([]Camera, error)

	// Microphone returns the default microphone.
	// Returns ErrPermissionDenied when access has not been granted.
	Microphone() (Microphone, error)
}

// selectCamera picks a front camera with a fixed preference order:
// ultra-wide first, else standard wide.
func selectCamera(cameras []Camera, preferUltraWide bool) (Camera, error) {
	if preferUltraWide {
		for _, cam := range cameras {
			if cam.Position() == PositionFront && cam.UltraWide() {
				return cam, nil
			}
		}
	}

	for _, cam := range cameras {
		if cam.Position() == PositionFront && !cam.UltraWide() {
			return cam, nil
		}
	}

	return nil, ErrNoCameraAvailable
}
