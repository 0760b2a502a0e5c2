package capture

// Orientation is the rotation applied by an output connection to the
// buffers it delivers.
type Orientation int

// orientations.
const (
	// OrientationLandscape delivers buffers in the sensor's native frame.
	OrientationLandscape Orientation = iota

	// OrientationUpright delivers buffers rotated upright: a W×H sensor
	// format arrives as H×W.
	OrientationUpright
)

// Connection holds the configurable properties of the video output
// connection. Swapping the camera input resets them to defaults, so the
// graph restores them after every reconfiguration.
type Connection struct {
	Orientation Orientation
	Mirrored    bool
}

func (c *Connection) resetToDefaults() {
	c.Orientation = OrientationLandscape
	c.Mirrored = false
}
