package capture

// PixelEncoding identifies the raw sample pixel layout of a format.
type PixelEncoding int

// pixel encodings.
const (
	// PixelEncoding420Video is 4:2:0 bi-planar, video range.
	PixelEncoding420Video PixelEncoding = iota

	// PixelEncoding420Full is 4:2:0 bi-planar, full range.
	PixelEncoding420Full
)

// Format is a physical-camera format candidate, in the sensor's own
// (landscape) coordinate frame. Width ≥ Height is not guaranteed:
// some sensors expose square formats.
type Format struct {
	Width        int
	Height       int
	MinFrameRate float64
	MaxFrameRate float64
	Encoding     PixelEncoding
}

// Ratio returns the aspect ratio of the format.
func (f Format) Ratio() float64 {
	return float64(f.Width) / float64(f.Height)
}
