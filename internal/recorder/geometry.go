package recorder

import (
	"math"

	"github.com/promptcam/promptcam/internal/capture"
	"github.com/promptcam/promptcam/internal/conf"
)

// OutputGeometry computes the declared track dimensions for a given
// aspect ratio mode and native sensor format.
//
// The sensor reports its format in landscape coordinates, but the capture
// connection delivers buffers already rotated upright. The vertical mode
// therefore uses the swapped native dimensions. The horizontal mode crops
// a 16:9 landscape region out of the upright buffer, and the square mode
// crops a centered square.
func OutputGeometry(mode conf.AspectRatioMode, native capture.Format) (int, int) {
	switch mode {
	case conf.AspectRatioModeHorizontal:
		w := native.Height
		return w, int(math.Round(float64(w) * 9 / 16))

	case conf.AspectRatioModeSquare:
		return native.Height, native.Height

	default: // vertical
		return native.Height, native.Width
	}
}
