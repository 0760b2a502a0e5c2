package recorder

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/promptcam/promptcam/internal/capture"
	"github.com/promptcam/promptcam/internal/conf"
)

func TestOutputGeometry(t *testing.T) {
	for _, ca := range []struct {
		name      string
		mode      conf.AspectRatioMode
		native    capture.Format
		outWidth  int
		outHeight int
	}{
		{
			"vertical swaps native dimensions",
			conf.AspectRatioModeVertical,
			capture.Format{Width: 3840, Height: 2160},
			2160, 3840,
		},
		{
			"horizontal crops 16:9 out of the upright buffer",
			conf.AspectRatioModeHorizontal,
			capture.Format{Width: 4032, Height: 3024},
			3024, 1701,
		},
		{
			"square",
			conf.AspectRatioModeSquare,
			capture.Format{Width: 3840, Height: 2160},
			2160, 2160,
		},
		{
			"square sensor format",
			conf.AspectRatioModeVertical,
			capture.Format{Width: 1440, Height: 1440},
			1440, 1440,
		},
	} {
		t.Run(ca.name, func(t *testing.T) {
			w, h := OutputGeometry(ca.mode, ca.native)
			require.Equal(t, ca.outWidth, w)
			require.Equal(t, ca.outHeight, h)
		})
	}
}
