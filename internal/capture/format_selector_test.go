package capture

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/promptcam/promptcam/internal/conf"
)

func TestSelectFormat(t *testing.T) {
	for _, ca := range []struct {
		name       string
		candidates []Format
		mode       conf.AspectRatioMode
		targetFPS  float64
		best       Format
	}{
		{
			"closest ratio wins",
			[]Format{
				{Width: 4032, Height: 3024, MaxFrameRate: 30}, // 4:3
				{Width: 3840, Height: 2160, MaxFrameRate: 30}, // 16:9
			},
			conf.AspectRatioModeVertical,
			30,
			Format{Width: 3840, Height: 2160, MaxFrameRate: 30},
		},
		{
			"frame rate filter",
			[]Format{
				{Width: 3840, Height: 2160, MaxFrameRate: 30},
				{Width: 1920, Height: 1080, MaxFrameRate: 60},
			},
			conf.AspectRatioModeVertical,
			60,
			Format{Width: 1920, Height: 1080, MaxFrameRate: 60},
		},
		{
			"ratio tie broken by width",
			[]Format{
				{Width: 1920, Height: 1080, MaxFrameRate: 30},
				{Width: 3840, Height: 2160, MaxFrameRate: 30},
			},
			conf.AspectRatioModeVertical,
			30,
			Format{Width: 3840, Height: 2160, MaxFrameRate: 30},
		},
		{
			"square mode prefers square sensor",
			[]Format{
				{Width: 3840, Height: 2160, MaxFrameRate: 30},
				{Width: 1440, Height: 1440, MaxFrameRate: 30},
			},
			conf.AspectRatioModeSquare,
			30,
			Format{Width: 1440, Height: 1440, MaxFrameRate: 30},
		},
	} {
		t.Run(ca.name, func(t *testing.T) {
			best, err := SelectFormat(ca.candidates, ca.mode, ca.targetFPS, PixelEncoding420Video)
			require.NoError(t, err)
			require.Equal(t, ca.best, best)
		})
	}
}

func TestSelectFormatEncodingFilter(t *testing.T) {
	candidates := []Format{
		{Width: 3840, Height: 2160, MaxFrameRate: 30, Encoding: PixelEncoding420Full},
		{Width: 1920, Height: 1080, MaxFrameRate: 30, Encoding: PixelEncoding420Video},
	}

	best, err := SelectFormat(candidates, conf.AspectRatioModeVertical, 30, PixelEncoding420Video)
	require.NoError(t, err)
	require.Equal(t, 1920, best.Width)
}

func TestSelectFormatNotFound(t *testing.T) {
	candidates := []Format{
		{Width: 3840, Height: 2160, MaxFrameRate: 30},
	}

	_, err := SelectFormat(candidates, conf.AspectRatioModeVertical, 120, PixelEncoding420Video)
	require.ErrorIs(t, err, ErrNoFormatFound)
}
