package capture

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/promptcam/promptcam/internal/conf"
	"github.com/promptcam/promptcam/internal/logger"
	"github.com/promptcam/promptcam/internal/test"
)

func newTestGraph(t *testing.T, provider Provider, preferUltraWide bool) *Graph {
	g := &Graph{
		Provider:        provider,
		PreferUltraWide: preferUltraWide,
		TargetFPS:       30,
		OnVideoSample:   func(Sample) {},
		OnAudioSample:   func(Sample) {},
		Parent:          test.NilLogger,
	}
	t.Cleanup(g.Close)
	return g
}

func TestGraphInitialize(t *testing.T) {
	provider := NewSimulatedProvider(44100, 1)

	g := newTestGraph(t, provider, true)
	err := g.Initialize(conf.AspectRatioModeVertical)
	require.NoError(t, err)

	require.Equal(t, conf.AspectRatioModeVertical, g.Mode())

	// vertical mode prefers the 16:9 sensor format with the most detail
	require.Equal(t, Format{
		Width: 3840, Height: 2160,
		MinFrameRate: 1, MaxFrameRate: 30,
		Encoding: PixelEncoding420Video,
	}, g.ActiveFormat())

	// the input swap resets connection properties; the graph must
	// restore upright orientation and front-camera mirroring
	conn := g.Connection()
	require.Equal(t, OrientationUpright, conn.Orientation)
	require.True(t, conn.Mirrored)
}

func TestGraphPreferWide(t *testing.T) {
	provider := NewSimulatedProvider(44100, 1)

	g := newTestGraph(t, provider, false)
	err := g.Initialize(conf.AspectRatioModeVertical)
	require.NoError(t, err)

	// with ultra-wide preference disabled, the standard wide camera wins
	require.Equal(t, Format{
		Width: 1920, Height: 1080,
		MinFrameRate: 1, MaxFrameRate: 60,
		Encoding: PixelEncoding420Video,
	}, g.ActiveFormat())

	sps, pps := g.VideoParams()
	require.NotNil(t, sps)
	require.NotNil(t, pps)
}

func TestGraphSetMode(t *testing.T) {
	provider := NewSimulatedProvider(44100, 1)

	g := newTestGraph(t, provider, true)
	err := g.Initialize(conf.AspectRatioModeVertical)
	require.NoError(t, err)

	err = g.SetMode(conf.AspectRatioModeSquare)
	require.NoError(t, err)
	require.Equal(t, conf.AspectRatioModeSquare, g.Mode())
	require.Equal(t, 1440, g.ActiveFormat().Width)

	// connection properties survive the reconfiguration
	conn := g.Connection()
	require.Equal(t, OrientationUpright, conn.Orientation)
	require.True(t, conn.Mirrored)

	// same mode is a no-op
	err = g.SetMode(conf.AspectRatioModeSquare)
	require.NoError(t, err)
}

func TestGraphNoCamera(t *testing.T) {
	provider := NewSimulatedProvider(44100, 1)
	provider.CameraList = []Camera{
		&SimulatedCamera{
			DeviceID:       "back-wide",
			DevicePosition: PositionBack,
			DeviceFormats: []Format{
				{Width: 1920, Height: 1080, MaxFrameRate: 30},
			},
		},
	}

	g := newTestGraph(t, provider, true)
	err := g.Initialize(conf.AspectRatioModeVertical)
	require.ErrorIs(t, err, ErrNoCameraAvailable)
}

func TestGraphPermissionDenied(t *testing.T) {
	provider := NewSimulatedProvider(44100, 1)
	provider.PermissionGranted = false

	g := newTestGraph(t, provider, true)
	err := g.Initialize(conf.AspectRatioModeVertical)
	require.ErrorIs(t, err, ErrPermissionDenied)
}

func TestGraphFormatFallback(t *testing.T) {
	provider := NewSimulatedProvider(44100, 1)

	warned := false
	g := &Graph{
		Provider:        provider,
		PreferUltraWide: true,
		TargetFPS:       240, // beyond every simulated format
		OnVideoSample:   func(Sample) {},
		OnAudioSample:   func(Sample) {},
		Parent: test.Logger(func(level logger.Level, _ string, _ ...interface{}) {
			if level == logger.Warn {
				warned = true
			}
		}),
	}
	t.Cleanup(g.Close)

	err := g.Initialize(conf.AspectRatioModeVertical)
	require.NoError(t, err)
	require.True(t, warned)

	// the camera keeps whatever format it already had
	require.Equal(t, provider.CameraList[0].ActiveFormat(), g.ActiveFormat())
}
