package conf

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/promptcam/promptcam/internal/logger"
)

func writeTempConf(t *testing.T, cnt string) string {
	fi, err := os.CreateTemp(os.TempDir(), "promptcam-conf-")
	require.NoError(t, err)
	t.Cleanup(func() { os.Remove(fi.Name()) })

	_, err = fi.Write([]byte(cnt))
	require.NoError(t, err)
	fi.Close()

	return fi.Name()
}

func TestConfFromFile(t *testing.T) {
	fpath := writeTempConf(t, "logLevel: debug\n"+
		"aspectRatioMode: horizontal\n"+
		"targetFps: 60\n"+
		"videoBitrate: 6M\n"+
		"partDuration: 500ms\n"+
		"scrollSpeedInitial: 1.8\n")

	conf, confPath, err := Load(fpath, nil)
	require.NoError(t, err)
	require.Equal(t, fpath, confPath)
	require.Equal(t, LogLevel(logger.Debug), conf.LogLevel)
	require.Equal(t, AspectRatioModeHorizontal, conf.AspectRatioMode)
	require.Equal(t, FrameRate(60), conf.TargetFPS)
	require.Equal(t, StringSize(6*1024*1024), conf.VideoBitrate)
	require.Equal(t, Duration(500*time.Millisecond), conf.PartDuration)
	require.Equal(t, 1.8, conf.ScrollSpeedInitial)
}

func TestConfFromFileAndEnv(t *testing.T) {
	t.Setenv("PTC_ASPECTRATIOMODE", "square")
	t.Setenv("PTC_AUDIOCHANNELCOUNT", "2")

	fpath := writeTempConf(t, "{}\n")

	conf, _, err := Load(fpath, nil)
	require.NoError(t, err)
	require.Equal(t, AspectRatioModeSquare, conf.AspectRatioMode)
	require.Equal(t, 2, conf.AudioChannelCount)
}

func TestConfErrors(t *testing.T) {
	for _, ca := range []struct {
		name string
		conf string
		err  string
	}{
		{
			"unknown parameter",
			"invalid: true\n",
			`json: unknown field "invalid"`,
		},
		{
			"invalid aspect ratio mode",
			"aspectRatioMode: diagonal\n",
			"invalid aspect ratio mode: 'diagonal'",
		},
		{
			"invalid fps",
			"targetFps: 0\n",
			"'targetFps' must be greater than zero",
		},
		{
			"non-unique record path",
			"recordPath: recordings/out\n",
			"'recordPath' must contain %id, %s or %S to make recordings unique",
		},
		{
			"invalid scroll range",
			"scrollSpeedMin: 2\nscrollSpeedMax: 1\n",
			"invalid scroll speed range",
		},
	} {
		t.Run(ca.name, func(t *testing.T) {
			fpath := writeTempConf(t, ca.conf)

			_, _, err := Load(fpath, nil)
			require.EqualError(t, err, ca.err)
		})
	}
}

func TestConfClone(t *testing.T) {
	conf := &Conf{}
	conf.setDefaults()

	clone := conf.Clone()
	require.Equal(t, conf, clone)

	clone.AspectRatioMode = AspectRatioModeSquare
	require.NotEqual(t, conf.AspectRatioMode, clone.AspectRatioMode)
}
