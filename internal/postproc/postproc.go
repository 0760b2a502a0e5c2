// Package postproc contains the optional export post-processing stage.
package postproc

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/pkg/errors"
	ffmpeg "github.com/u2takey/ffmpeg-go"

	"github.com/promptcam/promptcam/internal/logger"
)

// Exporter re-encodes a finished recording, optionally changing its
// playback speed and compositing it over a blurred copy of itself.
// The original file is left untouched; the exported variant is written
// next to it.
type Exporter struct {
	SpeedFactor    float64
	BackgroundBlur bool
	VideoBitrate   uint64
	Parent         logger.Writer
}

// Initialize initializes an Exporter.
func (e *Exporter) Initialize() {
	if e.SpeedFactor == 0 {
		e.SpeedFactor = 1
	}
}

// Log implements logger.Writer.
func (e *Exporter) Log(level logger.Level, format string, args ...interface{}) {
	e.Parent.Log(level, "[export] "+format, args...)
}

// Enabled returns whether the exporter would actually transform the
// recording.
func (e *Exporter) Enabled() bool {
	return e.SpeedFactor != 1 || e.BackgroundBlur
}

func exportPath(input string) string {
	if strings.HasSuffix(input, ".mp4") {
		return strings.TrimSuffix(input, ".mp4") + "_export.mp4"
	}
	return input + "_export.mp4"
}

func buildArgs(speedFactor float64, backgroundBlur bool, videoBitrate uint64) ffmpeg.KwArgs {
	kwargs := ffmpeg.KwArgs{
		"c:v":     "libx264",
		"c:a":     "aac",
		"pix_fmt": "yuv420p",
	}

	if videoBitrate != 0 {
		kwargs["b:v"] = strconv.FormatUint(videoBitrate, 10)
	}

	setpts := ""
	if speedFactor != 1 {
		setpts = fmt.Sprintf("setpts=PTS/%.2f", speedFactor)
		kwargs["af"] = fmt.Sprintf("atempo=%.2f", speedFactor)
	}

	switch {
	case backgroundBlur:
		last := "[bgb][fgs]overlay=(W-w)/2:(H-h)/2"
		if setpts != "" {
			last += "," + setpts
		}
		kwargs["filter_complex"] = strings.Join([]string{
			"[0:v]split=2[bg][fg]",
			"[bg]boxblur=20:5[bgb]",
			"[fg]scale=iw*0.82:ih*0.82[fgs]",
			last,
		}, ";")

	case setpts != "":
		kwargs["vf"] = setpts
	}

	return kwargs
}

// Export re-encodes the recording at the given path and returns the
// path of the exported variant.
func (e *Exporter) Export(input string) (string, error) {
	output := exportPath(input)

	e.Log(logger.Info, "exporting %s (speed %.2fx, blur %v)", output, e.SpeedFactor, e.BackgroundBlur)

	err := ffmpeg.Input(input).
		Output(output, buildArgs(e.SpeedFactor, e.BackgroundBlur, e.VideoBitrate)).
		OverWriteOutput().
		ErrorToStdOut().
		Run()
	if err != nil {
		return "", errors.Wrap(err, "export failed")
	}

	return output, nil
}
