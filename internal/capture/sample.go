package capture

import (
	"time"
)

// SampleKind identifies the stream a sample belongs to.
type SampleKind int

// sample kinds.
const (
	SampleVideo SampleKind = iota
	SampleAudio
)

// String implements fmt.Stringer.
func (k SampleKind) String() string {
	if k == SampleVideo {
		return "video"
	}
	return "audio"
}

// Sample is a timestamped media sample delivered by a capture device.
// Video samples carry one H.264 access unit (a slice of NAL units),
// audio samples a single AAC access unit.
type Sample struct {
	Kind SampleKind
	AU   [][]byte

	// PTS is the presentation timestamp on the device monotonic clock.
	PTS time.Duration

	// NTP is the absolute time the sample was captured at.
	NTP time.Time
}
